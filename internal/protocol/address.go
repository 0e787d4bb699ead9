// Package protocol implements the peer wire encodings: the binary
// peer-address form and the human-supplied node locator grammar.
package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vigil-network/vigil/internal/domain"
)

const (
	// Loopback is the numeric loopback address peers advertise locally.
	Loopback = "127.0.0.1"

	// Localhost is the symbolic alias normalized away on construction.
	Localhost = "localhost"

	// DefaultPort is the REST port assumed when a locator omits one.
	DefaultPort = 9151
)

// Address is an immutable reachable peer endpoint.
type Address struct {
	Host string
	Port int
}

// NewAddress constructs an Address, normalizing the localhost alias
// to its numeric loopback form. Any other host is stored verbatim.
func NewAddress(host string, port int) Address {
	if host == Localhost {
		host = Loopback
	}
	return Address{Host: host, Port: port}
}

// URI renders the canonical "host:port" form.
func (a Address) URI() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// FormalURI renders the absolute "https://host:port" form.
func (a Address) FormalURI() string {
	return "https://" + a.URI()
}

// Bytes encodes the address into its canonical wire form:
// UTF-8 host bytes, one ASCII colon, then the port as a
// 4-byte big-endian unsigned integer.
func (a Address) Bytes() []byte {
	buf := make([]byte, 0, len(a.Host)+5)
	buf = append(buf, a.Host...)
	buf = append(buf, ':')
	return binary.BigEndian.AppendUint32(buf, uint32(a.Port))
}

// AddressFromBytes decodes the canonical wire form. The byte string is
// split at the first colon; the left part is the host, the right part
// must be exactly the 4-byte big-endian port. It is the exact inverse
// of Bytes for any value Bytes produces.
func AddressFromBytes(b []byte) (Address, error) {
	i := bytes.IndexByte(b, ':')
	if i < 0 {
		return Address{}, fmt.Errorf("%w: no colon separator", domain.ErrBadAddress)
	}
	host, portBytes := b[:i], b[i+1:]
	if len(portBytes) != 4 {
		return Address{}, fmt.Errorf("%w: port field is %d bytes, want 4", domain.ErrBadAddress, len(portBytes))
	}
	port := binary.BigEndian.Uint32(portBytes)
	return NewAddress(string(host), int(port)), nil
}
