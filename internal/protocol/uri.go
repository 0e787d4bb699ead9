package protocol

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/vigil-network/vigil/internal/domain"
)

// IdentityValidator checks a checksum identity token.
type IdentityValidator func(identity string) bool

// ParseNodeURI parses a node locator with the default REST port and the
// mixed-case checksum validator. Grammar: [identity "@"] host [":" port].
func ParseNodeURI(raw string) (host string, port int, identity string, err error) {
	return ParseNodeURIWith(raw, DefaultPort, IsChecksumAddress)
}

// ParseNodeURIWith parses a node locator against a caller-supplied
// default port and identity validator.
//
// The scheme is always forced to https; a locator carrying any other
// explicit scheme is rejected. The identity, when present before an
// "@" separator, is mandatory and must pass validation. Hostname case
// is preserved; a missing port falls back to defaultPort.
func ParseNodeURIWith(raw string, defaultPort int, validate IdentityValidator) (host string, port int, identity string, err error) {
	rest := raw
	if i := strings.Index(rest, "@"); i >= 0 {
		identity, rest = rest[:i], rest[i+1:]
		if identity == "" {
			return "", 0, "", fmt.Errorf("%q is not a valid node URI: %w", raw, domain.ErrNoIdentity)
		}
		if validate != nil && !validate(identity) {
			return "", 0, "", fmt.Errorf("%q: %w", identity, domain.ErrBadIdentity)
		}
	}

	if i := strings.Index(rest, "://"); i >= 0 && rest[:i] != "https" {
		return "", 0, "", fmt.Errorf("%q: %w", raw, domain.ErrWrongScheme)
	}
	if !strings.HasPrefix(rest, "https://") {
		rest = "https://" + rest
	}

	parsed, err := url.Parse(rest)
	if err != nil {
		return "", 0, "", fmt.Errorf("parse node URI %q: %w", raw, err)
	}

	host = parsed.Hostname()
	if portStr := parsed.Port(); portStr != "" {
		port, err = strconv.Atoi(portStr)
		if err != nil || port < 0 || port > 65535 {
			return "", 0, "", fmt.Errorf("%q: %w", portStr, domain.ErrBadPort)
		}
	} else {
		port = defaultPort
	}
	return host, port, identity, nil
}
