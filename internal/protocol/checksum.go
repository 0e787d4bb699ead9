package protocol

import (
	"encoding/hex"
	"strings"

	"golang.org/x/crypto/sha3"
)

// identityHexLen is the hex length of a 20-byte checksum identity.
const identityHexLen = 40

// ChecksumAddress renders a 20-byte account as a mixed-case checksum
// identity (EIP-55 casing over the Keccak-256 of the lowercase hex).
func ChecksumAddress(account []byte) string {
	lower := hex.EncodeToString(account)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	digest := h.Sum(nil)

	out := make([]byte, len(lower))
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		// Uppercase a hex letter when the matching digest nibble is >= 8.
		nibble := digest[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if c >= 'a' && nibble&0x08 != 0 {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return "0x" + string(out)
}

// IsChecksumAddress reports whether s is a correctly mixed-case
// checksum identity. All-lowercase or all-uppercase forms fail unless
// their checksum casing happens to match.
func IsChecksumAddress(s string) bool {
	if !strings.HasPrefix(s, "0x") || len(s) != identityHexLen+2 {
		return false
	}
	account, err := hex.DecodeString(strings.ToLower(s[2:]))
	if err != nil {
		return false
	}
	return ChecksumAddress(account) == s
}
