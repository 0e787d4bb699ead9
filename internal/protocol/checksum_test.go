package protocol

import (
	"encoding/hex"
	"strings"
	"testing"
)

// Reference identities with known mixed-case checksum forms.
var checksummed = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestChecksumAddress(t *testing.T) {
	for _, want := range checksummed {
		account, err := hex.DecodeString(strings.ToLower(want[2:]))
		if err != nil {
			t.Fatalf("decode %q: %v", want, err)
		}
		if got := ChecksumAddress(account); got != want {
			t.Errorf("ChecksumAddress() = %q, want %q", got, want)
		}
	}
}

func TestIsChecksumAddress(t *testing.T) {
	for _, id := range checksummed {
		if !IsChecksumAddress(id) {
			t.Errorf("IsChecksumAddress(%q) = false, want true", id)
		}
		if IsChecksumAddress(strings.ToLower(id)) {
			t.Errorf("all-lowercase %q accepted, want rejected", id)
		}
	}
}

func TestIsChecksumAddress_Malformed(t *testing.T) {
	cases := []string{
		"",
		"0x",
		"5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",   // no 0x prefix
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeA",   // too short
		"0xZZZeb6053F3E94C9b9A09f33669435E7Ef1BeAed", // not hex
	}
	for _, s := range cases {
		if IsChecksumAddress(s) {
			t.Errorf("IsChecksumAddress(%q) = true, want false", s)
		}
	}
}
