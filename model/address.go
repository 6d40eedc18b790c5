package model

import (
	"encoding/hex"
	"regexp"
	"strings"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// AddressLength is the byte length of an identity address.
const AddressLength = 20

// IsValidAddress reports whether s is "0x" followed by exactly 40 hex characters.
func IsValidAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// NormalizeAddress trims and lower-cases an address so that it can be used
// as a ledger key or compared. Malformed input yields an InvalidInput error.
func NormalizeAddress(s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if !IsValidAddress(trimmed) {
		return "", Errorf(KindInvalidInput, "'%s' is not a valid address (expected 0x followed by 40 hex characters)", s)
	}
	return strings.ToLower(trimmed), nil
}

// AddressFromBytes formats the last 20 bytes of b as a canonical address.
func AddressFromBytes(b []byte) string {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	return "0x" + hex.EncodeToString(b)
}

// ShortAddress abbreviates an address for display, e.g. 0xf39f...2266.
func ShortAddress(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}
