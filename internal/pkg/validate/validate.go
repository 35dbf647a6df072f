package validate

import "strings"

func Required(value string) bool {
	return strings.TrimSpace(value) != ""
}

// WalletAddress accepts a 0x-prefixed 40-hex-digit EVM address in any
// case.
func WalletAddress(value string) bool {
	value = strings.TrimSpace(value)
	if len(value) != 42 {
		return false
	}
	if value[0] != '0' || (value[1] != 'x' && value[1] != 'X') {
		return false
	}
	for _, c := range value[2:] {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeAddress lowercases a wallet address for storage and pair
// hashing.
func NormalizeAddress(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
