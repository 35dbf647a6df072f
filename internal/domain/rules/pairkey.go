package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	ErrEmptyAddress = errors.New("address is empty")
	ErrSelfPair     = errors.New("a pair requires two distinct addresses")
)

// PairKey derives the order-independent identity of an unordered user
// pair: both addresses lower-cased, sorted lexicographically, hashed.
// PairKey(a, b) == PairKey(b, a) for all a != b.
func PairKey(a, b string) (string, error) {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return "", ErrEmptyAddress
	}
	if a == b {
		return "", ErrSelfPair
	}
	if a > b {
		a, b = b, a
	}

	sum := sha256.Sum256([]byte(a + "|" + b))
	return hex.EncodeToString(sum[:]), nil
}

// SortPair returns the two addresses lower-cased and in canonical
// (lexicographic) order.
func SortPair(a, b string) (string, string) {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a > b {
		return b, a
	}
	return a, b
}
