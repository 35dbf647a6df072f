package rules

import (
	"errors"
	"testing"
)

func TestPairKeyIsOrderIndependent(t *testing.T) {
	a := "0xAbC1230000000000000000000000000000000001"
	b := "0xDEF4560000000000000000000000000000000002"

	k1, err := PairKey(a, b)
	if err != nil {
		t.Fatalf("pair key (a,b): %v", err)
	}
	k2, err := PairKey(b, a)
	if err != nil {
		t.Fatalf("pair key (b,a): %v", err)
	}
	if k1 != k2 {
		t.Fatalf("pair key is order dependent: %s != %s", k1, k2)
	}
	if len(k1) != 64 {
		t.Fatalf("unexpected pair key width: %d", len(k1))
	}
}

func TestPairKeyIsCaseInsensitive(t *testing.T) {
	k1, err := PairKey("0xAAAA", "0xBBBB")
	if err != nil {
		t.Fatalf("pair key: %v", err)
	}
	k2, err := PairKey("0xaaaa", "0xbbbb")
	if err != nil {
		t.Fatalf("pair key: %v", err)
	}
	if k1 != k2 {
		t.Fatalf("pair key depends on address casing")
	}
}

func TestPairKeyRejectsInvalidPairs(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want error
	}{
		{name: "self pair", a: "0xabc", b: "0xABC", want: ErrSelfPair},
		{name: "empty first", a: "", b: "0xabc", want: ErrEmptyAddress},
		{name: "empty second", a: "0xabc", b: "  ", want: ErrEmptyAddress},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := PairKey(tc.a, tc.b); !errors.Is(err, tc.want) {
				t.Fatalf("unexpected error: got %v want %v", err, tc.want)
			}
		})
	}
}

func TestSortPairCanonicalOrder(t *testing.T) {
	a, b := SortPair("0xB", "0xA")
	if a != "0xa" || b != "0xb" {
		t.Fatalf("unexpected sorted pair: %s, %s", a, b)
	}
}
