package validate

import "testing"

func TestWalletAddress(t *testing.T) {
	cases := []struct {
		name  string
		value string
		want  bool
	}{
		{"lowercase", "0xabcdef0123456789abcdef0123456789abcdef01", true},
		{"mixed case", "0xAbCdEf0123456789ABCDEF0123456789abcdef01", true},
		{"padded", "  0xabcdef0123456789abcdef0123456789abcdef01  ", true},
		{"missing prefix", "abcdef0123456789abcdef0123456789abcdef0101", false},
		{"too short", "0xabcdef", false},
		{"non hex", "0xzzcdef0123456789abcdef0123456789abcdef01", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WalletAddress(tc.value); got != tc.want {
				t.Fatalf("WalletAddress(%q) = %v, want %v", tc.value, got, tc.want)
			}
		})
	}
}

func TestNormalizeAddress(t *testing.T) {
	got := NormalizeAddress("  0xABCdef0123456789ABCDEF0123456789ABCDEF01 ")
	want := "0xabcdef0123456789abcdef0123456789abcdef01"
	if got != want {
		t.Fatalf("NormalizeAddress = %q, want %q", got, want)
	}
}
