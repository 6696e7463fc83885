package identity

import (
	"testing"
	"unicode/utf8"
)

func TestFallbackTruncatesByRune(t *testing.T) {
	cases := []struct {
		name     string
		playerID string
		want     string
	}{
		{"short id kept whole", "ab12", "Captain ab12"},
		{"long id cut to eight runes", "0123456789abcdef", "Captain 01234567"},
		{"multibyte id not split mid-rune", "日本語のプレイヤー名", "Captain 日本語のプレイヤ"},
		{"empty id", "", "Captain "},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Fallback(tc.playerID)
			if got != tc.want {
				t.Fatalf("Fallback(%q) = %q, want %q", tc.playerID, got, tc.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("Fallback(%q) produced invalid UTF-8 %q", tc.playerID, got)
			}
		})
	}
}
