package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "plain words", input: "Printer Problems", want: "printer-problems"},
		{name: "accents stripped", input: "Café Réseau", want: "cafe-reseau"},
		{name: "punctuation collapses", input: "VPN -- access / remote!", want: "vpn-access-remote"},
		{name: "leading separators dropped", input: "  __Billing", want: "billing"},
		{name: "truncated without trailing hyphen", input: "abcd efgh", maxLen: 5, want: "abcd"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.input, tt.maxLen))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héll", Truncate("héllo", 4))
	assert.Equal(t, "short", Truncate("short", 300))
	assert.Equal(t, "", Truncate("abc", 0))
}
