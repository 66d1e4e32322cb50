package blend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLerpHexColor(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		t        float64
		fallback string
		want     string
	}{
		{"endpoint t=0", "#000000", "#ffffff", 0, "x", "#000000"},
		{"endpoint t=1", "#000000", "#ffffff", 1, "x", "#ffffff"},
		{"midpoint rounds up", "#000000", "#ffffff", 0.5, "x", "#808080"},
		{"per-channel blend", "#ff0000", "#0000ff", 0.5, "x", "#800080"},
		{"missing hash still parses", "102030", "#102030", 0.5, "x", "#102030"},
		{"bad left operand falls back", "red", "#ffffff", 0.5, "#ffffff", "#ffffff"},
		{"bad right operand falls back", "#000000", "", 0.5, "#000000", "#000000"},
		{"short hex falls back", "#fff", "#ffffff", 0.5, "#fff", "#fff"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, lerpHexColor(tc.a, tc.b, tc.t, tc.fallback))
		})
	}
}

func TestParseHex(t *testing.T) {
	r, g, b, ok := parseHex("#1d4ed8")
	assert.True(t, ok)
	assert.Equal(t, 0x1d, r)
	assert.Equal(t, 0x4e, g)
	assert.Equal(t, 0xd8, b)

	_, _, _, ok = parseHex("#zzzzzz")
	assert.False(t, ok)
}
