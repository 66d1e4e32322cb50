package blend

import (
	"fmt"
	"strconv"
	"strings"
)

// lerpHexColor interpolates two "#rrggbb" colors per RGB channel. If either
// string does not parse as a hex color, it falls back to the categorical
// choice.
func lerpHexColor(a, b string, t float64, fallback string) string {
	ar, ag, ab, okA := parseHex(a)
	br, bg, bb, okB := parseHex(b)
	if !okA || !okB {
		return fallback
	}
	r := int(lerp(float64(ar), float64(br), t) + 0.5)
	g := int(lerp(float64(ag), float64(bg), t) + 0.5)
	bl := int(lerp(float64(ab), float64(bb), t) + 0.5)
	return fmt.Sprintf("#%02x%02x%02x", r, g, bl)
}

func parseHex(s string) (r, g, b int, ok bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseUint(s[0:2], 16, 8)
	gv, err2 := strconv.ParseUint(s[2:4], 16, 8)
	bv, err3 := strconv.ParseUint(s[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}
