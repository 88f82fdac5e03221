// Package contrast implements the WCAG relative-luminance and contrast-ratio
// formulas over CSS colour strings.
package contrast

import (
	"math"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	// MinimumAA is the WCAG AA contrast threshold for normal-size text.
	MinimumAA = 4.5
	// FallbackRatio is returned when either colour cannot be parsed, so that
	// incomplete style resolution never produces a finding.
	FallbackRatio = 4.5
)

// Color is an sRGB colour with channels in [0,1].
type Color struct {
	R, G, B float64
	A       float64
}

// Transparent reports whether the colour contributes nothing when painted.
func (c Color) Transparent() bool { return c.A == 0 }

// Opaque reports whether the colour hides whatever is painted below it.
func (c Color) Opaque() bool { return c.A >= 1 }

var named = map[string]string{
	"black":   "#000000",
	"silver":  "#c0c0c0",
	"gray":    "#808080",
	"grey":    "#808080",
	"white":   "#ffffff",
	"maroon":  "#800000",
	"red":     "#ff0000",
	"purple":  "#800080",
	"fuchsia": "#ff00ff",
	"magenta": "#ff00ff",
	"green":   "#008000",
	"lime":    "#00ff00",
	"olive":   "#808000",
	"yellow":  "#ffff00",
	"navy":    "#000080",
	"blue":    "#0000ff",
	"teal":    "#008080",
	"aqua":    "#00ffff",
	"cyan":    "#00ffff",
	"orange":  "#ffa500",
}

// Parse reads a hex (#rgb, #rgba, #rrggbb, #rrggbbaa), rgb()/rgba() or basic
// named colour. The second result is false for anything else.
func Parse(s string) (Color, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Color{}, false
	}
	if s == "transparent" {
		return Color{}, true
	}
	if hex, ok := named[s]; ok {
		s = hex
	}
	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s)
	case strings.HasPrefix(s, "rgb(") || strings.HasPrefix(s, "rgba("):
		return parseFunc(s)
	default:
		return Color{}, false
	}
}

func parseHex(s string) (Color, bool) {
	alpha := 1.0
	switch len(s) {
	case 5:
		a, err := strconv.ParseUint(s[4:5], 16, 8)
		if err != nil {
			return Color{}, false
		}
		alpha = float64(a) / 15
		s = s[:4]
	case 9:
		a, err := strconv.ParseUint(s[7:9], 16, 8)
		if err != nil {
			return Color{}, false
		}
		alpha = float64(a) / 255
		s = s[:7]
	case 4, 7:
	default:
		return Color{}, false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return Color{}, false
		}
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, false
	}
	return Color{R: c.R, G: c.G, B: c.B, A: alpha}, true
}

// parseFunc handles both the legacy comma syntax and the space/slash syntax.
func parseFunc(s string) (Color, bool) {
	open := strings.IndexByte(s, '(')
	if !strings.HasSuffix(s, ")") {
		return Color{}, false
	}
	body := s[open+1 : len(s)-1]
	fields := strings.FieldsFunc(body, func(r rune) bool {
		return r == ',' || r == ' ' || r == '/' || r == '\t'
	})
	if len(fields) != 3 && len(fields) != 4 {
		return Color{}, false
	}

	var ch [3]float64
	for i := 0; i < 3; i++ {
		v, ok := parseChannel(fields[i])
		if !ok {
			return Color{}, false
		}
		ch[i] = v
	}
	alpha := 1.0
	if len(fields) == 4 {
		a, ok := parseAlpha(fields[3])
		if !ok {
			return Color{}, false
		}
		alpha = a
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: alpha}, true
}

func parseChannel(f string) (float64, bool) {
	if strings.HasSuffix(f, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp(v / 100), true
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v / 255), true
}

func parseAlpha(f string) (float64, bool) {
	if strings.HasSuffix(f, "%") {
		v, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return 0, false
		}
		return clamp(v / 100), true
	}
	v, err := strconv.ParseFloat(f, 64)
	if err != nil {
		return 0, false
	}
	return clamp(v), true
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// RelativeLuminance applies the WCAG 2.x formula to an sRGB colour.
func RelativeLuminance(c Color) float64 {
	lin := func(v float64) float64 {
		if v <= 0.03928 {
			return v / 12.92
		}
		return math.Pow((v+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// RatioOf returns (Lmax + 0.05) / (Lmin + 0.05). It is symmetric.
func RatioOf(a, b Color) float64 {
	la, lb := RelativeLuminance(a), RelativeLuminance(b)
	lighter, darker := math.Max(la, lb), math.Min(la, lb)
	return (lighter + 0.05) / (darker + 0.05)
}

// Ratio computes the contrast ratio between two colour strings. Unparseable
// or translucent input yields FallbackRatio: the colour actually seen depends
// on what is painted below it.
func Ratio(background, foreground string) float64 {
	bg, ok := Parse(background)
	if !ok || !bg.Opaque() {
		return FallbackRatio
	}
	fg, ok := Parse(foreground)
	if !ok || !fg.Opaque() {
		return FallbackRatio
	}
	return RatioOf(bg, fg)
}

// Passes reports whether the ratio meets the AA normal-text threshold.
func Passes(ratio float64) bool { return ratio >= MinimumAA }
