// Package csscolor parses CSS color strings and applies HSL adjustments to them,
// formatting the result back in the notation the caller used.
package csscolor

import (
	"fmt"
	"image/color"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Format is the notation a color was written in.
type Format int

const (
	// FormatInvalid marks a color that could not be parsed.
	FormatInvalid Format = iota
	FormatName
	FormatHex
	FormatHex8
	FormatRGB
	FormatPercentRGB
	FormatHSL
)

// Color is a parsed CSS color.
type Color struct {
	colorful.Color
	// Alpha in [0, 1].
	Alpha  float64
	Format Format
}

var (
	black = Color{Alpha: 1}

	// First name wins when several names share a value (gray / grey, aqua / cyan).
	hexToName = func() map[string]string {
		m := make(map[string]string, len(colornames.Names))
		for _, name := range colornames.Names {
			c := colornames.Map[name]
			hex := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
			if _, ok := m[hex]; !ok {
				m[hex] = name
			}
		}
		return m
	}()
)

// Parse parses a CSS color string.
func Parse(s string) (Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return black, fmt.Errorf("empty color")
	}
	if s == "transparent" {
		return Color{Format: FormatName}, nil
	}
	if c, ok := colornames.Map[s]; ok {
		return Color{
			Color:  colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255},
			Alpha:  1,
			Format: FormatName,
		}, nil
	}
	if open := strings.IndexByte(s, '('); open > 0 && strings.HasSuffix(s, ")") {
		return parseFunctional(s[:open], s[open+1:len(s)-1])
	}
	return parseHex(strings.TrimPrefix(s, "#"))
}

func parseHex(s string) (Color, error) {
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return black, fmt.Errorf("invalid hex color %q", s)
		}
	}
	switch len(s) {
	case 3, 4:
		expanded := make([]byte, 0, 2*len(s))
		for i := 0; i < len(s); i++ {
			expanded = append(expanded, s[i], s[i])
		}
		c, err := parseHex(string(expanded))
		if err != nil {
			return black, err
		}
		if len(s) == 3 {
			c.Format = FormatHex
		}
		return c, nil
	case 6:
		c, err := colorful.Hex("#" + s)
		if err != nil {
			return black, fmt.Errorf("parsing hex color: %w", err)
		}
		return Color{Color: c, Alpha: 1, Format: FormatHex}, nil
	case 8:
		c, err := colorful.Hex("#" + s[:6])
		if err != nil {
			return black, fmt.Errorf("parsing hex color: %w", err)
		}
		a, err := strconv.ParseUint(s[6:], 16, 8)
		if err != nil {
			return black, fmt.Errorf("parsing hex alpha: %w", err)
		}
		return Color{Color: c, Alpha: float64(a) / 255, Format: FormatHex8}, nil
	default:
		return black, fmt.Errorf("invalid hex color length %d", len(s))
	}
}

func parseFunctional(name, body string) (Color, error) {
	fields := strings.FieldsFunc(body, func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(fields) != 3 && len(fields) != 4 {
		return black, fmt.Errorf("%s() takes 3 or 4 components, got %d", name, len(fields))
	}
	alpha := 1.0
	if len(fields) == 4 {
		a, err := parseComponent(fields[3], 1)
		if err != nil {
			return black, fmt.Errorf("parsing alpha: %w", err)
		}
		alpha = clamp01(a)
	}

	switch name {
	case "rgb", "rgba":
		var rgb [3]float64
		for i := range rgb {
			v, err := parseComponent(fields[i], 255)
			if err != nil {
				return black, fmt.Errorf("parsing %s component %d: %w", name, i, err)
			}
			rgb[i] = clamp01(v / 255)
		}
		format := FormatRGB
		if strings.HasSuffix(fields[0], "%") {
			format = FormatPercentRGB
		}
		return Color{Color: colorful.Color{R: rgb[0], G: rgb[1], B: rgb[2]}, Alpha: alpha, Format: format}, nil

	case "hsl", "hsla":
		h, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "deg"), 64)
		if err != nil {
			return black, fmt.Errorf("parsing hue: %w", err)
		}
		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		sat, err := parseComponent(fields[1], 1)
		if err != nil {
			return black, fmt.Errorf("parsing saturation: %w", err)
		}
		light, err := parseComponent(fields[2], 1)
		if err != nil {
			return black, fmt.Errorf("parsing lightness: %w", err)
		}
		return Color{Color: colorful.Hsl(h, clamp01(sat), clamp01(light)), Alpha: alpha, Format: FormatHSL}, nil

	default:
		return black, fmt.Errorf("unsupported color function %q", name)
	}
}

// parseComponent parses a number or a percentage of scale.
func parseComponent(s string, scale float64) (float64, error) {
	if p, ok := strings.CutSuffix(s, "%"); ok {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, err
		}
		return v / 100 * scale, nil
	}
	return strconv.ParseFloat(s, 64)
}

// Darken returns c with its HSL lightness reduced by amount percent.
func (c Color) Darken(amount float64) Color {
	h, s, l := c.Hsl()
	l = clamp01(l - amount/100)
	c.Color = colorful.Hsl(h, s, l).Clamped()
	return c
}

// NRGBA converts c, alpha included, for drawing onto images.
func (c Color) NRGBA() color.NRGBA {
	r, g, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: uint8(math.Round(clamp01(c.Alpha) * 255))}
}

// Name returns the CSS name of c, if it has one.
func (c Color) Name() (string, bool) {
	if c.Alpha == 0 {
		return "transparent", true
	}
	if c.Alpha < 1 {
		return "", false
	}
	name, ok := hexToName[c.Hex()]
	return name, ok
}

// String formats c in the notation it was parsed from.
func (c Color) String() string {
	switch c.Format {
	case FormatName:
		if name, ok := c.Name(); ok {
			return name
		}
		if c.Alpha < 1 {
			return c.rgbString()
		}
		return c.Hex()
	case FormatHex, FormatHex8:
		if c.Alpha < 1 {
			return c.rgbString()
		}
		if c.Format == FormatHex8 {
			return fmt.Sprintf("%s%02x", c.Hex(), uint8(math.Round(c.Alpha*255)))
		}
		// Three digit input is written back with six digits.
		return c.Hex()
	case FormatRGB:
		return c.rgbString()
	case FormatPercentRGB:
		r, g, b := math.Round(c.R*100), math.Round(c.G*100), math.Round(c.B*100)
		if c.Alpha == 1 {
			return fmt.Sprintf("rgb(%g%%, %g%%, %g%%)", r, g, b)
		}
		return fmt.Sprintf("rgba(%g%%, %g%%, %g%%, %s)", r, g, b, formatAlpha(c.Alpha))
	case FormatHSL:
		h, s, l := c.Hsl()
		h, s, l = math.Round(h), math.Round(s*100), math.Round(l*100)
		if c.Alpha == 1 {
			return fmt.Sprintf("hsl(%g, %g%%, %g%%)", h, s, l)
		}
		return fmt.Sprintf("hsla(%g, %g%%, %g%%, %s)", h, s, l, formatAlpha(c.Alpha))
	default:
		return c.Hex()
	}
}

func (c Color) rgbString() string {
	r, g, b := math.Round(c.R*255), math.Round(c.G*255), math.Round(c.B*255)
	if c.Alpha == 1 {
		return fmt.Sprintf("rgb(%g, %g, %g)", r, g, b)
	}
	return fmt.Sprintf("rgba(%g, %g, %g, %s)", r, g, b, formatAlpha(c.Alpha))
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(math.Round(a*100)/100, 'f', -1, 64)
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Darken parses s, reduces its lightness by amount percent and formats it back.
// Unparseable input is treated as opaque black.
func Darken(s string, amount float64) string {
	c, err := Parse(s)
	if err != nil {
		c = black
	}
	return c.Darken(amount).String()
}

// Valid reports whether s parses as a CSS color.
func Valid(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Names returns every recognized color name, sorted.
func Names() []string {
	names := make([]string, 0, len(colornames.Names)+1)
	names = append(names, colornames.Names...)
	names = append(names, "transparent")
	sort.Strings(names)
	return names
}
