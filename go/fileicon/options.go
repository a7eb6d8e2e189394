package fileicon

import (
	"cmp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/malonaz/fileicon/go/csscolor"
)

const (
	DefaultColor           = "whitesmoke"
	DefaultGradientColor   = "white"
	DefaultGradientOpacity = 0.25
	DefaultLabelTextColor  = "white"
	DefaultRadius          = 4

	foldDarken  = 10
	glyphDarken = 15
	labelDarken = 30
)

// Options controls a single render. Obtain one with DefaultOptions.
// Numeric fields are emitted as given, without clamping. Empty Color, GradientColor and LabelTextColor
// render with their defaults; other zero values (no fold, square corners) are taken as given.
type Options struct {
	// Color of the page.
	Color string `yaml:"color"`
	// Extension is the label text. Nil means no label; an empty string draws an empty label band.
	Extension *string `yaml:"extension"`
	// Fold draws the folded corner.
	Fold bool `yaml:"fold"`
	// FoldColor defaults to Color darkened by 10%.
	FoldColor string `yaml:"foldColor"`
	// GlyphColor defaults to Color darkened by 15%.
	GlyphColor      string  `yaml:"glyphColor"`
	GradientColor   string  `yaml:"gradientColor"`
	GradientOpacity float64 `yaml:"gradientOpacity"`
	// LabelColor defaults to Color darkened by 30%.
	LabelColor     string `yaml:"labelColor"`
	LabelTextColor string `yaml:"labelTextColor"`
	LabelUppercase bool   `yaml:"labelUppercase"`
	// Radius of the page corners.
	Radius float64 `yaml:"radius"`
	// Type selects the glyph. Empty or unrecognized types draw no glyph.
	Type Type `yaml:"type"`
}

// DefaultOptions returns the options of a plain whitesmoke page with a fold, no label and no glyph.
func DefaultOptions() *Options {
	return &Options{
		Color:           DefaultColor,
		Fold:            true,
		GradientColor:   DefaultGradientColor,
		GradientOpacity: DefaultGradientOpacity,
		LabelTextColor:  DefaultLabelTextColor,
		LabelUppercase:  false,
		Radius:          DefaultRadius,
	}
}

// WithExtension returns a copy of o labelled with extension.
func (o *Options) WithExtension(extension string) *Options {
	clone := o.Clone()
	clone.Extension = &extension
	return clone
}

// Clone returns a deep copy of o.
func (o *Options) Clone() *Options {
	clone := *o
	if o.Extension != nil {
		extension := *o.Extension
		clone.Extension = &extension
	}
	return &clone
}

// WithColorDefaults returns a copy of o whose empty Color, GradientColor and LabelTextColor are set to their defaults.
func (o *Options) WithColorDefaults() *Options {
	clone := o.Clone()
	clone.Color = cmp.Or(clone.Color, DefaultColor)
	clone.GradientColor = cmp.Or(clone.GradientColor, DefaultGradientColor)
	clone.LabelTextColor = cmp.Or(clone.LabelTextColor, DefaultLabelTextColor)
	return clone
}

// String returns a pointer to s, for use with Options.Extension.
func String(s string) *string { return &s }

// EffectiveFoldColor returns FoldColor, or Color darkened by 10% when it is empty.
func (o *Options) EffectiveFoldColor() string { return orDarken(o.FoldColor, o.Color, foldDarken) }

// EffectiveGlyphColor returns GlyphColor, or Color darkened by 15% when it is empty.
func (o *Options) EffectiveGlyphColor() string { return orDarken(o.GlyphColor, o.Color, glyphDarken) }

// EffectiveLabelColor returns LabelColor, or Color darkened by 30% when it is empty.
func (o *Options) EffectiveLabelColor() string { return orDarken(o.LabelColor, o.Color, labelDarken) }

// LabelText returns the label content, upper-cased when LabelUppercase is set.
// It reports false when the icon has no label.
func (o *Options) LabelText() (string, bool) {
	if o.Extension == nil {
		return "", false
	}
	if o.LabelUppercase {
		// Casers keep state and cannot be shared between goroutines.
		return cases.Upper(language.Und).String(*o.Extension), true
	}
	return *o.Extension, true
}

func orDarken(override, base string, amount float64) string {
	if override != "" {
		return override
	}
	return csscolor.Darken(base, amount)
}
