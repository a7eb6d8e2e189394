package fileicon

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/malonaz/fileicon/go/csscolor"
)

//go:embed styles.yaml
var defaultStylesYAML []byte

var defaultStyles = mustLoadStyles(defaultStylesYAML)

// Style overlays Options for one extension. Nil fields keep the underlying value.
type Style struct {
	Color           *string  `yaml:"color,omitempty"`
	Fold            *bool    `yaml:"fold,omitempty"`
	FoldColor       *string  `yaml:"foldColor,omitempty"`
	GlyphColor      *string  `yaml:"glyphColor,omitempty"`
	GradientColor   *string  `yaml:"gradientColor,omitempty"`
	GradientOpacity *float64 `yaml:"gradientOpacity,omitempty"`
	LabelColor      *string  `yaml:"labelColor,omitempty"`
	LabelTextColor  *string  `yaml:"labelTextColor,omitempty"`
	LabelUppercase  *bool    `yaml:"labelUppercase,omitempty"`
	Radius          *float64 `yaml:"radius,omitempty"`
	Type            *Type    `yaml:"type,omitempty"`
}

// Apply overlays s onto opts.
func (s *Style) Apply(opts *Options) {
	setIfNotNil(&opts.Color, s.Color)
	setIfNotNil(&opts.Fold, s.Fold)
	setIfNotNil(&opts.FoldColor, s.FoldColor)
	setIfNotNil(&opts.GlyphColor, s.GlyphColor)
	setIfNotNil(&opts.GradientColor, s.GradientColor)
	setIfNotNil(&opts.GradientOpacity, s.GradientOpacity)
	setIfNotNil(&opts.LabelColor, s.LabelColor)
	setIfNotNil(&opts.LabelTextColor, s.LabelTextColor)
	setIfNotNil(&opts.LabelUppercase, s.LabelUppercase)
	setIfNotNil(&opts.Radius, s.Radius)
	setIfNotNil(&opts.Type, s.Type)
}

// Clone returns a deep copy of s.
func (s *Style) Clone() *Style {
	return &Style{
		Color:           clonePointer(s.Color),
		Fold:            clonePointer(s.Fold),
		FoldColor:       clonePointer(s.FoldColor),
		GlyphColor:      clonePointer(s.GlyphColor),
		GradientColor:   clonePointer(s.GradientColor),
		GradientOpacity: clonePointer(s.GradientOpacity),
		LabelColor:      clonePointer(s.LabelColor),
		LabelTextColor:  clonePointer(s.LabelTextColor),
		LabelUppercase:  clonePointer(s.LabelUppercase),
		Radius:          clonePointer(s.Radius),
		Type:            clonePointer(s.Type),
	}
}

func clonePointer[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func setIfNotNil[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// Validate checks that the style's colors parse and its type is recognized.
func (s *Style) Validate() error {
	var result *multierror.Error
	colors := []struct {
		name  string
		value *string
	}{
		{"color", s.Color},
		{"foldColor", s.FoldColor},
		{"glyphColor", s.GlyphColor},
		{"gradientColor", s.GradientColor},
		{"labelColor", s.LabelColor},
		{"labelTextColor", s.LabelTextColor},
	}
	for _, color := range colors {
		if color.value == nil {
			continue
		}
		if _, err := csscolor.Parse(*color.value); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", color.name, err))
		}
	}
	if s.Type != nil && !s.Type.Valid() {
		result = multierror.Append(result, fmt.Errorf("type: unknown type %q", *s.Type))
	}
	return result.ErrorOrNil()
}

// Styles maps lower-case extensions to their style.
type Styles map[string]*Style

// DefaultStyles returns a deep copy of the built-in styles.
func DefaultStyles() Styles {
	return defaultStyles.Clone()
}

// LoadStyles decodes and validates YAML styles. Unknown keys are rejected.
func LoadStyles(r io.Reader) (Styles, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	raw := map[string]*Style{}
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding styles: %w", err)
	}
	styles := make(Styles, len(raw))
	for extension, style := range raw {
		if style == nil {
			style = &Style{}
		}
		styles[normalizeExtension(extension)] = style
	}
	if err := styles.Validate(); err != nil {
		return nil, fmt.Errorf("validating styles: %w", err)
	}
	return styles, nil
}

func mustLoadStyles(b []byte) Styles {
	styles, err := LoadStyles(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}
	return styles
}

// Validate validates every style, reporting all problems at once.
func (s Styles) Validate() error {
	var result *multierror.Error
	for _, extension := range s.Extensions() {
		if err := s[extension].Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("style %q: %w", extension, err))
		}
	}
	return result.ErrorOrNil()
}

// Clone returns a deep copy of s.
func (s Styles) Clone() Styles {
	clone := make(Styles, len(s))
	for extension, style := range s {
		clone[extension] = style.Clone()
	}
	return clone
}

// Extensions returns the styled extensions, sorted.
func (s Styles) Extensions() []string {
	return slices.Sorted(maps.Keys(s))
}

// Lookup returns the style of extension. Matching ignores case and a leading dot.
func (s Styles) Lookup(extension string) (*Style, bool) {
	style, ok := s[normalizeExtension(extension)]
	return style, ok
}

// Options returns DefaultOptions labelled with extension and overlaid with its style, if any.
func (s Styles) Options(extension string) *Options {
	extension = strings.TrimPrefix(extension, ".")
	opts := DefaultOptions().WithExtension(extension)
	if style, ok := s.Lookup(extension); ok {
		style.Apply(opts)
	}
	return opts
}

func normalizeExtension(extension string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
}
