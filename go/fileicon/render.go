// Package fileicon renders stylized file-type icons as SVG.
//
// An icon is a page with rounded corners, an optional folded corner, an optional label band
// carrying the file extension and an optional glyph depicting the file type. Fold, label and
// glyph colors are derived from the page color unless overridden.
package fileicon

import (
	"fmt"
	"log/slog"
)

const (
	// Width of the canvas.
	Width = 40
	// Height of the canvas.
	Height = 48
	// FoldHeight is the height of the notch cut by the folded corner.
	FoldHeight = 12
	// LabelHeight is the height of the label band, anchored to the bottom of the canvas.
	LabelHeight = 14

	// LabelFontSize is the font size of the label text.
	LabelFontSize = 9
	// LabelBaseline is the baseline of the label text, relative to the top of the label band.
	LabelBaseline = 10

	xOffset = 0

	labelFontFamily = "-apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif"

	// Glyphs are authored on a 48 unit wide frame.
	glyphXOffset = -4
	// Without a label band the glyph moves down to the center of the page.
	glyphUnlabelledYOffset = 6
)

// GlyphOffset returns the translation applied to glyph artwork.
func GlyphOffset(labelled bool) (x, y float64) {
	if labelled {
		return glyphXOffset, 0
	}
	return glyphXOffset, glyphUnlabelledYOffset
}

// Renderer renders icons.
type Renderer struct {
	log    *slog.Logger
	ids    IDSource
	glyphs *GlyphTable
}

// NewRenderer returns a renderer using the process-wide id counter and the built-in glyphs.
func NewRenderer() *Renderer {
	return &Renderer{
		log:    slog.Default(),
		ids:    processIDSource,
		glyphs: DefaultGlyphs(),
	}
}

// WithIDSource sets the source of scoping identifiers.
func (r *Renderer) WithIDSource(ids IDSource) *Renderer {
	r.ids = ids
	return r
}

// WithGlyphs sets the glyph table.
func (r *Renderer) WithGlyphs(glyphs *GlyphTable) *Renderer {
	r.glyphs = glyphs
	return r
}

// WithLogger sets the logger.
func (r *Renderer) WithLogger(logger *slog.Logger) *Renderer {
	r.log = logger
	return r
}

// Render renders an icon with a default renderer. See Renderer.Render.
func Render(opts *Options) *Document {
	return NewRenderer().Render(opts)
}

// Render renders an icon. A nil opts renders with DefaultOptions, and empty colors of a partly filled
// Options render with their defaults (see Options.WithColorDefaults). opts is not modified.
func (r *Renderer) Render(opts *Options) *Document {
	if opts == nil {
		opts = DefaultOptions()
	}
	opts = opts.WithColorDefaults()
	id := r.ids.NextID()
	pageRadiusID := "pageRadius" + id
	foldCropID := "foldCrop" + id
	pageGradientID := "pageGradient" + id
	pageRadiusURL := url(pageRadiusID)

	doc := &Document{
		ID:     id,
		Width:  Width,
		Height: Height,
		Defs: []Element{
			&ClipPath{
				ID: pageRadiusID,
				Children: []Element{
					&Rect{X: xOffset, Y: 0, Width: Width, Height: Height, RX: opts.Radius, RY: opts.Radius},
				},
			},
			&ClipPath{
				ID: foldCropID,
				Children: []Element{
					&Rect{Width: Width, Height: FoldHeight, Transform: fmt.Sprintf("rotate(-45 0 %d)", FoldHeight)},
				},
			},
			&LinearGradient{
				ID: pageGradientID,
				X1: 100, Y1: 0, X2: 0, Y2: 100,
				Stops: []GradientStop{
					{Offset: 0, Color: opts.GradientColor, Opacity: opts.GradientOpacity},
					{Offset: 66.67, Color: opts.GradientColor, Opacity: 0},
				},
			},
		},
	}

	page := &Group{ID: "file" + id, ClipPath: pageRadiusURL}
	if opts.Fold {
		d := fmt.Sprintf("M%d 0 h %d L %d %d v %d H %d Z", xOffset, Width-FoldHeight, Width+xOffset, FoldHeight, Height-FoldHeight, xOffset)
		page.Children = []Element{
			&Path{D: d, Fill: opts.Color},
			&Path{D: d, Fill: url(pageGradientID)},
		}
	} else {
		page.Children = []Element{
			&Rect{X: xOffset, Y: 0, Width: Width, Height: Height, Fill: opts.Color},
			&Rect{X: xOffset, Y: 0, Width: Width, Height: Height, Fill: url(pageGradientID)},
		}
	}
	doc.Body = append(doc.Body, page)

	if opts.Fold {
		doc.Body = append(doc.Body, &Group{
			ID:        "fold" + id,
			Transform: fmt.Sprintf("translate(%d %d) rotate(-90)", Width-FoldHeight, FoldHeight),
			Children: []Element{
				&Rect{
					Width:    Width,
					Height:   Height,
					RX:       opts.Radius,
					RY:       opts.Radius,
					Fill:     opts.EffectiveFoldColor(),
					ClipPath: url(foldCropID),
				},
			},
		})
	}

	if content, ok := opts.LabelText(); ok {
		textTransform := "none"
		if opts.LabelUppercase {
			textTransform = "uppercase"
		}
		doc.Body = append(doc.Body,
			&Group{
				ID: "label" + id,
				Children: []Element{
					&Rect{
						X:        xOffset,
						Y:        Height - LabelHeight,
						Width:    Width,
						Height:   LabelHeight,
						Fill:     opts.EffectiveLabelColor(),
						ClipPath: pageRadiusURL,
					},
				},
			},
			&Group{
				ID:        "labelText" + id,
				Transform: fmt.Sprintf("translate(%d %d)", xOffset, Height-LabelHeight),
				Children: []Element{
					&Text{
						X:          Width / 2,
						Y:          LabelBaseline,
						Content:    content,
						FontFamily: labelFontFamily,
						FontSize:   LabelFontSize,
						Fill:       opts.LabelTextColor,
						TextAnchor: "middle",
						Style: "font-weight:bold;text-align:center;pointer-events:none;" +
							"text-transform:" + textTransform + ";user-select:none",
					},
				},
			},
		)
	}

	if opts.Type != "" {
		if glyph, ok := r.glyphs.Lookup(opts.Type); ok {
			x, y := GlyphOffset(opts.Extension != nil)
			group := &Group{
				ID:        "glyph" + id,
				Transform: fmt.Sprintf("translate(%s %s)", formatNumber(x), formatNumber(y)),
				Fill:      opts.EffectiveGlyphColor(),
			}
			for _, p := range glyph.Paths {
				path := &Path{D: p.D}
				if p.EvenOdd {
					path.FillRule = "evenodd"
				}
				group.Children = append(group.Children, path)
			}
			doc.Body = append(doc.Body, group)
		} else {
			r.log.Debug("no glyph for type", "type", opts.Type)
		}
	}

	return doc
}

func url(id string) string { return "url(#" + id + ")" }
