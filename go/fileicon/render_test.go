package fileicon

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/malonaz/fileicon/go/csscolor"
)

// fixedIDSource returns its ids in order, then repeats the last one.
type fixedIDSource struct {
	mutex sync.Mutex
	ids   []string
}

func (s *fixedIDSource) NextID() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	id := s.ids[0]
	if len(s.ids) > 1 {
		s.ids = s.ids[1:]
	}
	return id
}

func newTestRenderer(ids ...string) *Renderer {
	return NewRenderer().WithIDSource(&fixedIDSource{ids: ids})
}

func mustFind[T Element](t *testing.T, doc *Document, id string) T {
	t.Helper()
	element, ok := doc.Find(id)
	require.True(t, ok, "element %q not found", id)
	typed, ok := element.(T)
	require.True(t, ok, "element %q has type %T", id, element)
	return typed
}

func requireAbsent(t *testing.T, doc *Document, id string) {
	t.Helper()
	_, ok := doc.Find(id)
	require.False(t, ok, "element %q should not be present", id)
}

func labelText(t *testing.T, doc *Document) *Text {
	t.Helper()
	group := mustFind[*Group](t, doc, "labelText"+doc.ID)
	require.Len(t, group.Children, 1)
	text, ok := group.Children[0].(*Text)
	require.True(t, ok)
	return text
}

func TestRenderDefaults(t *testing.T) {
	doc := newTestRenderer("x").Render(nil)
	require.Equal(t, "x", doc.ID)
	require.Equal(t, float64(Width), doc.Width)
	require.Equal(t, float64(Height), doc.Height)

	clip := mustFind[*ClipPath](t, doc, "pageRadiusx")
	require.Len(t, clip.Children, 1)
	require.Equal(t, &Rect{Width: 40, Height: 48, RX: 4, RY: 4}, clip.Children[0])

	gradient := mustFind[*LinearGradient](t, doc, "pageGradientx")
	require.Equal(t, []GradientStop{
		{Offset: 0, Color: "white", Opacity: 0.25},
		{Offset: 66.67, Color: "white", Opacity: 0},
	}, gradient.Stops)

	page := mustFind[*Group](t, doc, "filex")
	require.Equal(t, "url(#pageRadiusx)", page.ClipPath)
	require.Equal(t, []Element{
		&Path{D: "M0 0 h 28 L 40 12 v 36 H 0 Z", Fill: "whitesmoke"},
		&Path{D: "M0 0 h 28 L 40 12 v 36 H 0 Z", Fill: "url(#pageGradientx)"},
	}, page.Children)

	fold := mustFind[*Group](t, doc, "foldx")
	require.Equal(t, "translate(28 12) rotate(-90)", fold.Transform)
	require.Equal(t, []Element{
		&Rect{
			Width:    40,
			Height:   48,
			RX:       4,
			RY:       4,
			Fill:     csscolor.Darken("whitesmoke", 10),
			ClipPath: "url(#foldCropx)",
		},
	}, fold.Children)

	requireAbsent(t, doc, "labelx")
	requireAbsent(t, doc, "labelTextx")
	requireAbsent(t, doc, "glyphx")
}

func TestRenderWithoutFold(t *testing.T) {
	opts := DefaultOptions()
	opts.Fold = false
	doc := newTestRenderer("x").Render(opts)

	page := mustFind[*Group](t, doc, "filex")
	require.Equal(t, []Element{
		&Rect{Width: 40, Height: 48, Fill: "whitesmoke"},
		&Rect{Width: 40, Height: 48, Fill: "url(#pageGradientx)"},
	}, page.Children)
	requireAbsent(t, doc, "foldx")
	require.NotContains(t, doc.String(), "rotate(-90)")
}

func TestRenderLabel(t *testing.T) {
	tests := []struct {
		name          string
		extension     string
		uppercase     bool
		wantContent   string
		wantTransform string
	}{
		{"lowercase", "pdf", false, "pdf", "text-transform:none"},
		{"uppercase", "pdf", true, "PDF", "text-transform:uppercase"},
		{"empty label still draws the band", "", false, "", "text-transform:none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions().WithExtension(tt.extension)
			opts.LabelUppercase = tt.uppercase
			doc := newTestRenderer("x").Render(opts)

			mustFind[*Group](t, doc, "foldx")
			band := mustFind[*Group](t, doc, "labelx")
			require.Equal(t, []Element{
				&Rect{
					Y:        34,
					Width:    40,
					Height:   14,
					Fill:     csscolor.Darken("whitesmoke", 30),
					ClipPath: "url(#pageRadiusx)",
				},
			}, band.Children)

			require.Equal(t, "translate(0 34)", mustFind[*Group](t, doc, "labelTextx").Transform)
			text := labelText(t, doc)
			require.Equal(t, tt.wantContent, text.Content)
			require.Equal(t, float64(20), text.X)
			require.Equal(t, float64(10), text.Y)
			require.Equal(t, float64(9), text.FontSize)
			require.Equal(t, "white", text.Fill)
			require.Equal(t, "middle", text.TextAnchor)
			require.Contains(t, text.Style, "font-weight:bold")
			require.Contains(t, text.Style, "pointer-events:none")
			require.Contains(t, text.Style, "user-select:none")
			require.Contains(t, text.Style, tt.wantTransform)
		})
	}
}

func TestRenderGlyph(t *testing.T) {
	audio, ok := DefaultGlyphs().Lookup(TypeAudio)
	require.True(t, ok)

	tests := []struct {
		name          string
		extension     *string
		wantTransform string
	}{
		{"without label the glyph moves down", nil, "translate(-4 6)"},
		{"with label", String("mp3"), "translate(-4 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Type = TypeAudio
			opts.Extension = tt.extension
			doc := newTestRenderer("x").Render(opts)

			glyph := mustFind[*Group](t, doc, "glyphx")
			require.Equal(t, tt.wantTransform, glyph.Transform)
			require.Equal(t, csscolor.Darken("whitesmoke", 15), glyph.Fill)
			require.Len(t, glyph.Children, len(audio.Paths))
			for i, child := range glyph.Children {
				require.Equal(t, audio.Paths[i].D, child.(*Path).D)
			}
		})
	}
}

func TestRenderUnknownType(t *testing.T) {
	opts := DefaultOptions()
	opts.Type = Type("unknown-tag")
	var doc *Document
	require.NotPanics(t, func() { doc = newTestRenderer("x").Render(opts) })
	requireAbsent(t, doc, "glyphx")
}

func TestRenderGlyphMissingFromTable(t *testing.T) {
	opts := DefaultOptions()
	opts.Type = TypeVideo
	doc := newTestRenderer("x").WithGlyphs(NewGlyphTable(nil)).Render(opts)
	requireAbsent(t, doc, "glyphx")
}

func TestRenderDerivedColors(t *testing.T) {
	tests := []struct {
		name       string
		modify     func(*Options)
		wantFold   string
		wantLabel  string
		wantGlyph  string
		wantGround string
	}{
		{
			name:       "black stays black",
			modify:     func(o *Options) { o.Color = "#000000" },
			wantFold:   "#000000",
			wantLabel:  "#000000",
			wantGlyph:  "#000000",
			wantGround: "#000000",
		},
		{
			name:       "derived from red",
			modify:     func(o *Options) { o.Color = "#ff0000" },
			wantFold:   "#cc0000",
			wantLabel:  "#660000",
			wantGlyph:  csscolor.Darken("#ff0000", 15),
			wantGround: "#ff0000",
		},
		{
			name: "overrides win",
			modify: func(o *Options) {
				o.FoldColor = "gold"
				o.LabelColor = "navy"
				o.GlyphColor = "rgb(1, 2, 3)"
			},
			wantFold:   "gold",
			wantLabel:  "navy",
			wantGlyph:  "rgb(1, 2, 3)",
			wantGround: "whitesmoke",
		},
		{
			name:       "invalid color falls back to black shades",
			modify:     func(o *Options) { o.Color = "not-a-color" },
			wantFold:   "#000000",
			wantLabel:  "#000000",
			wantGlyph:  "#000000",
			wantGround: "not-a-color",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions().WithExtension("txt")
			opts.Type = TypeDocument
			tt.modify(opts)
			doc := newTestRenderer("x").Render(opts)

			require.Equal(t, tt.wantGround, mustFind[*Group](t, doc, "filex").Children[0].(*Path).Fill)
			require.Equal(t, tt.wantFold, mustFind[*Group](t, doc, "foldx").Children[0].(*Rect).Fill)
			require.Equal(t, tt.wantLabel, mustFind[*Group](t, doc, "labelx").Children[0].(*Rect).Fill)
			require.Equal(t, tt.wantGlyph, mustFind[*Group](t, doc, "glyphx").Fill)
		})
	}
}

func TestRenderPassesNumbersThrough(t *testing.T) {
	opts := DefaultOptions()
	opts.Radius = -2
	opts.GradientOpacity = 1.5
	doc := newTestRenderer("x").Render(opts)

	clip := mustFind[*ClipPath](t, doc, "pageRadiusx")
	require.Equal(t, float64(-2), clip.Children[0].(*Rect).RX)
	require.Equal(t, 1.5, mustFind[*LinearGradient](t, doc, "pageGradientx").Stops[0].Opacity)

	markup := doc.String()
	require.Contains(t, markup, `rx="-2.00"`)
	require.Contains(t, markup, `stop-opacity="1.5"`)
}

func TestRenderPartialOptions(t *testing.T) {
	opts := &Options{Extension: String("pdf")}
	doc := newTestRenderer("x").Render(opts)

	page := mustFind[*Group](t, doc, "filex")
	require.Equal(t, DefaultColor, page.Children[0].(*Rect).Fill)
	gradient := mustFind[*LinearGradient](t, doc, "pageGradientx")
	require.Equal(t, DefaultGradientColor, gradient.Stops[0].Color)
	text := mustFind[*Group](t, doc, "labelTextx").Children[0].(*Text)
	require.Equal(t, DefaultLabelTextColor, text.Fill)
	require.Equal(t, csscolor.Darken(DefaultColor, 30), mustFind[*Group](t, doc, "labelx").Children[0].(*Rect).Fill)

	// Zero values other than colors are taken as given.
	requireAbsent(t, doc, "foldx")
	require.Zero(t, mustFind[*ClipPath](t, doc, "pageRadiusx").Children[0].(*Rect).RX)
	require.Empty(t, opts.Color)
}

func TestRenderKeepsFractionalRadius(t *testing.T) {
	opts := DefaultOptions()
	opts.Radius = 0.125
	markup := newTestRenderer("x").Render(opts).String()
	require.Contains(t, markup, `rx="0.125" ry="0.125"`)
	require.NotContains(t, markup, `rx="0.13"`)
	require.Contains(t, markup, `width="40.000" height="48.000" rx="0.125"`)
	// Rects without fractional values keep the usual precision.
	require.Contains(t, markup, `width="40.00" height="12.00"`)
}

func TestDecimals(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   int
	}{
		{name: "none", want: 2},
		{name: "integers", values: []float64{0, 40, -2}, want: 2},
		{name: "two decimals", values: []float64{0.25, 1.5}, want: 2},
		{name: "three decimals", values: []float64{4, 0.125}, want: 3},
		{name: "capped", values: []float64{1e-20}, want: 12},
		{name: "not a number", values: []float64{math.NaN(), math.Inf(1)}, want: 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, decimals(tt.values...))
		})
	}
}

func TestRenderDoesNotModifyOptions(t *testing.T) {
	opts := DefaultOptions().WithExtension("go")
	opts.Type = TypeCode
	opts.LabelUppercase = true
	before := opts.Clone()
	newTestRenderer("x").Render(opts)
	require.Empty(t, cmp.Diff(before, opts))
}

func TestRenderIsDeterministic(t *testing.T) {
	opts := DefaultOptions().WithExtension("mp4")
	opts.Type = TypeVideo

	first := newTestRenderer("same").Render(opts)
	second := newTestRenderer("same").Render(opts)
	require.Empty(t, cmp.Diff(first, second))

	renderer := newTestRenderer("first", "second")
	a, b := renderer.Render(opts), renderer.Render(opts)
	require.NotEqual(t, a.ID, b.ID)
	require.Equal(t,
		strings.ReplaceAll(a.String(), a.ID, "U"),
		strings.ReplaceAll(b.String(), b.ID, "U"),
	)
}

func TestRenderScopingIDsNeverCollide(t *testing.T) {
	const goroutines = 16
	const renders = 50

	for name, renderer := range map[string]*Renderer{
		"counter": NewRenderer().WithIDSource(&CounterIDSource{}),
		"uuid":    NewRenderer().WithIDSource(UUIDSource{}),
		"default": NewRenderer(),
	} {
		t.Run(name, func(t *testing.T) {
			var mutex sync.Mutex
			seen := map[string]struct{}{}
			var wg sync.WaitGroup
			for range goroutines {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for range renders {
						doc := renderer.Render(nil)
						mutex.Lock()
						seen[doc.ID] = struct{}{}
						mutex.Unlock()
					}
				}()
			}
			wg.Wait()
			require.Len(t, seen, goroutines*renders)
		})
	}
}

func TestRenderPackageLevel(t *testing.T) {
	a, b := Render(nil), Render(nil)
	require.NotEqual(t, a.ID, b.ID)
	_, ok := a.Find("pageRadius" + a.ID)
	require.True(t, ok)
}

// parseMarkup decodes markup and returns the root start element, the number of
// root elements and the concatenated character data of <text> elements.
func parseMarkup(t *testing.T, markup []byte) (xml.StartElement, int, string) {
	t.Helper()
	decoder := xml.NewDecoder(bytes.NewReader(markup))
	var root xml.StartElement
	var roots, depth int
	var inText bool
	var text strings.Builder
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		switch token := token.(type) {
		case xml.StartElement:
			if depth == 0 {
				roots++
				root = token.Copy()
			}
			inText = token.Name.Local == "text"
			depth++
		case xml.EndElement:
			inText = false
			depth--
		case xml.CharData:
			if inText {
				text.Write(token)
			}
		}
	}
	require.Zero(t, depth)
	return root, roots, text.String()
}

func attr(element xml.StartElement, name string) string {
	for _, a := range element.Attr {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func TestDocumentMarkup(t *testing.T) {
	tests := []struct {
		name     string
		opts     *Options
		wantText string
	}{
		{"defaults", DefaultOptions(), ""},
		{"label and glyph", func() *Options {
			o := DefaultOptions().WithExtension("pdf")
			o.Type = TypeAcrobat
			return o
		}(), "pdf"},
		{"hostile values are escaped", func() *Options {
			o := DefaultOptions().WithExtension(`<script>alert("x")</script>`)
			o.Color = `"><script>`
			o.LabelTextColor = `'&`
			return o
		}(), `<script>alert("x")</script>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup := newTestRenderer("x").Render(tt.opts).Bytes()
			require.False(t, bytes.HasPrefix(markup, []byte("<?xml")))
			require.NotContains(t, string(markup), "<script>")

			root, roots, text := parseMarkup(t, markup)
			require.Equal(t, 1, roots)
			require.Equal(t, "svg", root.Name.Local)
			require.Equal(t, svgNamespace, root.Name.Space)
			require.Equal(t, "0 0 40 48", attr(root, "viewBox"))
			require.Equal(t, "100%", attr(root, "width"))
			require.Equal(t, "max-width:100%", attr(root, "style"))
			require.Equal(t, tt.wantText, text)
		})
	}
}

func TestDocumentWriteTo(t *testing.T) {
	doc := newTestRenderer("x").Render(nil)
	var buf bytes.Buffer
	n, err := doc.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	require.Equal(t, doc.String(), buf.String())
	require.Contains(t, buf.String(), `offset="66.67%"`)
	require.Contains(t, buf.String(), `x1="100%" y1="0%" x2="0%" y2="100%"`)

	_, err = doc.WriteTo(failingWriter{})
	require.Error(t, err)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("boom") }
