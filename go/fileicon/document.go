package fileicon

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo/float"
)

const (
	svgNamespace = "http://www.w3.org/2000/svg"

	// svgo writes coordinates with a fixed number of decimals; this is its default.
	minDecimals = 2
	maxDecimals = 12
)

// Element is a drawing primitive of a Document.
type Element interface {
	// ElementID returns the id attribute of the element, possibly empty.
	ElementID() string
	write(canvas *svg.SVG)
}

// Document is a rendered icon: a tree of drawing primitives on a Width x Height canvas.
type Document struct {
	// ID is the scoping identifier appended to every id in the document.
	ID     string
	Width  float64
	Height float64
	Defs   []Element
	Body   []Element
}

// Rect is a rectangle. RX and RY round its corners when non-zero.
type Rect struct {
	ID                  string
	X, Y, Width, Height float64
	RX, RY              float64
	Fill                string
	ClipPath            string
	Transform           string
}

// Path is a filled path.
type Path struct {
	ID       string
	D        string
	Fill     string
	FillRule string
	ClipPath string
}

// Text is a single line of text.
type Text struct {
	X, Y       float64
	Content    string
	FontFamily string
	FontSize   float64
	Fill       string
	TextAnchor string
	Style      string
}

// Group groups elements under a shared transform, fill and clip.
type Group struct {
	ID        string
	Transform string
	Fill      string
	ClipPath  string
	Children  []Element
}

// ClipPath defines a clip region referenced as url(#ID).
type ClipPath struct {
	ID       string
	Children []Element
}

// GradientStop is a stop of a LinearGradient. Offset is a percentage.
type GradientStop struct {
	Offset  float64
	Color   string
	Opacity float64
}

// LinearGradient is a gradient along (X1,Y1) -> (X2,Y2), expressed as percentages of the bounding box.
type LinearGradient struct {
	ID             string
	X1, Y1, X2, Y2 float64
	Stops          []GradientStop
}

func (e *Rect) ElementID() string           { return e.ID }
func (e *Path) ElementID() string           { return e.ID }
func (e *Text) ElementID() string           { return "" }
func (e *Group) ElementID() string          { return e.ID }
func (e *ClipPath) ElementID() string       { return e.ID }
func (e *LinearGradient) ElementID() string { return e.ID }

func (e *Rect) write(canvas *svg.SVG) {
	defer withDecimals(canvas, e.X, e.Y, e.Width, e.Height, e.RX, e.RY)()
	attrs := attributes("id", e.ID, "fill", e.Fill, "clip-path", e.ClipPath, "transform", e.Transform)
	if e.RX != 0 || e.RY != 0 {
		canvas.Roundrect(e.X, e.Y, e.Width, e.Height, e.RX, e.RY, attrs...)
		return
	}
	canvas.Rect(e.X, e.Y, e.Width, e.Height, attrs...)
}

func (e *Path) write(canvas *svg.SVG) {
	canvas.Path(escape(e.D), attributes("id", e.ID, "fill", e.Fill, "fill-rule", e.FillRule, "clip-path", e.ClipPath)...)
}

func (e *Text) write(canvas *svg.SVG) {
	defer withDecimals(canvas, e.X, e.Y)()
	var fontSize string
	if e.FontSize != 0 {
		fontSize = formatNumber(e.FontSize)
	}
	canvas.Text(e.X, e.Y, e.Content, attributes(
		"font-family", e.FontFamily,
		"font-size", fontSize,
		"fill", e.Fill,
		"text-anchor", e.TextAnchor,
		"style", e.Style,
	)...)
}

func (e *Group) write(canvas *svg.SVG) {
	canvas.Group(attributes("id", e.ID, "transform", e.Transform, "fill", e.Fill, "clip-path", e.ClipPath)...)
	for _, child := range e.Children {
		child.write(canvas)
	}
	canvas.Gend()
}

func (e *ClipPath) write(canvas *svg.SVG) {
	canvas.ClipPath(attributes("id", e.ID)...)
	for _, child := range e.Children {
		child.write(canvas)
	}
	canvas.ClipEnd()
}

// svgo only takes whole-number gradient offsets, and two thirds is not one.
func (e *LinearGradient) write(canvas *svg.SVG) {
	fmt.Fprintf(canvas.Writer, "<linearGradient %s>\n", strings.Join(attributes(
		"id", e.ID,
		"x1", formatPercent(e.X1),
		"y1", formatPercent(e.Y1),
		"x2", formatPercent(e.X2),
		"y2", formatPercent(e.Y2),
	), " "))
	for _, stop := range e.Stops {
		fmt.Fprintf(canvas.Writer, "<stop %s/>\n", strings.Join(attributes(
			"offset", formatPercent(stop.Offset),
			"stop-color", stop.Color,
			"stop-opacity", formatNumber(stop.Opacity),
		), " "))
	}
	fmt.Fprintln(canvas.Writer, "</linearGradient>")
}

// WriteTo writes the document as SVG markup, without an XML prolog so it can be inlined into HTML.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	fmt.Fprintf(cw, "<svg %s>\n", strings.Join(attributes(
		"xmlns", svgNamespace,
		"viewBox", fmt.Sprintf("0 0 %s %s", formatNumber(d.Width), formatNumber(d.Height)),
		"width", "100%",
		"style", "max-width:100%",
	), " "))

	canvas := svg.New(cw)
	if len(d.Defs) > 0 {
		canvas.Def()
		for _, element := range d.Defs {
			element.write(canvas)
		}
		canvas.DefEnd()
	}
	for _, element := range d.Body {
		element.write(canvas)
	}
	canvas.End()
	return cw.n, cw.err
}

// Bytes returns the SVG markup of the document.
func (d *Document) Bytes() []byte {
	var buf bytes.Buffer
	d.WriteTo(&buf)
	return buf.Bytes()
}

// String returns the SVG markup of the document.
func (d *Document) String() string { return string(d.Bytes()) }

// Find returns the element with the given id.
func (d *Document) Find(id string) (Element, bool) {
	if id == "" {
		return nil, false
	}
	if element, ok := find(d.Defs, id); ok {
		return element, true
	}
	return find(d.Body, id)
}

func find(elements []Element, id string) (Element, bool) {
	for _, element := range elements {
		if element.ElementID() == id {
			return element, true
		}
		var children []Element
		switch e := element.(type) {
		case *Group:
			children = e.Children
		case *ClipPath:
			children = e.Children
		}
		if found, ok := find(children, id); ok {
			return found, true
		}
	}
	return nil, false
}

// attributes formats name/value pairs as escaped XML attributes, skipping empty values.
func attributes(pairs ...string) []string {
	attrs := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			continue
		}
		attrs = append(attrs, pairs[i]+`="`+escape(pairs[i+1])+`"`)
	}
	return attrs
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

// withDecimals raises the canvas precision so that values are written without rounding, and returns a func restoring it.
func withDecimals(canvas *svg.SVG, values ...float64) func() {
	previous := canvas.Decimals
	canvas.Decimals = decimals(values...)
	return func() { canvas.Decimals = previous }
}

// decimals returns the number of decimals needed to write every value exactly, within [minDecimals, maxDecimals].
func decimals(values ...float64) int {
	n := minDecimals
	for _, v := range values {
		s := strconv.FormatFloat(v, 'f', -1, 64)
		if dot := strings.IndexByte(s, '.'); dot >= 0 {
			n = max(n, len(s)-dot-1)
		}
	}
	return min(n, maxDecimals)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatPercent(f float64) string {
	return formatNumber(f) + "%"
}

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}
