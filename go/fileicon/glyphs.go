package fileicon

import (
	"slices"
)

// GlyphPath is one filled path of a glyph.
type GlyphPath struct {
	D       string
	EvenOdd bool
}

// Glyph is the artwork of a Type, authored on a 48 unit wide frame.
// The renderer shifts it 4 units left to center it on the page.
type Glyph struct {
	Paths []GlyphPath
}

// GlyphTable maps types to glyphs. It is immutable once built.
type GlyphTable struct {
	glyphs map[Type]Glyph
}

// NewGlyphTable copies glyphs into a new table.
func NewGlyphTable(glyphs map[Type]Glyph) *GlyphTable {
	table := &GlyphTable{glyphs: make(map[Type]Glyph, len(glyphs))}
	for t, glyph := range glyphs {
		table.glyphs[t] = Glyph{Paths: slices.Clone(glyph.Paths)}
	}
	return table
}

// Lookup returns the glyph for t.
func (t *GlyphTable) Lookup(typ Type) (Glyph, bool) {
	glyph, ok := t.glyphs[typ]
	if !ok {
		return Glyph{}, false
	}
	return Glyph{Paths: slices.Clone(glyph.Paths)}, true
}

// Len returns the number of glyphs in the table.
func (t *GlyphTable) Len() int { return len(t.glyphs) }

// DefaultGlyphs returns the built-in table, which has a glyph for every Type.
func DefaultGlyphs() *GlyphTable { return defaultGlyphs }

func paths(ds ...string) Glyph {
	glyph := Glyph{}
	for _, d := range ds {
		glyph.Paths = append(glyph.Paths, GlyphPath{D: d})
	}
	return glyph
}

func evenOdd(ds ...string) Glyph {
	glyph := paths(ds...)
	for i := range glyph.Paths {
		glyph.Paths[i].EvenOdd = true
	}
	return glyph
}

var defaultGlyphs = NewGlyphTable(map[Type]Glyph{
	Type3D: paths(
		"M24 9.5 L31.5 13.5 L24 17.5 L16.5 13.5 Z",
		"M15.5 14.8 L23.2 19 V27.5 L15.5 23.2 Z",
		"M32.5 14.8 V23.2 L24.8 27.5 V19 Z",
	),
	TypeAcrobat: evenOdd(
		"M22.6 10 C24.4 10 24.6 12.4 23.9 15.3 C24.6 17.3 25.9 19.1 27.4 20.3 C29.9 20 32.4 20.3 32.4 22.1 "+
			"C32.4 24 29.6 23.8 26.7 21.6 C24.6 22 22.4 22.7 20.4 23.6 C18.9 26.3 17.4 27.8 16.1 27.8 "+
			"C14.9 27.8 14.6 26.4 15.6 25.3 C16.6 24.3 18.1 23.5 19.8 22.8 C20.9 20.8 21.9 18.4 22.5 16.3 "+
			"C21.6 13.7 21.5 10 22.6 10 Z",
		"M23 17.8 C22.6 19.1 22 20.5 21.4 21.8 C22.7 21.3 24 20.9 25.4 20.6 C24.5 19.8 23.7 18.9 23 17.8 Z",
	),
	TypeAudio: paths(
		"M21 12 L31 10 V23.5 A3 2.5 0 1 1 29 21.1 V14.2 L23 15.4 V25.5 A3 2.5 0 1 1 21 23.1 Z",
	),
	TypeBinary: evenOdd(
		"M15 12 H22 V26 H15 Z M17 14 V24 H20 V14 Z",
		"M27 12 H30 V24 H32 V26 H26 V24 H28 V14.5 L26.5 15.5 V13.2 Z",
	),
	TypeCode: paths(
		"M20.5 12.5 L14.5 18.5 L20.5 24.5 L22 23 L17.5 18.5 L22 14 Z",
		"M27.5 12.5 L33.5 18.5 L27.5 24.5 L26 23 L30.5 18.5 L26 14 Z",
	),
	TypeCompressed: evenOdd(
		"M22 8 H24 V10 H22 Z M24 10 H26 V12 H24 Z M22 12 H24 V14 H22 Z M24 14 H26 V16 H24 Z M22 16 H24 V18 H22 Z",
		"M21.5 19 H26.5 V26 H21.5 Z M23 22 V24.5 H25 V22 Z",
	),
	TypeDocument: paths(
		"M16 12 H32 V14 H16 Z",
		"M16 16 H32 V18 H16 Z",
		"M16 20 H32 V22 H16 Z",
		"M16 24 H26 V26 H16 Z",
	),
	TypeDrive: evenOdd(
		"M17.5 11 H30.5 L33 18 H15 Z",
		"M15 19 H33 V26 H15 Z M28 21.5 V23.5 H31 V21.5 Z",
	),
	TypeFont: evenOdd(
		"M22.5 10 H25.5 L32 27 H28.8 L27.3 23 H20.7 L19.2 27 H16 Z M21.6 20.5 H26.4 L24 13.8 Z",
	),
	TypeImage: evenOdd(
		"M15 11 H33 V27 H15 Z M17 13 V25 H31 V13 Z",
		"M18 24 L22 18 L25 22 L27 20 L30 24 Z",
		"M27.5 14.5 A1.5 1.5 0 1 1 27.49 14.5 Z",
	),
	TypePresentation: evenOdd(
		"M15 11 H33 V13 H32 V23 H16 V13 H15 Z M18 13 V21 H30 V13 Z",
		"M23 23 H25 V27 H23 Z",
		"M20 18 H22 V20 H20 Z M23 16 H25 V20 H23 Z M26 15 H28 V20 H26 Z",
	),
	TypeSettings: evenOdd(
		"M22.5 9 H25.5 L26.1 11.6 L28.1 12.5 L30.4 11.1 L32.5 13.2 L31.1 15.5 L32 17.5 L34.6 18.1 V21.1 "+
			"L32 21.7 L31.1 23.7 L32.5 26 L30.4 28.1 L28.1 26.7 L26.1 27.6 L25.5 30.2 H22.5 L21.9 27.6 "+
			"L19.9 26.7 L17.6 28.1 L15.5 26 L16.9 23.7 L16 21.7 L13.4 21.1 V18.1 L16 17.5 L16.9 15.5 "+
			"L15.5 13.2 L17.6 11.1 L19.9 12.5 L21.9 11.6 Z "+
			"M24 16.1 A3.5 3.5 0 1 0 24.01 16.1 Z",
	),
	TypeSpreadsheet: evenOdd(
		"M15 11 H33 V27 H15 Z " +
			"M17 13 V16 H23 V13 Z M25 13 V16 H31 V13 Z " +
			"M17 18 V21 H23 V18 Z M25 18 V21 H31 V18 Z " +
			"M17 23 V25 H23 V23 Z M25 23 V25 H31 V23 Z",
	),
	TypeVector: paths(
		"M15 24 H19 V28 H15 Z",
		"M29 10 H33 V14 H29 Z",
		"M19 25.5 C25 25.5 23.5 12.5 29 12.5 V11.5 C22.5 11.5 24 24.5 19 24.5 Z",
	),
	TypeVideo: paths(
		"M14 14 H27 V24 H14 Z",
		"M28 19 L34 15 V23 Z",
	),
})
