package fileicon

// Type selects the glyph drawn over the page.
type Type string

const (
	Type3D           Type = "3d"
	TypeAcrobat      Type = "acrobat"
	TypeAudio        Type = "audio"
	TypeBinary       Type = "binary"
	TypeCode         Type = "code"
	TypeCompressed   Type = "compressed"
	TypeDocument     Type = "document"
	TypeDrive        Type = "drive"
	TypeFont         Type = "font"
	TypeImage        Type = "image"
	TypePresentation Type = "presentation"
	TypeSettings     Type = "settings"
	TypeSpreadsheet  Type = "spreadsheet"
	TypeVector       Type = "vector"
	TypeVideo        Type = "video"
)

var types = []Type{
	Type3D,
	TypeAcrobat,
	TypeAudio,
	TypeBinary,
	TypeCode,
	TypeCompressed,
	TypeDocument,
	TypeDrive,
	TypeFont,
	TypeImage,
	TypePresentation,
	TypeSettings,
	TypeSpreadsheet,
	TypeVector,
	TypeVideo,
}

var typeSet = func() map[Type]struct{} {
	m := make(map[Type]struct{}, len(types))
	for _, t := range types {
		m[t] = struct{}{}
	}
	return m
}()

// Types returns every recognized type.
func Types() []Type {
	return append([]Type(nil), types...)
}

// ParseType returns the Type named s, if it is recognized.
func ParseType(s string) (Type, bool) {
	t := Type(s)
	return t, t.Valid()
}

// Valid reports whether t is one of the recognized types.
func (t Type) Valid() bool {
	_, ok := typeSet[t]
	return ok
}

func (t Type) String() string { return string(t) }
