package fileicon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		input string
		want  Type
		ok    bool
	}{
		{"3d", Type3D, true},
		{"acrobat", TypeAcrobat, true},
		{"audio", TypeAudio, true},
		{"video", TypeVideo, true},
		{"", "", false},
		{"Audio", "", false},
		{"unknown-tag", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseType(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				require.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTypes(t *testing.T) {
	require.Equal(t, []Type{
		"3d", "acrobat", "audio", "binary", "code", "compressed", "document", "drive",
		"font", "image", "presentation", "settings", "spreadsheet", "vector", "video",
	}, Types())

	// Callers cannot reorder the package's list.
	Types()[0] = "changed"
	require.Equal(t, Type3D, Types()[0])
}
