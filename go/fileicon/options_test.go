package fileicon

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	require.Equal(t, &Options{
		Color:           "whitesmoke",
		Fold:            true,
		GradientColor:   "white",
		GradientOpacity: 0.25,
		LabelTextColor:  "white",
		LabelUppercase:  false,
		Radius:          4,
	}, DefaultOptions())
}

func TestOptionsWithExtension(t *testing.T) {
	base := DefaultOptions()
	labelled := base.WithExtension("pdf")
	require.Nil(t, base.Extension)
	require.Equal(t, "pdf", *labelled.Extension)

	clone := labelled.Clone()
	*clone.Extension = "doc"
	require.Equal(t, "pdf", *labelled.Extension)
}

func TestOptionsEffectiveColors(t *testing.T) {
	opts := DefaultOptions()
	opts.Color = "#ff0000"
	require.Equal(t, "#cc0000", opts.EffectiveFoldColor())
	require.Equal(t, "#660000", opts.EffectiveLabelColor())

	opts.FoldColor = "navy"
	opts.GlyphColor = "teal"
	opts.LabelColor = "rgb(1, 2, 3)"
	require.Equal(t, "navy", opts.EffectiveFoldColor())
	require.Equal(t, "teal", opts.EffectiveGlyphColor())
	require.Equal(t, "rgb(1, 2, 3)", opts.EffectiveLabelColor())
}

func TestOptionsLabelText(t *testing.T) {
	_, ok := DefaultOptions().LabelText()
	require.False(t, ok)

	opts := DefaultOptions().WithExtension("tar.gz")
	text, ok := opts.LabelText()
	require.True(t, ok)
	require.Equal(t, "tar.gz", text)

	opts.LabelUppercase = true
	text, _ = opts.LabelText()
	require.Equal(t, "TAR.GZ", text)
	require.Equal(t, "tar.gz", *opts.Extension)
}

func TestOptionsWithColorDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts *Options
		want *Options
	}{
		{
			name: "zero value",
			opts: &Options{},
			want: &Options{Color: DefaultColor, GradientColor: DefaultGradientColor, LabelTextColor: DefaultLabelTextColor},
		},
		{
			name: "set colors are kept",
			opts: &Options{Color: "red", GradientColor: "black", LabelTextColor: "navy", Radius: 1},
			want: &Options{Color: "red", GradientColor: "black", LabelTextColor: "navy", Radius: 1},
		},
		{
			name: "defaults are unchanged",
			opts: DefaultOptions(),
			want: DefaultOptions(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.opts.Clone()
			require.Equal(t, tt.want, tt.opts.WithColorDefaults())
			require.Equal(t, before, tt.opts)
		})
	}
}
