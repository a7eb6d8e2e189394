package raster

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		name string
		d    string
		want []subpath
	}{
		{
			name: "absolute",
			d:    "M0 0 H28 L40 12 V48 H0 Z",
			want: []subpath{{
				{op: 'M', pts: []point{{0, 0}}},
				{op: 'L', pts: []point{{28, 0}}},
				{op: 'L', pts: []point{{40, 12}}},
				{op: 'L', pts: []point{{40, 48}}},
				{op: 'L', pts: []point{{0, 48}}},
				{op: 'Z'},
			}},
		},
		{
			name: "relative with implicit lineto",
			d:    "m1,2 3,4 h-1 v-2 z",
			want: []subpath{{
				{op: 'M', pts: []point{{1, 2}}},
				{op: 'L', pts: []point{{4, 6}}},
				{op: 'L', pts: []point{{3, 6}}},
				{op: 'L', pts: []point{{3, 4}}},
				{op: 'Z'},
			}},
		},
		{
			name: "curves and several subpaths",
			d:    "M0 0 C1 1 2 2 3 3 Z M10 10 q1 1 2 0",
			want: []subpath{
				{
					{op: 'M', pts: []point{{0, 0}}},
					{op: 'C', pts: []point{{1, 1}, {2, 2}, {3, 3}}},
					{op: 'Z'},
				},
				{
					{op: 'M', pts: []point{{10, 10}}},
					{op: 'Q', pts: []point{{11, 11}, {12, 10}}},
				},
			},
		},
		{
			name: "packed numbers",
			d:    "M.5.5L-1-1e1",
			want: []subpath{{
				{op: 'M', pts: []point{{0.5, 0.5}}},
				{op: 'L', pts: []point{{-1, -10}}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePath(tt.d)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParsePathErrors(t *testing.T) {
	tests := []struct {
		name    string
		d       string
		wantErr string
	}{
		{"draw before move", "L1 2", "L before moveto"},
		{"missing numbers", "M1", "expected 2 numbers"},
		{"unknown command", "M1 2 X3", "unexpected 'X'"},
		{"no command", "10 10", "must start with a command"},
		{"command where a number is expected", "M1 L2 3", "expected a number, got L"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parsePath(tt.d)
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestFlattenArc(t *testing.T) {
	from, to := point{0, 0}, point{2, 0}
	pts := flattenArc(from, 1, 1, 0, false, true, to)
	require.Greater(t, len(pts), 8)
	require.Equal(t, to, pts[len(pts)-1])
	for _, p := range pts {
		require.InDelta(t, 1, math.Hypot(p.x-1, p.y), 1e-9)
		// Sweeping clockwise from the left goes through the top, where y is negative.
		require.LessOrEqual(t, p.y, 1e-9)
	}

	require.Equal(t, []point{to}, flattenArc(from, 0, 1, 0, false, true, to))
	require.Nil(t, flattenArc(from, 1, 1, 0, false, true, from))

	// Radii too small to reach the end point are scaled up.
	pts = flattenArc(from, 0.5, 0.5, 0, false, true, to)
	for _, p := range pts {
		require.InDelta(t, 1, math.Hypot(p.x-1, p.y), 1e-9)
	}
}

func TestGlyphPathsParse(t *testing.T) {
	for _, d := range []string{
		"M21 12 L31 10 V23.5 A3 2.5 0 1 1 29 21.1 V14.2 L23 15.4 V25.5 A3 2.5 0 1 1 21 23.1 Z",
		"M27.5 14.5 A1.5 1.5 0 1 1 27.49 14.5 Z",
	} {
		subpaths, err := parsePath(d)
		require.NoError(t, err)
		require.Len(t, subpaths, 1)
	}
}
