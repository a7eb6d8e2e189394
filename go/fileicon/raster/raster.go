// Package raster draws file icons as bitmaps, for contexts that cannot display SVG such as favicons.
//
// The bitmap follows the geometry of the SVG rendering. The label uses the Go Bold font.
package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"log/slog"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/malonaz/fileicon/go/csscolor"
	"github.com/malonaz/fileicon/go/fileicon"
)

const (
	// MaxHeight bounds the size of a bitmap.
	MaxHeight = 2048

	// Control point distance approximating a quarter circle with a cubic curve.
	kappa = 0.5522847498

	// The page gradient fades out two thirds of the way along its diagonal.
	gradientEnd = 2.0 / 3
)

// Rasterizer draws icons as images.
type Rasterizer struct {
	log    *slog.Logger
	glyphs *fileicon.GlyphTable
	font   *truetype.Font
}

// NewRasterizer returns a rasterizer using the built-in glyphs.
func NewRasterizer() (*Rasterizer, error) {
	f, err := truetype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parsing font: %w", err)
	}
	return &Rasterizer{
		log:    slog.Default(),
		glyphs: fileicon.DefaultGlyphs(),
		font:   f,
	}, nil
}

// WithLogger sets the logger.
func (r *Rasterizer) WithLogger(logger *slog.Logger) *Rasterizer {
	r.log = logger
	return r
}

// WithGlyphs sets the glyph table.
func (r *Rasterizer) WithGlyphs(glyphs *fileicon.GlyphTable) *Rasterizer {
	r.glyphs = glyphs
	return r
}

// EncodePNG draws an icon height pixels tall and writes it as PNG.
func (r *Rasterizer) EncodePNG(w io.Writer, opts *fileicon.Options, height int) error {
	img, err := r.Rasterize(opts, height)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// Rasterize draws an icon height pixels tall. The width keeps the aspect ratio of the canvas.
// A nil opts draws DefaultOptions. Colors that do not parse are drawn black.
func (r *Rasterizer) Rasterize(opts *fileicon.Options, height int) (*image.RGBA, error) {
	if height <= 0 || height > MaxHeight {
		return nil, fmt.Errorf("height must be in [1, %d], got %d", MaxHeight, height)
	}
	if opts == nil {
		opts = fileicon.DefaultOptions()
	}
	opts = opts.WithColorDefaults()
	scale := float64(height) / fileicon.Height
	width := int(math.Round(fileicon.Width * scale))
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, width, height)),
		scale: scale,
	}

	radius := finiteOrZero(math.Max(0, opts.Radius))
	page := c.mask(func(z *vector.Rasterizer, t transform) {
		t.fill(z, roundedRect(0, 0, fileicon.Width, fileicon.Height, radius))
	})
	if opts.Fold {
		page = intersect(page, c.mask(func(z *vector.Rasterizer, t transform) {
			t.fill(z, foldedPage())
		}))
	}
	c.fillMask(page, r.color(opts.Color))
	c.fillMask(page, &gradient{
		color:   r.color(opts.GradientColor),
		opacity: finiteOrZero(opts.GradientOpacity),
		width:   float64(width),
		height:  float64(height),
	})

	if opts.Fold {
		c.fillMask(c.mask(func(z *vector.Rasterizer, t transform) {
			t.fill(z, fold(math.Min(radius, fileicon.FoldHeight)))
		}), r.color(opts.EffectiveFoldColor()))
	}

	if text, ok := opts.LabelText(); ok {
		band := intersect(page, c.mask(func(z *vector.Rasterizer, t transform) {
			t.fill(z, roundedRect(0, fileicon.Height-fileicon.LabelHeight, fileicon.Width, fileicon.LabelHeight, 0))
		}))
		c.fillMask(band, r.color(opts.EffectiveLabelColor()))
		if err := r.drawLabel(c, text, r.color(opts.LabelTextColor)); err != nil {
			return nil, err
		}
	}

	if opts.Type != "" {
		glyph, ok := r.glyphs.Lookup(opts.Type)
		if !ok {
			r.log.Debug("no glyph for type", "type", opts.Type)
			return c.img, nil
		}
		dx, dy := fileicon.GlyphOffset(opts.Extension != nil)
		fill := r.color(opts.EffectiveGlyphColor())
		for _, p := range glyph.Paths {
			mask, err := c.pathMask(p, transform{scale: scale, dx: dx, dy: dy})
			if err != nil {
				return nil, fmt.Errorf("drawing %s glyph: %w", opts.Type, err)
			}
			c.fillMask(mask, fill)
		}
	}
	return c.img, nil
}

func (r *Rasterizer) color(s string) image.Image {
	c, err := csscolor.Parse(s)
	if err != nil {
		r.log.Debug("drawing unparseable color as black", "color", s)
		return image.NewUniform(color.Black)
	}
	return image.NewUniform(c.NRGBA())
}

func (r *Rasterizer) drawLabel(c *canvas, text string, src image.Image) error {
	size := fileicon.LabelFontSize * c.scale
	face := truetype.NewFace(r.font, &truetype.Options{Size: size, DPI: 72})
	defer face.Close()
	advance := font.MeasureString(face, text)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(r.font)
	ctx.SetFontSize(size)
	ctx.SetClip(c.img.Bounds())
	ctx.SetDst(c.img)
	ctx.SetSrc(src)
	ctx.SetHinting(font.HintingNone)

	x := fileicon.Width/2*c.scale - float64(advance)/64/2
	y := (fileicon.Height - fileicon.LabelHeight + fileicon.LabelBaseline) * c.scale
	pt := fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
	if _, err := ctx.DrawString(text, pt); err != nil {
		return fmt.Errorf("drawing label: %w", err)
	}
	return nil
}

type canvas struct {
	img   *image.RGBA
	scale float64
}

// mask rasterizes the shapes added by add, in canvas units, into a coverage mask.
func (c *canvas) mask(add func(*vector.Rasterizer, transform)) *image.Alpha {
	bounds := c.img.Bounds()
	z := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	add(z, transform{scale: c.scale})
	mask := image.NewAlpha(bounds)
	z.Draw(mask, bounds, image.Opaque, image.Point{})
	return mask
}

// pathMask rasterizes a glyph path. Even-odd paths are rasterized one subpath at a time and combined
// so that overlapping subpaths cancel out.
func (c *canvas) pathMask(p fileicon.GlyphPath, t transform) (*image.Alpha, error) {
	subpaths, err := parsePath(p.D)
	if err != nil {
		return nil, err
	}
	if !p.EvenOdd {
		return c.mask(func(z *vector.Rasterizer, _ transform) { t.fill(z, subpaths...) }), nil
	}
	var result *image.Alpha
	for _, sp := range subpaths {
		mask := c.mask(func(z *vector.Rasterizer, _ transform) { t.fill(z, sp) })
		if result == nil {
			result = mask
			continue
		}
		result = exclusiveOr(result, mask)
	}
	if result == nil {
		result = image.NewAlpha(c.img.Bounds())
	}
	return result, nil
}

func (c *canvas) fillMask(mask *image.Alpha, src image.Image) {
	draw.DrawMask(c.img, c.img.Bounds(), src, image.Point{}, mask, image.Point{}, draw.Over)
}

func intersect(a, b *image.Alpha) *image.Alpha {
	out := image.NewAlpha(a.Bounds())
	for i := range out.Pix {
		out.Pix[i] = uint8(uint16(a.Pix[i]) * uint16(b.Pix[i]) / 255)
	}
	return out
}

func exclusiveOr(a, b *image.Alpha) *image.Alpha {
	out := image.NewAlpha(a.Bounds())
	for i := range out.Pix {
		x, y := int(a.Pix[i]), int(b.Pix[i])
		out.Pix[i] = uint8(max(0, min(255, x+y-2*x*y/255)))
	}
	return out
}

// gradient is the translucent sheen running from the top right corner to the bottom left one.
type gradient struct {
	color         image.Image
	opacity       float64
	width, height float64
}

func (g *gradient) ColorModel() color.Model { return color.NRGBAModel }

func (g *gradient) Bounds() image.Rectangle {
	return image.Rect(math.MinInt32, math.MinInt32, math.MaxInt32, math.MaxInt32)
}

func (g *gradient) At(x, y int) color.Color {
	c := color.NRGBAModel.Convert(g.color.At(0, 0)).(color.NRGBA)
	// Projection onto the diagonal of the bounding box, in [0, 1].
	u, v := (float64(x)+0.5)/g.width, (float64(y)+0.5)/g.height
	t := (1 - u + v) / 2
	alpha := 0.0
	if t < gradientEnd {
		alpha = g.opacity * (1 - t/gradientEnd)
	}
	c.A = uint8(math.Round(math.Max(0, math.Min(1, alpha)) * float64(c.A)))
	return c
}

// finiteOrZero maps NaN to 0. Infinite values are left to the callers' clamping.
func finiteOrZero(f float64) float64 {
	if math.IsNaN(f) {
		return 0
	}
	return f
}

func roundedRect(x, y, w, h, r float64) subpath {
	r = math.Min(r, math.Min(w, h)/2)
	if r <= 0 {
		return subpath{
			{op: 'M', pts: []point{{x, y}}},
			{op: 'L', pts: []point{{x + w, y}}},
			{op: 'L', pts: []point{{x + w, y + h}}},
			{op: 'L', pts: []point{{x, y + h}}},
			{op: 'Z'},
		}
	}
	k := r * kappa
	return subpath{
		{op: 'M', pts: []point{{x + r, y}}},
		{op: 'L', pts: []point{{x + w - r, y}}},
		{op: 'C', pts: []point{{x + w - r + k, y}, {x + w, y + r - k}, {x + w, y + r}}},
		{op: 'L', pts: []point{{x + w, y + h - r}}},
		{op: 'C', pts: []point{{x + w, y + h - r + k}, {x + w - r + k, y + h}, {x + w - r, y + h}}},
		{op: 'L', pts: []point{{x + r, y + h}}},
		{op: 'C', pts: []point{{x + r - k, y + h}, {x, y + h - r + k}, {x, y + h - r}}},
		{op: 'L', pts: []point{{x, y + r}}},
		{op: 'C', pts: []point{{x, y + r - k}, {x + r - k, y}, {x + r, y}}},
		{op: 'Z'},
	}
}

// foldedPage is the page outline with its top right corner cut off.
func foldedPage() subpath {
	const w, h, f = fileicon.Width, fileicon.Height, fileicon.FoldHeight
	return subpath{
		{op: 'M', pts: []point{{0, 0}}},
		{op: 'L', pts: []point{{w - f, 0}}},
		{op: 'L', pts: []point{{w, f}}},
		{op: 'L', pts: []point{{w, h}}},
		{op: 'L', pts: []point{{0, h}}},
		{op: 'Z'},
	}
}

// fold is the folded-over corner: a right triangle below the cut, its right angle rounded by r.
func fold(r float64) subpath {
	const w, f = fileicon.Width, fileicon.FoldHeight
	const x = w - f
	k := r * kappa
	return subpath{
		{op: 'M', pts: []point{{x, 0}}},
		{op: 'L', pts: []point{{w, f}}},
		{op: 'L', pts: []point{{x + r, f}}},
		{op: 'C', pts: []point{{x + r - k, f}, {x, f - r + k}, {x, f - r}}},
		{op: 'Z'},
	}
}
