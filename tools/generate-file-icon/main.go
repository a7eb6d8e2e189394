package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/malonaz/fileicon/go/fileicon"
	"github.com/malonaz/fileicon/go/fileicon/gallery"
	"github.com/malonaz/fileicon/go/fileicon/raster"
	"github.com/malonaz/fileicon/go/flags"
	"github.com/malonaz/fileicon/go/logging"
)

const (
	formatSVG     = "svg"
	formatPNG     = "png"
	formatFavicon = "favicon"
	formatGallery = "gallery"
)

var faviconSizes = []int{16, 32, 64, 128, 192, 384}

type Opts struct {
	Logging *logging.Opts `group:"Logging" namespace:"logging" env-namespace:"LOGGING"`

	Format     string `long:"format" description:"svg, png, favicon or gallery" default:"svg"`
	Output     string `long:"output" description:"output file path" required:"true"`
	StylesFile string `long:"styles" description:"YAML file of extension styles replacing the built-in ones"`
	UseStyle   bool   `long:"use-style" description:"Start from the style registered for --extension"`
	Size       int    `long:"size" description:"Height in pixels of PNG output" default:"96"`
	Title      string `long:"title" description:"Title of the gallery page" default:"File icons"`

	Color           string   `long:"color" description:"Page color"`
	Extension       *string  `long:"extension" description:"Label text; no label when unset"`
	NoFold          bool     `long:"no-fold" description:"Do not draw the folded corner"`
	FoldColor       string   `long:"fold-color" description:"Fold color, derived from --color when unset"`
	GlyphColor      string   `long:"glyph-color" description:"Glyph color, derived from --color when unset"`
	GradientColor   string   `long:"gradient-color" description:"Gradient color"`
	GradientOpacity *float64 `long:"gradient-opacity" description:"Gradient opacity"`
	LabelColor      string   `long:"label-color" description:"Label band color, derived from --color when unset"`
	LabelTextColor  string   `long:"label-text-color" description:"Label text color"`
	LabelUppercase  bool     `long:"label-uppercase" description:"Upper-case the label"`
	Radius          *float64 `long:"radius" description:"Corner radius"`
	Type            string   `long:"type" description:"Glyph type"`
}

func main() {
	ctx := context.Background()
	opts := &Opts{}
	flags.MustParse(opts)
	if err := run(ctx, opts); err != nil {
		slog.ErrorContext(ctx, "running", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *Opts) error {
	if err := logging.Init(opts.Logging); err != nil {
		return err
	}

	styles, err := loadStyles(opts.StylesFile)
	if err != nil {
		return err
	}

	switch opts.Format {
	case formatSVG:
		iconOpts, err := iconOptions(opts, styles)
		if err != nil {
			return err
		}
		doc := fileicon.NewRenderer().Render(iconOpts)
		return writeFile(ctx, opts.Output, doc.Bytes())

	case formatPNG:
		iconOpts, err := iconOptions(opts, styles)
		if err != nil {
			return err
		}
		return writePNG(ctx, opts.Output, iconOpts, opts.Size)

	case formatFavicon:
		iconOpts, err := iconOptions(opts, styles)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(opts.Output, ".png")
		for _, size := range faviconSizes {
			if err := writePNG(ctx, fmt.Sprintf("%s-%dx%d.png", base, size, size), iconOpts, size); err != nil {
				return err
			}
		}
		return nil

	case formatGallery:
		page := gallery.NewPage(opts.Title, fileicon.NewRenderer(), styles)
		var buf bytes.Buffer
		if err := gallery.Render(&buf, page); err != nil {
			return err
		}
		return writeFile(ctx, opts.Output, buf.Bytes())

	default:
		return fmt.Errorf("unsupported format: %v", opts.Format)
	}
}

func loadStyles(path string) (fileicon.Styles, error) {
	if path == "" {
		return fileicon.DefaultStyles(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening styles file: %w", err)
	}
	defer file.Close()
	styles, err := fileicon.LoadStyles(file)
	if err != nil {
		return nil, fmt.Errorf("loading styles from %s: %w", path, err)
	}
	return styles, nil
}

// iconOptions builds the render options: defaults, then the extension's style when requested, then the flags.
func iconOptions(opts *Opts, styles fileicon.Styles) (*fileicon.Options, error) {
	iconOpts := fileicon.DefaultOptions()
	if opts.UseStyle {
		if opts.Extension == nil {
			return nil, fmt.Errorf("--use-style requires --extension")
		}
		iconOpts = styles.Options(*opts.Extension)
	} else if opts.Extension != nil {
		iconOpts = iconOpts.WithExtension(*opts.Extension)
	}

	setIfNotEmpty(&iconOpts.Color, opts.Color)
	setIfNotEmpty(&iconOpts.FoldColor, opts.FoldColor)
	setIfNotEmpty(&iconOpts.GlyphColor, opts.GlyphColor)
	setIfNotEmpty(&iconOpts.GradientColor, opts.GradientColor)
	setIfNotEmpty(&iconOpts.LabelColor, opts.LabelColor)
	setIfNotEmpty(&iconOpts.LabelTextColor, opts.LabelTextColor)
	if opts.NoFold {
		iconOpts.Fold = false
	}
	if opts.LabelUppercase {
		iconOpts.LabelUppercase = true
	}
	if opts.GradientOpacity != nil {
		iconOpts.GradientOpacity = *opts.GradientOpacity
	}
	if opts.Radius != nil {
		iconOpts.Radius = *opts.Radius
	}
	if opts.Type != "" {
		typ, ok := fileicon.ParseType(opts.Type)
		if !ok {
			return nil, fmt.Errorf("unknown type %q, expected one of %v", opts.Type, fileicon.Types())
		}
		iconOpts.Type = typ
	}
	return iconOpts, nil
}

func setIfNotEmpty(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func writePNG(ctx context.Context, path string, iconOpts *fileicon.Options, size int) error {
	rasterizer, err := raster.NewRasterizer()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := rasterizer.EncodePNG(&buf, iconOpts, size); err != nil {
		return fmt.Errorf("generating PNG: %w", err)
	}
	return writeFile(ctx, path, buf.Bytes())
}

func writeFile(ctx context.Context, path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	slog.InfoContext(ctx, "wrote file", "path", path, "bytes", len(data))
	return nil
}
