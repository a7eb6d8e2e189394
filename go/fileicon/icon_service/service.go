// Package icon_service serves rendered file icons over HTTP.
package icon_service

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/malonaz/fileicon/go/fileicon"
	"github.com/malonaz/fileicon/go/fileicon/gallery"
	"github.com/malonaz/fileicon/go/fileicon/raster"
	fhttp "github.com/malonaz/fileicon/go/http"
)

const (
	contentTypeSVG  = "image/svg+xml"
	contentTypePNG  = "image/png"
	contentTypeHTML = "text/html; charset=utf-8"
	cacheControl    = "public, max-age=86400"
	defaultPNGSize  = 96
)

type Opts struct {
	StylesFile          string `long:"styles-file" env:"STYLES_FILE" description:"YAML file of extension styles replacing the built-in ones"`
	StylesReloadSeconds int    `long:"styles-reload-seconds" env:"STYLES_RELOAD_SECONDS" description:"How often to reload the styles file, 0 to never reload" default:"0"`
	GalleryTitle        string `long:"gallery-title" env:"GALLERY_TITLE" description:"Title of the gallery page" default:"File icons"`
	DefaultPNGSize      int    `long:"default-png-size" env:"DEFAULT_PNG_SIZE" description:"Height in pixels of PNG icons requested without a size" default:"96"`
}

// Service renders icons on request.
type Service struct {
	opts       *Opts
	log        *slog.Logger
	renderer   *fileicon.Renderer
	rasterizer *raster.Rasterizer
	styles     atomic.Pointer[fileicon.Styles]
}

// NewService creates a service, loading the styles file when one is configured.
func NewService(opts *Opts) (*Service, error) {
	styles := fileicon.DefaultStyles()
	if opts.StylesFile != "" {
		var err error
		if styles, err = loadStyles(opts.StylesFile); err != nil {
			return nil, err
		}
	}
	rasterizer, err := raster.NewRasterizer()
	if err != nil {
		return nil, fmt.Errorf("creating rasterizer: %w", err)
	}
	s := &Service{
		opts:       opts,
		log:        slog.Default(),
		renderer:   fileicon.NewRenderer(),
		rasterizer: rasterizer,
	}
	s.styles.Store(&styles)
	return s, nil
}

func loadStyles(filename string) (fileicon.Styles, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening styles file: %w", err)
	}
	defer file.Close()
	styles, err := fileicon.LoadStyles(file)
	if err != nil {
		return nil, fmt.Errorf("loading styles from %s: %w", filename, err)
	}
	return styles, nil
}

// ReloadStyles reloads the styles file. The current styles are kept if the file cannot be loaded.
func (s *Service) ReloadStyles(ctx context.Context) error {
	if s.opts.StylesFile == "" {
		return nil
	}
	styles, err := loadStyles(s.opts.StylesFile)
	if err != nil {
		return err
	}
	s.styles.Store(&styles)
	s.log.DebugContext(ctx, "reloaded styles", "styles", len(styles))
	return nil
}

// WithLogger sets the logger of the service, its renderer and its rasterizer.
func (s *Service) WithLogger(logger *slog.Logger) *Service {
	s.log = logger
	s.renderer.WithLogger(logger)
	s.rasterizer.WithLogger(logger)
	return s
}

// WithRenderer sets the renderer.
func (s *Service) WithRenderer(renderer *fileicon.Renderer) *Service {
	s.renderer = renderer
	return s
}

// Register registers the service's routes on server.
func (s *Service) Register(server *fhttp.Server) error {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"GET /icon.svg", s.handleIcon},
		{"GET /icon.png", s.handleIcon},
		{"GET /icon/{file}", s.handleExtensionIcon},
		{"GET /gallery", s.handleGallery},
	}
	for _, route := range routes {
		if err := server.RegisterRoute(route.pattern, route.handler); err != nil {
			return fmt.Errorf("registering route: %w", err)
		}
	}
	return nil
}

// Styles returns the styles the service renders extensions with.
func (s *Service) Styles() fileicon.Styles { return *s.styles.Load() }

func (s *Service) handleIcon(w http.ResponseWriter, r *http.Request) {
	opts := fileicon.DefaultOptions()
	if err := applyQuery(opts, r.URL.Query()); err != nil {
		s.log.DebugContext(r.Context(), "bad icon request", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeIcon(w, r, "icon", path.Ext(r.URL.Path), opts)
}

func (s *Service) handleExtensionIcon(w http.ResponseWriter, r *http.Request) {
	file := r.PathValue("file")
	format := path.Ext(file)
	if format != ".svg" && format != ".png" {
		http.NotFound(w, r)
		return
	}
	extension := strings.TrimSuffix(file, format)
	opts := s.Styles().Options(extension)
	if err := applyQuery(opts, r.URL.Query()); err != nil {
		s.log.DebugContext(r.Context(), "bad icon request", "extension", extension, "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.writeIcon(w, r, "extension", format, opts)
}

func (s *Service) writeIcon(w http.ResponseWriter, r *http.Request, route, format string, opts *fileicon.Options) {
	start := time.Now()
	var body bytes.Buffer
	contentType := contentTypeSVG
	if format == ".png" {
		size := cmp.Or(s.opts.DefaultPNGSize, defaultPNGSize)
		if query := r.URL.Query(); query.Has("size") {
			var err error
			if size, err = strconv.Atoi(query.Get("size")); err != nil {
				http.Error(w, fmt.Sprintf("size: invalid integer %q", query.Get("size")), http.StatusBadRequest)
				return
			}
		}
		if err := s.rasterizer.EncodePNG(&body, opts, size); err != nil {
			s.log.DebugContext(r.Context(), "rasterizing icon", "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		contentType = contentTypePNG
	} else {
		s.renderer.Render(opts).WriteTo(&body)
	}
	observeRender(route, format, opts, start)

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", cacheControl)
	if _, err := body.WriteTo(w); err != nil {
		s.log.WarnContext(r.Context(), "writing icon", "error", err)
	}
}

func (s *Service) handleGallery(w http.ResponseWriter, r *http.Request) {
	page := gallery.NewPage(s.opts.GalleryTitle, s.renderer, s.Styles())
	var buf bytes.Buffer
	if err := gallery.Render(&buf, page); err != nil {
		s.log.ErrorContext(r.Context(), "rendering gallery", "error", err)
		http.Error(w, "rendering gallery", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	if _, err := buf.WriteTo(w); err != nil {
		s.log.WarnContext(r.Context(), "writing gallery", "error", err)
	}
}
