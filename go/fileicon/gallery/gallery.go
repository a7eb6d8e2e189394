// Package gallery renders an HTML sheet previewing icons side by side.
package gallery

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"

	"github.com/Masterminds/sprig/v3"

	"github.com/malonaz/fileicon/go/fileicon"
)

//go:embed gallery.html.tmpl
var pageTemplateText string

var pageTemplate = template.Must(template.New("gallery").Funcs(sprig.FuncMap()).Parse(pageTemplateText))

// Entry is one previewed icon.
type Entry struct {
	Caption string
	SVG     template.HTML
}

// Section is a titled group of entries.
type Section struct {
	Title   string
	Entries []Entry
}

// Page is a gallery page.
type Page struct {
	Title    string
	Sections []Section
}

// NewEntry renders an icon into an entry.
func NewEntry(caption string, doc *fileicon.Document) Entry {
	// The document escapes every attribute and text node it emits.
	return Entry{Caption: caption, SVG: template.HTML(doc.String())}
}

// NewPage builds a page with one icon per glyph type followed by one icon per styled extension.
func NewPage(title string, renderer *fileicon.Renderer, styles fileicon.Styles) *Page {
	types := Section{Title: "types"}
	for _, typ := range fileicon.Types() {
		opts := fileicon.DefaultOptions()
		opts.Type = typ
		types.Entries = append(types.Entries, NewEntry(typ.String(), renderer.Render(opts)))
	}

	extensions := Section{Title: "extensions"}
	for _, extension := range styles.Extensions() {
		extensions.Entries = append(extensions.Entries, NewEntry("."+extension, renderer.Render(styles.Options(extension))))
	}

	return &Page{Title: title, Sections: []Section{types, extensions}}
}

// Render writes page as HTML.
func Render(w io.Writer, page *Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("executing gallery template: %w", err)
	}
	return nil
}
