package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// ErrDocumentRender indicates the document template failed to execute.
var ErrDocumentRender = errors.New("document template rendering failed")

// PageBreak separates page containers in the document body.
const PageBreak = `<div style="page-break-before: always"></div>`

// KaTeX assets loaded by the default document head.
const (
	KaTeXVersion = "0.16.8"
	katexCDN     = "https://cdn.jsdelivr.net/npm/katex@"
)

// HeadLinks lists the external resources of the document head.
type HeadLinks struct {
	Stylesheets []string
	Scripts     []string
}

// KaTeXHeadLinks returns the KaTeX stylesheet and scripts for version.
func KaTeXHeadLinks(version string) HeadLinks {
	base := katexCDN + version + "/dist/"
	return HeadLinks{
		Stylesheets: []string{base + "katex.min.css"},
		Scripts: []string{
			base + "katex.min.js",
			base + "contrib/auto-render.min.js",
		},
	}
}

// DefaultHeadLinks returns the head resources used when none are configured.
func DefaultHeadLinks() HeadLinks {
	return KaTeXHeadLinks(KaTeXVersion)
}

// WrapPage places a page's HTML inside its container. The container class is
// the page layout and its id is the page identifier.
func WrapPage(p Page) string {
	layout := p.Layout
	if layout == "" {
		layout = LayoutContent
	}
	return `<div class="` + string(layout) + `" id="` + p.ID() + `">` + p.HTML + `</div>`
}

// JoinPages wraps every page and separates containers with page breaks.
func JoinPages(pages []Page) string {
	containers := make([]string, len(pages))
	for i, p := range pages {
		containers[i] = WrapPage(p)
	}
	return strings.Join(containers, PageBreak)
}

// DocumentParts holds everything that goes into the final HTML document.
type DocumentParts struct {
	Title string
	Lang  string
	Pages []Page
	Head  HeadLinks
	// Style sheets in cascade order: later entries win.
	BaseCSS      string
	HighlightCSS string
	DeckCSS      string
}

// documentData is the view passed to the document template.
type documentData struct {
	Title       string
	Lang        string
	Stylesheets []string
	Scripts     []string
	Body        template.HTML
}

// DocumentAssembler renders the HTML document shell around the page
// containers.
type DocumentAssembler struct {
	tmpl   *template.Template
	styles StyleInjector
}

// NewDocumentAssembler creates a DocumentAssembler from template content.
// Returns error if the template cannot be parsed.
func NewDocumentAssembler(tmplContent string) (*DocumentAssembler, error) {
	tmpl, err := template.New("document").Parse(tmplContent)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentAssembler{tmpl: tmpl, styles: HeadStyles{}}, nil
}

// Assemble renders the document: the template shell with head links, the
// joined page containers as body, and the style sheets injected into the
// head.
func (d *DocumentAssembler) Assemble(ctx context.Context, parts DocumentParts) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	data := documentData{
		Title:       parts.Title,
		Lang:        parts.Lang,
		Stylesheets: parts.Head.Stylesheets,
		Scripts:     parts.Head.Scripts,
		// #nosec G203 -- page HTML is produced by the renderer and inliner
		Body: template.HTML(JoinPages(parts.Pages)),
	}
	if data.Lang == "" {
		data.Lang = "en"
	}

	var buf bytes.Buffer
	if err := d.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}

	return d.styles.Inject(ctx, buf.String(), []StyleBlock{
		{Name: SheetBase, CSS: parts.BaseCSS},
		{Name: SheetHighlight, CSS: parts.HighlightCSS},
		{Name: SheetDeck, CSS: parts.DeckCSS},
	})
}
