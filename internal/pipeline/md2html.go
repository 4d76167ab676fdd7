package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// ErrHTMLConversion indicates HTML conversion failed.
var ErrHTMLConversion = errors.New("HTML conversion failed")

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = "github"

// Renderer abstracts Markdown to HTML fragment conversion.
type Renderer interface {
	Render(ctx context.Context, markdown string) (string, error)
}

// GoldmarkRenderer converts Markdown to HTML fragments using goldmark (pure Go).
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewGoldmarkRenderer creates a GoldmarkRenderer with GFM extensions, math
// delimiting and syntax highlighting.
func NewGoldmarkRenderer() *GoldmarkRenderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,      // Tables, strikethrough, autolinks, task lists
			extension.Footnote, // [^1] footnotes
			Math,               // $...$ and $$...$$ for KaTeX
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // colors come from HighlightCSS
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			// WithUnsafe() NOT used: raw HTML lives outside the rendered text nodes.
		),
	)
	return &GoldmarkRenderer{md: md}
}

// Render converts Markdown to an HTML fragment.
// Supports context cancellation via goroutine + select pattern since
// Goldmark doesn't natively support context.
func (r *GoldmarkRenderer) Render(ctx context.Context, markdown string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		done <- result{html: buf.String()}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-done:
		return res.html, res.err
	}
}

// HighlightCSS writes the class-based stylesheet of a chroma style.
// Unknown names fall back to chroma's default style.
func HighlightCSS(w io.Writer, styleName string) error {
	return writeHighlightCSS(w, styles.Get(styleName))
}

func writeHighlightCSS(w io.Writer, style *chroma.Style) error {
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(w, style); err != nil {
		return fmt.Errorf("writing %s highlight style: %w", style.Name, err)
	}
	return nil
}

// HasHighlightStyle reports whether chroma registers a style under name.
func HasHighlightStyle(name string) bool {
	_, ok := styles.Registry[name]
	return ok
}

// HighlightStyles lists the registered chroma style names, sorted.
func HighlightStyles() []string {
	return styles.Names()
}

// Compile-time interface check.
var _ Renderer = (*GoldmarkRenderer)(nil)
