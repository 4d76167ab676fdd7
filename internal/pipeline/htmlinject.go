package pipeline

import (
	"context"
	"strings"
)

// Style sheet names, in cascade order.
const (
	SheetBase      = "base"
	SheetHighlight = "highlight"
	SheetDeck      = "deck"
)

// StyleBlock is one named style sheet placed in the document head.
type StyleBlock struct {
	Name string
	CSS  string
}

// StyleInjector places style blocks into a rendered HTML document.
type StyleInjector interface {
	Inject(ctx context.Context, document string, blocks []StyleBlock) (string, error)
}

// HeadStyles writes each non-blank block as <style data-sheet="name"> right
// before </head>, keeping the given order. Documents without a head get the
// blocks prepended.
type HeadStyles struct{}

func (HeadStyles) Inject(ctx context.Context, document string, blocks []StyleBlock) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, b := range blocks {
		if strings.TrimSpace(b.CSS) == "" {
			continue
		}
		sb.WriteString(`<style data-sheet="`)
		sb.WriteString(b.Name)
		sb.WriteString("\">\n")
		sb.WriteString(sanitizeCSS(b.CSS))
		sb.WriteString("\n</style>\n")
	}
	styles := sb.String()
	if styles == "" {
		return document, nil
	}

	if idx := strings.Index(strings.ToLower(document), "</head>"); idx != -1 {
		return document[:idx] + styles + document[idx:], nil
	}
	return styles + document, nil
}

// sanitizeCSS keeps the sheet from closing its <style> element early.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}
