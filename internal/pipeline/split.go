package pipeline

import (
	"strconv"
	"strings"
)

// frontMatterDelimiter opens and closes a page's YAML block.
// It must be alone on its line.
const frontMatterDelimiter = "---"

// Page is one slide of the deck. SplitPages fills Index, RawConfig and Body;
// later stages fill the remaining fields.
type Page struct {
	Index     int
	RawConfig string // trimmed YAML text, empty when the page has no config
	Body      string // trimmed Markdown text, never empty

	Layout   Layout
	Settings PageSettings
	Global   GlobalSettings // global values in effect once this page is resolved
	HTML     string
}

// ID returns the container identifier of the page.
func (p Page) ID() string {
	return "page-" + strconv.Itoa(p.Index)
}

// HasConfig reports whether the page carried a non-empty front-matter block.
func (p Page) HasConfig() bool {
	return p.RawConfig != ""
}

// SplitPages cuts a document into pages at front-matter blocks.
//
// A block opens with a "---" line, holds optional YAML up to the closing
// "---" line, and is followed by a body that runs up to the next "---" line
// or the end of input. Text before the first delimiter forms a page without
// config. Pages whose trimmed body is empty are dropped, so indices are dense
// and follow document order.
//
// An opening delimiter that is never closed turns the remaining lines into a
// body without config.
func SplitPages(doc string) []Page {
	var (
		pages    []Page
		config   []string
		body     []string
		inConfig bool
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text != "" {
			pages = append(pages, Page{
				Index:     len(pages),
				RawConfig: strings.TrimSpace(strings.Join(config, "\n")),
				Body:      text,
			})
		}
		config, body = nil, nil
	}

	for _, line := range strings.Split(doc, "\n") {
		if line == frontMatterDelimiter {
			if inConfig {
				inConfig = false
				continue
			}
			flush()
			inConfig = true
			continue
		}
		if inConfig {
			config = append(config, line)
		} else {
			body = append(body, line)
		}
	}

	if inConfig {
		body, config = config, nil
	}
	flush()

	return pages
}
