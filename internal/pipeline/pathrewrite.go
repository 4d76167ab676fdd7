package pipeline

import (
	"net/url"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	// Full document: starts with <!DOCTYPE or <html
	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	nodes, err := parseFragment(content)
	if err != nil {
		return nil, true, err
	}

	// Wrap nodes in a container for uniform traversal
	container := &html.Node{Type: html.DocumentNode}
	for _, n := range nodes {
		container.AppendChild(n)
	}

	return container, true, nil
}

// parseFragment parses content with a body context to avoid wrapping.
func parseFragment(content string) ([]*html.Node, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Body,
		Data:     "body",
	}
	return html.ParseFragment(strings.NewReader(content), context)
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding <html><body> wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// resolveLocalPath maps an img src to a filesystem path.
// Returns false for remote, protocol-relative, data and anchor references.
// Relative paths are joined to sourceDir; file:// URLs are decoded.
func resolveLocalPath(src, sourceDir string) (string, bool) {
	if src == "" || isRemoteRef(src) {
		return "", false
	}

	if strings.HasPrefix(src, "file://") {
		u, err := url.Parse(src)
		if err != nil || u.Path == "" {
			return "", false
		}
		return filepath.FromSlash(u.Path), true
	}

	// URL-ish schemes other than file (mailto:, javascript:, cid:, ...)
	if u, err := url.Parse(src); err == nil && len(u.Scheme) > 1 {
		return "", false
	}

	path := filepath.FromSlash(src)
	if filepath.IsAbs(path) {
		return path, true
	}
	return filepath.Join(sourceDir, path), true
}

// isRemoteRef returns true for references that must never be read from disk.
func isRemoteRef(src string) bool {
	lower := strings.ToLower(src)
	return strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "data:") ||
		strings.HasPrefix(lower, "//") ||
		strings.HasPrefix(lower, "#")
}
