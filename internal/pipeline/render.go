package pipeline

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// verbatimElements keep their text untouched: rendering Markdown inside them
// would corrupt scripts, styles and preformatted content.
var verbatimElements = map[string]bool{
	"script":   true,
	"style":    true,
	"pre":      true,
	"code":     true,
	"textarea": true,
}

// voidElements have no closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// fragmentNode is a node of a parsed page body. It is one of textNode,
// elementNode or rawNode.
type fragmentNode interface {
	write(sb *strings.Builder)
}

// textNode is Markdown source sitting between HTML elements.
type textNode struct {
	Text string
}

// elementNode is an author-written HTML element.
type elementNode struct {
	Tag      string
	Attrs    []html.Attribute
	Children []fragmentNode
}

// rawNode is markup emitted as-is: rendered Markdown, verbatim elements,
// comments.
type rawNode struct {
	HTML string
}

func (n textNode) write(sb *strings.Builder) {
	sb.WriteString(html.EscapeString(n.Text))
}

func (n rawNode) write(sb *strings.Builder) {
	sb.WriteString(n.HTML)
}

func (n elementNode) write(sb *strings.Builder) {
	sb.WriteByte('<')
	sb.WriteString(n.Tag)
	for _, a := range n.Attrs {
		sb.WriteByte(' ')
		if a.Namespace != "" {
			sb.WriteString(a.Namespace)
			sb.WriteByte(':')
		}
		sb.WriteString(a.Key)
		sb.WriteString(`="`)
		sb.WriteString(html.EscapeString(a.Val))
		sb.WriteByte('"')
	}
	sb.WriteByte('>')
	if voidElements[n.Tag] {
		return
	}
	for _, c := range n.Children {
		c.write(sb)
	}
	sb.WriteString("</")
	sb.WriteString(n.Tag)
	sb.WriteByte('>')
}

// RenderFragments renders a page body that mixes Markdown and HTML.
//
// The body is parsed as an HTML fragment. Author elements are kept with their
// attributes; every text node holding more than whitespace is trimmed,
// rendered as Markdown and replaced by a <div> holding the result.
// Whitespace-only text is kept as-is, as is text inside script, style, pre,
// code and textarea elements.
func RenderFragments(ctx context.Context, r Renderer, body string) (string, error) {
	nodes, err := parseFragment(body)
	if err != nil {
		return "", fmt.Errorf("%w: parsing page body: %v", ErrHTMLConversion, err)
	}

	tree := make([]fragmentNode, 0, len(nodes))
	for _, n := range nodes {
		fn, err := fromHTML(n)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrHTMLConversion, err)
		}
		tree = append(tree, fn)
	}

	out, err := renderMarkdownNodes(ctx, r, tree)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range out {
		n.write(&sb)
	}
	return sb.String(), nil
}

// fromHTML converts a parsed node into the fragment tree.
func fromHTML(n *html.Node) (fragmentNode, error) {
	switch n.Type {
	case html.TextNode:
		return textNode{Text: n.Data}, nil
	case html.ElementNode:
		if verbatimElements[n.Data] {
			return renderRaw(n)
		}
		el := elementNode{
			Tag:   n.Data,
			Attrs: append([]html.Attribute(nil), n.Attr...),
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			child, err := fromHTML(c)
			if err != nil {
				return nil, err
			}
			el.Children = append(el.Children, child)
		}
		return el, nil
	default:
		return renderRaw(n)
	}
}

func renderRaw(n *html.Node) (fragmentNode, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return nil, err
	}
	return rawNode{HTML: sb.String()}, nil
}

// renderMarkdownNodes returns a new tree where Markdown text is rendered.
// The input tree is not modified.
func renderMarkdownNodes(ctx context.Context, r Renderer, nodes []fragmentNode) ([]fragmentNode, error) {
	out := make([]fragmentNode, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case textNode:
			text := strings.TrimSpace(v.Text)
			if text == "" {
				out = append(out, v)
				continue
			}
			rendered, err := r.Render(ctx, reescapeDecoded(text))
			if err != nil {
				return nil, err
			}
			out = append(out, rawNode{HTML: "<div>" + rendered + "</div>"})
		case elementNode:
			children, err := renderMarkdownNodes(ctx, r, v.Children)
			if err != nil {
				return nil, err
			}
			v.Children = children
			out = append(out, v)
		default:
			out = append(out, n)
		}
	}
	return out, nil
}

// reescapeDecoded undoes the entity decoding done by the HTML parser where
// it would change the Markdown: a "<" that opens a tag and an "&" that starts
// an entity. Any such sequence in a text node was written as an entity by
// the author, since a literal tag would have been parsed as an element.
// Code spans and fenced blocks are left alone; Markdown shows them verbatim.
func reescapeDecoded(md string) string {
	if !strings.ContainsAny(md, "<&") {
		return md
	}

	var sb strings.Builder
	sb.Grow(len(md) + 16)
	fence := ""
	for _, line := range strings.SplitAfter(md, "\n") {
		if marker := fenceMarker(line); marker != "" {
			switch {
			case fence == "":
				fence = marker
			case strings.HasPrefix(marker, fence[:1]) && len(marker) >= len(fence):
				fence = ""
			}
			sb.WriteString(line)
			continue
		}
		if fence != "" {
			sb.WriteString(line)
			continue
		}
		escapeLine(&sb, line)
	}
	return sb.String()
}

// fenceMarker returns the backtick or tilde run opening a fenced code line,
// or "" when line is not a fence.
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 || len(trimmed) < 3 {
		return ""
	}
	c := trimmed[0]
	if c != '`' && c != '~' {
		return ""
	}
	n := 0
	for n < len(trimmed) && trimmed[n] == c {
		n++
	}
	if n < 3 {
		return ""
	}
	return trimmed[:n]
}

// escapeLine writes line with tag and entity openers escaped outside code
// spans.
func escapeLine(sb *strings.Builder, line string) {
	for i := 0; i < len(line); {
		switch c := line[i]; {
		case c == '`':
			run := 1
			for i+run < len(line) && line[i+run] == '`' {
				run++
			}
			closing := strings.Index(line[i+run:], strings.Repeat("`", run))
			if closing < 0 {
				sb.WriteString(line[i : i+run])
				i += run
				continue
			}
			end := i + run + closing + run
			sb.WriteString(line[i:end])
			i = end
		case c == '<' && opensTag(line[i+1:]):
			sb.WriteString("&lt;")
			i++
		case c == '&' && startsEntity(line[i+1:]):
			sb.WriteString("&amp;")
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
}

func opensTag(rest string) bool {
	if rest == "" {
		return false
	}
	c := rest[0]
	return c == '/' || c == '!' || c == '?' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

func startsEntity(rest string) bool {
	semi := strings.IndexByte(rest, ';')
	if semi <= 0 || semi > 32 {
		return false
	}
	for i := 0; i < semi; i++ {
		c := rest[i]
		if !(c == '#' || (c >= '0' && c <= '9') || (c|0x20 >= 'a' && c|0x20 <= 'z')) {
			return false
		}
	}
	return true
}
