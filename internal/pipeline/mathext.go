package pipeline

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Math keeps TeX between dollar delimiters away from Markdown parsing and
// emits it inside KaTeX auto-render delimiters:
//
//	$x^2$          -> <span class="math inline">\(x^2\)</span>
//	$$x^2$$        -> <span class="math display">\[x^2\]</span>
//	$$ (own line)  -> <div class="math display">\[...\]</div>
//
// Typesetting happens in the browser. Unbalanced delimiters stay literal
// text, so malformed math never fails the conversion.
var Math = &mathExtension{}

type mathExtension struct{}

func (e *mathExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(
		parser.WithBlockParsers(util.Prioritized(&mathBlockParser{}, 650)),
		parser.WithInlineParsers(util.Prioritized(&mathInlineParser{}, 150)),
	)
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(&mathHTMLRenderer{}, 500),
	))
}

const mathDelimiter = '$'

// ---------------------------------------------------------------------------
// AST
// ---------------------------------------------------------------------------

// KindMathInline is the NodeKind of MathInline.
var KindMathInline = ast.NewNodeKind("MathInline")

// MathInline is a TeX expression inside a paragraph.
type MathInline struct {
	ast.BaseInline
	Display bool
	Value   []byte
}

func (n *MathInline) Kind() ast.NodeKind { return KindMathInline }

func (n *MathInline) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{"Value": string(n.Value)}, nil)
}

// KindMathBlock is the NodeKind of MathBlock.
var KindMathBlock = ast.NewNodeKind("MathBlock")

// MathBlock is a display expression fenced by "$$" lines.
type MathBlock struct {
	ast.BaseBlock
}

func (n *MathBlock) Kind() ast.NodeKind { return KindMathBlock }

func (n *MathBlock) IsRaw() bool { return true }

func (n *MathBlock) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

// ---------------------------------------------------------------------------
// Inline parser
// ---------------------------------------------------------------------------

type mathInlineParser struct{}

func (p *mathInlineParser) Trigger() []byte {
	return []byte{mathDelimiter}
}

// Parse matches "$...$" or "$$...$$" on the current line. An inline opener
// must not be followed by a space and its closer must not be preceded by one
// or followed by a digit, so prices like "$5 and $10" stay text.
func (p *mathInlineParser) Parse(parent ast.Node, block text.Reader, pc parser.Context) ast.Node {
	line, _ := block.PeekLine()

	opener := 0
	for opener < len(line) && line[opener] == mathDelimiter {
		opener++
	}
	if opener > 2 {
		return nil
	}
	display := opener == 2

	rest := line[opener:]
	if len(rest) == 0 || (!display && isMathSpace(rest[0])) {
		return nil
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '\\':
			i++
			continue
		case '\n':
			return nil
		case mathDelimiter:
		default:
			continue
		}

		if display {
			if i+1 >= len(rest) || rest[i+1] != mathDelimiter {
				continue
			}
		} else {
			if isMathSpace(rest[i-1]) || (i+1 < len(rest) && isDigit(rest[i+1])) {
				continue
			}
		}

		value := bytes.TrimSpace(rest[:i])
		if len(value) == 0 {
			return nil
		}
		block.Advance(opener + i + opener)
		return &MathInline{Display: display, Value: append([]byte(nil), value...)}
	}

	return nil
}

func isMathSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n'
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// ---------------------------------------------------------------------------
// Block parser
// ---------------------------------------------------------------------------

type mathBlockParser struct{}

func (b *mathBlockParser) Trigger() []byte {
	return []byte{mathDelimiter}
}

func (b *mathBlockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	line, segment := reader.PeekLine()
	pos := pc.BlockOffset()
	if pos < 0 || !isMathFence(line[pos:]) {
		return nil, parser.NoChildren
	}
	reader.Advance(segment.Len() - 1)
	return &MathBlock{}, parser.NoChildren
}

func (b *mathBlockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	line, segment := reader.PeekLine()
	if isMathFence(util.TrimLeftSpace(line)) {
		newline := 1
		if line[len(line)-1] != '\n' {
			newline = 0
		}
		reader.Advance(segment.Len() - newline)
		return parser.Close
	}
	node.Lines().Append(segment)
	reader.Advance(segment.Len() - 1)
	return parser.Continue | parser.NoChildren
}

func (b *mathBlockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {}

func (b *mathBlockParser) CanInterruptParagraph() bool { return true }

func (b *mathBlockParser) CanAcceptIndentedLine() bool { return false }

// isMathFence reports whether line is "$$" followed only by blanks.
func isMathFence(line []byte) bool {
	return len(line) >= 2 && line[0] == mathDelimiter && line[1] == mathDelimiter &&
		util.IsBlank(line[2:])
}

// ---------------------------------------------------------------------------
// Renderer
// ---------------------------------------------------------------------------

type mathHTMLRenderer struct{}

func (r *mathHTMLRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindMathInline, r.renderMathInline)
	reg.Register(KindMathBlock, r.renderMathBlock)
}

func (r *mathHTMLRenderer) renderMathInline(
	w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*MathInline)
	if n.Display {
		_, _ = w.WriteString(`<span class="math display">\[`)
		_, _ = w.Write(util.EscapeHTML(n.Value))
		_, _ = w.WriteString(`\]</span>`)
	} else {
		_, _ = w.WriteString(`<span class="math inline">\(`)
		_, _ = w.Write(util.EscapeHTML(n.Value))
		_, _ = w.WriteString(`\)</span>`)
	}
	return ast.WalkSkipChildren, nil
}

func (r *mathHTMLRenderer) renderMathBlock(
	w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	_, _ = w.WriteString(`<div class="math display">\[`)
	lines := node.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		_, _ = w.Write(util.EscapeHTML(seg.Value(source)))
	}
	_, _ = w.WriteString("\\]</div>\n")
	return ast.WalkSkipChildren, nil
}
