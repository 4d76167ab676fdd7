package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// echoRenderer wraps Markdown in <p> without parsing it, so tests see exactly
// which text reached the renderer.
type echoRenderer struct {
	mu     sync.Mutex
	inputs []string
	err    error
}

func (r *echoRenderer) Render(_ context.Context, markdown string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inputs = append(r.inputs, markdown)
	if r.err != nil {
		return "", r.err
	}
	return "<p>" + markdown + "</p>", nil
}

// ---------------------------------------------------------------------------
// TestRenderFragments - Mixed Markdown and HTML bodies
// ---------------------------------------------------------------------------

func TestRenderFragments(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		want       string
		wantInputs []string
	}{
		{
			name:       "plain markdown",
			body:       "# Title\n\ntext",
			want:       "<div><p># Title\n\ntext</p></div>",
			wantInputs: []string{"# Title\n\ntext"},
		},
		{
			name:       "markdown inside an author element",
			body:       "<div class=\"columns\">\n\n- a\n\n</div>",
			want:       `<div class="columns"><div><p>- a</p></div></div>`,
			wantInputs: []string{"- a"},
		},
		{
			name:       "text around an element",
			body:       "Intro\n<section>mid</section>\nOutro",
			want:       "<div><p>Intro</p></div><section><div><p>mid</p></div></section><div><p>Outro</p></div>",
			wantInputs: []string{"Intro", "mid", "Outro"},
		},
		{
			name: "whitespace between elements is kept",
			body: "<section>a</section>\n  <section>b</section>",
			want: "<section><div><p>a</p></div></section>\n  <section><div><p>b</p></div></section>",
		},
		{
			name: "nested elements",
			body: "<div><aside>*note*</aside></div>",
			want: "<div><aside><div><p>*note*</p></div></aside></div>",
		},
		{
			name:       "preformatted text is verbatim",
			body:       "<pre>  *not* markdown  </pre>",
			want:       "<pre>  *not* markdown  </pre>",
			wantInputs: []string{},
		},
		{
			name:       "script is verbatim",
			body:       "<script>if (a < b) { go(); }</script>",
			want:       "<script>if (a < b) { go(); }</script>",
			wantInputs: []string{},
		},
		{
			name:       "style is verbatim",
			body:       "<style>.x > p { color: red; }</style>",
			want:       "<style>.x > p { color: red; }</style>",
			wantInputs: []string{},
		},
		{
			name:       "comment is kept",
			body:       "<!-- speaker note -->",
			want:       "<!-- speaker note -->",
			wantInputs: []string{},
		},
		{
			name: "void element has no closing tag",
			body: `<img src="chart.png" alt="Chart">`,
			want: `<img src="chart.png" alt="Chart">`,
		},
		{
			name: "attribute values are escaped",
			body: `<span title="a &quot;quote&quot; &amp; more">x</span>`,
			want: `<span title="a &#34;quote&#34; &amp; more"><div><p>x</p></div></span>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := &echoRenderer{}
			got, err := RenderFragments(context.Background(), r, tt.body)
			if err != nil {
				t.Fatalf("RenderFragments() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderFragments(%q)\n got: %q\nwant: %q", tt.body, got, tt.want)
			}
			if tt.wantInputs != nil && strings.Join(r.inputs, "|") != strings.Join(tt.wantInputs, "|") {
				t.Errorf("renderer inputs = %q, want %q", r.inputs, tt.wantInputs)
			}
		})
	}
}

func TestRenderFragments_RendererError(t *testing.T) {
	t.Parallel()

	boom := errors.New("renderer exploded")
	r := &echoRenderer{err: boom}

	_, err := RenderFragments(context.Background(), r, "<div>text</div>")
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
}

func TestRenderFragments_WithGoldmark(t *testing.T) {
	t.Parallel()

	body := "<div class=\"columns\">\n<div>\n\n## Left\n\n$x^2$\n\n</div>\n<div>\n\n**Right**\n\n</div>\n</div>"

	got, err := RenderFragments(context.Background(), NewGoldmarkRenderer(), body)
	if err != nil {
		t.Fatalf("RenderFragments() error: %v", err)
	}

	for _, want := range []string{
		`<div class="columns">`,
		`<h2 id="left">Left</h2>`,
		`<span class="math inline">\(x^2\)</span>`,
		"<strong>Right</strong>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot: %s", want, got)
		}
	}
}

func TestRenderFragments_EscapedMarkupKeepsText(t *testing.T) {
	t.Parallel()

	body := "<div>\n\nUse a &lt;b&gt; tag, AT&amp;amp;T.\n\n</div>"

	got, err := RenderFragments(context.Background(), NewGoldmarkRenderer(), body)
	if err != nil {
		t.Fatalf("RenderFragments() error: %v", err)
	}
	if strings.Contains(got, "raw HTML omitted") {
		t.Errorf("escaped tag was dropped\ngot: %s", got)
	}
	for _, want := range []string{"&lt;b&gt; tag", "AT&amp;amp;T"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot: %s", want, got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestReescapeDecoded - Decoded markup outside code
// ---------------------------------------------------------------------------

func TestReescapeDecoded(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		in, want string
	}{
		"plain text":        {"a < b && c", "a < b && c"},
		"tag opener":        {"a <b> c", "a &lt;b> c"},
		"closing tag":       {"</div>", "&lt;/div>"},
		"comment":           {"<!-- x -->", "&lt;!-- x -->"},
		"entity":            {"&copy; 2026", "&amp;copy; 2026"},
		"numeric entity":    {"&#60;", "&amp;#60;"},
		"code span":         {"use `<b>` here", "use `<b>` here"},
		"double code span":  {"``a ` <b>`` <i>", "``a ` <b>`` &lt;i>"},
		"unclosed backtick": {"` <b>", "` &lt;b>"},
		"fenced block":      {"```html\n<b>&amp;\n```\n<i>", "```html\n<b>&amp;\n```\n&lt;i>"},
		"tilde fence":       {"~~~\n<b>\n~~~", "~~~\n<b>\n~~~"},
		"indented fence":    {"    ```\n<b>", "    ```\n&lt;b>"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			if got := reescapeDecoded(tt.in); got != tt.want {
				t.Errorf("reescapeDecoded(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
