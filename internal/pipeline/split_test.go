package pipeline

// Notes:
// - A "---" line inside a body always starts a new page. Markdown thematic
//   breaks must be written as "***" or "___" in decks; this is tested as
//   regular splitting behavior.

import (
	"reflect"
	"testing"
)

// ---------------------------------------------------------------------------
// TestSplitPages - Front matter splitting
// ---------------------------------------------------------------------------

func TestSplitPages(t *testing.T) {
	t.Parallel()

	type want struct {
		config string
		body   string
	}

	tests := []struct {
		name  string
		input string
		want  []want
	}{
		{
			name:  "empty document",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: "\n  \n\t\n",
			want:  nil,
		},
		{
			name:  "body without front matter",
			input: "# Title\n\nText",
			want:  []want{{"", "# Title\n\nText"}},
		},
		{
			name:  "cover and content pages",
			input: "---\nlayout: cover\n---\n# Deck\n---\ntext_size: 30px\n---\n## Slide\n",
			want: []want{
				{"layout: cover", "# Deck"},
				{"text_size: 30px", "## Slide"},
			},
		},
		{
			name:  "text before first delimiter is its own page",
			input: "Intro\n---\nlayout: cover\n---\n# Deck",
			want: []want{
				{"", "Intro"},
				{"layout: cover", "# Deck"},
			},
		},
		{
			name:  "page with empty body is dropped",
			input: "---\na: 1\n---\n\n---\nb: 2\n---\nBody",
			want:  []want{{"b: 2", "Body"}},
		},
		{
			name:  "empty config block",
			input: "---\n---\nBody",
			want:  []want{{"", "Body"}},
		},
		{
			name:  "multi-line config is trimmed",
			input: "---\n\nlayout: content\ntitle_size: 40px\n\n---\nBody",
			want:  []want{{"layout: content\ntitle_size: 40px", "Body"}},
		},
		{
			name:  "unclosed config becomes body",
			input: "---\nlayout: cover\n# Deck",
			want:  []want{{"", "layout: cover\n# Deck"}},
		},
		{
			name:  "delimiter with trailing spaces is text",
			input: "---   \nnot config",
			want:  []want{{"", "---   \nnot config"}},
		},
		{
			name:  "indented delimiter is text",
			input: "  ---\nBody",
			want:  []want{{"", "---\nBody"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			pages := SplitPages(tt.input)

			if len(pages) != len(tt.want) {
				t.Fatalf("SplitPages() returned %d pages, want %d: %+v", len(pages), len(tt.want), pages)
			}
			for i, p := range pages {
				if p.Index != i {
					t.Errorf("pages[%d].Index = %d, want %d", i, p.Index, i)
				}
				if p.RawConfig != tt.want[i].config {
					t.Errorf("pages[%d].RawConfig = %q, want %q", i, p.RawConfig, tt.want[i].config)
				}
				if p.Body != tt.want[i].body {
					t.Errorf("pages[%d].Body = %q, want %q", i, p.Body, tt.want[i].body)
				}
			}
		})
	}
}

func TestSplitPages_IndicesAreDense(t *testing.T) {
	t.Parallel()

	doc := "---\nlayout: cover\n---\n\n---\nx: 1\n---\nA\n---\n---\n\n---\n---\nB"
	pages := SplitPages(doc)

	var got []int
	for _, p := range pages {
		got = append(got, p.Index)
	}
	if want := []int{0, 1}; !reflect.DeepEqual(got, want) {
		t.Errorf("indices = %v, want %v", got, want)
	}
}

// ---------------------------------------------------------------------------
// TestPage - Identifiers and config presence
// ---------------------------------------------------------------------------

func TestPage_ID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		index int
		want  string
	}{
		{0, "page-0"},
		{7, "page-7"},
		{42, "page-42"},
	}

	for _, tt := range tests {
		if got := (Page{Index: tt.index}).ID(); got != tt.want {
			t.Errorf("Page{Index: %d}.ID() = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestPage_HasConfig(t *testing.T) {
	t.Parallel()

	if (Page{}).HasConfig() {
		t.Error("HasConfig() = true for empty RawConfig")
	}
	if !(Page{RawConfig: "layout: cover"}).HasConfig() {
		t.Error("HasConfig() = false for non-empty RawConfig")
	}
}

// ---------------------------------------------------------------------------
// TestNormalizeLineEndings
// ---------------------------------------------------------------------------

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unix unchanged", "a\nb", "a\nb"},
		{"windows", "a\r\nb\r\n", "a\nb\n"},
		{"classic mac", "a\rb", "a\nb"},
		{"mixed", "a\r\nb\rc\n", "a\nb\nc\n"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := NormalizeLineEndings(tt.input); got != tt.want {
				t.Errorf("NormalizeLineEndings(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitPages_CRLFAfterNormalization(t *testing.T) {
	t.Parallel()

	pages := SplitPages(NormalizeLineEndings("---\r\nlayout: cover\r\n---\r\n# Deck\r\n"))
	if len(pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(pages))
	}
	if pages[0].RawConfig != "layout: cover" {
		t.Errorf("RawConfig = %q, want %q", pages[0].RawConfig, "layout: cover")
	}
}
