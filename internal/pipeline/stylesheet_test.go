package pipeline

import (
	"strings"
	"testing"
)

// resolve is a test helper that splits and resolves a deck.
func resolve(t *testing.T, doc string) []Page {
	t.Helper()
	pages, _, err := ResolvePages(DefaultGlobalSettings(), SplitPages(doc))
	if err != nil {
		t.Fatalf("ResolvePages() error: %v", err)
	}
	return pages
}

// ---------------------------------------------------------------------------
// TestBuildStyleSheet - Deck CSS generation
// ---------------------------------------------------------------------------

func TestBuildStyleSheet(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		doc         string
		wantContain []string
		wantAbsent  []string
	}{
		{
			name:       "pages without config emit nothing",
			doc:        "# One\n---\n---\n## Two",
			wantAbsent: []string{"font-size"},
		},
		{
			name: "cover emits global rules",
			doc:  "---\nlayout: cover\ncover_title_size: 70px\ncover_subtitle_size: 30px\n---\n# Deck",
			wantContain: []string{
				".cover h1 {\n  font-size: 70px;",
				".cover h2 {\n  font-size: 30px;",
				".content h2 {\n  font-size: " + DefaultContentTitleSize + ";",
				".content p, .content li {\n  font-size: " + DefaultTextSize + ";",
				".content code {\n  font-size: " + DefaultCodeSize + ";",
				".content .katex {\n  font-size: " + DefaultMathSize + ";",
				"justify-content: center;",
			},
			wantAbsent: []string{"#page-0"},
		},
		{
			name: "content page emits scoped rules",
			doc:  "# Deck\n---\ntitle_size: 40px\ntext_size: 30\n---\n## Slide",
			wantContain: []string{
				".content#page-1 h2 {\n  font-size: 40px;",
				".content#page-1 p, .content#page-1 li {\n  font-size: 30px;",
			},
			wantAbsent: []string{".cover h1", "#page-0"},
		},
		{
			name: "content page inherits cover globals",
			doc:  "---\nlayout: cover\ntext_size: 28px\n---\n# Deck\n---\ncode_size: 14px\n---\n## Slide",
			wantContain: []string{
				".content#page-1 p, .content#page-1 li {\n  font-size: 28px;",
				".content#page-1 code {\n  font-size: 14px;",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			css := BuildStyleSheet(resolve(t, tt.doc))

			for _, want := range tt.wantContain {
				if !strings.Contains(css, want) {
					t.Errorf("stylesheet missing %q\n%s", want, css)
				}
			}
			for _, absent := range tt.wantAbsent {
				if strings.Contains(css, absent) {
					t.Errorf("stylesheet should not contain %q\n%s", absent, css)
				}
			}
		})
	}
}

func TestBuildStyleSheet_BlocksFollowPageOrder(t *testing.T) {
	t.Parallel()

	doc := "---\nlayout: cover\ncover_title_size: 60px\n---\n# A\n" +
		"---\ntitle_size: 41px\n---\n## B\n" +
		"---\nlayout: cover\ncover_title_size: 90px\n---\n# C\n"
	css := BuildStyleSheet(resolve(t, doc))

	first := strings.Index(css, ".cover h1 {\n  font-size: 60px;")
	page := strings.Index(css, ".content#page-1 h2")
	second := strings.Index(css, ".cover h1 {\n  font-size: 90px;")

	if first < 0 || page < 0 || second < 0 {
		t.Fatalf("missing blocks (first=%d page=%d second=%d)\n%s", first, page, second, css)
	}
	if !(first < page && page < second) {
		t.Errorf("blocks out of order: first=%d page=%d second=%d", first, page, second)
	}
}

func TestBuildStyleSheet_Empty(t *testing.T) {
	t.Parallel()

	if got := BuildStyleSheet(nil); got != "" {
		t.Errorf("BuildStyleSheet(nil) = %q, want empty", got)
	}
}
