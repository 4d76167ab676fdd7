package pipeline

import (
	"fmt"
	"strings"
)

// BuildStyleSheet generates the deck CSS from resolved pages.
// Each page with a config contributes one block, in page order: a cover page
// emits the global block built from the globals in effect after it, any other
// page emits a block scoped to its container. Later cover blocks cascade over
// earlier ones.
func BuildStyleSheet(pages []Page) string {
	blocks := make([]string, 0, len(pages))
	for _, p := range pages {
		if !p.HasConfig() {
			continue
		}
		if p.Layout == LayoutCover {
			blocks = append(blocks, buildGlobalCSS(p.Global))
		} else {
			blocks = append(blocks, buildPageCSS(p.ID(), p.Settings))
		}
	}
	return strings.Join(blocks, "\n")
}

// buildGlobalCSS generates the deck-wide rules: a vertically centered cover
// and default content typography.
func buildGlobalCSS(g GlobalSettings) string {
	var buf strings.Builder

	buf.WriteString(`
body {
  margin: 0;
}

/* Cover: center the rendered markdown wrapper */
.cover div {
  display: flex;
  flex-direction: column;
  justify-content: center;
  align-items: center;
  height: 100vh;
}
`)

	fmt.Fprintf(&buf, `
.cover h1 {
  font-size: %s;
  margin-bottom: 10px;
}

.cover h2 {
  font-size: %s;
  margin: 5px;
}
`, g.CoverTitleSize, g.CoverSubtitleSize)

	buf.WriteString(buildContentRules(".content", g.PageDefaults()))
	return buf.String()
}

// buildPageCSS generates the typography of one content page.
func buildPageCSS(id string, s PageSettings) string {
	return buildContentRules(".content#"+id, s)
}

// buildContentRules generates title, text, code and math sizes under scope.
func buildContentRules(scope string, s PageSettings) string {
	return fmt.Sprintf(`
%[1]s h2 {
  font-size: %[2]s;
  margin-top: 20px;
  border-bottom: 1px solid #000;
  padding-bottom: 10px;
}

%[1]s p, %[1]s li {
  font-size: %[3]s;
}

%[1]s code {
  font-size: %[4]s;
}

%[1]s .katex {
  font-size: %[5]s;
}
`, scope, s.TitleSize, s.TextSize, s.CodeSize, s.MathSize)
}
