// Package pipeline implements the Markdown-to-HTML stages of a slide deck.
//
// The stages run in order:
//   - SplitPages cuts the deck into pages at front-matter blocks
//   - ResolvePages folds page configs into typography settings; cover pages
//     update the deck-wide values, content pages override only themselves
//   - RenderFragments renders the Markdown text of each page body while
//     keeping author-written HTML elements
//   - AssetInliner embeds local images as data URIs
//   - BuildStyleSheet and DocumentAssembler produce the final document
//
// PDF generation is handled separately by the root md2slides package using
// headless Chrome. The pipeline only deals with document structure, so its
// output can be opened in any browser.
package pipeline
