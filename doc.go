// Package md2slides converts Markdown slide decks to HTML and PDF using
// headless Chrome.
//
// # Deck Format
//
// A deck is a Markdown document cut into pages by YAML front matter. Every
// "---" block starts a new page; its keys pick the page layout and sizes:
//
//	---
//	layout: cover
//	cover_title_size: 72px
//	---
//	# Quarterly review
//	## Platform team
//	---
//	code_size: 16px
//	---
//	## Latency
//	Median dropped by $\frac{1}{3}$.
//
// Recognized keys are layout (cover, content, or any class name your
// stylesheet defines, treated like content), text_size, code_size,
// math_size and title_size for a single content page, and
// content_title_size, cover_title_size and cover_subtitle_size. Size keys
// on a cover page become the deck-wide defaults for every later page.
// Text before the first block is a content page with no configuration.
//
// # Quick Start
//
//	conv, err := md2slides.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, md2slides.Input{
//	    Markdown:  deck,
//	    SourceDir: "/path/to/deck", // for relative image paths
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("deck.pdf", result.PDF, 0644)
//
// The result holds the PDF bytes, the HTML document (result.HTML) and the
// images that could not be inlined (result.Warnings). Use Input.HTMLOnly to
// skip PDF generation.
//
// # Conversion Pipeline
//
//  1. Page splitting on front matter delimiters
//  2. Page config resolution, folding cover sizes into deck-wide defaults
//  3. Markdown rendering via Goldmark (GFM, math, syntax highlighting)
//  4. Local image inlining as data URIs
//  5. Document assembly: page containers, generated CSS, KaTeX head links
//  6. PDF rendering via headless Chrome (go-rod or chromedp)
//
// # Configuration
//
//	conv, err := md2slides.NewConverter(
//	    md2slides.WithTimeout(2 * time.Minute),
//	    md2slides.WithEngine(md2slides.EngineChromedp),
//	    md2slides.WithHighlightStyle("monokai"),
//	    md2slides.WithTypography(md2slides.Typography{TextSize: "28px"}),
//	)
//
// # Parallel Processing
//
//	pool := md2slides.NewConverterPool(4)
//	defer pool.Close()
//
//	conv := pool.Acquire()
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
//
// # Browser Requirements
//
// PDF generation requires Chrome/Chromium. The go-rod engine downloads a
// managed Chromium on first run (~/.cache/rod/browser/).
//
// For containers and CI environments, set ROD_NO_SANDBOX=1 to disable the
// Chrome sandbox. Use ROD_BROWSER_BIN to specify a custom Chrome binary;
// both engines honor it.
package md2slides
