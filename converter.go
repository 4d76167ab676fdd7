package md2slides

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/alnah/go-md2slides/internal/pipeline"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.Renderer      = (*pipeline.GoldmarkRenderer)(nil)
	_ pipeline.StyleInjector = pipeline.HeadStyles{}
	_ pdfConverter           = (*rodConverter)(nil)
	_ pdfConverter           = (*chromedpConverter)(nil)
	_ pdfRenderer            = (*rodRenderer)(nil)
)

// Converter orchestrates the Markdown-to-slides pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter is not safe for concurrent use; use ConverterPool for parallelism.
type Converter struct {
	cfg          converterConfig
	assetLoader  AssetLoader
	renderer     pipeline.Renderer
	assembler    *pipeline.DocumentAssembler
	baseCSS      string
	highlightCSS string
	seed         pipeline.GlobalSettings
	head         pipeline.HeadLinks
	pdfConverter pdfConverter
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithTimeout, WithEngine, WithTypography).
// Returns error if an option is invalid or asset loading fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg: converterConfig{
			timeout:        defaultTimeout,
			logger:         zap.NewNop(),
			engine:         EngineRod,
			highlightStyle: pipeline.DefaultHighlightStyle,
			style:          DefaultStyle,
			template:       DefaultTemplate,
		},
		renderer: pipeline.NewGoldmarkRenderer(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.cfg.typography.Validate(); err != nil {
		return nil, err
	}
	c.seed = c.cfg.typography.seed()

	if !pipeline.HasHighlightStyle(c.cfg.highlightStyle) {
		return nil, fmt.Errorf("%w: %q", ErrHighlightStyleNotFound, c.cfg.highlightStyle)
	}
	var hl bytes.Buffer
	if err := pipeline.HighlightCSS(&hl, c.cfg.highlightStyle); err != nil {
		return nil, err
	}
	c.highlightCSS = hl.String()

	c.head = pipeline.DefaultHeadLinks()
	if c.cfg.headLinks != nil {
		c.head = pipeline.HeadLinks{
			Stylesheets: c.cfg.headLinks.Stylesheets,
			Scripts:     c.cfg.headLinks.Scripts,
		}
	}

	if c.assetLoader == nil {
		loader, err := NewAssetLoader(c.cfg.assetPath)
		if err != nil {
			return nil, err
		}
		c.assetLoader = loader
	}

	css, err := c.assetLoader.LoadStyle(c.cfg.style)
	if err != nil {
		return nil, fmt.Errorf("loading style %q: %w", c.cfg.style, err)
	}
	c.baseCSS = css

	tmpl, err := c.assetLoader.LoadTemplate(c.cfg.template)
	if err != nil {
		return nil, fmt.Errorf("loading template %q: %w", c.cfg.template, err)
	}
	c.assembler, err = pipeline.NewDocumentAssembler(tmpl)
	if err != nil {
		return nil, fmt.Errorf("initializing document assembler: %w", err)
	}

	// Engines launch their browser lazily, so building one is cheap.
	pc, err := newPDFConverter(c.cfg.engine, c.cfg.timeout)
	if err != nil {
		return nil, err
	}
	if c.pdfConverter == nil { // not injected by tests
		c.pdfConverter = pc
	}

	return c, nil
}

// newPDFConverter returns the engine registered under name.
func newPDFConverter(name string, timeout time.Duration) (pdfConverter, error) {
	switch name {
	case "", EngineRod:
		return newRodConverter(timeout), nil
	case EngineChromedp:
		return newChromedpConverter(timeout), nil
	default:
		return nil, fmt.Errorf("%w: %q (must be %s or %s)", ErrUnknownEngine, name, EngineRod, EngineChromedp)
	}
}

// Convert runs the full pipeline and returns the deck as HTML and PDF.
// The context is used for cancellation and timeout.
//
// Page config errors abort before any output and are wrapped in *PageError.
// When only PDF generation fails, the result still carries the HTML and
// the error is returned alongside it.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if input.Markdown == "" {
		return nil, ErrEmptyMarkdown
	}
	log := c.cfg.logger

	pages := pipeline.SplitPages(pipeline.NormalizeLineEndings(input.Markdown))
	if len(pages) == 0 {
		return nil, ErrNoPages
	}
	log.Debug("Split deck", zap.Int("pages", len(pages)))

	pages, _, err = pipeline.ResolvePages(c.seed, pages)
	if err != nil {
		return nil, err
	}

	inliner := &pipeline.AssetInliner{SourceDir: input.SourceDir, Logger: log}
	var warnings error
	for i := range pages {
		body, err := pipeline.RenderFragments(ctx, c.renderer, pages[i].Body)
		if err != nil {
			return nil, &PageError{Index: pages[i].Index, Err: err}
		}

		body, warn, err := inliner.Inline(ctx, body)
		warnings = multierr.Append(warnings, warn)
		if err != nil {
			return nil, &PageError{Index: pages[i].Index, Err: err}
		}
		pages[i].HTML = body

		log.Debug("Rendered page",
			zap.String("id", pages[i].ID()),
			zap.String("layout", string(pages[i].Layout)))
	}

	title := input.Title
	if title == "" {
		title = DefaultTitle
	}
	doc, err := c.assembler.Assemble(ctx, pipeline.DocumentParts{
		Title:        title,
		Lang:         c.cfg.lang,
		Pages:        pages,
		Head:         c.head,
		BaseCSS:      c.baseCSS,
		HighlightCSS: c.highlightCSS,
		DeckCSS:      pipeline.BuildStyleSheet(pages),
	})
	if err != nil {
		return nil, fmt.Errorf("assembling document: %w", err)
	}

	res := &ConvertResult{
		HTML:     []byte(doc),
		Pages:    len(pages),
		Warnings: multierr.Errors(warnings),
	}

	// Skip PDF generation if HTMLOnly mode
	if input.HTMLOnly {
		return res, nil
	}

	pdfBytes, err := c.pdfConverter.ToPDF(ctx, doc)
	if err != nil {
		return res, fmt.Errorf("converting to PDF: %w", err)
	}
	log.Debug("Rendered PDF", zap.Int("bytes", len(pdfBytes)))

	res.PDF = pdfBytes
	return res, nil
}

// Close releases resources (headless Chrome browser).
func (c *Converter) Close() error {
	if c.pdfConverter != nil {
		return c.pdfConverter.Close()
	}
	return nil
}
