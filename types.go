package md2slides

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-md2slides/internal/pipeline"
)

// PDF engines.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// DefaultTitle is the document title used when Input.Title is empty.
const DefaultTitle = "Slides"

// Input contains conversion parameters.
type Input struct {
	Markdown  string // Deck source with per-page front matter (required)
	SourceDir string // Base directory for relative image paths (optional)
	Title     string // Document <title> (default: DefaultTitle)
	HTMLOnly  bool   // Skip PDF generation
}

// ConvertResult holds the output of a conversion.
type ConvertResult struct {
	HTML  []byte // Complete HTML document
	PDF   []byte // Empty when Input.HTMLOnly is set or PDF generation failed
	Pages int    // Number of slides in the deck

	// Warnings lists images that could not be inlined. Their src was left
	// unchanged. Match them with errors.Is(w, ErrResourceNotFound).
	Warnings []error
}

// Typography seeds the deck-wide sizes before any cover page overrides them.
// Empty fields keep the built-in defaults. Bare numbers are pixels.
type Typography struct {
	TextSize          string
	CodeSize          string
	MathSize          string
	ContentTitleSize  string
	CoverTitleSize    string
	CoverSubtitleSize string
}

// Validate checks every non-empty size with the rules applied to page
// front matter.
func (t *Typography) Validate() error {
	if t == nil {
		return nil
	}
	for _, f := range t.fields() {
		if *f.value == "" {
			continue
		}
		if _, err := pipeline.ValidateSize(f.key, *f.value); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidTypography, err)
		}
	}
	return nil
}

type typographyField struct {
	key   string
	value *string
}

func (t *Typography) fields() []typographyField {
	return []typographyField{
		{"text_size", &t.TextSize},
		{"code_size", &t.CodeSize},
		{"math_size", &t.MathSize},
		{"content_title_size", &t.ContentTitleSize},
		{"cover_title_size", &t.CoverTitleSize},
		{"cover_subtitle_size", &t.CoverSubtitleSize},
	}
}

// seed returns the built-in defaults with t's non-empty fields applied.
func (t *Typography) seed() pipeline.GlobalSettings {
	g := pipeline.DefaultGlobalSettings()
	if t == nil {
		return g
	}
	var cfg pipeline.PageConfig
	set := func(dst **string, v string) {
		if v == "" {
			return
		}
		size, _ := pipeline.ValidateSize("", v) // validated in NewConverter
		*dst = &size
	}
	set(&cfg.TextSize, t.TextSize)
	set(&cfg.CodeSize, t.CodeSize)
	set(&cfg.MathSize, t.MathSize)
	set(&cfg.ContentTitleSize, t.ContentTitleSize)
	set(&cfg.CoverTitleSize, t.CoverTitleSize)
	set(&cfg.CoverSubtitleSize, t.CoverSubtitleSize)
	return g.WithOverrides(cfg)
}

// HeadLinks lists external stylesheets and scripts loaded by the document
// head. The default set loads KaTeX from a CDN.
type HeadLinks struct {
	Stylesheets []string
	Scripts     []string
}

// KaTeXVersion is the KaTeX release loaded by the default head links.
const KaTeXVersion = pipeline.KaTeXVersion

// DefaultHighlightStyle is the chroma style used for code blocks.
const DefaultHighlightStyle = pipeline.DefaultHighlightStyle

// HighlightStyles returns the names of the available code highlighting
// styles, sorted.
func HighlightStyles() []string {
	return pipeline.HighlightStyles()
}

// KaTeXHeadLinks returns the KaTeX stylesheet, renderer and auto-render
// scripts for the given version.
func KaTeXHeadLinks(version string) HeadLinks {
	l := pipeline.KaTeXHeadLinks(version)
	return HeadLinks{Stylesheets: l.Stylesheets, Scripts: l.Scripts}
}

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout        time.Duration
	logger         *zap.Logger
	engine         string
	typography     *Typography
	headLinks      *HeadLinks
	highlightStyle string
	assetPath      string
	style          string
	template       string
	lang           string
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the PDF generation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2slides: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithLogger sets the logger. Stage progress logs at Debug, images that
// cannot be inlined at Warn. Defaults to a no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.cfg.logger = l
		}
	}
}

// WithEngine selects the PDF engine: EngineRod (default) or EngineChromedp.
// Unknown names make NewConverter fail with ErrUnknownEngine.
func WithEngine(name string) Option {
	return func(c *Converter) {
		c.cfg.engine = strings.ToLower(strings.TrimSpace(name))
	}
}

// WithTypography seeds the deck-wide sizes. Invalid sizes make NewConverter
// fail with ErrInvalidTypography.
func WithTypography(t Typography) Option {
	return func(c *Converter) {
		c.cfg.typography = &t
	}
}

// WithHeadLinks replaces the default head resources (KaTeX).
// Pass an empty HeadLinks to load nothing.
func WithHeadLinks(links HeadLinks) Option {
	return func(c *Converter) {
		c.cfg.headLinks = &links
	}
}

// WithHighlightStyle selects the chroma style of code blocks, e.g. "monokai".
// Unknown names make NewConverter fail with ErrHighlightStyleNotFound.
func WithHighlightStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.highlightStyle = name
	}
}

// WithAssetPath sets a directory that overrides the embedded style and
// template. Missing assets fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. Takes precedence over
// WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.assetLoader = loader
	}
}

// WithStyle selects the base style by name (default: DefaultStyle).
func WithStyle(name string) Option {
	return func(c *Converter) {
		c.cfg.style = name
	}
}

// WithTemplate selects the document template by name (default: DefaultTemplate).
func WithTemplate(name string) Option {
	return func(c *Converter) {
		c.cfg.template = name
	}
}

// WithLang sets the lang attribute of the document (default: "en").
func WithLang(lang string) Option {
	return func(c *Converter) {
		c.cfg.lang = lang
	}
}
