package md2slides

import (
	"errors"

	"github.com/alnah/go-md2slides/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown  = errors.New("markdown content cannot be empty")
	ErrNoPages        = errors.New("document has no pages")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Option validation errors.
	ErrUnknownEngine          = errors.New("unknown PDF engine")
	ErrHighlightStyleNotFound = errors.New("highlight style not found")
	ErrInvalidAssetPath       = errors.New("invalid asset path")
	ErrInvalidTypography      = errors.New("invalid typography")

	// Asset errors.
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")

	// Page config errors, wrapped in *PageError.
	ErrConfigParse    = pipeline.ErrConfigParse
	ErrUnknownLayout  = pipeline.ErrUnknownLayout
	ErrInvalidCSSSize = pipeline.ErrInvalidCSSSize

	// Stage errors.
	ErrHTMLConversion = pipeline.ErrHTMLConversion
	ErrDocumentRender = pipeline.ErrDocumentRender

	// Image inlining warnings, reported in ConvertResult.Warnings.
	ErrResourceNotFound = pipeline.ErrResourceNotFound
	ErrResourceRead     = pipeline.ErrResourceRead
)

// PageError reports the index of the page whose front matter failed to
// resolve. Use errors.As to extract it.
type PageError = pipeline.PageError
