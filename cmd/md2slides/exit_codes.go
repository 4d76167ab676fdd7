package main

import (
	"errors"
	"os"

	md2slides "github.com/alnah/go-md2slides"
	"github.com/alnah/go-md2slides/internal/config"
)

// Exit codes for md2slides CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful conversion
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or deck front matter
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if errors.Is(err, md2slides.ErrBrowserConnect) ||
		errors.Is(err, md2slides.ErrPageCreate) ||
		errors.Is(err, md2slides.ErrPageLoad) ||
		errors.Is(err, md2slides.ErrPDFGeneration) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrFieldTooLong) ||
		errors.Is(err, config.ErrInvalidValue) ||
		errors.Is(err, md2slides.ErrEmptyMarkdown) ||
		errors.Is(err, md2slides.ErrNoPages) ||
		errors.Is(err, md2slides.ErrConfigParse) ||
		errors.Is(err, md2slides.ErrUnknownLayout) ||
		errors.Is(err, md2slides.ErrInvalidCSSSize) ||
		errors.Is(err, md2slides.ErrUnknownEngine) ||
		errors.Is(err, md2slides.ErrHighlightStyleNotFound) ||
		errors.Is(err, md2slides.ErrInvalidTypography) ||
		errors.Is(err, md2slides.ErrStyleNotFound) ||
		errors.Is(err, md2slides.ErrTemplateNotFound) ||
		errors.Is(err, md2slides.ErrInvalidAssetPath) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrOutputConflict) ||
		errors.Is(err, ErrInvalidTimeout) {
		return ExitUsage
	}

	return ExitGeneral
}
