package md2slides

import (
	"errors"

	"github.com/alnah/go-md2slides/internal/assets"
)

// Asset name constants for the built-in style and template.
const (
	// DefaultStyle is the name of the built-in slide style.
	DefaultStyle = assets.DefaultStyleName

	// DefaultTemplate is the name of the built-in document template.
	DefaultTemplate = assets.DefaultTemplateName
)

// AssetLoader defines the contract for loading the deck's base style and
// document template. Implementations may load from filesystem, embedded
// assets, a database, etc.
//
// The library provides NewAssetLoader() for filesystem-based loading with
// fallback to embedded defaults.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplate loads a document template by name (without .html extension).
	// The template receives Title, Lang, Stylesheets, Scripts and Body.
	// Returns ErrTemplateNotFound if the template doesn't exist.
	LoadTemplate(name string) (string, error)
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for base styles
//   - templates/{name}.html for document templates
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps the internal resolver to return public errors.
type assetLoaderAdapter struct {
	resolver *assets.Resolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.Style(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplate(name string) (string, error) {
	content, err := a.resolver.Template(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateNotFound):
		return wrapError(ErrTemplateNotFound, err)
	case errors.Is(err, assets.ErrInvalidDir),
		errors.Is(err, assets.ErrOutsideDir),
		errors.Is(err, assets.ErrInvalidName):
		return wrapError(ErrInvalidAssetPath, err)
	default:
		return err
	}
}

// wrapError creates an error that keeps the original message and matches
// the public sentinel with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel. Internal errors stay hidden.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}
