package assets

import (
	"errors"
	"fmt"
	"strings"
)

// Built-in asset names.
const (
	DefaultStyleName    = "slides"
	DefaultTemplateName = "document"
)

// maxNameLength bounds asset names to a sane file name.
const maxNameLength = 64

var (
	ErrStyleNotFound    = errors.New("style not found")
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidName      = errors.New("invalid asset name")
	ErrInvalidDir       = errors.New("invalid asset directory")
	ErrRead             = errors.New("reading asset")
	ErrOutsideDir       = errors.New("asset path escapes the asset directory")
)

// Kind is a family of assets: the subdirectory it lives in, its file
// extension, and the error reported when a name is missing.
type Kind struct {
	Dir      string
	Ext      string
	NotFound error
}

// Asset kinds known to the converter.
var (
	Style    = Kind{Dir: "styles", Ext: ".css", NotFound: ErrStyleNotFound}
	Template = Kind{Dir: "templates", Ext: ".html", NotFound: ErrTemplateNotFound}
)

func (k Kind) file(name string) string {
	return k.Dir + "/" + name + k.Ext
}

// Source reads one asset by kind and bare name.
type Source interface {
	Read(kind Kind, name string) (string, error)
}

// checkName rejects names that are empty, too long, or could leave the
// kind's directory or change the extension.
func checkName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case len(name) > maxNameLength:
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidName, maxNameLength)
	case strings.ContainsAny(name, "/\\.\x00"):
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
