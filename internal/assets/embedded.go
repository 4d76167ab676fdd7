package assets

import (
	"embed"
	"fmt"
)

//go:embed styles/*.css templates/*.html
var embedded embed.FS

// Embedded reads the assets compiled into the binary.
type Embedded struct{}

func (Embedded) Read(kind Kind, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := embedded.ReadFile(kind.file(name))
	if err != nil {
		return "", fmt.Errorf("%w: %q", kind.NotFound, name)
	}
	return string(data), nil
}

var _ Source = Embedded{}
