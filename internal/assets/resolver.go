package assets

import "errors"

// Resolver reads from an override directory first and falls back to the
// embedded assets for names the directory does not provide. Name and read
// errors from the directory are returned as is.
type Resolver struct {
	override Source
	builtin  Source
}

// NewResolver opens dir as the override source. An empty dir means embedded
// assets only.
func NewResolver(dir string) (*Resolver, error) {
	r := &Resolver{builtin: Embedded{}}
	if dir == "" {
		return r, nil
	}
	d, err := OpenDir(dir)
	if err != nil {
		return nil, err
	}
	r.override = d
	return r, nil
}

// Style returns the CSS of the named style.
func (r *Resolver) Style(name string) (string, error) { return r.Read(Style, name) }

// Template returns the named document template.
func (r *Resolver) Template(name string) (string, error) { return r.Read(Template, name) }

func (r *Resolver) Read(kind Kind, name string) (string, error) {
	if r.override != nil {
		content, err := r.override.Read(kind, name)
		if !errors.Is(err, kind.NotFound) {
			return content, err
		}
	}
	return r.builtin.Read(kind, name)
}

var _ Source = (*Resolver)(nil)
