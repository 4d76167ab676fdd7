package assets

// Notes:
// - Dir tests build asset trees under t.TempDir(). Symlink cases are skipped
//   where the platform refuses to create links.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeAsset(t *testing.T, root string, kind Kind, name, content string) {
	t.Helper()
	dir := filepath.Join(root, kind.Dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+kind.Ext), []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
}

// ---------------------------------------------------------------------------
// TestCheckName - Asset name rules
// ---------------------------------------------------------------------------

func TestCheckName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		wantErr bool
	}{
		{DefaultStyleName, false},
		{"dark-theme_2", false},
		{strings.Repeat("a", maxNameLength), false},
		{"", true},
		{strings.Repeat("a", maxNameLength+1), true},
		{"../slides", true},
		{"themes/dark", true},
		{`themes\dark`, true},
		{"slides.css", true},
		{"slides\x00", true},
	}

	for _, tt := range tests {
		err := checkName(tt.name)
		if tt.wantErr != errors.Is(err, ErrInvalidName) {
			t.Errorf("checkName(%q) = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

// ---------------------------------------------------------------------------
// TestEmbedded - Built-in assets
// ---------------------------------------------------------------------------

func TestEmbedded_Read(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		kind     Kind
		asset    string
		contains []string
		wantErr  error
	}{
		{
			name:     "slide style sets the page size",
			kind:     Style,
			asset:    DefaultStyleName,
			contains: []string{"@page", "33.87cm 19.05cm"},
		},
		{
			name:  "document template carries the slots the assembler fills",
			kind:  Template,
			asset: DefaultTemplateName,
			contains: []string{
				"{{.Title}}", "{{.Body}}", "range .Stylesheets", "range .Scripts",
				"</head>", "renderMathInElement",
			},
		},
		{name: "unknown style", kind: Style, asset: "neon", wantErr: ErrStyleNotFound},
		{name: "unknown template", kind: Template, asset: "handout", wantErr: ErrTemplateNotFound},
		{name: "traversal", kind: Style, asset: "../styles/slides", wantErr: ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Embedded{}.Read(tt.kind, tt.asset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Read(%q) error = %v, want %v", tt.asset, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Read(%q) error: %v", tt.asset, err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Read(%q) missing %q", tt.asset, want)
				}
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestDir - Override directory
// ---------------------------------------------------------------------------

func TestOpenDir_Errors(t *testing.T) {
	t.Parallel()

	file := filepath.Join(t.TempDir(), "slides.css")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}

	for _, root := range []string{"", filepath.Join(t.TempDir(), "missing"), file} {
		if _, err := OpenDir(root); !errors.Is(err, ErrInvalidDir) {
			t.Errorf("OpenDir(%q) error = %v, want ErrInvalidDir", root, err)
		}
	}
}

func TestDir_Read(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeAsset(t, root, Style, "dark", "body { background: #111; }")
	writeAsset(t, root, Template, "minimal", "<html><head></head><body>{{.Body}}</body></html>")

	d, err := OpenDir(root)
	if err != nil {
		t.Fatalf("OpenDir() error: %v", err)
	}

	if got, err := d.Read(Style, "dark"); err != nil || got != "body { background: #111; }" {
		t.Errorf("Read(Style, dark) = (%q, %v)", got, err)
	}
	if got, err := d.Read(Template, "minimal"); err != nil || !strings.Contains(got, "{{.Body}}") {
		t.Errorf("Read(Template, minimal) = (%q, %v)", got, err)
	}
	if _, err := d.Read(Style, DefaultStyleName); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("Read(Style, slides) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := d.Read(Template, "dark"); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("Read(Template, dark) error = %v, want ErrTemplateNotFound", err)
	}
}

func TestDir_Read_SymlinkOutsideRoot(t *testing.T) {
	t.Parallel()

	outside := t.TempDir()
	writeAsset(t, outside, Style, "secret", "leak")

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, Style.Dir), 0o750); err != nil {
		t.Fatalf("setup: %v", err)
	}
	link := filepath.Join(root, Style.Dir, "linked.css")
	if err := os.Symlink(filepath.Join(outside, Style.Dir, "secret.css"), link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	d, err := OpenDir(root)
	if err != nil {
		t.Fatalf("OpenDir() error: %v", err)
	}
	if _, err := d.Read(Style, "linked"); !errors.Is(err, ErrOutsideDir) {
		t.Errorf("Read() error = %v, want ErrOutsideDir", err)
	}
}

// ---------------------------------------------------------------------------
// TestResolver - Override with embedded fallback
// ---------------------------------------------------------------------------

func TestResolver(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeAsset(t, root, Style, DefaultStyleName, "/* team style */")

	r, err := NewResolver(root)
	if err != nil {
		t.Fatalf("NewResolver() error: %v", err)
	}

	t.Run("override wins", func(t *testing.T) {
		t.Parallel()
		if got, err := r.Style(DefaultStyleName); err != nil || got != "/* team style */" {
			t.Errorf("Style() = (%q, %v), want override", got, err)
		}
	})

	t.Run("missing override falls back to embedded", func(t *testing.T) {
		t.Parallel()
		got, err := r.Template(DefaultTemplateName)
		if err != nil || !strings.Contains(got, "{{.Body}}") {
			t.Errorf("Template() = (%q, %v), want embedded template", got, err)
		}
	})

	t.Run("name errors do not fall back", func(t *testing.T) {
		t.Parallel()
		if _, err := r.Style("../slides"); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Style() error = %v, want ErrInvalidName", err)
		}
	})

	t.Run("unknown everywhere", func(t *testing.T) {
		t.Parallel()
		if _, err := r.Style("neon"); !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("Style() error = %v, want ErrStyleNotFound", err)
		}
	})
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	r, err := NewResolver("")
	if err != nil {
		t.Fatalf("NewResolver(\"\") error: %v", err)
	}
	if _, err := r.Style(DefaultStyleName); err != nil {
		t.Errorf("embedded-only resolver Style() error: %v", err)
	}

	if _, err := NewResolver(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, ErrInvalidDir) {
		t.Errorf("NewResolver(missing) error = %v, want ErrInvalidDir", err)
	}
}
