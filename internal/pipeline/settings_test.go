package pipeline

import (
	"errors"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// TestParsePageConfig - Front matter decoding
// ---------------------------------------------------------------------------

func TestParsePageConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		raw        string
		wantLayout Layout
		wantText   *string
		wantTitle  *string
		wantCover  *string
		wantErr    error
	}{
		{
			name:       "empty config",
			raw:        "",
			wantLayout: LayoutContent,
		},
		{
			name:       "cover layout",
			raw:        "layout: cover",
			wantLayout: LayoutCover,
		},
		{
			name:       "layout is case-insensitive",
			raw:        "layout: ' Cover '",
			wantLayout: LayoutCover,
		},
		{
			name:       "custom layout kept as class",
			raw:        "layout: Two-Columns",
			wantLayout: Layout("two-columns"),
		},
		{
			name:    "layout not a class name",
			raw:     "layout: two columns",
			wantErr: ErrUnknownLayout,
		},
		{
			name:    "layout with markup",
			raw:     `layout: '"><script>'`,
			wantErr: ErrUnknownLayout,
		},
		{
			name:    "layout must be a string",
			raw:     "layout: 3",
			wantErr: ErrConfigParse,
		},
		{
			name:       "null layout counts as absent",
			raw:        "layout: ~",
			wantLayout: LayoutContent,
		},
		{
			name:       "unit size kept as written",
			raw:        "text_size: 1.5em",
			wantLayout: LayoutContent,
			wantText:   strPtr("1.5em"),
		},
		{
			name:       "integer size becomes pixels",
			raw:        "text_size: 30",
			wantLayout: LayoutContent,
			wantText:   strPtr("30px"),
		},
		{
			name:       "float size becomes pixels",
			raw:        "title_size: 42.5",
			wantLayout: LayoutContent,
			wantTitle:  strPtr("42.5px"),
		},
		{
			name:       "cover keys on any page are parsed",
			raw:        "cover_title_size: 80px",
			wantLayout: LayoutContent,
			wantCover:  strPtr("80px"),
		},
		{
			name:       "unknown keys are ignored",
			raw:        "background: red\ntext_size: 20px",
			wantLayout: LayoutContent,
			wantText:   strPtr("20px"),
		},
		{
			name:    "size must be a scalar",
			raw:     "text_size: [1, 2]",
			wantErr: ErrConfigParse,
		},
		{
			name:    "size cannot break out of the declaration",
			raw:     `text_size: "20px; color: red"`,
			wantErr: ErrInvalidCSSSize,
		},
		{
			name:    "empty size",
			raw:     `text_size: ""`,
			wantErr: ErrInvalidCSSSize,
		},
		{
			name:    "size must have a unit",
			raw:     "text_size: huge",
			wantErr: ErrInvalidCSSSize,
		},
		{
			name:    "unknown unit",
			raw:     "code_size: 12furlongs",
			wantErr: ErrInvalidCSSSize,
		},
		{
			name:    "negative size",
			raw:     "title_size: -4",
			wantErr: ErrInvalidCSSSize,
		},
		{
			name:       "quoted number becomes pixels",
			raw:        `text_size: "28"`,
			wantLayout: LayoutContent,
			wantText:   strPtr("28px"),
		},
		{
			name:    "malformed YAML",
			raw:     "layout: [cover",
			wantErr: ErrConfigParse,
		},
		{
			name:       "null document is an empty config",
			raw:        "~",
			wantLayout: LayoutContent,
		},
		{
			name:    "top level must be a mapping",
			raw:     "- layout\n- cover",
			wantErr: ErrConfigParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := ParsePageConfig(tt.raw)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParsePageConfig(%q) error = %v, want %v", tt.raw, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePageConfig(%q) unexpected error: %v", tt.raw, err)
			}

			if got := cfg.LayoutOrDefault(); got != tt.wantLayout {
				t.Errorf("layout = %q, want %q", got, tt.wantLayout)
			}
			assertStrPtr(t, "TextSize", cfg.TextSize, tt.wantText)
			assertStrPtr(t, "TitleSize", cfg.TitleSize, tt.wantTitle)
			assertStrPtr(t, "CoverTitleSize", cfg.CoverTitleSize, tt.wantCover)
		})
	}
}

func assertStrPtr(t *testing.T, field string, got, want *string) {
	t.Helper()
	switch {
	case got == nil && want == nil:
	case got == nil:
		t.Errorf("%s = nil, want %q", field, *want)
	case want == nil:
		t.Errorf("%s = %q, want nil", field, *got)
	case *got != *want:
		t.Errorf("%s = %q, want %q", field, *got, *want)
	}
}

// ---------------------------------------------------------------------------
// TestValidateSize - Sizes supplied outside front matter
// ---------------------------------------------------------------------------

func TestValidateSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    string
		wantErr bool
	}{
		{value: "80", want: "80px"},
		{value: "12.5", want: "12.5px"},
		{value: " 2rem ", want: "2rem"},
		{value: "100%", want: "100%"},
		{value: "", wantErr: true},
		{value: "1px;color:red", wantErr: true},
		{value: "1px}body{", wantErr: true},
		{value: "huge", wantErr: true},
		{value: "2 em", wantErr: true},
		{value: "NaN", wantErr: true},
		{value: "0.5VW", want: "0.5vw"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			got, err := ValidateSize("text_size", tt.value)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCSSSize) {
					t.Errorf("ValidateSize(%q) error = %v, want ErrInvalidCSSSize", tt.value, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateSize(%q) unexpected error: %v", tt.value, err)
			}
			if got != tt.want {
				t.Errorf("ValidateSize(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// TestResolve - Settings propagation
// ---------------------------------------------------------------------------

func TestResolve_CustomLayoutIsNotCover(t *testing.T) {
	t.Parallel()

	seed := DefaultGlobalSettings()
	global, page, err := Resolve(seed, Page{Index: 4, RawConfig: "layout: sidebar\ntext_size: 40px"})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if page.Layout != Layout("sidebar") {
		t.Errorf("Layout = %q, want sidebar", page.Layout)
	}
	if global != seed {
		t.Errorf("global = %+v, want seed unchanged", global)
	}
	if page.Settings.TextSize != "40px" {
		t.Errorf("TextSize = %q, want 40px", page.Settings.TextSize)
	}
}

func TestResolve_CoverUpdatesGlobals(t *testing.T) {
	t.Parallel()

	global, page, err := Resolve(DefaultGlobalSettings(), Page{
		Index:     0,
		RawConfig: "layout: cover\ncover_title_size: 70px\ntext_size: 30px\ntitle_size: 99px",
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if page.Layout != LayoutCover {
		t.Errorf("Layout = %q, want cover", page.Layout)
	}
	if global.CoverTitleSize != "70px" {
		t.Errorf("CoverTitleSize = %q, want 70px", global.CoverTitleSize)
	}
	if global.TextSize != "30px" {
		t.Errorf("TextSize = %q, want 30px", global.TextSize)
	}
	if global.ContentTitleSize != DefaultContentTitleSize {
		t.Errorf("title_size on a cover changed ContentTitleSize to %q", global.ContentTitleSize)
	}
	if page.Global != global {
		t.Errorf("page.Global = %+v, want %+v", page.Global, global)
	}
}

func TestResolve_ContentOverridesOnlyItself(t *testing.T) {
	t.Parallel()

	seed := DefaultGlobalSettings()
	global, page, err := Resolve(seed, Page{
		Index:     1,
		RawConfig: "title_size: 40px\ncontent_title_size: 10px\ncover_title_size: 10px\ncode_size: 12",
	})
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if global != seed {
		t.Errorf("content page changed globals: %+v", global)
	}
	want := PageSettings{
		TextSize:  DefaultTextSize,
		CodeSize:  "12px",
		MathSize:  DefaultMathSize,
		TitleSize: "40px",
	}
	if page.Settings != want {
		t.Errorf("Settings = %+v, want %+v", page.Settings, want)
	}
}

func TestResolvePages(t *testing.T) {
	t.Parallel()

	pages := []Page{
		{Index: 0, RawConfig: "layout: cover\ntext_size: 30px\ncontent_title_size: 45px"},
		{Index: 1, RawConfig: "title_size: 40px"},
		{Index: 2},
		{Index: 3, RawConfig: "layout: cover\ntext_size: 20px"},
		{Index: 4},
	}

	resolved, global, err := ResolvePages(DefaultGlobalSettings(), pages)
	if err != nil {
		t.Fatalf("ResolvePages() error: %v", err)
	}
	if len(resolved) != len(pages) {
		t.Fatalf("got %d pages, want %d", len(resolved), len(pages))
	}

	tests := []struct {
		index     int
		wantText  string
		wantTitle string
	}{
		{1, "30px", "40px"},
		{2, "30px", "45px"},
		{4, "20px", "45px"},
	}
	for _, tt := range tests {
		s := resolved[tt.index].Settings
		if s.TextSize != tt.wantText || s.TitleSize != tt.wantTitle {
			t.Errorf("page %d: text=%q title=%q, want text=%q title=%q",
				tt.index, s.TextSize, s.TitleSize, tt.wantText, tt.wantTitle)
		}
	}

	if global.TextSize != "20px" {
		t.Errorf("final TextSize = %q, want 20px", global.TextSize)
	}
	if resolved[0].Global.TextSize != "30px" {
		t.Errorf("first cover Global.TextSize = %q, want 30px", resolved[0].Global.TextSize)
	}
}

func TestResolvePages_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	pages := []Page{{Index: 0, RawConfig: "layout: cover"}}
	if _, _, err := ResolvePages(DefaultGlobalSettings(), pages); err != nil {
		t.Fatalf("ResolvePages() error: %v", err)
	}
	if pages[0].Layout != "" {
		t.Errorf("input page was modified: Layout = %q", pages[0].Layout)
	}
}

func TestResolvePages_ReportsFailingPage(t *testing.T) {
	t.Parallel()

	seed := DefaultGlobalSettings()
	pages := []Page{
		{Index: 0, RawConfig: "layout: cover\ntext_size: 30px"},
		{Index: 1},
		{Index: 2, RawConfig: "layout: side bar"},
	}

	resolved, global, err := ResolvePages(seed, pages)

	var pe *PageError
	if !errors.As(err, &pe) {
		t.Fatalf("error = %v, want *PageError", err)
	}
	if pe.Index != 2 {
		t.Errorf("PageError.Index = %d, want 2", pe.Index)
	}
	if !errors.Is(err, ErrUnknownLayout) {
		t.Errorf("error = %v, want ErrUnknownLayout in chain", err)
	}
	if resolved != nil {
		t.Errorf("resolved = %v, want nil on error", resolved)
	}
	if global != seed {
		t.Errorf("global = %+v, want seed on error", global)
	}
}

func TestPageError(t *testing.T) {
	t.Parallel()

	inner := errors.New("boom")
	err := &PageError{Index: 3, Err: inner}

	if !strings.HasPrefix(err.Error(), "page 3: ") {
		t.Errorf("Error() = %q, want prefix %q", err.Error(), "page 3: ")
	}
	if !errors.Is(err, inner) {
		t.Error("errors.Is(err, inner) = false, want true")
	}
}

// ---------------------------------------------------------------------------
// TestGlobalSettings - Defaults and overrides
// ---------------------------------------------------------------------------

func TestGlobalSettings_PageDefaults(t *testing.T) {
	t.Parallel()

	g := DefaultGlobalSettings()
	g.ContentTitleSize = "44px"
	g.CoverTitleSize = "99px"

	got := g.PageDefaults()
	want := PageSettings{
		TextSize:  DefaultTextSize,
		CodeSize:  DefaultCodeSize,
		MathSize:  DefaultMathSize,
		TitleSize: "44px",
	}
	if got != want {
		t.Errorf("PageDefaults() = %+v, want %+v", got, want)
	}
}
