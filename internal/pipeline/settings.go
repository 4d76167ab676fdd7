package pipeline

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/alnah/go-md2slides/internal/yamlutil"
)

// Sentinel errors for page config resolution.
var (
	ErrConfigParse    = errors.New("invalid page config")
	ErrUnknownLayout  = errors.New("unknown layout")
	ErrInvalidCSSSize = errors.New("invalid CSS size")
)

// Layout is the role of a page. It becomes the class of the page container.
type Layout string

// Built-in layouts. Any other class name is a non-cover layout left to the
// stylesheet.
const (
	LayoutContent Layout = "content"
	LayoutCover   Layout = "cover"
)

// Built-in typography defaults.
const (
	DefaultTextSize          = "25px"
	DefaultCodeSize          = "18px"
	DefaultMathSize          = "25px"
	DefaultContentTitleSize  = "50px"
	DefaultCoverTitleSize    = "60px"
	DefaultCoverSubtitleSize = "25px"
)

// GlobalSettings holds deck-wide typography. Only cover pages change it.
type GlobalSettings struct {
	TextSize          string
	CodeSize          string
	MathSize          string
	ContentTitleSize  string
	CoverTitleSize    string
	CoverSubtitleSize string
}

// DefaultGlobalSettings returns the built-in typography.
func DefaultGlobalSettings() GlobalSettings {
	return GlobalSettings{
		TextSize:          DefaultTextSize,
		CodeSize:          DefaultCodeSize,
		MathSize:          DefaultMathSize,
		ContentTitleSize:  DefaultContentTitleSize,
		CoverTitleSize:    DefaultCoverTitleSize,
		CoverSubtitleSize: DefaultCoverSubtitleSize,
	}
}

// PageDefaults seeds the settings of a content page.
func (g GlobalSettings) PageDefaults() PageSettings {
	return PageSettings{
		TextSize:  g.TextSize,
		CodeSize:  g.CodeSize,
		MathSize:  g.MathSize,
		TitleSize: g.ContentTitleSize,
	}
}

// WithOverrides returns g with every set field of cfg's global keys applied.
func (g GlobalSettings) WithOverrides(cfg PageConfig) GlobalSettings {
	setIf(&g.TextSize, cfg.TextSize)
	setIf(&g.CodeSize, cfg.CodeSize)
	setIf(&g.MathSize, cfg.MathSize)
	setIf(&g.ContentTitleSize, cfg.ContentTitleSize)
	setIf(&g.CoverTitleSize, cfg.CoverTitleSize)
	setIf(&g.CoverSubtitleSize, cfg.CoverSubtitleSize)
	return g
}

// PageSettings holds the typography of a single content page.
type PageSettings struct {
	TextSize  string
	CodeSize  string
	MathSize  string
	TitleSize string
}

// WithOverrides returns s with every set field of cfg's page keys applied.
func (s PageSettings) WithOverrides(cfg PageConfig) PageSettings {
	setIf(&s.TextSize, cfg.TextSize)
	setIf(&s.CodeSize, cfg.CodeSize)
	setIf(&s.MathSize, cfg.MathSize)
	setIf(&s.TitleSize, cfg.TitleSize)
	return s
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// PageConfig is the typed form of a page's front matter. Nil fields were not
// present in the YAML.
type PageConfig struct {
	Layout            *Layout
	TextSize          *string
	CodeSize          *string
	MathSize          *string
	TitleSize         *string
	ContentTitleSize  *string
	CoverTitleSize    *string
	CoverSubtitleSize *string
}

// LayoutOrDefault returns the configured layout, or content.
func (c PageConfig) LayoutOrDefault() Layout {
	if c.Layout == nil {
		return LayoutContent
	}
	return *c.Layout
}

// sizeKeys maps recognized size keys to their PageConfig field.
// text_size, code_size and math_size serve both cover and content pages.
var sizeKeys = map[string]func(*PageConfig) **string{
	"text_size":           func(c *PageConfig) **string { return &c.TextSize },
	"code_size":           func(c *PageConfig) **string { return &c.CodeSize },
	"math_size":           func(c *PageConfig) **string { return &c.MathSize },
	"title_size":          func(c *PageConfig) **string { return &c.TitleSize },
	"content_title_size":  func(c *PageConfig) **string { return &c.ContentTitleSize },
	"cover_title_size":    func(c *PageConfig) **string { return &c.CoverTitleSize },
	"cover_subtitle_size": func(c *PageConfig) **string { return &c.CoverSubtitleSize },
}

const layoutKey = "layout"

// ParsePageConfig parses raw front-matter YAML. Unrecognized keys are ignored.
// Recognized keys must hold scalars; a null value counts as absent.
func ParsePageConfig(raw string) (PageConfig, error) {
	var cfg PageConfig
	if strings.TrimSpace(raw) == "" {
		return cfg, nil
	}

	m, err := yamlutil.UnmarshalMapping([]byte(raw))
	if err != nil {
		return cfg, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	// Sorted for deterministic error reporting.
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := m[key]
		if value == nil {
			continue
		}

		if key == layoutKey {
			layout, err := parseLayout(value)
			if err != nil {
				return cfg, err
			}
			cfg.Layout = &layout
			continue
		}

		field, ok := sizeKeys[key]
		if !ok {
			continue
		}
		size, err := parseSize(key, value)
		if err != nil {
			return cfg, err
		}
		*field(&cfg) = &size
	}

	return cfg, nil
}

// layoutName matches a name usable as a single CSS class.
var layoutName = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)

// parseLayout lowercases the value and requires it to be a valid class name.
// Only "cover" has special meaning; every other layout behaves as content.
func parseLayout(value any) (Layout, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrConfigParse, layoutKey, value)
	}
	name := strings.ToLower(strings.TrimSpace(s))
	if !layoutName.MatchString(name) {
		return "", fmt.Errorf("%w: %q (must be a CSS class name such as cover or content)", ErrUnknownLayout, s)
	}
	return Layout(name), nil
}

// cssLength matches a non-negative number followed by a CSS unit.
var cssLength = regexp.MustCompile(`^(\d+(\.\d+)?|\.\d+)(px|pt|pc|cm|mm|q|in|em|rem|ex|ch|lh|vw|vh|vmin|vmax|%)$`)

// parseSize converts a scalar into a CSS length. Bare numbers are pixels.
func parseSize(key string, value any) (string, error) {
	var size string
	switch v := value.(type) {
	case string:
		size = strings.ToLower(strings.TrimSpace(v))
		if _, err := strconv.ParseFloat(size, 64); err == nil {
			size += "px"
		}
	case uint64:
		size = strconv.FormatUint(v, 10) + "px"
	case int64:
		size = strconv.FormatInt(v, 10) + "px"
	case int:
		size = strconv.Itoa(v) + "px"
	case float64:
		size = strconv.FormatFloat(v, 'f', -1, 64) + "px"
	default:
		return "", fmt.Errorf("%w: %s must be a scalar size, got %T", ErrConfigParse, key, value)
	}

	if !cssLength.MatchString(size) {
		return "", fmt.Errorf("%w: %s: %q (want a number with a unit, e.g. 24px or 1.5em)", ErrInvalidCSSSize, key, size)
	}
	return size, nil
}

// ValidateSize checks a CSS length supplied outside page front matter,
// such as deck-wide defaults, and returns it normalized. A bare number is
// read as pixels, like a numeric YAML value.
func ValidateSize(key, value string) (string, error) {
	return parseSize(key, value)
}

// PageError reports which page failed to resolve.
type PageError struct {
	Index int
	Err   error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page %d: %v", e.Index, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}

// Resolve is one step of the sequential fold over pages. It returns the
// global settings seen by the next page and p with Layout, Settings and
// Global filled in.
//
// A cover page writes its size keys into the returned globals, so every later
// page sees them. Any other page only overrides its own copy, seeded from the
// incoming globals.
func Resolve(global GlobalSettings, p Page) (GlobalSettings, Page, error) {
	cfg, err := ParsePageConfig(p.RawConfig)
	if err != nil {
		return global, p, err
	}

	p.Layout = cfg.LayoutOrDefault()
	if p.Layout == LayoutCover {
		global = global.WithOverrides(cfg)
		p.Settings = global.PageDefaults()
	} else {
		p.Settings = global.PageDefaults().WithOverrides(cfg)
	}
	p.Global = global

	return global, p, nil
}

// ResolvePages folds Resolve over pages in document order, starting from
// seed. It stops at the first failing page and reports its index.
func ResolvePages(seed GlobalSettings, pages []Page) ([]Page, GlobalSettings, error) {
	resolved := make([]Page, 0, len(pages))
	global := seed

	for _, p := range pages {
		var err error
		global, p, err = Resolve(global, p)
		if err != nil {
			return nil, seed, &PageError{Index: p.Index, Err: err}
		}
		resolved = append(resolved, p)
	}

	return resolved, global, nil
}
