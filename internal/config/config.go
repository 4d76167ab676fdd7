package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/alnah/go-md2slides/internal/fileutil"
	"github.com/alnah/go-md2slides/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrFieldTooLong    = errors.New("field exceeds maximum length")
	ErrInvalidValue    = errors.New("invalid config value")
)

// Field length limits.
const (
	MaxTitleLength     = 200  // Document <title>
	MaxLangLength      = 35   // BCP 47 tag
	MaxSizeLength      = 20   // "25px", "1.5rem", "calc(...)" is rejected anyway
	MaxStyleNameLength = 64   // chroma style or asset name
	MaxVersionLength   = 20   // "0.16.8"
	MaxURLLength       = 2048 // Browser limit
	MaxPathLength      = 4096 // PATH_MAX on Linux
)

// Supported PDF engines.
const (
	EngineRod      = "rod"
	EngineChromedp = "chromedp"
)

// Supported log levels.
var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds the deck-wide configuration of a conversion run.
type Config struct {
	Document   DocumentConfig   `yaml:"document"`
	Typography TypographyConfig `yaml:"typography"`
	Highlight  HighlightConfig  `yaml:"highlight"`
	Math       MathConfig       `yaml:"math"`
	Head       HeadConfig       `yaml:"head"`
	PDF        PDFConfig        `yaml:"pdf"`
	Output     OutputConfig     `yaml:"output"`
	Assets     AssetsConfig     `yaml:"assets"`
	Log        LogConfig        `yaml:"log"`
}

// DocumentConfig defines HTML document metadata.
type DocumentConfig struct {
	Title string `yaml:"title"` // Empty = input file name
	Lang  string `yaml:"lang"`  // Empty = "en"
}

// TypographyConfig seeds the deck's global sizes. Empty fields keep the
// built-in defaults; cover pages can still override them.
type TypographyConfig struct {
	TextSize          string `yaml:"textSize"`
	CodeSize          string `yaml:"codeSize"`
	MathSize          string `yaml:"mathSize"`
	ContentTitleSize  string `yaml:"contentTitleSize"`
	CoverTitleSize    string `yaml:"coverTitleSize"`
	CoverSubtitleSize string `yaml:"coverSubtitleSize"`
}

// HighlightConfig defines code block highlighting.
type HighlightConfig struct {
	Style string `yaml:"style"` // chroma style name (default: "github")
}

// MathConfig defines math typesetting resources.
type MathConfig struct {
	Disabled     bool   `yaml:"disabled"`     // Drop KaTeX head links
	KaTeXVersion string `yaml:"katexVersion"` // Empty = built-in version
}

// HeadConfig lists extra resources appended to the document head.
type HeadConfig struct {
	Stylesheets []string `yaml:"stylesheets"`
	Scripts     []string `yaml:"scripts"`
}

// PDFConfig defines PDF rendering options.
type PDFConfig struct {
	Engine  string        `yaml:"engine"`  // "rod" or "chromedp" (default: "rod")
	Timeout time.Duration `yaml:"timeout"` // e.g. "45s" (default: 30s)
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // Empty = same as source
	HTML       bool   `yaml:"html"`       // Also write the HTML document
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // Empty = use embedded assets
	Style    string `yaml:"style"`    // Base style name (default: "slides")
	Template string `yaml:"template"` // Document template name (default: "document")
}

// LogConfig defines CLI logging options.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: info)
}

// Validate checks field lengths and enumerated values.
// Called automatically by LoadConfig, but available for consumers
// who construct Config manually.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value string
		max   int
	}{
		{"document.title", c.Document.Title, MaxTitleLength},
		{"document.lang", c.Document.Lang, MaxLangLength},
		{"typography.textSize", c.Typography.TextSize, MaxSizeLength},
		{"typography.codeSize", c.Typography.CodeSize, MaxSizeLength},
		{"typography.mathSize", c.Typography.MathSize, MaxSizeLength},
		{"typography.contentTitleSize", c.Typography.ContentTitleSize, MaxSizeLength},
		{"typography.coverTitleSize", c.Typography.CoverTitleSize, MaxSizeLength},
		{"typography.coverSubtitleSize", c.Typography.CoverSubtitleSize, MaxSizeLength},
		{"highlight.style", c.Highlight.Style, MaxStyleNameLength},
		{"math.katexVersion", c.Math.KaTeXVersion, MaxVersionLength},
		{"output.defaultDir", c.Output.DefaultDir, MaxPathLength},
		{"assets.basePath", c.Assets.BasePath, MaxPathLength},
		{"assets.style", c.Assets.Style, MaxStyleNameLength},
		{"assets.template", c.Assets.Template, MaxStyleNameLength},
	}
	for _, f := range fields {
		if err := validateFieldLength(f.name, f.value, f.max); err != nil {
			return err
		}
	}

	for i, href := range c.Head.Stylesheets {
		if err := validateFieldLength(fmt.Sprintf("head.stylesheets[%d]", i), href, MaxURLLength); err != nil {
			return err
		}
	}
	for i, src := range c.Head.Scripts {
		if err := validateFieldLength(fmt.Sprintf("head.scripts[%d]", i), src, MaxURLLength); err != nil {
			return err
		}
	}

	if c.Document.Lang != "" {
		if _, err := language.Parse(c.Document.Lang); err != nil {
			return fmt.Errorf("%w: document.lang %q is not a BCP 47 tag", ErrInvalidValue, c.Document.Lang)
		}
	}

	if c.PDF.Engine != "" {
		switch strings.ToLower(c.PDF.Engine) {
		case EngineRod, EngineChromedp:
			// valid
		default:
			return fmt.Errorf("%w: pdf.engine %q (must be %s or %s)", ErrInvalidValue, c.PDF.Engine, EngineRod, EngineChromedp)
		}
	}
	if c.PDF.Timeout < 0 {
		return fmt.Errorf("%w: pdf.timeout must not be negative, got %s", ErrInvalidValue, c.PDF.Timeout)
	}

	if c.Log.Level != "" && !isLogLevel(c.Log.Level) {
		return fmt.Errorf("%w: log.level %q (must be one of %s)", ErrInvalidValue, c.Log.Level, strings.Join(logLevels, ", "))
	}

	return nil
}

func isLogLevel(level string) bool {
	level = strings.ToLower(level)
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}

// validateFieldLength checks if a field exceeds its maximum allowed length.
func validateFieldLength(fieldName, value string, maxLength int) error {
	if len(value) > maxLength {
		return fmt.Errorf("%w: %s (%d chars, max %d)", ErrFieldTooLong, fieldName, len(value), maxLength)
	}
	return nil
}

// DefaultConfig returns a configuration that keeps every built-in default.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise, it's treated as a config name and searched in standard locations.
// Returns error if the file is not found (no silent fallback).
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	var configPath string
	var err error

	if fileutil.IsFilePath(nameOrPath) {
		configPath = nameOrPath
	} else {
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// resolveConfigPath searches for a config file by name in standard locations.
// Tries extensions in order: .yaml, .yml
// Tries locations in order: current directory, ~/.config/go-md2slides/
func resolveConfigPath(name string) (string, error) {
	extensions := []string{".yaml", ".yml"}
	triedPaths := make([]string, 0, len(extensions)*2) // 2 locations

	for _, ext := range extensions {
		localPath := name + ext
		if fileutil.FileExists(localPath) {
			return localPath, nil
		}
		triedPaths = append(triedPaths, localPath)
	}

	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		for _, ext := range extensions {
			userPath := filepath.Join(userConfigDir, "go-md2slides", name+ext)
			if fileutil.FileExists(userPath) {
				return userPath, nil
			}
			triedPaths = append(triedPaths, userPath)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(triedPaths, ", "))
}
