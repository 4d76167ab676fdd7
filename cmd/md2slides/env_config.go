package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/alnah/go-md2slides/internal/config"
)

const envPrefix = "MD2SLIDES_"

// envConfig holds configuration from environment variables.
type envConfig struct {
	ConfigPath     string        // MD2SLIDES_CONFIG: config file name or path
	OutputDir      string        // MD2SLIDES_OUTPUT_DIR: default output directory
	Engine         string        // MD2SLIDES_ENGINE: rod, chromedp
	Timeout        time.Duration // MD2SLIDES_TIMEOUT: PDF generation timeout
	Workers        int           // MD2SLIDES_WORKERS: parallel workers
	HighlightStyle string        // MD2SLIDES_HIGHLIGHT_STYLE: chroma style
	Style          string        // MD2SLIDES_STYLE: base style name
	Lang           string        // MD2SLIDES_LANG: document language
	LogLevel       string        // MD2SLIDES_LOG_LEVEL: debug, info, warn, error
}

// knownEnvVars lists valid MD2SLIDES_* environment variables.
var knownEnvVars = map[string]bool{
	"MD2SLIDES_CONFIG":          true,
	"MD2SLIDES_OUTPUT_DIR":      true,
	"MD2SLIDES_ENGINE":          true,
	"MD2SLIDES_TIMEOUT":         true,
	"MD2SLIDES_WORKERS":         true,
	"MD2SLIDES_HIGHLIGHT_STYLE": true,
	"MD2SLIDES_STYLE":           true,
	"MD2SLIDES_LANG":            true,
	"MD2SLIDES_LOG_LEVEL":       true,
	"MD2SLIDES_CONTAINER":       true, // read by doctor
}

// loadEnvConfig reads configuration from environment variables.
// Unparsable timeout and worker values are ignored.
func loadEnvConfig(getenv func(string) string) *envConfig {
	cfg := &envConfig{
		ConfigPath:     getenv("MD2SLIDES_CONFIG"),
		OutputDir:      getenv("MD2SLIDES_OUTPUT_DIR"),
		Engine:         getenv("MD2SLIDES_ENGINE"),
		HighlightStyle: getenv("MD2SLIDES_HIGHLIGHT_STYLE"),
		Style:          getenv("MD2SLIDES_STYLE"),
		Lang:           getenv("MD2SLIDES_LANG"),
		LogLevel:       getenv("MD2SLIDES_LOG_LEVEL"),
	}

	if timeout := getenv("MD2SLIDES_TIMEOUT"); timeout != "" {
		if d, err := time.ParseDuration(timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}

	if workers := getenv("MD2SLIDES_WORKERS"); workers != "" {
		if w, err := strconv.Atoi(workers); err == nil && w > 0 {
			cfg.Workers = w
		}
	}

	return cfg
}

// warnUnknownEnvVars prints a warning for each unrecognized MD2SLIDES_*
// variable, which usually is a typo.
func warnUnknownEnvVars(w io.Writer, environ []string) {
	for _, kv := range environ {
		if !strings.HasPrefix(kv, envPrefix) {
			continue
		}
		name, _, _ := strings.Cut(kv, "=")
		if !knownEnvVars[name] {
			fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
		}
	}
}

// applyEnvConfig fills config values that are still empty.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied later via mergeFlags).
func applyEnvConfig(env *envConfig, cfg *config.Config) {
	if env.OutputDir != "" && cfg.Output.DefaultDir == "" {
		cfg.Output.DefaultDir = env.OutputDir
	}
	if env.Engine != "" && cfg.PDF.Engine == "" {
		cfg.PDF.Engine = env.Engine
	}
	if env.Timeout > 0 && cfg.PDF.Timeout == 0 {
		cfg.PDF.Timeout = env.Timeout
	}
	if env.HighlightStyle != "" && cfg.Highlight.Style == "" {
		cfg.Highlight.Style = env.HighlightStyle
	}
	if env.Style != "" && cfg.Assets.Style == "" {
		cfg.Assets.Style = env.Style
	}
	if env.Lang != "" && cfg.Document.Lang == "" {
		cfg.Document.Lang = env.Lang
	}
	if env.LogLevel != "" && cfg.Log.Level == "" {
		cfg.Log.Level = env.LogLevel
	}
}
