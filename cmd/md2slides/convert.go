package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	md2slides "github.com/alnah/go-md2slides"
	"github.com/alnah/go-md2slides/internal/config"
	"github.com/alnah/go-md2slides/internal/hints"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput        = errors.New("no input specified")
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// conversionParams groups parameters shared by every file of a batch.
type conversionParams struct {
	title      string // Empty = deck file name
	htmlOutput bool
	htmlOnly   bool
}

// runConvert orchestrates the conversion process.
func runConvert(ctx context.Context, positionalArgs []string, flags *convertFlags, env *Environment) error {
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	warnUnknownEnvVars(env.Stderr, env.Environ())
	envCfg := loadEnvConfig(env.Getenv)

	cfg, err := loadConfig(flags.common.config, envCfg.ConfigPath)
	if err != nil {
		return err
	}
	applyEnvConfig(envCfg, cfg)
	if err := mergeFlags(flags, cfg); err != nil {
		return err
	}
	// Env vars and flags bypass LoadConfig, so validate the merged result.
	if err := cfg.Validate(); err != nil {
		return err
	}

	if len(positionalArgs) == 0 {
		return fmt.Errorf("%w: pass a markdown file or directory", ErrNoInput)
	}

	files, err := discoverFiles(positionalArgs, resolveOutputDir(flags.output, cfg))
	if err != nil {
		return fmt.Errorf("discovering files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("%w: no markdown files found in %s", ErrNoInput, strings.Join(positionalArgs, ", "))
	}

	workers := flags.workers
	if workers == 0 {
		workers = envCfg.Workers
	}
	if err := validateWorkers(workers); err != nil {
		return err
	}
	size := md2slides.ResolvePoolSize(workers)
	if size > len(files) {
		size = len(files)
	}

	logger := newLogger(env.Stderr, resolveLogLevel(flags.common.quiet, flags.common.verbose, cfg.Log.Level))
	defer func() { _ = logger.Sync() }()
	logger.Debug("Starting conversion", zap.Int("files", len(files)), zap.Int("workers", size))

	pool := env.NewPool(size, buildOptions(cfg, logger)...)
	defer func() {
		if err := pool.Close(); err != nil {
			logger.Warn("Closing browsers", zap.Error(err))
		}
	}()

	// Converters validate their options when built; fail before touching any file.
	conv := pool.Acquire()
	if conv == nil {
		if initErr := pool.InitError(); initErr != nil {
			return fmt.Errorf("%w: %w", ErrServiceInit, initErr)
		}
		return ErrServiceInit
	}
	pool.Release(conv)

	params := &conversionParams{
		title:      cfg.Document.Title,
		htmlOutput: cfg.Output.HTML,
		htmlOnly:   flags.outputMode.htmlOnly,
	}

	results := convertBatch(ctx, pool, files, params, env)

	failedCount := printResultsWithWriter(results, flags.common.quiet, flags.common.verbose, env)
	if failedCount > 0 {
		return newBatchError(results)
	}
	return nil
}

// loadConfig loads the config named by the flag, then by the environment.
// Without either, the built-in defaults apply.
func loadConfig(flagName, envName string) (*config.Config, error) {
	name := flagName
	if name == "" {
		name = envName
	}
	if name == "" {
		return config.DefaultConfig(), nil
	}

	cfg, err := config.LoadConfig(name)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf("loading config: %w%s", err, hints.ForConfigNotFound(userConfigPaths(name)))
		}
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// userConfigPaths lists where a named config is looked up in the user's
// config directory.
func userConfigPaths(name string) []string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil
	}
	return []string{filepath.Join(dir, "go-md2slides", name+".yaml")}
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *convertFlags, cfg *config.Config) error {
	if flags.document.title != "" {
		cfg.Document.Title = flags.document.title
	}
	if flags.document.lang != "" {
		cfg.Document.Lang = flags.document.lang
	}

	if flags.render.engine != "" {
		cfg.PDF.Engine = flags.render.engine
	}
	if flags.render.highlightStyle != "" {
		cfg.Highlight.Style = flags.render.highlightStyle
	}
	if flags.render.noMath {
		cfg.Math.Disabled = true
	}

	if flags.assets.style != "" {
		cfg.Assets.Style = flags.assets.style
	}
	if flags.assets.template != "" {
		cfg.Assets.Template = flags.assets.template
	}
	if flags.assets.assetPath != "" {
		cfg.Assets.BasePath = flags.assets.assetPath
	}

	if flags.outputMode.html {
		cfg.Output.HTML = true
	}

	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidTimeout, flags.timeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %q must be positive", ErrInvalidTimeout, flags.timeout)
		}
		cfg.PDF.Timeout = d
	}

	return nil
}

// resolveOutputDir picks the --output flag, then the config default.
func resolveOutputDir(flagOutput string, cfg *config.Config) string {
	if flagOutput != "" {
		return flagOutput
	}
	return cfg.Output.DefaultDir
}

// buildOptions turns the merged config into converter options.
// Empty values keep the library defaults.
func buildOptions(cfg *config.Config, logger *zap.Logger) []md2slides.Option {
	opts := []md2slides.Option{
		md2slides.WithLogger(logger),
		md2slides.WithTypography(md2slides.Typography{
			TextSize:          cfg.Typography.TextSize,
			CodeSize:          cfg.Typography.CodeSize,
			MathSize:          cfg.Typography.MathSize,
			ContentTitleSize:  cfg.Typography.ContentTitleSize,
			CoverTitleSize:    cfg.Typography.CoverTitleSize,
			CoverSubtitleSize: cfg.Typography.CoverSubtitleSize,
		}),
		md2slides.WithHeadLinks(buildHeadLinks(cfg)),
	}

	if cfg.PDF.Engine != "" {
		opts = append(opts, md2slides.WithEngine(cfg.PDF.Engine))
	}
	if cfg.PDF.Timeout > 0 {
		opts = append(opts, md2slides.WithTimeout(cfg.PDF.Timeout))
	}
	if cfg.Highlight.Style != "" {
		opts = append(opts, md2slides.WithHighlightStyle(cfg.Highlight.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, md2slides.WithAssetPath(cfg.Assets.BasePath))
	}
	if cfg.Assets.Style != "" {
		opts = append(opts, md2slides.WithStyle(cfg.Assets.Style))
	}
	if cfg.Assets.Template != "" {
		opts = append(opts, md2slides.WithTemplate(cfg.Assets.Template))
	}
	if cfg.Document.Lang != "" {
		opts = append(opts, md2slides.WithLang(cfg.Document.Lang))
	}

	return opts
}

// buildHeadLinks returns the KaTeX resources unless math is disabled,
// followed by the extra resources of the config.
func buildHeadLinks(cfg *config.Config) md2slides.HeadLinks {
	var links md2slides.HeadLinks
	if !cfg.Math.Disabled {
		version := cfg.Math.KaTeXVersion
		if version == "" {
			version = md2slides.KaTeXVersion
		}
		links = md2slides.KaTeXHeadLinks(version)
	}
	links.Stylesheets = append(links.Stylesheets, cfg.Head.Stylesheets...)
	links.Scripts = append(links.Scripts, cfg.Head.Scripts...)
	return links
}

// formatError renders err with the hints matching its cause.
func formatError(err error) string {
	msg := err.Error()

	var batch *batchError
	if errors.As(err, &batch) {
		return msg // each failure was already reported with its hints
	}

	switch {
	case errors.Is(err, md2slides.ErrBrowserConnect):
		msg += hints.ForBrowserConnect()
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, md2slides.ErrPDFGeneration):
		msg += hints.ForTimeout()
	case errors.Is(err, md2slides.ErrHighlightStyleNotFound):
		msg += hints.ForHighlightStyle(md2slides.HighlightStyles())
	case errors.Is(err, md2slides.ErrStyleNotFound):
		msg += hints.ForStyleNotFound([]string{md2slides.DefaultStyle})
	case errors.Is(err, md2slides.ErrConfigParse),
		errors.Is(err, md2slides.ErrUnknownLayout),
		errors.Is(err, md2slides.ErrInvalidCSSSize):
		msg += hints.ForPageConfig()
	case errors.Is(err, ErrWriteOutput):
		msg += hints.ForOutputDirectory()
	}
	return msg
}
