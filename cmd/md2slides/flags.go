package main

import (
	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config  string
	quiet   bool
	verbose bool
}

// documentFlags holds HTML document metadata flags.
type documentFlags struct {
	title string
	lang  string
}

// renderFlags holds rendering flags.
type renderFlags struct {
	engine         string
	highlightStyle string
	noMath         bool
}

// assetFlags holds asset-related flags.
type assetFlags struct {
	style     string // Base style name
	template  string // Document template name
	assetPath string // Override asset directory
}

// outputFlags holds output mode flags.
type outputFlags struct {
	html     bool // Output HTML alongside PDF
	htmlOnly bool // Output HTML only, skip PDF
}

// convertFlags holds all flags for the convert command.
type convertFlags struct {
	common     commonFlags
	output     string
	workers    int
	timeout    string
	document   documentFlags
	render     renderFlags
	assets     assetFlags
	outputMode outputFlags
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logs and timing")
}

// addDocumentFlags adds document metadata flags to a FlagSet.
func addDocumentFlags(fs *flag.FlagSet, f *documentFlags) {
	fs.StringVar(&f.title, "title", "", "document title (default: input file name)")
	fs.StringVar(&f.lang, "lang", "", "document language tag (default: en)")
}

// addRenderFlags adds rendering flags to a FlagSet.
func addRenderFlags(fs *flag.FlagSet, f *renderFlags) {
	fs.StringVar(&f.engine, "engine", "", "PDF engine: rod, chromedp")
	fs.StringVar(&f.highlightStyle, "highlight-style", "", "code highlighting style (default: github)")
	fs.BoolVar(&f.noMath, "no-math", false, "do not load KaTeX")
}

// addAssetFlags adds asset-related flags to a FlagSet.
func addAssetFlags(fs *flag.FlagSet, f *assetFlags) {
	fs.StringVar(&f.style, "style", "", "base style name")
	fs.StringVar(&f.template, "template", "", "document template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory")
}

// addOutputFlags adds output mode flags to a FlagSet.
func addOutputFlags(fs *flag.FlagSet, f *outputFlags) {
	fs.BoolVar(&f.html, "html", false, "output HTML alongside PDF")
	fs.BoolVar(&f.htmlOnly, "html-only", false, "output HTML only, skip PDF")
}

// parseConvertFlags parses convert command flags and returns positional args.
func parseConvertFlags(args []string, env *Environment) (*convertFlags, []string, error) {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	f := &convertFlags{}

	// I/O flags
	fs.StringVarP(&f.output, "output", "o", "", "output file or directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "PDF generation timeout (e.g., 30s, 2m)")

	// Flag groups
	addCommonFlags(fs, &f.common)
	addDocumentFlags(fs, &f.document)
	addRenderFlags(fs, &f.render)
	addAssetFlags(fs, &f.assets)
	addOutputFlags(fs, &f.outputMode)

	fs.Usage = func() { printConvertUsage(env.Stderr) }

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	return f, fs.Args(), nil
}
