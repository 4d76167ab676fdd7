package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/multierr"

	md2slides "github.com/alnah/go-md2slides"
)

// File permission constants.
const (
	dirPermissions  = 0o750 // rwxr-x---: owner full, group read+execute
	filePermissions = 0o644 // rw-r--r--: owner read+write, others read
)

// Sentinel errors for batch operations.
var (
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrWriteOutput  = errors.New("failed to write output file")
	ErrServiceInit  = errors.New("failed to initialize conversion service")
)

// ConversionResult holds the outcome of a single conversion.
type ConversionResult struct {
	InputPath  string
	OutputPath string
	Pages      int
	Warnings   []error // Images left as links
	Err        error
	Duration   time.Duration
}

// convertBatch processes files concurrently using the converter pool.
// Results keep the order of files.
func convertBatch(ctx context.Context, pool Pool, files []FileToConvert, params *conversionParams, env *Environment) []ConversionResult {
	if len(files) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(files) {
		concurrency = len(files)
	}

	results := make([]ConversionResult, len(files))
	var wg sync.WaitGroup
	jobs := make(chan int, len(files))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conv := pool.Acquire()
			if conv == nil {
				// Converter creation failed, mark remaining jobs as failed
				err := ErrServiceInit
				if initErr := pool.InitError(); initErr != nil {
					err = fmt.Errorf("%w: %w", ErrServiceInit, initErr)
				}
				for idx := range jobs {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: err}
				}
				return
			}
			defer pool.Release(conv)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = ConversionResult{InputPath: files[idx].InputPath, Err: ctx.Err()}
					continue
				}
				results[idx] = convertFile(ctx, conv, files[idx], params, env.Now)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// convertFile converts a single deck and writes its outputs.
// When only PDF generation fails, the requested HTML is still written.
func convertFile(ctx context.Context, conv CLIConverter, f FileToConvert, params *conversionParams, now func() time.Time) (result ConversionResult) {
	start := now()
	result = ConversionResult{
		InputPath:  f.InputPath,
		OutputPath: f.OutputPath,
	}
	defer func() { result.Duration = now().Sub(start) }()

	content, err := os.ReadFile(f.InputPath) // #nosec G304 -- discovered path
	if err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrReadMarkdown, err)
		return result
	}

	if err := os.MkdirAll(filepath.Dir(f.OutputPath), dirPermissions); err != nil {
		result.Err = fmt.Errorf("%w: creating output directory: %w", ErrWriteOutput, err)
		return result
	}

	title := params.title
	if title == "" {
		title = deckTitle(f.InputPath)
	}

	res, convErr := conv.Convert(ctx, md2slides.Input{
		Markdown:  string(content),
		SourceDir: filepath.Dir(f.InputPath),
		Title:     title,
		HTMLOnly:  params.htmlOnly,
	})
	if res == nil {
		result.Err = convErr
		return result
	}
	result.Pages = res.Pages
	result.Warnings = res.Warnings

	if params.htmlOnly || params.htmlOutput {
		htmlPath := htmlOutputPath(f.OutputPath)
		// #nosec G306 -- HTML files are meant to be readable
		if err := os.WriteFile(htmlPath, res.HTML, filePermissions); err != nil {
			result.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
			return result
		}
		if params.htmlOnly {
			result.OutputPath = htmlPath
			return result
		}
	}

	if convErr != nil {
		result.Err = convErr
		return result
	}

	// #nosec G306 -- PDFs are meant to be readable
	if err := os.WriteFile(f.OutputPath, res.PDF, filePermissions); err != nil {
		result.Err = fmt.Errorf("%w: %w", ErrWriteOutput, err)
		return result
	}

	return result
}

// ResultSummary holds the count of succeeded and failed conversions.
type ResultSummary struct {
	Succeeded int
	Failed    int
}

// countResults tallies succeeded and failed conversions.
func countResults(results []ConversionResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
		} else {
			summary.Succeeded++
		}
	}
	return summary
}

// printResultsWithWriter outputs conversion results and returns the number
// of failures.
func printResultsWithWriter(results []ConversionResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %s\n", r.InputPath, formatError(r.Err))
			continue
		}

		if quiet {
			continue
		}

		suffix := ""
		if n := len(r.Warnings); n > 0 {
			suffix = fmt.Sprintf(" (%d image(s) not inlined)", n)
		}
		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)%s\n",
				r.InputPath, r.OutputPath, r.Pages, r.Duration.Round(time.Millisecond), suffix)
		} else {
			fmt.Fprintf(env.Stdout, "Created %s%s\n", r.OutputPath, suffix)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	}

	return summary.Failed
}

// batchError reports failed conversions. It unwraps to every failure so
// the exit code follows their causes.
type batchError struct {
	failed int
	errs   error
}

func newBatchError(results []ConversionResult) *batchError {
	e := &batchError{}
	for _, r := range results {
		if r.Err != nil {
			e.failed++
			e.errs = multierr.Append(e.errs, r.Err)
		}
	}
	return e
}

func (e *batchError) Error() string {
	return fmt.Sprintf("%d conversion(s) failed", e.failed)
}

func (e *batchError) Unwrap() []error {
	return multierr.Errors(e.errs)
}
