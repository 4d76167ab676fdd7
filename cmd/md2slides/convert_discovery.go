package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/maruel/natural"

	md2slides "github.com/alnah/go-md2slides"
	"github.com/alnah/go-md2slides/internal/fileutil"
)

// Sentinel errors for file discovery.
var (
	ErrInvalidExtension   = errors.New("file must have .md or .markdown extension")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrOutputConflict     = errors.New("several inputs cannot share one output file")
)

// FileToConvert represents a single deck to process.
type FileToConvert struct {
	InputPath  string
	OutputPath string
}

// discoverFiles expands the inputs into decks to convert. Directories are
// walked recursively; their decks come in natural order, so slide2.md
// precedes slide10.md.
func discoverFiles(inputs []string, outputDir string) ([]FileToConvert, error) {
	var files []FileToConvert
	for _, input := range inputs {
		found, err := discoverInput(input, outputDir)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}

	if len(files) > 1 && strings.HasSuffix(outputDir, ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrOutputConflict, outputDir)
	}
	return files, nil
}

// discoverInput returns the decks of a single file or directory argument.
func discoverInput(inputPath, outputDir string) ([]FileToConvert, error) {
	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if err := validateMarkdownExtension(inputPath); err != nil {
			return nil, err
		}
		outPath := resolveOutputPath(inputPath, outputDir, "")
		return []FileToConvert{{InputPath: inputPath, OutputPath: outPath}}, nil
	}

	var paths []string
	err = filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("scanning %s: %w", path, err)
		}
		if d.IsDir() || !fileutil.IsMarkdown(path) {
			return nil
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Sort(natural.StringSlice(paths))

	files := make([]FileToConvert, 0, len(paths))
	for _, path := range paths {
		files = append(files, FileToConvert{
			InputPath:  path,
			OutputPath: resolveOutputPath(path, outputDir, inputPath),
		})
	}
	return files, nil
}

// resolveOutputPath determines the PDF output path for a deck.
// An outputDir ending in .pdf is used as the file path itself.
func resolveOutputPath(inputPath, outputDir, baseInputDir string) string {
	ext := filepath.Ext(inputPath)
	base := strings.TrimSuffix(filepath.Base(inputPath), ext)

	if outputDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base+".pdf")
	}

	if strings.HasSuffix(outputDir, ".pdf") {
		return outputDir
	}

	if baseInputDir != "" {
		relPath, err := filepath.Rel(baseInputDir, inputPath)
		if err == nil {
			relDir := filepath.Dir(relPath)
			return filepath.Join(outputDir, relDir, base+".pdf")
		}
	}

	return filepath.Join(outputDir, base+".pdf")
}

// validateMarkdownExtension checks that the file has a Markdown extension.
func validateMarkdownExtension(path string) error {
	if !fileutil.IsMarkdown(path) {
		return fmt.Errorf("%w: got %q", ErrInvalidExtension, filepath.Ext(path))
	}
	return nil
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > md2slides.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, md2slides.MaxPoolSize)
	}
	return nil
}

// htmlOutputPath returns the HTML path corresponding to a PDF path.
func htmlOutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, ".pdf") + ".html"
}

// deckTitle derives a document title from the deck file name.
func deckTitle(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
