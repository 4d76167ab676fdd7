// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tempPattern names the documents handed to the browser.
const tempPattern = "md2slides-*.html"

// WriteTempHTML stores an HTML document in the temp directory so a browser
// can open it by file URL. cleanup removes the file and is safe to call more
// than once.
func WriteTempHTML(document string) (path string, cleanup func(), err error) {
	f, err := os.CreateTemp("", tempPattern)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp document: %w", err)
	}
	path = f.Name()
	cleanup = func() { _ = os.Remove(path) }

	_, err = f.WriteString(document)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("writing temp document: %w", err)
	}
	return path, cleanup, nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
//
// Examples:
//   - "talk" -> false (config name)
//   - "./talk.yaml" -> true (relative path)
//   - "/absolute/talk.yaml" -> true (absolute)
//   - "C:\decks\talk.yaml" -> true (Windows)
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// MarkdownExtensions lists the extensions of deck sources.
var MarkdownExtensions = []string{".md", ".markdown"}

// IsMarkdown returns true if path has a Markdown extension (case-insensitive).
func IsMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range MarkdownExtensions {
		if ext == e {
			return true
		}
	}
	return false
}
