package pipeline

import "regexp"

// Line ending normalization
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// NormalizeLineEndings converts \r\n and \r to \n so delimiter lines match
// regardless of the platform the deck was written on.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
