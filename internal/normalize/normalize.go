// Package normalize flattens raw extracted text into a single clean corpus
// string: lowercased, hyphenated line breaks repaired, and all whitespace
// collapsed to single spaces. The chunker consumes this output directly.
package normalize

import (
	"regexp"
	"strings"
)

var (
	// hyphenBreak matches a word split across a line break with a hyphen
	// ("exam-\nple"); the two halves are rejoined into one word.
	hyphenBreak = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)

	// lineBreaks matches one or more CR/LF characters.
	lineBreaks = regexp.MustCompile(`[\r\n]+`)

	// spaces matches any run of whitespace.
	spaces = regexp.MustCompile(`\s+`)
)

// Corpus normalizes raw document text into the form the chunker expects.
func Corpus(text string) string {
	text = strings.ToLower(text)
	text = hyphenBreak.ReplaceAllString(text, "$1$2")
	text = lineBreaks.ReplaceAllString(text, " ")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
