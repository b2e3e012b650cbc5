// Package section locates named section boundaries inside plain-text filings.
// Filings carry no schema, so boundary detection is regex heuristics over
// lines: a strict header pattern, a loose fallback mention, and a next-item
// header that closes the section.
package section

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinSectionLength is the minimum excerpt length, in characters, treated as
// a real section body. Shorter excerpts are stray references to the item
// name, not content.
const MinSectionLength = 400

// BoundaryStrategy finds the start and end lines of a target section.
// Implementations can swap in alternate heuristics without touching the
// extraction flow.
type BoundaryStrategy interface {
	// FindStart returns the index of the section header line, or false when
	// the section does not appear in the text.
	FindStart(lines []string) (int, bool)

	// FindEnd returns the index of the first line after startIndex that
	// begins the next section, or false when the section runs to end of text.
	FindEnd(lines []string, startIndex int) (int, bool)
}

// ItemBoundaries detects 10-K item section boundaries. The start is matched
// in two stages: a strict header line first (the trimmed line is nothing but
// "item", the item number, an optional separator, and an optional section
// title), then any line mentioning the item as a loose fallback. The end is
// the first following line that opens one of the known next items.
type ItemBoundaries struct {
	strictStart *regexp.Regexp
	looseStart  *regexp.Regexp
	nextItem    *regexp.Regexp
}

// NewItem1CBoundaries returns the boundary detector for "Item 1C
// (Cybersecurity)". The next-item set covers every section that can follow
// 1C in a 10-K.
func NewItem1CBoundaries() *ItemBoundaries {
	return &ItemBoundaries{
		strictStart: regexp.MustCompile(`(?i)^\s*item\s*1c\s*[.:—-]?\s*(?:cybersecurity)?\s*$`),
		looseStart:  regexp.MustCompile(`(?i)\bitem\s*1c\b`),
		nextItem:    regexp.MustCompile(`(?i)^\s*item\s*(?:1d|2|3|4|5|6|7|7a|8|9|9a|9b|10|11|12|13|14|15)\b`),
	}
}

// FindStart prefers the first strict header match over any loose match, and
// the first physical occurrence of either. Filings may reference the item
// name before the real section (a table of contents entry, say); first
// occurrence wins regardless. That is a heuristic, not a guarantee.
func (boundaries *ItemBoundaries) FindStart(lines []string) (int, bool) {
	for lineIndex, line := range lines {
		if boundaries.strictStart.MatchString(strings.TrimSpace(line)) {
			return lineIndex, true
		}
	}
	for lineIndex, line := range lines {
		if boundaries.looseStart.MatchString(line) {
			return lineIndex, true
		}
	}
	return 0, false
}

// FindEnd scans forward from the line after startIndex for the next item
// header.
func (boundaries *ItemBoundaries) FindEnd(lines []string, startIndex int) (int, bool) {
	for lineIndex := startIndex + 1; lineIndex < len(lines); lineIndex++ {
		if boundaries.nextItem.MatchString(strings.TrimSpace(lines[lineIndex])) {
			return lineIndex, true
		}
	}
	return 0, false
}

// Extractor returns the bounded excerpt of a target section from normalized
// filing text.
type Extractor struct {
	// SectionName labels the extracted section in logs and reports.
	SectionName string

	// Strategy locates the section boundaries.
	Strategy BoundaryStrategy

	// MinLength is the minimum excerpt length, in characters, accepted as
	// a real section.
	MinLength int
}

// NewItem1CExtractor returns an Extractor configured for Item 1C.
func NewItem1CExtractor() *Extractor {
	return &Extractor{
		SectionName: "Item 1C",
		Strategy:    NewItem1CBoundaries(),
		MinLength:   MinSectionLength,
	}
}

// Extract returns the section excerpt and true, or ("", false) when the
// section is absent. Absence covers three cases: no header line matched, the
// excerpt was shorter than MinLength, or the text was empty.
func (extractor *Extractor) Extract(text string) (string, bool) {
	lines := strings.Split(text, "\n")

	startIndex, foundStart := extractor.Strategy.FindStart(lines)
	if !foundStart {
		return "", false
	}

	bounded := lines[startIndex:]
	if endIndex, foundEnd := extractor.Strategy.FindEnd(lines, startIndex); foundEnd {
		bounded = lines[startIndex:endIndex]
	}

	excerpt := strings.TrimSpace(strings.Join(bounded, "\n"))
	// MinLength counts characters, not bytes: filings carry em dashes,
	// curly quotes, and other multibyte punctuation.
	if utf8.RuneCountInString(excerpt) < extractor.MinLength {
		return "", false
	}
	return excerpt, true
}
