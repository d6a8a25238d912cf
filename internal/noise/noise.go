// Package noise classifies corpus fragments as rule text or administrative
// boilerplate (indices, registries, bulletin metadata, numeric tables).
// Classification is a heuristic, not an error condition: a misclassified
// fragment is simply kept or dropped.
package noise

import (
	"regexp"
	"strings"
	"unicode"
)

// tocPattern matches table-of-contents dot leaders: five or more dots
// followed by a page number.
var tocPattern = regexp.MustCompile(`\.{5,}\s*\d+`)

// ingestKeywords flag pure publication metadata. The ingestion profile keeps
// this list short so borderline fragments survive to the index; a second,
// stricter pass happens at retrieval time.
var ingestKeywords = []string{
	"isbn",
	"nipo",
	"depósito legal",
	"sumario",
	"índice",
	"boletín oficial",
	"agencia estatal",
	"www.boe.es",
	"anexo",
	"tabla",
}

// retrievalKeywords extend the ingestion list with administrative and
// procedural phrases that would pollute a grounding prompt.
var retrievalKeywords = append([]string{
	"catálogo de publicaciones",
	"resolución de",
	"dirección general de tráfico",
	"punto de acceso nacional",
	"registro",
	"consorcio",
	"cuantía",
	"importe",
	"indemnización",
	"euros",
}, ingestKeywords...)

// Filter decides whether a text fragment is noise. The zero value accepts
// everything; use ForIngestion or ForRetrieval for the tuned profiles.
type Filter struct {
	// Keywords are matched case-insensitively as substrings.
	Keywords []string

	// MaxDigitRatio flags text whose digit-to-length ratio exceeds it.
	// Zero disables the check.
	MaxDigitRatio float64

	// MinLength flags text shorter than this many characters. Zero
	// disables the check.
	MinLength int

	// MatchTOC flags table-of-contents dot-leader lines.
	MatchTOC bool
}

// ForIngestion returns the recall-biased profile used while indexing:
// aggressive on numeric tables, permissive on short fragments.
func ForIngestion() Filter {
	return Filter{
		Keywords:      ingestKeywords,
		MaxDigitRatio: 0.30,
		MinLength:     80,
		MatchTOC:      true,
	}
}

// ForRetrieval returns the precision-biased profile used when selecting
// grounding snippets: anything that cannot carry rule content is rejected.
func ForRetrieval() Filter {
	return Filter{
		Keywords:      retrievalKeywords,
		MaxDigitRatio: 0.45,
		MinLength:     120,
		MatchTOC:      true,
	}
}

// IsNoise reports whether the fragment should be treated as administrative
// noise. A fragment is noise if any single heuristic fires.
func (f Filter) IsNoise(text string) bool {
	lower := strings.ToLower(text)

	for _, k := range f.Keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}

	if f.MaxDigitRatio > 0 && DigitRatio(text) > f.MaxDigitRatio {
		return true
	}

	if f.MatchTOC && tocPattern.MatchString(text) {
		return true
	}

	if f.MinLength > 0 && len([]rune(text)) < f.MinLength {
		return true
	}

	return false
}

// DigitRatio returns the fraction of characters in text that are digits.
// Empty text has ratio 0.
func DigitRatio(text string) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}
	digits := 0
	for _, r := range runes {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return float64(digits) / float64(len(runes))
}
