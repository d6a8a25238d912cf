// Package chunker splits extracted corpus text into bounded, overlapping
// chunks and attributes each chunk to the page and chapter spans it covers.
package chunker

import (
	"strings"
)

// Splitter produces bounded chunks with a configurable overlap. It prefers
// cutting at structural boundaries (paragraph, then sentence) and falls
// back to a fixed-size sliding window when no boundary fits the budget.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

// Piece is a chunk of the input text together with its character range,
// half-open [Start, End) in runes of the original text.
type Piece struct {
	Text  string
	Start int
	End   int
}

// Step returns the window advance per iteration. It is never below 1, so
// splitting terminates for every parameter combination, including
// overlap >= chunk size.
func (s Splitter) Step() int {
	step := s.ChunkSize - s.Overlap
	if step < 1 {
		step = 1
	}
	return step
}

// Split returns the chunk texts for the input.
func (s Splitter) Split(text string) []string {
	pieces := s.SplitWithOffsets(text)
	out := make([]string, len(pieces))
	for i, p := range pieces {
		out[i] = p.Text
	}
	return out
}

// SplitWithOffsets splits text into pieces carrying their rune offsets so
// callers can attribute pages and chapters to each chunk.
func (s Splitter) SplitWithOffsets(text string) []Piece {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	size := s.ChunkSize
	if size < 1 {
		size = 1
	}

	var pieces []Piece
	start := 0
	for start < len(runes) {
		end := start + size
		if end >= len(runes) {
			pieces = append(pieces, makePiece(runes, start, len(runes)))
			break
		}

		// Prefer a structural boundary in the back half of the window.
		if cut, ok := boundaryCut(runes, start, end); ok {
			pieces = append(pieces, makePiece(runes, start, cut))
			advance := cut - start - s.Overlap
			if advance < 1 {
				advance = 1
			}
			start += advance
			continue
		}

		pieces = append(pieces, makePiece(runes, start, end))
		start += s.Step()
	}
	return pieces
}

// boundaryCut looks for the last paragraph break, then the last sentence
// end, within the window. Boundaries in the front half are ignored so
// chunks stay reasonably full.
func boundaryCut(runes []rune, start, end int) (int, bool) {
	window := string(runes[start:end])
	half := (end - start) / 2

	// LastIndex yields byte offsets; convert to runes before comparing
	// against the half-window threshold, which counts runes.
	if i := strings.LastIndex(window, "\n\n"); i >= 0 {
		if r := len([]rune(window[:i])); r >= half {
			return start + r, true
		}
	}
	for _, sep := range []string{". ", ".\n"} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			if r := len([]rune(window[:i])); r >= half {
				return start + r + 1, true
			}
		}
	}
	return 0, false
}

func makePiece(runes []rune, start, end int) Piece {
	return Piece{
		Text:  strings.TrimSpace(string(runes[start:end])),
		Start: start,
		End:   end,
	}
}
