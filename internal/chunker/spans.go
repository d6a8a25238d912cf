package chunker

import (
	"regexp"
	"sort"
	"strings"
)

// PageText pairs a source page number with its extracted text. The numbers
// come from the extractor and may have gaps where blank or unreadable pages
// were skipped.
type PageText struct {
	Number int
	Text   string
}

// PageSpan records the rune range a source page occupies in the assembled
// buffer text.
type PageSpan struct {
	Page  int
	Start int
	End   int
}

// ChapterSpan records the rune range governed by a chapter heading: from
// the heading until the next heading (or the end of the buffer).
type ChapterSpan struct {
	Label string
	Start int
	End   int
}

// Chunk is a piece of corpus text with its resolved attribution, ready for
// embedding and upsert.
type Chunk struct {
	Text     string
	Pages    []int
	Chapters []string
	Source   string
}

// chapterHeading matches Spanish legal chapter and title headings at the
// start of a line, e.g. "CAPÍTULO III. Normas de circulación".
var chapterHeading = regexp.MustCompile(`(?mi)^\s*((?:CAP[ÍI]TULO|T[ÍI]TULO|SECCI[ÓO]N)\s+[IVXLCM0-9]+[^\n]*)`)

// Assemble concatenates page texts into one buffer, separating pages with a
// newline, and returns the buffer plus the span each page occupies. Spans
// carry each page's real number, so gaps in the sequence survive into
// attribution.
func Assemble(pages []PageText) (string, []PageSpan) {
	var b strings.Builder
	spans := make([]PageSpan, 0, len(pages))
	offset := 0
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n")
			offset++
		}
		n := len([]rune(p.Text))
		spans = append(spans, PageSpan{
			Page:  p.Number,
			Start: offset,
			End:   offset + n,
		})
		b.WriteString(p.Text)
		offset += n
	}
	return b.String(), spans
}

// ChapterSpans locates chapter headings in the buffer and returns their
// governed ranges in rune offsets.
func ChapterSpans(text string) []ChapterSpan {
	matches := chapterHeading.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	// Byte offsets from the regexp are converted to rune offsets once,
	// front to back.
	byteToRune := func(b int) int { return len([]rune(text[:b])) }

	spans := make([]ChapterSpan, 0, len(matches))
	for i, m := range matches {
		label := strings.TrimSpace(text[m[0]:m[1]])
		start := byteToRune(m[0])
		end := len([]rune(text))
		if i+1 < len(matches) {
			end = byteToRune(matches[i+1][0])
		}
		spans = append(spans, ChapterSpan{Label: label, Start: start, End: end})
	}
	return spans
}

// Intersects reports whether the chunk range [cs, ce) overlaps the span
// [ps, pe): they intersect unless the chunk ends before the span starts or
// begins after it ends.
func Intersects(cs, ce, ps, pe int) bool {
	return !(ce < ps || cs > pe)
}

// Attribute resolves the pages and chapter labels whose spans intersect the
// piece's character range. A piece crossing a page or chapter boundary
// receives every intersecting label, not just the first.
func Attribute(p Piece, pages []PageSpan, chapters []ChapterSpan, source string) Chunk {
	c := Chunk{Text: p.Text, Source: source}

	for _, ps := range pages {
		if Intersects(p.Start, p.End, ps.Start, ps.End) {
			c.Pages = append(c.Pages, ps.Page)
		}
	}
	sort.Ints(c.Pages)

	for _, cs := range chapters {
		if Intersects(p.Start, p.End, cs.Start, cs.End) {
			c.Chapters = append(c.Chapters, cs.Label)
		}
	}
	return c
}
