package noise

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ruleText builds a plausible rule paragraph long enough to pass the
// minimum-length checks.
func ruleText() string {
	return strings.Repeat("Drivers must give way to pedestrians crossing at marked crossings. ", 4)
}

func TestForRetrievalAcceptsRuleText(t *testing.T) {
	f := ForRetrieval()
	assert.False(t, f.IsNoise(ruleText()))
}

func TestKeywords(t *testing.T) {
	f := ForRetrieval()
	tests := []string{
		"ISBN 978-84-123-4567-8 " + ruleText(),
		ruleText() + " Boletín Oficial del Estado",
		ruleText() + " consultable en www.boe.es",
		"Catálogo de Publicaciones de la Administración General " + ruleText(),
	}
	for _, text := range tests {
		assert.True(t, f.IsNoise(text), "expected noise: %q", text[:40])
	}
}

func TestDigitRatioThreshold(t *testing.T) {
	// Above 0.45 must be noise for every profile.
	numeric := strings.Repeat("1234567890", 30)
	assert.True(t, ForRetrieval().IsNoise(numeric))
	assert.True(t, ForIngestion().IsNoise(numeric))

	// Ingestion is stricter on digits than retrieval.
	mixed := strings.Repeat("Article 42 fine 200 ", 10) // ratio ~0.25 per segment
	assert.InDelta(t, 0.25, DigitRatio(mixed), 0.06)
	assert.False(t, ForIngestion().IsNoise(mixed))
}

func TestDigitRatio(t *testing.T) {
	assert.Equal(t, 0.0, DigitRatio(""))
	assert.Equal(t, 1.0, DigitRatio("123"))
	assert.InDelta(t, 0.5, DigitRatio("a1b2"), 0.001)
}

func TestTOCDotLeaders(t *testing.T) {
	f := ForRetrieval()
	line := "Chapter II. General rules of the road" + strings.Repeat(".", 12) + " 45"
	// Pad so the length heuristic is not the one firing.
	assert.True(t, f.IsNoise(line+strings.Repeat(" rules", 30)))
}

func TestShortFragments(t *testing.T) {
	assert.True(t, ForRetrieval().IsNoise("Article 12."))
	// Ingestion tolerates shorter fragments than retrieval.
	medium := strings.Repeat("give way ", 12) // ~108 chars
	assert.False(t, ForIngestion().IsNoise(medium))
	assert.True(t, ForRetrieval().IsNoise(medium))
}

func TestZeroFilterAcceptsEverything(t *testing.T) {
	var f Filter
	assert.False(t, f.IsNoise("x"))
	assert.False(t, f.IsNoise("999999"))
}
