package mcq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuestion = `{
	"question": "¿Cuál es la velocidad máxima en autopista para turismos?",
	"options": {"A": "100 km/h", "B": "120 km/h", "C": "130 km/h", "D": "90 km/h"},
	"correct_answer": "B",
	"explanation": "El límite genérico en autopista es 120 km/h.",
	"topic_name": "límites de velocidad",
	"source": "Reglamento General de Circulación"
}`

func TestParseCandidatesBareArray(t *testing.T) {
	items, err := ParseCandidates(`[` + sampleQuestion + `]`)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestParseCandidatesQuestionsWrapper(t *testing.T) {
	items, err := ParseCandidates(`{"questions": [` + sampleQuestion + `, ` + sampleQuestion + `]}`)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestParseCandidatesPreguntasWrapper(t *testing.T) {
	items, err := ParseCandidates(`{"preguntas": [` + sampleQuestion + `]}`)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseCandidatesStripsCodeFences(t *testing.T) {
	fenced := "```json\n[" + sampleQuestion + "]\n```"
	items, err := ParseCandidates(fenced)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseCandidatesBalancedSubstring(t *testing.T) {
	noisy := "Here are your questions:\n\n[" + sampleQuestion + "]\n\nLet me know if you need more."
	items, err := ParseCandidates(noisy)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseCandidatesBalancedSubstringRespectsStrings(t *testing.T) {
	// A brace inside a JSON string must not unbalance the scan.
	text := `Sure: {"questions": [{"question": "¿Qué significa \"{\" aquí?", "options": {"A":"a","B":"b","C":"c","D":"d"}, "correct_answer": "A"}]} done`
	items, err := ParseCandidates(text)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParseCandidatesUnknownWrapperKey(t *testing.T) {
	_, err := ParseCandidates(`{"items": [` + sampleQuestion + `]}`)
	require.ErrorIs(t, err, ErrNoQuestions)
}

func TestParseCandidatesEmpty(t *testing.T) {
	_, err := ParseCandidates("")
	require.Error(t, err)
}

func TestParseCandidatesNoJSON(t *testing.T) {
	_, err := ParseCandidates("I could not generate questions for this context.")
	require.Error(t, err)
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", sampleQuestion, false},
		{"missing question", `{"options":{"A":"a","B":"b","C":"c","D":"d"},"correct_answer":"A"}`, true},
		{"missing option D", `{"question":"q","options":{"A":"a","B":"b","C":"c"},"correct_answer":"A"}`, true},
		{"extra option E", `{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d","E":"e"},"correct_answer":"A"}`, true},
		{"correct answer out of range", `{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d"},"correct_answer":"E"}`, true},
		{"bad difficulty", `{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d"},"correct_answer":"A","difficulty":"extreme"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateCandidate([]byte(tt.raw))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBuildPromptEmbedsCountAndContext(t *testing.T) {
	p := BuildPrompt("  Artículo 48. Velocidades máximas.  ", 5)
	assert.Contains(t, p, "up to 5 distinct")
	assert.Contains(t, p, "Artículo 48. Velocidades máximas.")
	assert.NotContains(t, p, "  Artículo")
}
