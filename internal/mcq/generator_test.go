package mcq

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/llm"
)

func questionJSON(text string) string {
	q := map[string]any{
		"question":       text,
		"options":        map[string]string{"A": "a", "B": "b", "C": "c", "D": "d"},
		"correct_answer": "A",
		"explanation":    "porque sí",
		"topic_name":     "señales",
		"source":         "test",
	}
	b, _ := json.Marshal(q)
	return string(b)
}

func TestGeneratorAcceptsValidCandidates(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`[` + questionJSON("q1") + `,` + questionJSON("q2") + `]`),
	})
	g := NewGenerator(mock, nil)

	qs, err := g.Generate(context.Background(), "context text", 2)
	require.NoError(t, err)
	require.Len(t, qs, 2)
	assert.Equal(t, "q1", qs[0].Question)
	assert.Equal(t, 1, mock.CallCount())
}

func TestGeneratorDropsInvalidCandidatesIndividually(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`[` + questionJSON("good") + `, {"question": "broken"}]`),
	})
	g := NewGenerator(mock, nil)

	qs, err := g.Generate(context.Background(), "ctx", 2)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "good", qs[0].Question)
}

func TestGeneratorRetriesOnGarbageThenSucceeds(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`"not a question list"`)},
		llm.MockResponse{Content: json.RawMessage(`[` + questionJSON("recovered") + `]`)},
	)
	g := NewGenerator(mock, nil)

	qs, err := g.Generate(context.Background(), "ctx", 1)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, 2, mock.CallCount())
}

func TestGeneratorGivesUpAfterBoundedAttempts(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
		llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
	)
	g := NewGenerator(mock, nil)

	qs, err := g.Generate(context.Background(), "ctx", 3)
	require.NoError(t, err)
	assert.Empty(t, qs)
	assert.Equal(t, generateAttempts, mock.CallCount())
}

func TestGeneratorPropagatesCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := llm.NewMockProvider(llm.MockResponse{Err: ctx.Err()})
	g := NewGenerator(mock, nil)

	_, err := g.Generate(ctx, "ctx", 1)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGeneratorPromptCarriesContext(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: json.RawMessage(`[]`),
	})
	g := NewGenerator(mock, nil)

	_, err := g.Generate(context.Background(), "Artículo 20. Tasas de alcohol.", 4)
	require.NoError(t, err)
	require.Len(t, mock.Calls, 1)
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "Artículo 20. Tasas de alcohol.")
	assert.Contains(t, mock.Calls[0].Messages[0].Content, "up to 4")
}

type staticCorpus []string

func (c staticCorpus) Documents() []string { return c }

func TestBuilderFlushesAfterEveryChunk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	b, err := bank.Load(path)
	require.NoError(t, err)

	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`[` + questionJSON("from chunk one") + `]`)},
		llm.MockResponse{Content: json.RawMessage(`[` + questionJSON("from chunk two") + `]`)},
	)
	builder := NewBuilder(
		staticCorpus{legalChunk("primero"), legalChunk("segundo")},
		NewGenerator(mock, nil), b, 1, 0, nil,
	)

	added, err := builder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Reload from disk: the checkpoint must hold both questions.
	reloaded, err := bank.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())
}

func TestBuilderDedupsAcrossChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	b, err := bank.Load(path)
	require.NoError(t, err)

	same := questionJSON("misma pregunta")
	mock := llm.NewMockProvider(
		llm.MockResponse{Content: json.RawMessage(`[` + same + `]`)},
		llm.MockResponse{Content: json.RawMessage(`[` + same + `]`)},
	)
	builder := NewBuilder(
		staticCorpus{legalChunk("uno"), legalChunk("dos")},
		NewGenerator(mock, nil), b, 1, 0, nil,
	)

	added, err := builder.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, 1, b.Len())
}

func TestBuilderSkipsNoiseChunks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	b, err := bank.Load(path)
	require.NoError(t, err)

	mock := llm.NewMockProvider() // no responses: a call would error
	builder := NewBuilder(
		staticCorpus{"Sumario ......... 3"},
		NewGenerator(mock, nil), b, 1, 0, nil,
	)

	added, err := builder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, added)
	assert.Zero(t, mock.CallCount())
}

func TestBuilderHonorsCancellation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	b, err := bank.Load(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	builder := NewBuilder(
		staticCorpus{legalChunk("uno")},
		NewGenerator(llm.NewMockProvider(), nil), b, 1, time.Second, nil,
	)

	_, err = builder.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

// legalChunk pads text past the retrieval noise filter's minimum length.
func legalChunk(tag string) string {
	return "Artículo sobre " + tag + ": los conductores deberán respetar los límites de velocidad establecidos " +
		"para cada tipo de vía y las condiciones meteorológicas adversas que pudieran presentarse durante la circulación."
}
