package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vialex/vialex/internal/index"
)

type fakeSearcher struct {
	results []index.Result
	err     error
	lastK   int
}

func (f *fakeSearcher) Query(_ context.Context, _ string, k int) ([]index.Result, error) {
	f.lastK = k
	return f.results, f.err
}

func clean(text string) index.Result {
	// Long enough and digit-free so the retrieval filter accepts it.
	return index.Result{Content: strings.Repeat(text+" ", 8)}
}

func TestRetrieveAcceptsFirstTwoClean(t *testing.T) {
	s := &fakeSearcher{results: []index.Result{
		{Content: "ISBN 978-84 metadata page"}, // noise: keyword
		clean("los conductores deben moderar la velocidad al aproximarse a un paso de peatones"),
		clean("queda prohibido adelantar en los pasos para peatones señalizados"),
		clean("esta tercera regla nunca debe aparecer en el resultado porque ya hay dos"),
	}}

	got, err := New(s).Retrieve(context.Background(), "paso de peatones", 8)
	require.NoError(t, err)
	assert.Equal(t, 8, s.lastK)

	parts := strings.Split(got, "\n\n")
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0], "moderar la velocidad")
	assert.NotContains(t, got, "tercera regla")
}

func TestRetrieveTruncatesSnippets(t *testing.T) {
	long := strings.Repeat("norma de circulación aplicable ", 60)
	s := &fakeSearcher{results: []index.Result{{Content: long}}}

	got, err := New(s).Retrieve(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(got)), maxSnippetLen)
}

func TestRetrieveAllNoisy(t *testing.T) {
	s := &fakeSearcher{results: []index.Result{
		{Content: "ÍNDICE " + strings.Repeat(".", 10) + " 4"},
		{Content: "12345 67890 12345 67890"},
	}}

	got, err := New(s).Retrieve(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRetrieveFlattensNewlines(t *testing.T) {
	text := strings.Repeat("la prioridad de paso\nse respeta siempre en las intersecciones ", 4)
	s := &fakeSearcher{results: []index.Result{{Content: text}}}

	got, err := New(s).Retrieve(context.Background(), "q", 4)
	require.NoError(t, err)
	assert.NotContains(t, got, "\n")
}

func TestRetrievePropagatesSearchError(t *testing.T) {
	s := &fakeSearcher{err: errors.New("index offline")}
	_, err := New(s).Retrieve(context.Background(), "q", 4)
	assert.Error(t, err)
}
