package index

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmbedder maps texts onto a tiny deterministic vector space so tests
// run without a provider.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := []float32{0, 0, 0}
		for j, r := range []rune(t) {
			v[j%3] += float32(r % 13)
		}
		var norm float64
		for _, x := range v {
			norm += float64(x * x)
		}
		norm = math.Sqrt(norm)
		if norm == 0 {
			norm = 1
		}
		for j := range v {
			v[j] = float32(float64(v[j]) / norm)
		}
		out[i] = v
	}
	return out, nil
}

func openTestIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(t.TempDir(), "test_docs", fakeEmbedder{})
	require.NoError(t, err)
	return ix
}

func TestAddAndCount(t *testing.T) {
	ctx := context.Background()
	ix := openTestIndex(t)
	assert.Equal(t, 0, ix.Count())

	emb, err := fakeEmbedder{}.Embed(ctx, []string{"uno", "dos"})
	require.NoError(t, err)

	err = ix.Add(ctx,
		[]string{"id1", "id2"},
		[]string{"uno", "dos"},
		emb,
		[]map[string]string{{"source": "a"}, {"source": "a"}},
	)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Count())
	assert.Equal(t, []string{"uno", "dos"}, ix.Documents())
}

func TestAddRejectsUnevenBatch(t *testing.T) {
	ix := openTestIndex(t)
	err := ix.Add(context.Background(), []string{"id1"}, []string{"a", "b"}, nil, nil)
	assert.Error(t, err)
}

func TestQueryClampsK(t *testing.T) {
	ctx := context.Background()
	ix := openTestIndex(t)

	texts := []string{"velocidad maxima", "paso de peatones"}
	emb, err := fakeEmbedder{}.Embed(ctx, texts)
	require.NoError(t, err)
	require.NoError(t, ix.Add(ctx,
		[]string{"a", "b"}, texts, emb,
		[]map[string]string{{}, {}},
	))

	results, err := ix.Query(ctx, "velocidad maxima", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "velocidad maxima", results[0].Content)
}

func TestQueryEmptyIndex(t *testing.T) {
	ix := openTestIndex(t)
	results, err := ix.Query(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
