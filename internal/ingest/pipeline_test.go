package ingest

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	pages []Page
	err   error
}

func (f fakeExtractor) Pages(string) ([]Page, error) { return f.pages, f.err }

type fakeStore struct {
	ids   []string
	docs  []string
	metas []map[string]string
	adds  int
	count int
	err   error
}

func (s *fakeStore) Add(_ context.Context, ids, docs []string, _ [][]float32, metas []map[string]string) error {
	if s.err != nil {
		return s.err
	}
	s.adds++
	s.ids = append(s.ids, ids...)
	s.docs = append(s.docs, docs...)
	s.metas = append(s.metas, metas...)
	s.count += len(ids)
	return nil
}

func (s *fakeStore) Count() int { return s.count }

type fakeEmbedder struct {
	calls int
	err   error
}

func (e *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}

// legalPage builds extractable page text long enough to survive the
// ingestion noise filter.
func legalPage(n int, tag string) Page {
	sentence := "Los conductores de " + tag + " deberán moderar la velocidad y respetar la señalización vertical y horizontal establecida por la autoridad competente. "
	return Page{Number: n, Text: strings.Repeat(sentence, 6)}
}

func testConfig() Config {
	return Config{
		ChunkSize:      800,
		Overlap:        100,
		FlushThreshold: 1500,
		BatchSize:      4,
		Source:         "boe.pdf",
	}
}

func TestRunSkipsWhenIndexPopulated(t *testing.T) {
	store := &fakeStore{count: 42}
	emb := &fakeEmbedder{}
	p := New(store, emb, testConfig(), nil)

	err := p.Run(context.Background(), fakeExtractor{pages: []Page{legalPage(1, "turismos")}}, "boe.pdf")
	require.NoError(t, err)
	assert.Zero(t, emb.calls)
	assert.Zero(t, store.adds)
}

func TestRunIngestsAllPages(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	p := New(store, emb, testConfig(), nil)

	pages := []Page{
		legalPage(1, "turismos"),
		legalPage(2, "motocicletas"),
		legalPage(3, "camiones"),
	}
	err := p.Run(context.Background(), fakeExtractor{pages: pages}, "boe.pdf")
	require.NoError(t, err)

	require.NotEmpty(t, store.docs)
	assert.Greater(t, emb.calls, 0)
	for _, m := range store.metas {
		assert.Equal(t, "boe.pdf", m["source"])
		assert.NotEmpty(t, m["pages"])
	}
}

func TestPageAttributionSurvivesSkippedPages(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	p := New(store, emb, testConfig(), nil)

	// Page 2 was blank and never extracted: the buffer holds pages 1 and 3.
	pages := []Page{
		legalPage(1, "turismos"),
		legalPage(3, "camiones"),
	}
	err := p.Run(context.Background(), fakeExtractor{pages: pages}, "boe.pdf")
	require.NoError(t, err)
	require.NotEmpty(t, store.docs)

	// Chunks made purely of page-3 text must be attributed to page 3, and
	// the missing page must never appear anywhere.
	var sawPage3 bool
	for i, doc := range store.docs {
		assert.NotContains(t, store.metas[i]["pages"], "2")
		if strings.Contains(doc, "camiones") && !strings.Contains(doc, "turismos") {
			assert.Contains(t, store.metas[i]["pages"], "3")
			sawPage3 = true
		}
	}
	assert.True(t, sawPage3, "expected at least one pure page-3 chunk")
}

func TestRunFlushesTrailingPartialBuffer(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	cfg := testConfig()
	cfg.FlushThreshold = 100000 // never reached during accumulation
	p := New(store, emb, cfg, nil)

	err := p.Run(context.Background(), fakeExtractor{pages: []Page{legalPage(1, "turismos")}}, "boe.pdf")
	require.NoError(t, err)
	assert.NotEmpty(t, store.docs)
}

func TestEmbedFailureWritesNothing(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}
	p := New(store, emb, testConfig(), nil)

	err := p.Run(context.Background(), fakeExtractor{pages: []Page{legalPage(1, "turismos")}}, "boe.pdf")
	require.Error(t, err)
	assert.Zero(t, store.adds)
}

func TestUpsertFailurePropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("collection closed")}
	emb := &fakeEmbedder{}
	p := New(store, emb, testConfig(), nil)

	err := p.Run(context.Background(), fakeExtractor{pages: []Page{legalPage(1, "turismos")}}, "boe.pdf")
	require.Error(t, err)
}

func TestNoiseChunksAreDropped(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	cfg := testConfig()
	cfg.FlushThreshold = 1
	p := New(store, emb, cfg, nil)

	noisy := Page{Number: 1, Text: "Sumario ......... 3\nISBN 978-84-00000-0"}
	err := p.Run(context.Background(), fakeExtractor{pages: []Page{noisy}}, "boe.pdf")
	require.NoError(t, err)
	assert.Empty(t, store.docs)
	assert.Zero(t, emb.calls)
}

func TestContentIDsAreDeterministicAndUnique(t *testing.T) {
	store := &fakeStore{}
	emb := &fakeEmbedder{}
	p := New(store, emb, testConfig(), nil)

	// Duplicate page content must not produce duplicate ids.
	pg := legalPage(1, "turismos")
	dup := Page{Number: 2, Text: pg.Text}
	err := p.Run(context.Background(), fakeExtractor{pages: []Page{pg, dup}}, "boe.pdf")
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, id := range store.ids {
		assert.Len(t, id, 16)
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "accumulating", StateAccumulating.String())
	assert.Equal(t, "chunking", StateChunking.String())
	assert.Equal(t, "embedding", StateEmbedding.String())
	assert.Equal(t, "upserting", StateUpserting.String())
}

func TestExtractorErrorPropagates(t *testing.T) {
	p := New(&fakeStore{}, &fakeEmbedder{}, testConfig(), nil)
	err := p.Run(context.Background(), fakeExtractor{err: errors.New("bad pdf")}, "boe.pdf")
	require.Error(t, err)
}
