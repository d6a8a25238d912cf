// Package index wraps the embedded vector store used for chunk retrieval.
// Chunks are owned by the index once upserted; the ingestion pipeline keeps
// no separate copy. A JSON manifest alongside the store records every
// upserted document so the generator can iterate the full corpus.
package index

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/philippgille/chromem-go"
)

// Embedder computes fixed-dimension vectors for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Result is a single ranked retrieval hit.
type Result struct {
	ID         string
	Content    string
	Metadata   map[string]string
	Similarity float32
}

// Index is a persistent vector collection plus its document manifest.
type Index struct {
	db       *chromem.DB
	coll     *chromem.Collection
	manifest *manifest
}

// Open loads or creates the store under dir with the named collection.
// Queries embed through emb, so the same embedding space is used for
// ingestion and retrieval.
func Open(dir, collection string, emb Embedder) (*Index, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dir, "chromem"), false)
	if err != nil {
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	embedOne := func(ctx context.Context, text string) ([]float32, error) {
		vecs, err := emb.Embed(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vecs) != 1 {
			return nil, fmt.Errorf("expected 1 embedding, got %d", len(vecs))
		}
		return vecs[0], nil
	}

	coll, err := db.GetOrCreateCollection(collection, nil, embedOne)
	if err != nil {
		return nil, fmt.Errorf("open collection %q: %w", collection, err)
	}

	m, err := loadManifest(filepath.Join(dir, collection+".manifest.json"))
	if err != nil {
		return nil, err
	}

	return &Index{db: db, coll: coll, manifest: m}, nil
}

// Add upserts one batch. ids, documents, embeddings and metadatas must be
// parallel slices; the batch is written as a unit and recorded in the
// manifest only after the store accepts it.
func (ix *Index) Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error {
	if len(ids) != len(documents) || len(ids) != len(embeddings) || len(ids) != len(metadatas) {
		return fmt.Errorf("batch slices must have equal length")
	}
	if len(ids) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(ids))
	for i := range ids {
		docs[i] = chromem.Document{
			ID:        ids[i],
			Content:   documents[i],
			Embedding: embeddings[i],
			Metadata:  metadatas[i],
		}
	}

	if err := ix.coll.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}

	ix.manifest.add(ids, documents)
	if err := ix.manifest.save(); err != nil {
		return fmt.Errorf("save manifest: %w", err)
	}
	return nil
}

// Query returns up to k nearest chunks for the query text, most similar
// first. k is clamped to the collection size.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]Result, error) {
	n := ix.coll.Count()
	if n == 0 {
		return nil, nil
	}
	if k > n {
		k = n
	}

	hits, err := ix.coll.Query(ctx, text, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}

	results := make([]Result, len(hits))
	for i, h := range hits {
		results[i] = Result{
			ID:         h.ID,
			Content:    h.Content,
			Metadata:   h.Metadata,
			Similarity: h.Similarity,
		}
	}
	return results, nil
}

// Count returns the number of stored chunks.
func (ix *Index) Count() int {
	return ix.coll.Count()
}

// Documents returns the text of every upserted chunk in insertion order.
func (ix *Index) Documents() []string {
	return ix.manifest.documents()
}

// manifest mirrors the collection contents on disk so the full document
// list can be iterated without support from the vector store.
type manifest struct {
	path    string
	Entries []manifestEntry `json:"entries"`
}

type manifestEntry struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func loadManifest(path string) (*manifest, error) {
	m := &manifest{path: path}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}

func (m *manifest) add(ids, documents []string) {
	for i := range ids {
		m.Entries = append(m.Entries, manifestEntry{ID: ids[i], Text: documents[i]})
	}
}

func (m *manifest) documents() []string {
	out := make([]string, len(m.Entries))
	for i, e := range m.Entries {
		out[i] = e.Text
	}
	return out
}

func (m *manifest) save() error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return err
	}
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}
