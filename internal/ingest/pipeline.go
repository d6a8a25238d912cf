package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vialex/vialex/internal/chunker"
	"github.com/vialex/vialex/internal/noise"
)

// State names the pipeline's phase. Transitions are logged; the value
// carries no behavior beyond observability.
type State int

const (
	StateAccumulating State = iota
	StateChunking
	StateEmbedding
	StateUpserting
)

func (s State) String() string {
	switch s {
	case StateAccumulating:
		return "accumulating"
	case StateChunking:
		return "chunking"
	case StateEmbedding:
		return "embedding"
	case StateUpserting:
		return "upserting"
	default:
		return "unknown"
	}
}

// VectorStore is the upsert side of the index.
type VectorStore interface {
	Add(ctx context.Context, ids, documents []string, embeddings [][]float32, metadatas []map[string]string) error
	Count() int
}

// Embedder computes vectors for a batch of texts.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// Config tunes the pipeline.
type Config struct {
	ChunkSize      int           // rune size of each chunk
	Overlap        int           // rune overlap between consecutive chunks
	FlushThreshold int           // buffered rune count that triggers chunking
	BatchSize      int           // chunks per embed+upsert batch
	Pacing         time.Duration // delay after each batch
	Source         string        // label stored with every chunk
}

// Pipeline ingests page text into the vector store in a buffered loop:
// pages accumulate until FlushThreshold, the buffer is chunked with page
// and chapter attribution, each chunk batch is embedded and upserted
// atomically, and a pacing delay separates batches.
type Pipeline struct {
	store    VectorStore
	embedder Embedder
	splitter chunker.Splitter
	filter   noise.Filter
	cfg      Config
	log      *zap.Logger

	state State
	seen  map[string]struct{}
}

// New creates a Pipeline.
func New(store VectorStore, embedder Embedder, cfg Config, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.FlushThreshold <= 0 {
		cfg.FlushThreshold = 1500
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 16
	}
	return &Pipeline{
		store:    store,
		embedder: embedder,
		splitter: chunker.Splitter{ChunkSize: cfg.ChunkSize, Overlap: cfg.Overlap},
		filter:   noise.ForIngestion(),
		cfg:      cfg,
		log:      log,
		state:    StateAccumulating,
		seen:     make(map[string]struct{}),
	}
}

// Run ingests the document at path. When the store already holds entries
// the whole run is skipped: ingestion is idempotent per index.
func (p *Pipeline) Run(ctx context.Context, ex Extractor, path string) error {
	if n := p.store.Count(); n > 0 {
		p.log.Info("index already populated, skipping ingestion",
			zap.String("path", path),
			zap.Int("count", n))
		return nil
	}

	pages, err := ex.Pages(path)
	if err != nil {
		return fmt.Errorf("extract %s: %w", path, err)
	}
	p.log.Info("starting ingestion",
		zap.String("path", path),
		zap.Int("pages", len(pages)))

	var buffer []Page
	bufLen := 0

	for _, page := range pages {
		buffer = append(buffer, page)
		bufLen += len([]rune(page.Text))

		if bufLen >= p.cfg.FlushThreshold {
			if err := p.flush(ctx, buffer); err != nil {
				return err
			}
			buffer = nil
			bufLen = 0
		}
	}

	// Trailing partial buffer still gets ingested.
	if len(buffer) > 0 {
		if err := p.flush(ctx, buffer); err != nil {
			return err
		}
	}

	p.log.Info("ingestion complete", zap.Int("stored", p.store.Count()))
	return nil
}

// flush chunks the buffered pages and writes them through the
// embed → upsert cycle.
func (p *Pipeline) flush(ctx context.Context, buffer []Page) error {
	p.setState(StateChunking)
	defer p.setState(StateAccumulating)

	pages := make([]chunker.PageText, len(buffer))
	for i, pg := range buffer {
		pages[i] = chunker.PageText{Number: pg.Number, Text: pg.Text}
	}
	text, pageSpans := chunker.Assemble(pages)
	chapterSpans := chunker.ChapterSpans(text)

	var chunks []chunker.Chunk
	for _, piece := range p.splitter.SplitWithOffsets(text) {
		if p.filter.IsNoise(piece.Text) {
			continue
		}
		chunks = append(chunks, chunker.Attribute(piece, pageSpans, chapterSpans, p.cfg.Source))
	}
	if len(chunks) == 0 {
		return nil
	}

	for start := 0; start < len(chunks); start += p.cfg.BatchSize {
		end := min(start+p.cfg.BatchSize, len(chunks))
		if err := p.upsertBatch(ctx, chunks[start:end]); err != nil {
			return err
		}

		if p.cfg.Pacing > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.cfg.Pacing):
			}
		}
	}
	return nil
}

// upsertBatch embeds and stores one batch atomically: an embedding
// failure writes nothing.
func (p *Pipeline) upsertBatch(ctx context.Context, batch []chunker.Chunk) error {
	var ids, docs []string
	var metas []map[string]string

	for _, c := range batch {
		id := contentID(c.Text)
		if _, dup := p.seen[id]; dup {
			continue
		}
		p.seen[id] = struct{}{}

		ids = append(ids, id)
		docs = append(docs, c.Text)
		metas = append(metas, chunkMetadata(c))
	}
	if len(ids) == 0 {
		return nil
	}

	p.setState(StateEmbedding)
	embeddings, err := p.embedder.Embed(ctx, docs)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}

	p.setState(StateUpserting)
	if err := p.store.Add(ctx, ids, docs, embeddings, metas); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}

	p.log.Debug("batch stored",
		zap.Int("chunks", len(ids)),
		zap.Int("total", p.store.Count()))
	return nil
}

func (p *Pipeline) setState(s State) {
	if p.state == s {
		return
	}
	p.log.Debug("state transition",
		zap.Stringer("from", p.state),
		zap.Stringer("to", s))
	p.state = s
}

// contentID derives a stable identifier from chunk text, so re-ingesting
// identical content produces identical ids.
func contentID(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}

func chunkMetadata(c chunker.Chunk) map[string]string {
	m := map[string]string{"source": c.Source}

	if len(c.Pages) > 0 {
		pages := make([]string, len(c.Pages))
		for i, n := range c.Pages {
			pages[i] = strconv.Itoa(n)
		}
		m["pages"] = strings.Join(pages, ",")
	}
	if len(c.Chapters) > 0 {
		m["chapter"] = strings.Join(c.Chapters, "; ")
	}
	return m
}
