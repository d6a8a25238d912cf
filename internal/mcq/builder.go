package mcq

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/noise"
)

// Corpus lists the stored chunk texts the builder walks.
type Corpus interface {
	Documents() []string
}

// Builder drives bank growth: one generation call per stored chunk, with
// dedup against the bank and a checkpoint flush after every chunk. A
// crash loses at most one chunk's worth of accepted questions.
type Builder struct {
	corpus   Corpus
	gen      *Generator
	bank     *bank.Bank
	filter   noise.Filter
	perChunk int
	pacing   time.Duration
	log      *zap.Logger
}

// NewBuilder wires a Builder. perChunk is the question count requested
// per chunk; pacing is the delay between generation calls.
func NewBuilder(corpus Corpus, gen *Generator, b *bank.Bank, perChunk int, pacing time.Duration, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		corpus:   corpus,
		gen:      gen,
		bank:     b,
		filter:   noise.ForRetrieval(),
		perChunk: perChunk,
		pacing:   pacing,
		log:      log,
	}
}

// Run processes every stored chunk. It returns the number of questions
// added to the bank.
func (b *Builder) Run(ctx context.Context) (int, error) {
	chunks := b.corpus.Documents()
	b.log.Info("building question bank",
		zap.Int("chunks", len(chunks)),
		zap.Int("bank_size", b.bank.Len()))

	added := 0
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			return added, err
		}

		if b.filter.IsNoise(chunk) {
			continue
		}

		questions, err := b.gen.Generate(ctx, chunk, b.perChunk)
		if err != nil {
			return added, fmt.Errorf("generate for chunk %d: %w", i, err)
		}

		accepted := 0
		for _, q := range questions {
			ok, err := b.bank.Add(q)
			if err != nil {
				b.log.Debug("rejecting question", zap.Error(err))
				continue
			}
			if ok {
				accepted++
			}
		}
		added += accepted

		// Checkpoint after every chunk, even when nothing was accepted:
		// the flush cost is small next to a generation call.
		if err := b.bank.Flush(); err != nil {
			return added, fmt.Errorf("flush bank: %w", err)
		}

		if i%50 == 0 {
			b.log.Info("bank progress",
				zap.Int("chunk", i),
				zap.Int("total_chunks", len(chunks)),
				zap.Int("bank_size", b.bank.Len()))
		}

		if b.pacing > 0 && i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return added, ctx.Err()
			case <-time.After(b.pacing):
			}
		}
	}

	b.log.Info("bank build complete",
		zap.Int("added", added),
		zap.Int("bank_size", b.bank.Len()))
	return added, nil
}
