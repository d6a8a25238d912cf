package mcq

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/llm"
)

const (
	generateAttempts = 2
	attemptBackoff   = 500 * time.Millisecond
	maxOutputTokens  = 4096
)

// Generator turns grounding context into validated question candidates.
type Generator struct {
	provider llm.Provider
	log      *zap.Logger
}

// NewGenerator creates a Generator backed by the given provider.
func NewGenerator(p llm.Provider, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{provider: p, log: log}
}

// Generate asks the model for up to n questions grounded in contextText
// and returns the candidates that survive parsing and validation.
//
// A single generation call is never load-bearing: after bounded retries
// it gives up and returns an empty slice, leaving the caller to move on
// to the next chunk. Context cancellation still propagates as an error.
func (g *Generator) Generate(ctx context.Context, contextText string, n int) ([]bank.Question, error) {
	ctx = llm.WithPurpose(ctx, "mcq_generation")

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: BuildPrompt(contextText, n)},
		},
		MaxTokens:   maxOutputTokens,
		Temperature: 0.7,
	}

	var candidates []json.RawMessage
	for attempt := 1; attempt <= generateAttempts; attempt++ {
		raw, err := g.invoke(ctx, req)
		if err == nil {
			candidates, err = ParseCandidates(raw)
			if err == nil {
				break
			}
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		g.log.Warn("generation attempt failed",
			zap.Int("attempt", attempt),
			zap.Error(err))

		if attempt == generateAttempts {
			return nil, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(attemptBackoff):
		}
	}

	return g.accept(candidates), nil
}

func (g *Generator) invoke(ctx context.Context, req llm.Request) (string, error) {
	resp, err := g.provider.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return string(resp.Content), nil
}

// accept keeps the candidates that conform to the question shape.
// Non-conforming ones are dropped individually, never the whole batch.
func (g *Generator) accept(candidates []json.RawMessage) []bank.Question {
	var out []bank.Question
	for _, raw := range candidates {
		if err := validateCandidate(raw); err != nil {
			g.log.Debug("dropping candidate", zap.Error(err))
			continue
		}

		var q bank.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			g.log.Debug("dropping candidate", zap.Error(err))
			continue
		}
		if err := q.Validate(); err != nil {
			g.log.Debug("dropping candidate", zap.Error(err))
			continue
		}
		out = append(out, q)
	}
	return out
}
