// Package embed provides the embedding collaborator used by ingestion and
// retrieval. It talks to any OpenAI-compatible embeddings endpoint.
package embed

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds embedding client configuration.
type Config struct {
	APIKey string
	// BaseURL overrides the API endpoint for local or compatible servers.
	BaseURL string
	// Model is the embedding model ID. Default: "text-embedding-3-small".
	Model string
}

// Client computes embeddings through the OpenAI embeddings API.
type Client struct {
	api   *openai.Client
	model string
}

// New creates an embedding client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "text-embedding-3-small"
	}

	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}, nil
}

// Embed returns one fixed-dimension vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.model),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// Model returns the configured embedding model ID.
func (c *Client) Model() string {
	return c.model
}
