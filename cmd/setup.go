package cmd

import (
	"os"
	"path/filepath"

	"github.com/vialex/vialex/internal/config"
	"github.com/vialex/vialex/internal/embed"
	"github.com/vialex/vialex/internal/index"
)

// bankPath resolves the question bank file from configuration.
func bankPath(cfg config.Config) string {
	if cfg.BankFile != "" {
		return cfg.BankFile
	}
	return filepath.Join(cfg.DataDir, "bank.json")
}

// newEmbedClient builds the embedding client from the environment. The
// OpenAI embeddings endpoint is the only one supported, so the key is
// shared with the OpenAI chat provider.
func newEmbedClient(cfg config.Config) (*embed.Client, error) {
	key := os.Getenv("VIALEX_OPENAI_API_KEY")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	return embed.New(embed.Config{
		APIKey:  key,
		BaseURL: os.Getenv("VIALEX_OPENAI_BASE_URL"),
		Model:   cfg.EmbedModel,
	})
}

// openIndex opens the vector index under the configured data directory.
func openIndex(cfg config.Config, emb index.Embedder) (*index.Index, error) {
	return index.Open(cfg.DataDir, cfg.Collection, emb)
}
