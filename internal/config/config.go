package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the application settings, loaded from VIALEX_* environment
// variables. LLM provider selection lives in the llm package; everything
// else is here.
type Config struct {
	// DataDir is the root for the vector store, manifest, and bank file.
	DataDir string `env:"VIALEX_DATA_DIR" envDefault:"./data"`

	// Addr is the exam API listen address.
	Addr string `env:"VIALEX_ADDR" envDefault:":8900"`

	// Collection names the vector collection holding corpus chunks.
	Collection string `env:"VIALEX_COLLECTION" envDefault:"pdf_docs"`

	// BankFile is the question bank path. Empty means DataDir/bank.json.
	BankFile string `env:"VIALEX_BANK_FILE"`

	ChunkSize      int           `env:"VIALEX_CHUNK_SIZE" envDefault:"800"`
	ChunkOverlap   int           `env:"VIALEX_CHUNK_OVERLAP" envDefault:"100"`
	FlushThreshold int           `env:"VIALEX_FLUSH_THRESHOLD" envDefault:"1500"`
	BatchSize      int           `env:"VIALEX_BATCH_SIZE" envDefault:"16"`
	Pacing         time.Duration `env:"VIALEX_PACING" envDefault:"1500ms"`

	// MCQsPerChunk is the question count requested per corpus chunk.
	MCQsPerChunk int `env:"VIALEX_MCQS_PER_CHUNK" envDefault:"6"`

	// EmbedModel selects the embedding model.
	EmbedModel string `env:"VIALEX_EMBED_MODEL" envDefault:"text-embedding-3-small"`

	// Debug switches logging to development output.
	Debug bool `env:"VIALEX_DEBUG" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
