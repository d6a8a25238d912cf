package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/config"
	"github.com/vialex/vialex/internal/llm"
	"github.com/vialex/vialex/internal/logging"
	"github.com/vialex/vialex/internal/mcq"
	"github.com/vialex/vialex/internal/store"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Grow the question bank from the indexed corpus",
	Long: "Walks every stored chunk, asks the LLM for candidate questions, and " +
		"appends the valid, unseen ones to the bank. The bank file is flushed " +
		"after every chunk, so an interrupted run keeps its progress.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.Debug)
		if err != nil {
			return err
		}
		defer log.Sync()

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		provider, err := llm.NewProviderFromEnv(ctx, st.RequestLog())
		if err != nil {
			return fmt.Errorf("LLM provider: %w", err)
		}

		b, err := bank.Load(bankPath(cfg))
		if err != nil {
			return fmt.Errorf("load bank: %w", err)
		}

		emb, err := newEmbedClient(cfg)
		if err != nil {
			return fmt.Errorf("embedding client: %w", err)
		}
		ix, err := openIndex(cfg, emb)
		if err != nil {
			return err
		}
		if ix.Count() == 0 {
			return fmt.Errorf("vector index is empty; run `vialex ingest` first")
		}

		builder := mcq.NewBuilder(ix, mcq.NewGenerator(provider, log), b,
			cfg.MCQsPerChunk, cfg.Pacing, log)

		added, err := builder.Run(ctx)
		if err != nil {
			return fmt.Errorf("generate questions: %w", err)
		}

		fmt.Printf("Added %d questions; bank now holds %d.\n", added, b.Len())

		dist := map[bank.Difficulty]int{}
		for _, q := range b.Questions() {
			dist[q.EffectiveDifficulty()]++
		}
		fmt.Printf("Difficulty: %d easy / %d medium / %d hard\n",
			dist[bank.Easy], dist[bank.Medium], dist[bank.Hard])
		return nil
	},
}
