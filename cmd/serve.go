package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/config"
	"github.com/vialex/vialex/internal/exam"
	"github.com/vialex/vialex/internal/logging"
	"github.com/vialex/vialex/internal/retrieve"
	"github.com/vialex/vialex/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the exam HTTP API",
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

		b, err := bank.Load(bankPath(cfg))
		if err != nil {
			return fmt.Errorf("load bank: %w", err)
		}
		if b.Len() == 0 {
			return fmt.Errorf("question bank is empty; run `vialex generate` first")
		}

		// Retrieval grounds wrong-answer explanations. Without an embedding
		// key the engine falls back to its fixed explanation sentence.
		var grounder exam.Grounder
		emb, err := newEmbedClient(cfg)
		if err != nil {
			log.Warn("embedding client unavailable, explanations will not be grounded",
				zap.Error(err))
		} else {
			ix, err := openIndex(cfg, emb)
			if err != nil {
				return err
			}
			grounder = retrieve.New(ix)
		}

		engine := exam.New(b.Questions(), grounder)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(engine, log).Run(ctx, cfg.Addr)
	},
}
