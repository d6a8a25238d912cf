package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vialex/vialex/internal/config"
	"github.com/vialex/vialex/internal/ingest"
	"github.com/vialex/vialex/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <pdf>",
	Short: "Extract a traffic-law PDF into the vector index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("source document: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log, err := logging.New(cfg.Debug)
		if err != nil {
			return err
		}
		defer log.Sync()

		emb, err := newEmbedClient(cfg)
		if err != nil {
			return fmt.Errorf("embedding client: %w", err)
		}
		ix, err := openIndex(cfg, emb)
		if err != nil {
			return err
		}

		pipeline := ingest.New(ix, emb, ingest.Config{
			ChunkSize:      cfg.ChunkSize,
			Overlap:        cfg.ChunkOverlap,
			FlushThreshold: cfg.FlushThreshold,
			BatchSize:      cfg.BatchSize,
			Pacing:         cfg.Pacing,
			Source:         filepath.Base(path),
		}, log)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := pipeline.Run(ctx, ingest.PDFExtractor{}, path); err != nil {
			return fmt.Errorf("ingest %s: %w", path, err)
		}

		fmt.Printf("Indexed %d chunks into collection %q.\n", ix.Count(), cfg.Collection)
		return nil
	},
}
