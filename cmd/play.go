package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vialex/vialex/internal/bank"
	"github.com/vialex/vialex/internal/config"
	"github.com/vialex/vialex/internal/exam"
	"github.com/vialex/vialex/internal/retrieve"
	"github.com/vialex/vialex/internal/tui"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take an exam in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		levelFlag, _ := cmd.Flags().GetString("level")
		size, _ := cmd.Flags().GetInt("size")

		level := bank.Difficulty(levelFlag)
		switch level {
		case bank.Easy, bank.Medium, bank.Hard:
		default:
			return fmt.Errorf("invalid level %q: want easy, medium, or hard", levelFlag)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		b, err := bank.Load(bankPath(cfg))
		if err != nil {
			return fmt.Errorf("load bank: %w", err)
		}
		if b.Len() == 0 {
			return fmt.Errorf("question bank is empty; run `vialex generate` first")
		}

		// Grounded explanations need the embedding key; without one the
		// exam still runs with the fixed fallback explanation.
		var grounder exam.Grounder
		emb, err := newEmbedClient(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Embedding client not configured:", err)
			fmt.Fprintln(os.Stderr, "Explanations will not cite the regulations.")
		} else {
			ix, err := openIndex(cfg, emb)
			if err != nil {
				return err
			}
			grounder = retrieve.New(ix)
		}

		return tui.Run(exam.New(b.Questions(), grounder), level, size)
	},
}

func init() {
	playCmd.Flags().String("level", "medium", "Starting difficulty (easy, medium, hard)")
	playCmd.Flags().Int("size", exam.DefaultSize, "Number of questions per exam")
}
