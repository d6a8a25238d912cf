package cmd

import (
	"github.com/spf13/cobra"
	"github.com/vialex/vialex/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "vialex",
	Short: "Adaptive exam trainer for Spanish traffic law",
	Long:  "Vialex — builds a grounded question bank from traffic-law PDFs and runs adaptive multiple-choice exams over it.",
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite request-log database (overrides VIALEX_DB env var)")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then VIALEX_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}
