package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"jobboard/internal/observability"
)

func main() {
	_ = godotenv.Load()
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the job board database schema and seed data",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			slog.SetDefault(observability.NewLogger(os.Getenv("LOG_LEVEL")))
		},
	}
	root.AddCommand(newUpCommand(), newDownCommand(), newVersionCommand(), newSeedCommand())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
