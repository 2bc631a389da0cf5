package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "homerank",
		Short: "Ranks candidate home locations by weighted travel time",
		Long: `homerank scores every origin by the round-trip travel time to a set of
weighted destinations and prints the origins from cheapest to most expensive.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// A missing .env is fine; the environment and app.env still apply.
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().String("config-path", ".", "directory holding app.env")

	root.AddCommand(newScoreCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Println("homerank", version)
		},
	}
}
