package main

import (
	"context"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// configDir is searched for config.yaml.
	configDir string

	rootCmd = &cobra.Command{
		Use:   "jetgrind",
		Short: "A to-do list that turns links into pills",
		Long: `jetgrind keeps a to-do list whose titles and descriptions may embed links.
Links are stored as markers, shown as pills, and decorated with the page
title and favicon fetched in the background.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "./configs", "directory holding config.yaml")

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(addCommand())
	rootCmd.AddCommand(listCommand())
	rootCmd.AddCommand(doneCommand())
	rootCmd.AddCommand(removeCommand())
	rootCmd.AddCommand(editCommand())
	rootCmd.AddCommand(migrateCommand())
}
