// Package cmd implements the command-line interface for chatscrape.
// It provides the root command and subcommands for extracting chat
// transcripts from rendered-document captures.
package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/chatscrape/cmd/scan"
	"github.com/jonesrussell/chatscrape/cmd/serve"
	"github.com/jonesrussell/chatscrape/cmd/watch"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands.
	Debug bool

	// rootCmd represents the root command for the chatscrape CLI.
	rootCmd = &cobra.Command{
		Use:   "chatscrape",
		Short: "Chat transcript extraction engine",
		Long: `Extract ordered user and assistant turns from the rendered
documents of supported chat applications.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command.
func Execute() error {
	// Load .env file early so environment variables are available.
	_ = godotenv.Load()

	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./chatscrape.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chatscrape version %s\n", "1.0.0")
		},
	})

	rootCmd.AddCommand(scan.Command())
	rootCmd.AddCommand(serve.Command())
	rootCmd.AddCommand(watch.Command())
}
