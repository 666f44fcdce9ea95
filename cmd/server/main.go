package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "demobox",
	Short: "Guest demo sandbox server",
	Long: `demobox serves a guest demo of a project tracker over REST and MCP.
Guest sessions live in memory only; signed-in users can save a theme preference.`,
	SilenceUsage: true,
	RunE:         runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (overrides DEMOBOX_CONFIG_PATH)")

	rootCmd.AddCommand(apikeyCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
