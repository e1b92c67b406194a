package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	serverURL string
	noColor   bool
)

var rootCmd = &cobra.Command{
	Use:     "litevec",
	Short:   "Command-line client for litevecd",
	Version: version,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://127.0.0.1:8000", "litevecd base URL")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(embeddingsCmd)
	rootCmd.AddCommand(queryCmd)
}
