package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/use-agent/bookmarksort/bookmarks"
)

var parseCmd = &cobra.Command{
	Use:   "parse <bookmarks.html>",
	Short: "Print the bookmarks of an exported file as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		parsed, err := bookmarks.ParseBytes(raw)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(parsed)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
