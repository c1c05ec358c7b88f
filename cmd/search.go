package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchMaxResults int

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Resolve candidate URLs for a query without scraping them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		resolver, err := initResolver()
		if err != nil {
			return err
		}

		max := cfg.Search.MaxResults
		if searchMaxResults > 0 {
			max = searchMaxResults
		}

		candidates, err := resolver.Resolve(ctx, args[0], max)
		if err != nil {
			return err
		}
		zap.L().Info("candidates resolved",
			zap.String("query", args[0]),
			zap.Int("count", len(candidates)),
		)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "candidates to request from search (overrides config)")
	rootCmd.AddCommand(searchCmd)
}
