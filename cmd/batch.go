package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/trawlhq/trawl/internal/bulk"
)

var (
	batchFile        string
	batchOutput      string
	batchConcurrency int
	batchColumn      int
	batchSheet       string
	batchSheetIndex  int
	batchSkipRows    int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run sessions for every query in a CSV or XLSX file",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, err := initEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		writer, err := bulk.NewResultWriter(batchOutput)
		if err != nil {
			return err
		}
		defer writer.Close() //nolint:errcheck

		runner := bulk.NewRunner(eng, writer, batchConcurrency)
		_, err = runner.RunFile(ctx, batchFile, bulk.QueryOptions{
			Column:     batchColumn,
			SheetIndex: batchSheetIndex,
			SheetName:  batchSheet,
			SkipRows:   batchSkipRows,
		})
		return err
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchFile, "file", "", "CSV or XLSX file of queries (required)")
	batchCmd.Flags().StringVar(&batchOutput, "output", "results.csv", "CSV file for flat result rows")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "queries scraped at once")
	batchCmd.Flags().IntVar(&batchColumn, "column", 0, "zero-based query column")
	batchCmd.Flags().StringVar(&batchSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	batchCmd.Flags().IntVar(&batchSheetIndex, "sheet-index", 0, "XLSX sheet index when no name is given")
	batchCmd.Flags().IntVar(&batchSkipRows, "skip-rows", 0, "rows to skip before the header")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
