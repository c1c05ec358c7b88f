package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trawlhq/trawl/internal/bulk"
)

var (
	runQuota      int
	runMaxResults int
	runOutput     string
)

var runCmd = &cobra.Command{
	Use:   "run QUERY",
	Short: "Run one scrape session for a query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := initEngine()
		if err != nil {
			return err
		}
		defer eng.Close()

		sess := eng.sequencer(runQuota, runMaxResults).Run(ctx, args[0])

		zap.L().Info("session complete",
			zap.String("query", sess.Query),
			zap.String("status", string(sess.Status)),
			zap.Int("results", len(sess.Results)),
			zap.Int64("elapsed_ms", sess.ElapsedMS),
		)

		if runOutput != "" {
			w, err := bulk.NewResultWriter(runOutput)
			if err != nil {
				return err
			}
			if err := w.WriteSession(sess); err != nil {
				w.Close() //nolint:errcheck
				return eris.Wrap(err, "write results")
			}
			return w.Close()
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sess)
	},
}

func init() {
	runCmd.Flags().IntVar(&runQuota, "quota", 0, "successful results to collect before stopping (overrides config)")
	runCmd.Flags().IntVar(&runMaxResults, "max-results", 0, "candidates to request from search (overrides config)")
	runCmd.Flags().StringVar(&runOutput, "output", "", "write flat result rows to this CSV instead of JSON on stdout")
	rootCmd.AddCommand(runCmd)
}
