package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/convert"
	"github.com/sells-group/geomap-cli/internal/metrics"
	"github.com/sells-group/geomap-cli/internal/model"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the schools, medical, and sports extracts to JSON",
	Long:  "Runs the school, medical, and sport converters in that order using the configured paths. The first failure stops the run; documents already written are kept.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("convert"); err != nil {
			return err
		}

		m := metrics.New()
		defer writeMetrics(m)

		results, err := convert.Run(convertPaths(cfg.Paths), zap.L())
		for _, r := range results {
			m.ObserveConversion(string(r.Kind), r.Stats.Rows, r.Stats.Skipped, r.Stats.Entities)
			fmt.Fprintln(cmd.OutOrStdout(), r.Output)
		}
		if err != nil {
			// Run stops at the first failure, so the failed kind follows the
			// last completed one.
			if len(results) < len(model.Kinds) {
				m.ConvertErrors.WithLabelValues(string(model.Kinds[len(results)])).Inc()
			}
			return eris.Wrap(err, "convert")
		}

		m.Succeeded("convert")
		zap.L().Info("convert complete", zap.Int("documents", len(results)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
