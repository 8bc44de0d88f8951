package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/convert"
	"github.com/sells-group/geomap-cli/internal/metrics"
	"github.com/sells-group/geomap-cli/internal/store"
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Load converted documents into the configured database",
	Long:  "Upserts the facilities of the three JSON documents written by convert into SQLite or Postgres, recording one load run per document.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("load"); err != nil {
			return err
		}

		m := metrics.New()
		defer writeMetrics(m)

		st, err := store.New(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "load: open store")
		}
		defer st.Close() //nolint:errcheck

		for _, out := range convertPaths(cfg.Paths).Outputs() {
			facilities, err := convert.ReadFacilities(out.Kind, out.Path)
			if err != nil {
				return eris.Wrapf(err, "load %s", out.Kind)
			}

			run, err := store.Load(ctx, st, out.Kind, out.Path, facilities)
			if err != nil {
				return eris.Wrapf(err, "load %s", out.Kind)
			}

			m.FacilitiesLoad.WithLabelValues(string(out.Kind)).Add(float64(run.Rows))
			zap.L().Info("load complete",
				zap.String("kind", string(out.Kind)),
				zap.String("run_id", run.ID),
				zap.Int("rows", run.Rows),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%d\n", out.Kind, run.ID, run.Rows)
		}

		m.Succeeded("load")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
}
