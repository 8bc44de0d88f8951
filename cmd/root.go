package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/config"
	"github.com/sells-group/geomap-cli/internal/convert"
	"github.com/sells-group/geomap-cli/internal/metrics"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "geomap",
	Short: "Melbourne open-data facility converter",
	Long:  "Converts the schools, GP clinics, and sports facilities CSV extracts into identifier-keyed JSON documents, and exports or loads the results.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// convertPaths maps configured paths onto the converter runner.
func convertPaths(p config.PathsConfig) convert.Paths {
	return convert.Paths{
		SchoolsInput:  p.SchoolsInput,
		SchoolsOutput: p.SchoolsOutput,
		MedicalInput:  p.MedicalInput,
		MedicalOutput: p.MedicalOutput,
		SportsInput:   p.SportsInput,
		SportsOutput:  p.SportsOutput,
	}
}

// writeMetrics writes m to the configured textfile, if any. A failure is
// logged but does not fail the command.
func writeMetrics(m *metrics.Metrics) {
	if cfg.Metrics.Textfile == "" {
		return
	}
	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		zap.L().Warn("write metrics textfile", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
