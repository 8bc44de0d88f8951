package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/export"
	"github.com/sells-group/geomap-cli/internal/property"
)

var propertiesCmd = &cobra.Command{
	Use:   "properties",
	Short: "Parse raw property strings into a JSON array",
	Long:  "Reads one listing string per line from paths.properties_input and writes the parsed properties to paths.properties_output. Lines that fail to parse are logged and skipped.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := cfg.Validate("properties"); err != nil {
			return err
		}

		props, err := property.ParseFile(cfg.Paths.PropertiesInput, zap.L())
		if err != nil {
			return eris.Wrap(err, "properties")
		}
		if err := export.WriteJSON(cfg.Paths.PropertiesOutput, props); err != nil {
			return eris.Wrap(err, "properties")
		}

		zap.L().Info("properties complete",
			zap.Int("properties", len(props)),
			zap.String("output", cfg.Paths.PropertiesOutput),
		)
		fmt.Fprintln(cmd.OutOrStdout(), cfg.Paths.PropertiesOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(propertiesCmd)
}
