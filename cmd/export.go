package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/convert"
	"github.com/sells-group/geomap-cli/internal/export"
	"github.com/sells-group/geomap-cli/internal/model"
)

var exportFormat string

var exportWriters = map[string]struct {
	ext   string
	write func(path string, facilities []model.Facility) error
}{
	"geojson":   {".geojson", export.WriteGeoJSON},
	"shapefile": {".shp", export.WriteShapefile},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export converted documents as GeoJSON or shapefiles",
	Long:  "Reads the three JSON documents written by convert and writes a sibling file for each in the chosen format.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		w, ok := exportWriters[exportFormat]
		if !ok {
			return eris.Errorf("export: unsupported format %q (want geojson or shapefile)", exportFormat)
		}
		if err := cfg.Validate("export"); err != nil {
			return err
		}

		for _, out := range convertPaths(cfg.Paths).Outputs() {
			facilities, err := convert.ReadFacilities(out.Kind, out.Path)
			if err != nil {
				return eris.Wrapf(err, "export %s", out.Kind)
			}

			dst := siblingPath(out.Path, w.ext)
			if err := w.write(dst, facilities); err != nil {
				return eris.Wrapf(err, "export %s", out.Kind)
			}

			zap.L().Info("export complete",
				zap.String("kind", string(out.Kind)),
				zap.String("format", exportFormat),
				zap.String("output", dst),
				zap.Int("features", len(facilities)),
			)
			fmt.Fprintln(cmd.OutOrStdout(), dst)
		}
		return nil
	},
}

// siblingPath replaces the extension of path with ext.
func siblingPath(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "geojson", "output format: geojson or shapefile")
	rootCmd.AddCommand(exportCmd)
}
