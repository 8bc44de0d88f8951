package export

import (
	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"

	"github.com/sells-group/geomap-cli/internal/model"
)

// DBF attribute layout for facility shapefiles. Field names are limited to
// ten characters by the dBASE format. CELL is the S2 cell token.
var shapefileFields = []shp.Field{
	shp.StringField("ID", 32),
	shp.StringField("NAME", 254),
	shp.StringField("KIND", 16),
	shp.StringField("DETAIL", 128),
	shp.FloatField("LAT", 19, 8),
	shp.FloatField("LON", 19, 8),
	shp.StringField("CELL", 16),
}

// WriteShapefile writes facilities as a POINT shapefile at path (with the
// .shx and .dbf siblings alongside). String attributes longer than their
// DBF field are truncated.
func WriteShapefile(path string, facilities []model.Facility) error {
	w, err := shp.Create(path, shp.POINT)
	if err != nil {
		return eris.Wrapf(err, "export: create shapefile %s", path)
	}
	defer w.Close()

	if err := w.SetFields(shapefileFields); err != nil {
		return eris.Wrap(err, "export: set shapefile fields")
	}

	for _, f := range facilities {
		row := int(w.Write(&shp.Point{X: f.Lon, Y: f.Lat}))

		values := []any{
			truncate(f.ID, 32),
			truncate(f.Name, 254),
			string(f.Kind),
			truncate(f.Detail, 128),
			f.Lat,
			f.Lon,
			f.Cell(),
		}
		for i, v := range values {
			if s, ok := v.(string); ok && s == "" {
				continue
			}
			if err := w.WriteAttribute(row, i, v); err != nil {
				return eris.Wrapf(err, "export: write attribute %s of %s", shapefileFields[i].String(), f.ID)
			}
		}
	}

	return nil
}

// truncate shortens s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !isRuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
