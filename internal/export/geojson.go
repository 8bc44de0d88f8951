package export

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geomap-cli/internal/model"
)

// FeatureCollection converts facilities into GeoJSON Point features.
// Coordinates are written in GeoJSON order (lon, lat) and the collection
// carries a bounding box when non-empty. Each feature's s2_cell property
// buckets it for spatial joins downstream.
func FeatureCollection(facilities []model.Facility) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{
		Features: make([]*geojson.Feature, 0, len(facilities)),
	}
	if len(facilities) == 0 {
		return fc
	}

	bounds := geom.NewBounds(geom.XY)
	for _, f := range facilities {
		pt := geom.NewPointFlat(geom.XY, []float64{f.Lon, f.Lat})
		bounds.Extend(pt)

		props := map[string]any{
			"name":    f.Name,
			"kind":    string(f.Kind),
			"s2_cell": f.Cell(),
		}
		if f.Detail != "" {
			props["detail"] = f.Detail
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         f.ID,
			Geometry:   pt,
			Properties: props,
		})
	}
	fc.BBox = bounds

	return fc
}

// WriteGeoJSON writes facilities to path as a GeoJSON FeatureCollection.
func WriteGeoJSON(path string, facilities []model.Facility) error {
	if err := WriteJSON(path, FeatureCollection(facilities)); err != nil {
		return eris.Wrap(err, "export: geojson")
	}
	return nil
}
