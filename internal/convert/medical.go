package convert

import (
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/geomap-cli/internal/ingest"
	"github.com/sells-group/geomap-cli/internal/model"
)

// GP clinics extract columns.
const (
	colGPCode   = "gp_code"
	colGPName   = "gp_name"
	colLocation = "location"
)

// locationPayload is the structured text held in the location column, e.g.
// {"lat": -38.182662, "lng": 145.156875}. It is decoded as YAML, whose flow
// mappings accept both that JSON form and single-quoted keys.
type locationPayload struct {
	Lat yaml.Node `yaml:"lat"`
	Lng yaml.Node `yaml:"lng"`
}

// parseLocation decodes a location payload into a coordinate pair.
func parseLocation(raw string) (lat, lon float64, err error) {
	var p locationPayload
	if err := yaml.Unmarshal([]byte(raw), &p); err != nil {
		return 0, 0, eris.Wrapf(ErrMalformedLocation, "%q: %v", raw, err)
	}
	if lat, err = payloadCoordinate("lat", p.Lat, raw); err != nil {
		return 0, 0, err
	}
	if lon, err = payloadCoordinate("lng", p.Lng, raw); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func payloadCoordinate(key string, n yaml.Node, raw string) (float64, error) {
	if n.Kind == 0 {
		return 0, eris.Wrapf(ErrMalformedLocation, "%q: no %s member", raw, key)
	}
	if n.Kind != yaml.ScalarNode {
		return 0, eris.Wrapf(ErrMalformedCoordinate, "location %s is not a scalar", key)
	}
	return parseCoordinate("location "+key, n.Value)
}

// NormalizeMedical screens a GP clinics row. Unlike the other extracts the
// test is containment: a payload with "NA" anywhere in its text is skipped,
// even when both coordinates are present.
func NormalizeMedical(rec ingest.Record) (model.MedicalFacility, bool, error) {
	loc, err := rec.Get(colLocation)
	if err != nil {
		return model.MedicalFacility{}, false, err
	}
	if strings.Contains(loc, NotAvailable) {
		return model.MedicalFacility{}, false, nil
	}

	lat, lon, err := parseLocation(loc)
	if err != nil {
		return model.MedicalFacility{}, false, err
	}

	code, err := rec.Get(colGPCode)
	if err != nil {
		return model.MedicalFacility{}, false, err
	}
	name, err := rec.Get(colGPName)
	if err != nil {
		return model.MedicalFacility{}, false, err
	}

	return model.MedicalFacility{
		GPCode: code,
		GPName: name,
		GPLat:  lat,
		GPLon:  lon,
	}, true, nil
}
