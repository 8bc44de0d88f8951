package convert

import (
	"github.com/sells-group/geomap-cli/internal/ingest"
	"github.com/sells-group/geomap-cli/internal/model"
)

// Schools extract columns.
const (
	colSchoolNo   = "school_no"
	colSchoolName = "school_name"
	colSchoolType = "school_type"
	colSchoolLat  = "school_lat"
	colSchoolLon  = "school_lon"
)

// NormalizeSchool screens a schools row. A row is skipped when either
// coordinate is exactly "NA"; an empty coordinate is not screened and fails
// to parse.
func NormalizeSchool(rec ingest.Record) (model.School, bool, error) {
	rawLat, err := rec.Get(colSchoolLat)
	if err != nil {
		return model.School{}, false, err
	}
	rawLon, err := rec.Get(colSchoolLon)
	if err != nil {
		return model.School{}, false, err
	}
	if rawLat == NotAvailable || rawLon == NotAvailable {
		return model.School{}, false, nil
	}

	lat, lon, err := parseCoordinatePair(rec, colSchoolLat, colSchoolLon)
	if err != nil {
		return model.School{}, false, err
	}

	no, err := rec.Get(colSchoolNo)
	if err != nil {
		return model.School{}, false, err
	}
	name, err := rec.Get(colSchoolName)
	if err != nil {
		return model.School{}, false, err
	}
	typ, err := rec.Get(colSchoolType)
	if err != nil {
		return model.School{}, false, err
	}

	return model.School{
		SchoolNo:   no,
		SchoolName: name,
		SchoolType: typ,
		SchoolLat:  lat,
		SchoolLon:  lon,
	}, true, nil
}
