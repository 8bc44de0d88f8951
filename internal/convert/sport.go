package convert

import (
	"github.com/sells-group/geomap-cli/internal/ingest"
	"github.com/sells-group/geomap-cli/internal/model"
)

// Sports facilities extract columns.
const (
	colFacilityID   = "facility_id"
	colFacilityName = "facility_name"
	colSportLat     = "sport_lat"
	colSportLon     = "sport_lon"
	colSportPlayed  = "sport_played"
)

// NormalizeSport screens a sports facilities row. This extract leaves some
// coordinates blank as well as "NA", so both are skipped. sport_played is
// passed through as-is, blank included.
func NormalizeSport(rec ingest.Record) (model.SportFacility, bool, error) {
	rawLat, err := rec.Get(colSportLat)
	if err != nil {
		return model.SportFacility{}, false, err
	}
	rawLon, err := rec.Get(colSportLon)
	if err != nil {
		return model.SportFacility{}, false, err
	}
	if missingSportCoordinate(rawLat) || missingSportCoordinate(rawLon) {
		return model.SportFacility{}, false, nil
	}

	lat, lon, err := parseCoordinatePair(rec, colSportLat, colSportLon)
	if err != nil {
		return model.SportFacility{}, false, err
	}

	id, err := rec.Get(colFacilityID)
	if err != nil {
		return model.SportFacility{}, false, err
	}
	name, err := rec.Get(colFacilityName)
	if err != nil {
		return model.SportFacility{}, false, err
	}
	sport, _ := rec.Lookup(colSportPlayed)

	return model.SportFacility{
		FacilityID:   id,
		FacilityName: name,
		SportLat:     lat,
		SportLon:     lon,
		SportPlayed:  sport,
	}, true, nil
}

func missingSportCoordinate(v string) bool {
	return v == NotAvailable || v == ""
}
