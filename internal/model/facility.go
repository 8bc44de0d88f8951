package model

import "github.com/golang/geo/s2"

// Kind identifies which open-data extract an entity came from.
type Kind string

const (
	KindSchool  Kind = "school"
	KindMedical Kind = "medical"
	KindSport   Kind = "sport"
)

// Kinds lists every entity kind in conversion order.
var Kinds = []Kind{KindSchool, KindMedical, KindSport}

// Facility is the flat, kind-tagged projection of a normalized entity.
// Exports and stores work on facilities so they need not know each variant.
type Facility struct {
	Kind   Kind    `json:"kind"`
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Detail string  `json:"detail,omitempty"` // school type or sport played
}

// CellLevel is the S2 level used to bucket facilities spatially. Level 13
// cells are roughly 1 km across.
const CellLevel = 13

// Cell returns the token of the level-CellLevel S2 cell containing f.
func (f Facility) Cell() string {
	ll := s2.LatLngFromDegrees(f.Lat, f.Lon)
	return s2.CellIDFromLatLng(ll).Parent(CellLevel).ToToken()
}

// Entity is implemented by every normalized record.
type Entity interface {
	Facility() Facility
}

// School is a normalized row of the schools extract.
type School struct {
	SchoolNo   string  `json:"school_no"`
	SchoolName string  `json:"school_name"`
	SchoolType string  `json:"school_type"`
	SchoolLat  float64 `json:"school_lat"`
	SchoolLon  float64 `json:"school_lon"`
}

func (s School) Facility() Facility {
	return Facility{
		Kind:   KindSchool,
		ID:     s.SchoolNo,
		Name:   s.SchoolName,
		Lat:    s.SchoolLat,
		Lon:    s.SchoolLon,
		Detail: s.SchoolType,
	}
}

// MedicalFacility is a normalized row of the GP clinics extract.
type MedicalFacility struct {
	GPCode string  `json:"gp_code"`
	GPName string  `json:"gp_name"`
	GPLat  float64 `json:"gp_lat"`
	GPLon  float64 `json:"gp_lon"`
}

func (m MedicalFacility) Facility() Facility {
	return Facility{
		Kind: KindMedical,
		ID:   m.GPCode,
		Name: m.GPName,
		Lat:  m.GPLat,
		Lon:  m.GPLon,
	}
}

// SportFacility is a normalized row of the sports facilities extract.
type SportFacility struct {
	FacilityID   string  `json:"facility_id"`
	FacilityName string  `json:"facility_name"`
	SportLat     float64 `json:"sport_lat"`
	SportLon     float64 `json:"sport_lon"`
	SportPlayed  string  `json:"sport_played"`
}

func (s SportFacility) Facility() Facility {
	return Facility{
		Kind:   KindSport,
		ID:     s.FacilityID,
		Name:   s.FacilityName,
		Lat:    s.SportLat,
		Lon:    s.SportLon,
		Detail: s.SportPlayed,
	}
}
