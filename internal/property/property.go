// Package property parses raw real-estate listing strings into structured
// records.
//
// A listing string is twelve comma-separated fields:
//
//	id,address,bedrooms,bathrooms,parking,lat,lon,floor,land_area,floor_area,price,features
//
// where features is a ';'-separated list. Any numeric field may be empty.
package property

import (
	"errors"
	"reflect"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rotisserie/eris"
)

// Property types derived from the address.
const (
	TypeHouse     = "house"
	TypeApartment = "apartment"
)

const fieldCount = 12

// validate checks coordinate ranges; errors name fields by their JSON key.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		return name
	})
	return v
}

var (
	// ErrMalformedProperty is returned for a listing string that does not have
	// the expected shape.
	ErrMalformedProperty = eris.New("malformed property string")

	// ErrOutOfRange is returned for a latitude outside [-90, 90] or a
	// longitude outside [-180, 180].
	ErrOutOfRange = eris.New("coordinate out of range")
)

// Property is one parsed listing. Missing numeric values are nil.
type Property struct {
	ID            string   `json:"prop_id"`
	Type          string   `json:"prop_type"`
	FullAddress   string   `json:"full_address"`
	Suburb        string   `json:"suburb"`
	Bedrooms      *int     `json:"bedrooms"`
	Bathrooms     *int     `json:"bathrooms"`
	ParkingSpaces *int     `json:"parking_spaces"`
	Latitude      *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude     *float64 `json:"longitude" validate:"omitempty,longitude"`
	FloorNumber   *int     `json:"floor_number"`
	LandArea      *int     `json:"land_area"`
	FloorArea     *int     `json:"floor_area"`
	Price         *int     `json:"price"`
	Features      []string `json:"property_features"`
}

// Parse extracts a Property from a raw listing string. Fields beyond the
// twelfth are ignored.
//
// The property type is "apartment" when the first address token contains a
// '/' (unit numbering such as "4/12"), otherwise "house". The suburb is the
// third token from the end of the address, ahead of state and postcode.
func Parse(line string) (Property, error) {
	parts := strings.Split(line, ",")
	if len(parts) < fieldCount {
		return Property{}, eris.Wrapf(ErrMalformedProperty, "want %d fields, got %d", fieldCount, len(parts))
	}

	address := parts[1]
	tokens := strings.Split(address, " ")
	if len(tokens) < 3 {
		return Property{}, eris.Wrapf(ErrMalformedProperty, "address %q has no suburb", address)
	}

	p := Property{
		ID:          parts[0],
		Type:        TypeHouse,
		FullAddress: address,
		Suburb:      tokens[len(tokens)-3],
		Features:    []string{},
	}
	if strings.Contains(tokens[0], "/") {
		p.Type = TypeApartment
	}

	var err error
	if p.Latitude, err = parseFloat("latitude", parts[5]); err != nil {
		return Property{}, err
	}
	if p.Longitude, err = parseFloat("longitude", parts[6]); err != nil {
		return Property{}, err
	}

	ints := []struct {
		name string
		raw  string
		dst  **int
	}{
		{"bedrooms", parts[2], &p.Bedrooms},
		{"bathrooms", parts[3], &p.Bathrooms},
		{"parking_spaces", parts[4], &p.ParkingSpaces},
		{"floor_number", parts[7], &p.FloorNumber},
		{"land_area", parts[8], &p.LandArea},
		{"floor_area", parts[9], &p.FloorArea},
		{"price", parts[10], &p.Price},
	}
	for _, f := range ints {
		if *f.dst, err = parseInt(f.name, f.raw); err != nil {
			return Property{}, err
		}
	}

	if parts[11] != "" {
		p.Features = strings.Split(parts[11], ";")
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Property{}, eris.Wrapf(ErrOutOfRange, "invalid %s", verrs[0].Field())
		}
		return Property{}, eris.Wrap(err, "property: validate")
	}

	return p, nil
}

// AddFeature appends feature unless it is already listed.
func (p *Property) AddFeature(feature string) {
	if !slices.Contains(p.Features, feature) {
		p.Features = append(p.Features, feature)
	}
}

// RemoveFeature removes the first occurrence of feature, if any.
func (p *Property) RemoveFeature(feature string) {
	if i := slices.Index(p.Features, feature); i >= 0 {
		p.Features = slices.Delete(p.Features, i, i+1)
	}
}

func parseInt(name, raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, eris.Wrapf(err, "property: %s %q", name, raw)
	}
	return &v, nil
}

func parseFloat(name, raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, eris.Wrapf(err, "property: %s %q", name, raw)
	}
	return &v, nil
}
