// Package convert turns open-data CSV extracts into identifier-keyed entity
// collections. Each extract has its own screening rule for missing
// coordinates; rows that fail it are skipped, while rows whose coordinates
// cannot be parsed abort the conversion.
package convert

import (
	"math"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/export"
	"github.com/sells-group/geomap-cli/internal/ingest"
	"github.com/sells-group/geomap-cli/internal/model"
)

// NotAvailable is the marker the source extracts use for a missing value.
const NotAvailable = "NA"

var (
	// ErrMalformedCoordinate is returned when a coordinate value that passed
	// screening is not a finite decimal number.
	ErrMalformedCoordinate = eris.New("malformed coordinate")

	// ErrMalformedLocation is returned when a medical location payload cannot
	// be parsed or lacks a lat/lng member.
	ErrMalformedLocation = eris.New("malformed location payload")
)

// Normalizer validates one record. ok is false when the record is screened
// out; a non-nil error is fatal for the whole extract.
type Normalizer[T model.Entity] func(rec ingest.Record) (entity T, ok bool, err error)

// Stats counts what happened to the rows of one extract.
type Stats struct {
	Rows     int `json:"rows"`
	Skipped  int `json:"skipped"`
	Entities int `json:"entities"` // distinct identifiers after last-write-wins
}

// Index normalizes every record of table and keys the survivors by identifier.
func Index[T model.Entity](kind model.Kind, table *ingest.Table, normalize Normalizer[T], logger *zap.Logger) (*model.Collection[T], Stats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := model.NewCollection[T]()
	var stats Stats
	for _, rec := range table.Records {
		stats.Rows++

		entity, ok, err := normalize(rec)
		if err != nil {
			return nil, stats, eris.Wrapf(err, "convert: %s line %d", kind, rec.Line)
		}
		if !ok {
			stats.Skipped++
			logger.Debug("convert: skipped row without coordinates",
				zap.String("kind", string(kind)),
				zap.Int("line", rec.Line),
			)
			continue
		}

		out.Put(entity.Facility().ID, entity)
	}
	stats.Entities = out.Len()

	return out, stats, nil
}

// ConvertFile reads input, indexes it with normalize, and writes the
// collection to output as JSON. Nothing is written if any row is fatal.
func ConvertFile[T model.Entity](kind model.Kind, input, output string, normalize Normalizer[T], logger *zap.Logger) (Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := ingest.ReadFile(input)
	if err != nil {
		return Result{}, eris.Wrapf(err, "convert: read %s", kind)
	}

	coll, stats, err := Index(kind, table, normalize, logger)
	if err != nil {
		return Result{}, err
	}

	if err := export.WriteJSON(output, coll); err != nil {
		return Result{}, eris.Wrapf(err, "convert: write %s", kind)
	}

	logger.Info("convert: wrote collection",
		zap.String("kind", string(kind)),
		zap.String("input", input),
		zap.String("output", output),
		zap.Int("rows", stats.Rows),
		zap.Int("skipped", stats.Skipped),
		zap.Int("entities", stats.Entities),
	)

	return Result{Kind: kind, Input: input, Output: output, Stats: stats}, nil
}

// parseCoordinate converts a screened coordinate field to float64.
// Surrounding whitespace is tolerated; anything else that is not a finite
// number is ErrMalformedCoordinate.
func parseCoordinate(field, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, eris.Wrapf(ErrMalformedCoordinate, "%s %q", field, raw)
	}
	return v, nil
}

// parseCoordinatePair parses the lat and lon fields of rec.
func parseCoordinatePair(rec ingest.Record, latCol, lonCol string) (lat, lon float64, err error) {
	rawLat, err := rec.Get(latCol)
	if err != nil {
		return 0, 0, err
	}
	rawLon, err := rec.Get(lonCol)
	if err != nil {
		return 0, 0, err
	}
	if lat, err = parseCoordinate(latCol, rawLat); err != nil {
		return 0, 0, err
	}
	if lon, err = parseCoordinate(lonCol, rawLon); err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
