package convert

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geomap-cli/internal/export"
	"github.com/sells-group/geomap-cli/internal/model"
)

// Paths locates the input extract and output document of each converter.
type Paths struct {
	SchoolsInput  string
	SchoolsOutput string
	MedicalInput  string
	MedicalOutput string
	SportsInput   string
	SportsOutput  string
}

// Result describes one completed conversion.
type Result struct {
	Kind   model.Kind `json:"kind"`
	Input  string     `json:"input"`
	Output string     `json:"output"`
	Stats  Stats      `json:"stats"`
}

// Schools converts the schools extract at input and writes it to output.
func Schools(input, output string, logger *zap.Logger) (Result, error) {
	return ConvertFile[model.School](model.KindSchool, input, output, NormalizeSchool, logger)
}

// Medical converts the GP clinics extract at input and writes it to output.
func Medical(input, output string, logger *zap.Logger) (Result, error) {
	return ConvertFile[model.MedicalFacility](model.KindMedical, input, output, NormalizeMedical, logger)
}

// Sports converts the sports facilities extract at input and writes it to output.
func Sports(input, output string, logger *zap.Logger) (Result, error) {
	return ConvertFile[model.SportFacility](model.KindSport, input, output, NormalizeSport, logger)
}

// Run converts schools, medical, then sports. The first failure stops the
// run; documents already written by earlier converters are left in place and
// reported in the returned results.
func Run(paths Paths, logger *zap.Logger) ([]Result, error) {
	steps := []struct {
		kind model.Kind
		fn   func() (Result, error)
	}{
		{model.KindSchool, func() (Result, error) { return Schools(paths.SchoolsInput, paths.SchoolsOutput, logger) }},
		{model.KindMedical, func() (Result, error) { return Medical(paths.MedicalInput, paths.MedicalOutput, logger) }},
		{model.KindSport, func() (Result, error) { return Sports(paths.SportsInput, paths.SportsOutput, logger) }},
	}

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		res, err := step.fn()
		if err != nil {
			return results, eris.Wrapf(err, "convert: run stopped at %s", step.kind)
		}
		results = append(results, res)
	}
	return results, nil
}

// Output is a converted document and the kind of entity it holds.
type Output struct {
	Kind model.Kind
	Path string
}

// Outputs lists the three output documents in run order.
func (p Paths) Outputs() []Output {
	return []Output{
		{model.KindSchool, p.SchoolsOutput},
		{model.KindMedical, p.MedicalOutput},
		{model.KindSport, p.SportsOutput},
	}
}

// ReadFacilities reads a document written by Run back as facilities, in
// document order.
func ReadFacilities(kind model.Kind, path string) ([]model.Facility, error) {
	switch kind {
	case model.KindSchool:
		return readFacilities[model.School](path)
	case model.KindMedical:
		return readFacilities[model.MedicalFacility](path)
	case model.KindSport:
		return readFacilities[model.SportFacility](path)
	default:
		return nil, eris.Errorf("convert: unknown kind %q", kind)
	}
}

func readFacilities[T model.Entity](path string) ([]model.Facility, error) {
	coll := model.NewCollection[T]()
	if err := export.ReadJSON(path, coll); err != nil {
		return nil, err
	}
	return model.Facilities(coll), nil
}
