package ingest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

func TestRead_Basic(t *testing.T) {
	input := "school_no,school_name,school_lat\n101,Langwarrin Primary School,-38.182662\n102,Frankston High,NA\n"
	table, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"school_no", "school_name", "school_lat"}, table.Header)
	require.Len(t, table.Records, 2)

	v, err := table.Records[0].Get("school_name")
	require.NoError(t, err)
	assert.Equal(t, "Langwarrin Primary School", v)

	v, err = table.Records[1].Get("school_lat")
	require.NoError(t, err)
	assert.Equal(t, "NA", v)
	assert.Equal(t, 3, table.Records[1].Line)
}

func TestRead_StripsUTF8BOM(t *testing.T) {
	input := "\ufeffgp_code,gp_name\nG1,Clinic\n"
	table, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, "gp_code", table.Header[0])
	v, err := table.Records[0].Get("gp_code")
	require.NoError(t, err)
	assert.Equal(t, "G1", v)
}

func TestRead_StripsEmbeddedBOMArtifacts(t *testing.T) {
	// A second marker survives decoding when files were re-encoded.
	input := "\ufeff\ufefffacility_id,facility_name\nS001,Centre\n"
	table, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, "facility_id", table.Header[0])
}

func TestRead_UTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String("a,b\n1,2\n")
	require.NoError(t, err)

	table, err := Read(strings.NewReader(encoded), Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, table.Header)
	require.Len(t, table.Records, 1)
	v, err := table.Records[0].Get("b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestRead_Empty(t *testing.T) {
	table, err := Read(strings.NewReader(""), Options{})
	require.NoError(t, err)
	assert.Empty(t, table.Header)
	assert.Empty(t, table.Records)
}

func TestRead_HeaderOnly(t *testing.T) {
	table, err := Read(strings.NewReader("a,b,c\n"), Options{})
	require.NoError(t, err)
	assert.Len(t, table.Header, 3)
	assert.Empty(t, table.Records)
}

func TestRead_QuotedFieldWithComma(t *testing.T) {
	input := "gp_code,gp_name,location\nG1,\"Clinic, Main St\",\"{\"\"lat\"\": -38.1, \"\"lng\"\": 145.1}\"\n"
	table, err := Read(strings.NewReader(input), Options{})
	require.NoError(t, err)
	require.Len(t, table.Records, 1)

	name, err := table.Records[0].Get("gp_name")
	require.NoError(t, err)
	assert.Equal(t, "Clinic, Main St", name)

	loc, err := table.Records[0].Get("location")
	require.NoError(t, err)
	assert.Equal(t, `{"lat": -38.1, "lng": 145.1}`, loc)
}

func TestRead_PipeDelimited(t *testing.T) {
	table, err := Read(strings.NewReader("a|b\n1|2\n"), Options{Delimiter: '|'})
	require.NoError(t, err)
	v, err := table.Records[0].Get("b")
	require.NoError(t, err)
	assert.Equal(t, "2", v)
}

func TestRead_MalformedQuotes(t *testing.T) {
	input := "a,b\n1,\"unterminated\n"
	_, err := Read(strings.NewReader(input), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "csv: read row")
}

func TestRecord_GetMissingColumn(t *testing.T) {
	table, err := Read(strings.NewReader("a,b\n1,2\n"), Options{})
	require.NoError(t, err)

	_, err = table.Records[0].Get("c")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
	assert.Contains(t, err.Error(), `"c"`)
}

func TestRecord_GetShortRow(t *testing.T) {
	table, err := Read(strings.NewReader("a,b,c\n1,2\n"), Options{})
	require.NoError(t, err)

	_, err = table.Records[0].Get("c")
	assert.True(t, errors.Is(err, ErrMissingColumn))

	_, ok := table.Records[0].Lookup("c")
	assert.False(t, ok)
	assert.Equal(t, 2, table.Records[0].Len())
}

func TestRecord_DuplicateHeaderLastWins(t *testing.T) {
	table, err := Read(strings.NewReader("id,name,name\n1,first,second\n"), Options{})
	require.NoError(t, err)

	v, err := table.Records[0].Get("name")
	require.NoError(t, err)
	assert.Equal(t, "second", v)
}

func TestNewRecord(t *testing.T) {
	rec := NewRecord([]string{"x", "y"}, []string{"1", "2"})
	v, ok := rec.Lookup("y")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schools.csv")
	require.NoError(t, os.WriteFile(path, []byte("\ufeffschool_no,school_name\n101,Langwarrin\n"), 0o644))

	table, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"school_no", "school_name"}, table.Header)
	require.Len(t, table.Records, 1)
}

func TestReadFile_NotFound(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingest: open")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
