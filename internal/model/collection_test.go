package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollection_PutGet(t *testing.T) {
	c := NewCollection[School]()
	c.Put("101", School{SchoolNo: "101", SchoolName: "Langwarrin Primary School"})

	got, ok := c.Get("101")
	require.True(t, ok)
	assert.Equal(t, "Langwarrin Primary School", got.SchoolName)

	_, ok = c.Get("999")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())
}

func TestCollection_LastWriteWinsKeepsPosition(t *testing.T) {
	c := NewCollection[School]()
	c.Put("a", School{SchoolNo: "a", SchoolName: "first"})
	c.Put("b", School{SchoolNo: "b", SchoolName: "other"})
	c.Put("a", School{SchoolNo: "a", SchoolName: "second"})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Keys())

	got, _ := c.Get("a")
	assert.Equal(t, "second", got.SchoolName)
}

func TestCollection_ZeroValuePut(t *testing.T) {
	var c Collection[string]
	c.Put("k", "v")
	v, ok := c.Get("k")
	assert.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestCollection_KeysIsCopy(t *testing.T) {
	c := NewCollection[int]()
	c.Put("x", 1)
	keys := c.Keys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"x"}, c.Keys())
}

func TestCollection_AllStopsEarly(t *testing.T) {
	c := NewCollection[int]()
	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	var seen []string
	for k := range c.All() {
		seen = append(seen, k)
		if k == "b" {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestCollection_MarshalJSON_InsertionOrder(t *testing.T) {
	c := NewCollection[MedicalFacility]()
	c.Put("Z9", MedicalFacility{GPCode: "Z9", GPName: "Zed", GPLat: -38.1, GPLon: 145.2})
	c.Put("A1", MedicalFacility{GPCode: "A1", GPName: "Alpha Clinic", GPLat: -37.5, GPLon: 144.9})

	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t,
		`{"Z9":{"gp_code":"Z9","gp_name":"Zed","gp_lat":-38.1,"gp_lon":145.2},`+
			`"A1":{"gp_code":"A1","gp_name":"Alpha Clinic","gp_lat":-37.5,"gp_lon":144.9}}`,
		string(data))
}

func TestCollection_MarshalJSON_Empty(t *testing.T) {
	data, err := json.Marshal(NewCollection[School]())
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))
}

func TestCollection_RoundTrip(t *testing.T) {
	c := NewCollection[SportFacility]()
	c.Put("S002", SportFacility{FacilityID: "S002", FacilityName: "Pool", SportLat: -38.2, SportLon: 145.1, SportPlayed: ""})
	c.Put("S001", SportFacility{FacilityID: "S001", FacilityName: "Langwarrin Sports Centre", SportLat: -38.182662, SportLon: 145.156875, SportPlayed: "Basketball"})

	data, err := json.Marshal(c)
	require.NoError(t, err)

	got := NewCollection[SportFacility]()
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, c, got)
	assert.Equal(t, []string{"S002", "S001"}, got.Keys())
}

func TestCollection_UnmarshalJSON_DuplicateKeyLastWins(t *testing.T) {
	got := NewCollection[int]()
	require.NoError(t, json.Unmarshal([]byte(`{"a":1,"b":2,"a":3}`), got))

	v, _ := got.Get("a")
	assert.Equal(t, 3, v)
	assert.Equal(t, []string{"a", "b"}, got.Keys())
}

func TestCollection_UnmarshalJSON_NotObject(t *testing.T) {
	got := NewCollection[int]()
	err := json.Unmarshal([]byte(`[1,2]`), got)
	require.Error(t, err)
}

func TestCollection_UnmarshalJSON_BadValue(t *testing.T) {
	got := NewCollection[School]()
	err := json.Unmarshal([]byte(`{"101":{"school_lat":"north"}}`), got)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `collection: decode "101"`)
}

func TestFacilities(t *testing.T) {
	c := NewCollection[School]()
	c.Put("101", School{SchoolNo: "101", SchoolName: "Langwarrin Primary School", SchoolType: "Primary", SchoolLat: -38.182662, SchoolLon: 145.156875})

	got := Facilities(c)
	require.Len(t, got, 1)
	assert.Equal(t, Facility{
		Kind:   KindSchool,
		ID:     "101",
		Name:   "Langwarrin Primary School",
		Lat:    -38.182662,
		Lon:    145.156875,
		Detail: "Primary",
	}, got[0])
}
