// Package export writes converted collections to JSON, GeoJSON, and shapefiles.
package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
)

const jsonIndent = "    "

// WriteJSON serializes v to path as indented JSON, truncating any existing file.
func WriteJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", jsonIndent)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return eris.Wrapf(err, "export: encode %s", path)
	}

	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// ReadJSON decodes the JSON document at path into v.
func ReadJSON(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(v); err != nil {
		return eris.Wrapf(err, "export: decode %s", path)
	}
	return nil
}
