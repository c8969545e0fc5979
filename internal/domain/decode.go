package domain

import (
	"bytes"
	"encoding/json"
)

// DecodeDocument parses a catalog document leniently.
//
// A field that is not an array is coerced to an empty array in place and
// reported through a *ShapeError; the returned document is always shaped,
// so callers may render it even when err != nil. A null or absent
// operateLog is treated as empty without error.
func DecodeDocument(data []byte, source string) (Document, error) {
	doc := Empty()

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil || fields == nil {
		return doc, &ShapeError{Source: source, Reason: "not a JSON object"}
	}

	var shapeErr *ShapeError

	navRaw := bytes.TrimSpace(fields["navList"])
	switch {
	case len(navRaw) == 0 || bytes.Equal(navRaw, []byte("null")):
		shapeErr = &ShapeError{Source: source, Field: "navList", Reason: "navList is missing"}
	case navRaw[0] != '[':
		shapeErr = &ShapeError{Source: source, Field: "navList", Reason: "navList is not an array"}
	default:
		var entries []IconEntry
		if err := json.Unmarshal(navRaw, &entries); err != nil {
			shapeErr = &ShapeError{Source: source, Field: "navList", Reason: "navList contains invalid entries"}
		} else if entries != nil {
			doc.NavList = entries
		}
	}

	logRaw := bytes.TrimSpace(fields["operateLog"])
	switch {
	case len(logRaw) == 0 || bytes.Equal(logRaw, []byte("null")):
	case logRaw[0] != '[':
		if shapeErr == nil {
			shapeErr = &ShapeError{Source: source, Field: "operateLog", Reason: "operateLog is not an array"}
		}
	default:
		var records []json.RawMessage
		if err := json.Unmarshal(logRaw, &records); err == nil && records != nil {
			doc.OperateLog = records
		}
	}

	if shapeErr != nil {
		return doc, shapeErr
	}
	return doc, nil
}
