package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultBackgroundColor is used when an entry carries no background color.
const DefaultBackgroundColor = "#4cafef"

// Document is the canonical persisted catalog.
//
// It is NOT tied to a storage backend or to the remote store.
// Local cache, seed files and remote payloads are all decoded into this structure.
type Document struct {
	// NavList holds the tiles. Display order inside a category is
	// the position of the entry in this slice.
	NavList []IconEntry `json:"navList"`

	// OperateLog is an append-only audit trail. Records are opaque
	// and preserved verbatim.
	OperateLog []json.RawMessage `json:"operateLog"`
}

// IconEntry is a single shortcut tile.
type IconEntry struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated once at creation time.
	// Example: lx3k9q2a-4f1c0b
	ID string `json:"id"`

	// ─────────────────────────────
	// Placement
	// ─────────────────────────────

	// K is the category (display column). Across a normalized document
	// the distinct values are exactly 1..N.
	K int `json:"k"`

	// ─────────────────────────────
	// Presentation
	// ─────────────────────────────

	// Name is the display label.
	Name string `json:"name"`

	// URL always carries an explicit scheme once committed.
	URL string `json:"url"`

	// Alt is the text drawn when no image is available.
	Alt string `json:"alt"`

	// BackgroundColor is a CSS color used as tile background.
	BackgroundColor string `json:"backgroundColor"`

	// IconBase64 is an inline data URL image, nil when absent.
	IconBase64 *string `json:"iconBase64"`
}

// Empty returns a shaped document with no entries.
func Empty() Document {
	return Document{NavList: []IconEntry{}, OperateLog: []json.RawMessage{}}
}

// IsEmpty reports whether the document has no entries.
func (d Document) IsEmpty() bool {
	return len(d.NavList) == 0
}

// Clone returns a deep copy so callers can mutate it freely.
func (d Document) Clone() Document {
	out := Document{
		NavList:    make([]IconEntry, len(d.NavList)),
		OperateLog: make([]json.RawMessage, len(d.OperateLog)),
	}
	copy(out.NavList, d.NavList)
	for i, rec := range d.OperateLog {
		out.OperateLog[i] = append(json.RawMessage(nil), rec...)
	}
	return out
}

// IndexOf returns the position of the entry with the given id, or -1.
func (d Document) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	for i := range d.NavList {
		if d.NavList[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns the entry with the given id.
func (d Document) Find(id string) (IconEntry, bool) {
	idx := d.IndexOf(id)
	if idx < 0 {
		return IconEntry{}, false
	}
	return d.NavList[idx], true
}

// MarshalJSON keeps both collections as arrays, never null.
func (d Document) MarshalJSON() ([]byte, error) {
	type wire struct {
		NavList    []IconEntry       `json:"navList"`
		OperateLog []json.RawMessage `json:"operateLog"`
	}
	w := wire{NavList: d.NavList, OperateLog: d.OperateLog}
	if w.NavList == nil {
		w.NavList = []IconEntry{}
	}
	if w.OperateLog == nil {
		w.OperateLog = []json.RawMessage{}
	}
	return json.Marshal(w)
}

// UnmarshalJSON accepts k as an integer, an integral float or a numeric string.
// Anything else decodes to 0 and is ranked first by Normalize.
func (e *IconEntry) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID              string          `json:"id"`
		K               json.RawMessage `json:"k"`
		Name            string          `json:"name"`
		URL             string          `json:"url"`
		Alt             string          `json:"alt"`
		BackgroundColor string          `json:"backgroundColor"`
		IconBase64      *string         `json:"iconBase64"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = IconEntry{
		ID:              raw.ID,
		K:               parseCategory(raw.K),
		Name:            raw.Name,
		URL:             raw.URL,
		Alt:             raw.Alt,
		BackgroundColor: raw.BackgroundColor,
		IconBase64:      raw.IconBase64,
	}
	if e.IconBase64 != nil && *e.IconBase64 == "" {
		e.IconBase64 = nil
	}
	return nil
}

func parseCategory(raw json.RawMessage) int {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}
	var s string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0
		}
	} else {
		s = string(raw)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
