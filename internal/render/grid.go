// Package render builds the view model of the icon grid.
package render

import (
	"github.com/Structurer/nav-front-build/internal/domain"
)

// Capabilities lists the actions the UI may offer.
type Capabilities struct {
	Add        bool `json:"add"`
	Edit       bool `json:"edit"`
	Delete     bool `json:"delete"`
	Move       bool `json:"move"`
	Import     bool `json:"import"`
	Reset      bool `json:"reset"`
	Pull       bool `json:"pull"`
	Push       bool `json:"push"`
	InitRemote bool `json:"initRemote"`
}

// CapabilitiesFor derives the action set. Seed data is read-only, and sync
// actions require a remote store.
func CapabilitiesFor(seedMode, remoteEnabled bool) Capabilities {
	return Capabilities{
		Add:        !seedMode,
		Edit:       !seedMode,
		Delete:     !seedMode,
		Move:       !seedMode,
		Import:     true,
		Reset:      true,
		Pull:       remoteEnabled,
		Push:       remoteEnabled,
		InitRemote: remoteEnabled,
	}
}

// Tile is one rendered entry.
type Tile struct {
	ID              string  `json:"id"`
	Index           int     `json:"index"` // position in navList
	Name            string  `json:"name"`
	URL             string  `json:"url"`
	Href            string  `json:"href"`
	BackgroundColor string  `json:"backgroundColor"`
	Icon            *string `json:"icon"`
	Fallback        string  `json:"fallback"`
}

// Column is one category.
type Column struct {
	K     int    `json:"k"`
	Tiles []Tile `json:"tiles"`
}

// View is the whole grid.
type View struct {
	Columns      []Column     `json:"columns"`
	Capabilities Capabilities `json:"capabilities"`
}

// Grid lays doc out in ascending category order, tiles in list order.
// A catalog without categories renders one empty column.
func Grid(doc domain.Document, caps Capabilities) View {
	categories := domain.Categories(doc)
	if len(categories) == 0 {
		return View{Columns: []Column{{K: 1, Tiles: []Tile{}}}, Capabilities: caps}
	}

	pos := make(map[int]int, len(categories))
	cols := make([]Column, len(categories))
	for i, k := range categories {
		pos[k] = i
		cols[i] = Column{K: k, Tiles: []Tile{}}
	}

	for i, e := range doc.NavList {
		c := pos[e.K]
		bg := e.BackgroundColor
		if bg == "" {
			bg = domain.DefaultBackgroundColor
		}
		cols[c].Tiles = append(cols[c].Tiles, Tile{
			ID:              e.ID,
			Index:           i,
			Name:            e.Name,
			URL:             domain.FixURLScheme(e.URL),
			Href:            "/go/" + e.ID,
			BackgroundColor: bg,
			Icon:            e.IconBase64,
			Fallback:        e.Fallback(),
		})
	}

	return View{Columns: cols, Capabilities: caps}
}
