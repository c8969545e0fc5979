package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/render"
	"github.com/Structurer/nav-front-build/internal/session"
)

type catalogResponse struct {
	Revision  uint64         `json:"revision"`
	Source    session.Source `json:"source"`
	SeedMode  bool           `json:"seedMode"`
	UpdatedAt string         `json:"updatedAt,omitempty"`
	render.View
}

// Catalog returns the grid view of the current session document.
func Catalog(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Catalog.Session().Snapshot()
		caps := render.CapabilitiesFor(snap.SeedMode, d.Catalog.RemoteEnabled())

		resp := catalogResponse{
			Revision: snap.Revision,
			Source:   snap.Source,
			SeedMode: snap.SeedMode,
			View:     render.Grid(snap.Doc, caps),
		}
		if !snap.UpdatedAt.IsZero() {
			resp.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

type noticesResponse struct {
	Notices []session.Notice `json:"notices"`
}

// Notices returns the notices posted after the ?after= sequence number.
func Notices(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var after uint64
		if v := r.URL.Query().Get("after"); v != "" {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "after must be a non-negative integer"})
				return
			}
			after = n
		}
		notices := d.Catalog.Session().Notices(after)
		if notices == nil {
			notices = []session.Notice{}
		}
		writeJSON(w, http.StatusOK, noticesResponse{Notices: notices})
	}
}

// Go redirects to the destination of a tile.
func Go(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		entry, ok := d.Catalog.Session().Lookup(id)
		if !ok || entry.URL == "" {
			http.NotFound(w, r)
			return
		}
		// a scheme-less url would be resolved relative to /go/
		http.Redirect(w, r, domain.FixURLScheme(entry.URL), http.StatusFound)
	}
}
