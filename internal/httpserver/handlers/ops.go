package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
)

type readyzResponse struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// Readyz reports ready once the local cache answers.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.Store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Store.Ping(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, readyzResponse{Ready: false, Error: err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, readyzResponse{Ready: true})
	}
}

type componentStatus struct {
	OK       bool   `json:"ok"`
	Mode     string `json:"mode,omitempty"`
	Entries  *int   `json:"entries,omitempty"`
	Revision uint64 `json:"revision,omitempty"`
	Updated  string `json:"updated,omitempty"`
	Error    string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := d.Catalog.Session().Snapshot()
		entries := len(snap.Doc.NavList)
		updated := "never"
		if !snap.UpdatedAt.IsZero() {
			updated = snap.UpdatedAt.Format("2006-01-02 15:04:05")
		}

		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"remote": {
				OK:   d.Catalog.RemoteEnabled(),
				Mode: remoteMode(d),
			},
			"session": {
				OK:       true,
				Mode:     string(snap.Source),
				Entries:  &entries,
				Revision: snap.Revision,
				Updated:  updated,
			},
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components, snap.SeedMode),
			Components: components,
		})
	}
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Mode: d.StoreBackend, Error: "not initialized"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Mode: d.StoreBackend, Error: err.Error()}
	}
	return componentStatus{OK: true, Mode: d.StoreBackend}
}

func remoteMode(d deps.Deps) string {
	if d.RemoteURL == "" {
		return "disabled"
	}
	return d.RemoteURL
}

func determineMode(components map[string]componentStatus, seedMode bool) string {
	if !components["store"].OK {
		return "memory-only" // edits are not persisted
	}
	if seedMode {
		return "seed"
	}
	if !components["remote"].OK {
		return "local"
	}
	return "synced"
}
