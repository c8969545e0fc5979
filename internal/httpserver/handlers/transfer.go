package handlers

import (
	"bytes"
	"net/http"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/session"
	"github.com/Structurer/nav-front-build/internal/transfer"
)

// Export downloads the local catalog as a backup file. A seed shown in
// seed mode is not local data and is not exported.
func Export(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := d.Catalog.LocalDocument(r.Context())
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}

		var buf bytes.Buffer
		if err := transfer.Export(&buf, doc); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+transfer.FileName(d.Now())+`"`)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(buf.Bytes())
	}
}

// Import replaces the catalog with the uploaded backup file (raw JSON body).
func Import(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := transfer.Decode(http.MaxBytesReader(w, r.Body, transfer.MaxFileBytes))
		if err != nil {
			d.Catalog.Session().Post(session.LevelError, "import failed: "+err.Error())
			writeError(w, d.Logger, r, err)
			return
		}
		res, err := d.Catalog.Import(r.Context(), doc)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, commitBody(res))
	}
}

type resetResponse struct {
	Source   session.Source `json:"source"`
	Entries  int            `json:"entries"`
	Revision uint64         `json:"revision"`
	SeedMode bool           `json:"seedMode"`
}

// Reset clears the local cache and reruns startup. Remote adoption, when
// needed, happens in the background.
func Reset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Catalog.Reset(r.Context())
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		if res.NeedsRemote && d.Adoption != nil {
			d.Adoption.Trigger(res.Revision)
		}
		d.Logger.Info("catalog reset",
			logger.String("source", string(res.Source)),
			logger.Int("entries", res.Entries))
		writeJSON(w, http.StatusOK, resetResponse{
			Source:   res.Source,
			Entries:  res.Entries,
			Revision: res.Revision,
			SeedMode: res.SeedMode,
		})
	}
}
