package handlers

import (
	"net/http"
	"strings"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/remote"
)

type pullResponse struct {
	Entries  int    `json:"entries"`
	Revision uint64 `json:"revision"`
	Durable  bool   `json:"durable"`
}

func Pull(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Catalog.Pull(r.Context())
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, pullResponse(res))
	}
}

// Push uploads the local catalog with the credential from the upload header.
func Push(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Catalog.Push(r.Context(), credential(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// InitRemote overwrites the remote catalog with the seed.
func InitRemote(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := d.Catalog.InitRemote(r.Context(), credential(r))
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func credential(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(remote.PasswordHeader))
}
