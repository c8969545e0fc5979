package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Structurer/nav-front-build/internal/catalog"
	"github.com/Structurer/nav-front-build/internal/coordinator"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
)

type commitResponse struct {
	Revision uint64            `json:"revision"`
	Durable  bool              `json:"durable"`
	Entry    *domain.IconEntry `json:"entry,omitempty"`
}

func commitBody(res coordinator.CommitResult) commitResponse {
	out := commitResponse{Revision: res.Revision, Durable: res.Durable}
	if res.Entry.ID != "" {
		e := res.Entry
		out.Entry = &e
	}
	return out
}

type addIconRequest struct {
	K int `json:"k"`
	catalog.Draft
}

func AddIcon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addIconRequest
		if err := decodeBody(w, r, maxFormBytes, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		res, err := d.Catalog.AddIcon(r.Context(), req.Draft, req.K)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, commitBody(res))
	}
}

func EditIcon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch catalog.Patch
		if err := decodeBody(w, r, maxFormBytes, &patch); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		res, err := d.Catalog.EditIcon(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, commitBody(res))
	}
}

// DeleteIcon removes by id; ?index= is the fallback position when the id is unknown.
func DeleteIcon(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		index := -1
		if v := r.URL.Query().Get("index"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				writeError(w, d.Logger, r, &domain.ValidationError{Field: "index", Reason: "must be an integer"})
				return
			}
			index = n
		}
		res, err := d.Catalog.DeleteIcon(r.Context(), chi.URLParam(r, "id"), index)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, commitBody(res))
	}
}

type moveRequest struct {
	Categories []catalog.CategoryOrder `json:"categories"`
}

func MoveIcons(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req moveRequest
		if err := decodeBody(w, r, maxFormBytes, &req); err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		res, err := d.Catalog.MoveIcons(r.Context(), req.Categories)
		if err != nil {
			writeError(w, d.Logger, r, err)
			return
		}
		writeJSON(w, http.StatusOK, commitBody(res))
	}
}
