package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
)

// maxFormBytes bounds add/edit/move bodies; an icon data URL is at most 2 MiB.
const maxFormBytes = 4 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a catalog error to an HTTP status.
func statusFor(err error) int {
	var (
		vErr     *domain.ValidationError
		fErr     *domain.FormatError
		shapeErr *domain.ShapeError
		lErr     *domain.LookupError
		nErr     *domain.NetworkError
		maxErr   *http.MaxBytesError
	)
	switch {
	case errors.As(err, &vErr), errors.As(err, &fErr), errors.As(err, &shapeErr):
		return http.StatusBadRequest
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &lErr):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSeedMode), errors.Is(err, domain.ErrStaleRemote):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNothingToUpload):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRemoteDisabled):
		return http.StatusServiceUnavailable
	case errors.As(err, &nErr), errors.Is(err, domain.ErrPushRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, log logger.Logger, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		log.Error("request failed",
			logger.String("path", r.URL.Path),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// decodeBody reads a bounded JSON body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return &domain.ValidationError{Field: "body", Reason: fmt.Sprintf("malformed JSON: %v", err)}
	}
	return nil
}
