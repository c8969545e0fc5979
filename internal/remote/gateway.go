// Package remote talks to the key-value store that mirrors the catalog.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Structurer/nav-front-build/internal/domain"
)

const (
	fetchPath = "/api/get"
	savePath  = "/api/save"

	// PasswordHeader carries the upload credential; it never appears in the body.
	PasswordHeader = "X-Upload-Password"

	maxBodyBytes = domain.MaxDocumentBytes
)

// Options configures a Gateway.
type Options struct {
	BaseURL string        // ex: https://nav.example.workers.dev
	APIKey  string        // static bearer token
	Timeout time.Duration // per request, 0 = 10s
	Client  *http.Client  // optional
}

// PushResult is the decoded body of a successful save call.
type PushResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Gateway fetches and pushes whole catalog documents.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// New builds a gateway. BaseURL is required.
func New(opts Options) (*Gateway, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("remote base url is required")
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Gateway{baseURL: base, apiKey: opts.APIKey, client: client}, nil
}

// BaseURL returns the configured endpoint.
func (g *Gateway) BaseURL() string { return g.baseURL }

// Fetch downloads the remote document.
//
// The returned document is always shaped, even when err != nil:
// transport and status failures yield *domain.NetworkError with an empty
// document, malformed arrays yield *domain.ShapeError.
func (g *Gateway) Fetch(ctx context.Context) (domain.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+fetchPath, nil)
	if err != nil {
		return domain.Empty(), &domain.NetworkError{Op: "fetch", Err: err}
	}
	g.authorize(req)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.Empty(), &domain.NetworkError{Op: "fetch", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp.Body)
	if err != nil {
		return domain.Empty(), &domain.NetworkError{Op: "fetch", Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return domain.Empty(), &domain.NetworkError{Op: "fetch", Status: resp.StatusCode, Msg: errorMessage(resp, body)}
	}
	if !json.Valid(body) {
		return domain.Empty(), &domain.NetworkError{Op: "fetch", Status: resp.StatusCode, Msg: "unparsable response body"}
	}

	doc, err := domain.DecodeDocument(body, "remote")
	if err != nil {
		// a partially valid payload is not adopted
		return domain.Empty(), err
	}
	return doc, nil
}

// Push uploads doc. The credential travels in PasswordHeader.
func (g *Gateway) Push(ctx context.Context, doc domain.Document, credential string) (PushResult, error) {
	payload, err := json.Marshal(doc)
	if err != nil {
		return PushResult{}, fmt.Errorf("encode document: %w", err)
	}
	if len(payload) > maxBodyBytes {
		// it could never be downloaded again
		return PushResult{}, &domain.ValidationError{
			Field:  "document",
			Reason: fmt.Sprintf("encoded size %d bytes exceeds the %d byte limit", len(payload), maxBodyBytes),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+savePath, bytes.NewReader(payload))
	if err != nil {
		return PushResult{}, &domain.NetworkError{Op: "push", Err: err}
	}
	g.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(PasswordHeader, credential)

	resp, err := g.client.Do(req)
	if err != nil {
		return PushResult{}, &domain.NetworkError{Op: "push", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readBody(resp.Body)
	if err != nil {
		return PushResult{}, &domain.NetworkError{Op: "push", Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return PushResult{}, &domain.NetworkError{Op: "push", Status: resp.StatusCode, Msg: errorMessage(resp, body)}
	}

	var result PushResult
	if err := json.Unmarshal(body, &result); err != nil {
		return PushResult{}, &domain.NetworkError{Op: "push", Status: resp.StatusCode, Msg: "unparsable response body"}
	}
	return result, nil
}

// errTooLarge reports a response body over maxBodyBytes.
var errTooLarge = fmt.Errorf("response too large (over %d bytes)", maxBodyBytes)

func readBody(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, errTooLarge
	}
	return body, nil
}

func (g *Gateway) authorize(req *http.Request) {
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}
}

// errorMessage prefers the remote {"error": "..."} message over the status text.
func errorMessage(resp *http.Response, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("%d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
}
