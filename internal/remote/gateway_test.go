package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Structurer/nav-front-build/internal/domain"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *Gateway {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g, err := New(Options{BaseURL: srv.URL + "/", APIKey: "secret-key", Timeout: time.Second})
	require.NoError(t, err)
	return g
}

func TestNewRequiresBaseURL(t *testing.T) {
	_, err := New(Options{BaseURL: "  "})
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantEntries int
		wantNetwork bool
		wantShape   bool
	}{
		{
			name:        "valid document",
			status:      http.StatusOK,
			body:        `{"navList":[{"id":"a","k":2,"name":"A","url":"https://a","alt":"A","backgroundColor":"","iconBase64":null}],"operateLog":[]}`,
			wantEntries: 1,
		},
		{
			name:        "null operate log",
			status:      http.StatusOK,
			body:        `{"navList":[],"operateLog":null}`,
			wantEntries: 0,
		},
		{
			name:        "server error",
			status:      http.StatusInternalServerError,
			body:        `{"error":"kv down"}`,
			wantNetwork: true,
		},
		{
			name:        "html body",
			status:      http.StatusOK,
			body:        `<html>maintenance</html>`,
			wantNetwork: true,
		},
		{
			name:      "navList is not an array",
			status:    http.StatusOK,
			body:      `{"navList":"not-an-array"}`,
			wantShape: true,
		},
		{
			name:      "operateLog is a string",
			status:    http.StatusOK,
			body:      `{"navList":[{"id":"a","k":1}],"operateLog":"x"}`,
			wantShape: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, fetchPath, r.URL.Path)
				assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			doc, err := g.Fetch(context.Background())

			require.NotNil(t, doc.NavList)
			require.NotNil(t, doc.OperateLog)

			var netErr *domain.NetworkError
			var shapeErr *domain.ShapeError
			switch {
			case tt.wantNetwork:
				require.True(t, errors.As(err, &netErr), "err = %v", err)
				assert.True(t, doc.IsEmpty())
			case tt.wantShape:
				require.True(t, errors.As(err, &shapeErr), "err = %v", err)
				assert.True(t, doc.IsEmpty())
				assert.Empty(t, doc.OperateLog)
			default:
				require.NoError(t, err)
				assert.Len(t, doc.NavList, tt.wantEntries)
			}
		})
	}
}

func TestFetchServerErrorMessage(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":"bad key"}`)
	})

	_, err := g.Fetch(context.Background())
	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusUnauthorized, netErr.Status)
	assert.Equal(t, "bad key", netErr.Msg)
}

func TestFetchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	g, err := New(Options{BaseURL: base, Timeout: time.Second})
	require.NoError(t, err)

	doc, err := g.Fetch(context.Background())
	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr), "err = %v", err)
	assert.Zero(t, netErr.Status)
	assert.True(t, doc.IsEmpty())
}

func TestPushSendsCredentialInHeader(t *testing.T) {
	doc := domain.Document{NavList: []domain.IconEntry{{ID: "a", K: 1, Name: "A", URL: "https://a", Alt: "A"}}}

	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, savePath, r.URL.Path)
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))
		assert.Equal(t, "hunter2", r.Header.Get(PasswordHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.NotContains(t, string(body), "hunter2")

		var got domain.Document
		assert.NoError(t, json.Unmarshal(body, &got))
		assert.Len(t, got.NavList, 1)

		_, _ = io.WriteString(w, `{"success":true}`)
	})

	result, err := g.Push(context.Background(), doc, "hunter2")
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestPushFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "json error body", status: http.StatusForbidden, body: `{"error":"wrong password"}`, wantMsg: "wrong password"},
		{name: "plain error body", status: http.StatusBadGateway, body: `upstream`, wantMsg: "502 Bad Gateway"},
		{name: "unparsable success body", status: http.StatusOK, body: `ok`, wantMsg: "unparsable response body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := g.Push(context.Background(), domain.Empty(), "pw")
			var netErr *domain.NetworkError
			require.True(t, errors.As(err, &netErr), "err = %v", err)
			assert.Equal(t, "push", netErr.Op)
			assert.Equal(t, tt.wantMsg, netErr.Msg)
		})
	}
}

func TestPushRejectedResult(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"success":false,"error":"quota"}`)
	})

	result, err := g.Push(context.Background(), domain.Empty(), "pw")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "quota", result.Error)
}

func TestPushTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	g, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = g.Push(context.Background(), domain.Empty(), "pw")
	var netErr *domain.NetworkError
	require.True(t, errors.As(err, &netErr), "err = %v", err)
	assert.True(t, strings.Contains(netErr.Error(), "push"))
}

func TestFetchOversizedBody(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"navList":[`)
		_, _ = io.WriteString(w, strings.Repeat(" ", maxBodyBytes))
		_, _ = io.WriteString(w, `],"operateLog":[]}`)
	})

	doc, err := g.Fetch(context.Background())

	var nErr *domain.NetworkError
	require.True(t, errors.As(err, &nErr), "err = %v", err)
	assert.ErrorIs(t, err, errTooLarge)
	assert.Contains(t, err.Error(), "response too large")
	assert.True(t, doc.IsEmpty())
}

func TestPushRefusesUndownloadableDocument(t *testing.T) {
	var calls int
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = io.WriteString(w, `{"success":true}`)
	})

	doc := domain.Document{NavList: []domain.IconEntry{
		{ID: "big", K: 1, Name: "Big", URL: "https://big.example", Alt: strings.Repeat("a", maxBodyBytes)},
	}}
	_, err := g.Push(context.Background(), doc, "pw")

	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "err = %v", err)
	assert.Equal(t, "document", vErr.Field)
	assert.Zero(t, calls, "oversized document reached the remote")
}
