package httpserver_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Structurer/nav-front-build/internal/config"
	"github.com/Structurer/nav-front-build/internal/coordinator"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/httpserver"
	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/remote"
	"github.com/Structurer/nav-front-build/internal/session"
	"github.com/Structurer/nav-front-build/internal/store"
	"github.com/Structurer/nav-front-build/internal/store/sqlite"
)

// remoteStub is an in-memory remote catalog endpoint.
type remoteStub struct {
	mu       sync.Mutex
	body     string
	password string
	saved    []byte
}

func (s *remoteStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.URL.Path {
	case "/api/get":
		_, _ = io.WriteString(w, s.body)
	case "/api/save":
		if r.Header.Get(remote.PasswordHeader) != s.password {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":"wrong password"}`)
			return
		}
		s.saved, _ = io.ReadAll(r.Body)
		s.body = string(s.saved)
		_, _ = io.WriteString(w, `{"success":true}`)
	default:
		http.NotFound(w, r)
	}
}

type adoptionRecorder struct {
	mu   sync.Mutex
	revs []uint64
}

func (a *adoptionRecorder) Trigger(rev uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.revs = append(a.revs, rev)
}

type testEnv struct {
	handler  http.Handler
	coord    *coordinator.Coordinator
	store    *store.CatalogStore
	remote   *remoteStub
	adoption *adoptionRecorder
}

func newTestEnv(t *testing.T, remoteBody string) *testEnv {
	t.Helper()

	slot, err := sqlite.Open(filepath.Join(t.TempDir(), "nav.db"))
	require.NoError(t, err)
	st := store.New(slot)
	t.Cleanup(func() { _ = st.Close() })

	stub := &remoteStub{body: remoteBody, password: "s3cret"}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	gw, err := remote.New(remote.Options{BaseURL: srv.URL, APIKey: "key", Timeout: 2 * time.Second})
	require.NoError(t, err)

	log := logger.NewNop()
	coord := coordinator.New(coordinator.Options{
		Store:   st,
		Remote:  gw,
		Session: session.New(),
		Logger:  log,
	})

	cfg := &config.Config{
		ListenPort:     ":0",
		RequestTimeout: 5 * time.Second,
		StoreBackend:   config.BackendSQLite,
		SyncRateBurst:  100,
		SyncRatePerMin: 100,
	}
	rec := &adoptionRecorder{}
	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		TimeNow:        func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) },
		RequestTimeout: cfg.RequestTimeout,
		SyncRateBurst:  cfg.SyncRateBurst,
		SyncRatePerMin: cfg.SyncRatePerMin,
		Catalog:        coord,
		Store:          st,
		StoreBackend:   cfg.StoreBackend,
		RemoteURL:      srv.URL,
		Adoption:       rec,
	}

	return &testEnv{
		handler:  httpserver.New(cfg, log, d).Handler(),
		coord:    coord,
		store:    st,
		remote:   stub,
		adoption: rec,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

type catalogBody struct {
	Revision     uint64          `json:"revision"`
	Source       string          `json:"source"`
	SeedMode     bool            `json:"seedMode"`
	Columns      []columnBody    `json:"columns"`
	Capabilities map[string]bool `json:"capabilities"`
}

type columnBody struct {
	K     int `json:"k"`
	Tiles []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Href string `json:"href"`
	} `json:"tiles"`
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

const twoEntries = `{"navList":[
	{"id":"a","k":1,"name":"Alpha","url":"https://a.example","alt":"A","backgroundColor":"#111","iconBase64":null},
	{"id":"b","k":2,"name":"Beta","url":"https://b.example","alt":"B","backgroundColor":"#222","iconBase64":null}
],"operateLog":[]}`

func TestCatalogEmpty(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodGet, "/api/catalog", "")
	require.Equal(t, http.StatusOK, rr.Code)

	body := decode[catalogBody](t, rr)
	require.Len(t, body.Columns, 1)
	assert.Equal(t, 1, body.Columns[0].K)
	assert.Empty(t, body.Columns[0].Tiles)
	assert.False(t, body.SeedMode)
	assert.True(t, body.Capabilities["add"])
}

func TestIconLifecycle(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/icons", `{"k":1,"name":"Go","url":"go.dev","alt":"Go"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Durable bool             `json:"durable"`
		Entry   domain.IconEntry `json:"entry"`
	}](t, rr)
	assert.True(t, created.Durable)
	assert.Equal(t, "https://go.dev", created.Entry.URL)
	id := created.Entry.ID

	rr = env.do(t, http.MethodPut, "/api/icons/"+id, `{"name":"Golang"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/go/"+id, "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://go.dev", rr.Header().Get("Location"))

	stored, err := env.store.Load(t.Context())
	require.NoError(t, err)
	require.Len(t, stored.NavList, 1)
	assert.Equal(t, "Golang", stored.NavList[0].Name)

	rr = env.do(t, http.MethodDelete, "/api/icons/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/go/"+id, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestIconErrors(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "missing name", method: http.MethodPost, path: "/api/icons", body: `{"k":1,"url":"x.example","alt":"x"}`, status: http.StatusBadRequest},
		{name: "malformed json", method: http.MethodPost, path: "/api/icons", body: `{"k":`, status: http.StatusBadRequest},
		{name: "edit unknown id", method: http.MethodPut, path: "/api/icons/ghost", body: `{"name":"x"}`, status: http.StatusNotFound},
		{name: "delete out of range", method: http.MethodDelete, path: "/api/icons/ghost?index=3", status: http.StatusNotFound},
		{name: "delete bad index", method: http.MethodDelete, path: "/api/icons/ghost?index=x", status: http.StatusBadRequest},
		{name: "move three categories", method: http.MethodPost, path: "/api/icons/move", body: `{"categories":[{"k":1},{"k":2},{"k":3}]}`, status: http.StatusBadRequest},
		{name: "bad notices cursor", method: http.MethodGet, path: "/api/notices?after=-1", status: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestPullAndPush(t *testing.T) {
	env := newTestEnv(t, twoEntries)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/sync/pull", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	body := decode[catalogBody](t, env.do(t, http.MethodGet, "/api/catalog", ""))
	assert.Equal(t, "remote", body.Source)
	require.Len(t, body.Columns, 2)
	assert.Equal(t, "/go/a", body.Columns[0].Tiles[0].Href)

	rr = env.do(t, http.MethodPost, "/api/sync/push", "", remote.PasswordHeader, "wrong")
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "wrong password")

	rr = env.do(t, http.MethodPost, "/api/sync/push", "", remote.PasswordHeader, "s3cret")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.JSONEq(t, `{"success":true}`, rr.Body.String())

	saved, err := domain.DecodeDocument(env.remote.saved, "remote")
	require.NoError(t, err)
	assert.Len(t, saved.NavList, 2)
}

func TestPushEmptyCatalogIsRefused(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/sync/push", "", remote.PasswordHeader, "s3cret")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Nil(t, env.remote.saved)
}

func TestExportImport(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/import", twoEntries)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/api/export", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, `attachment; filename="nav_data_2026-03-09.json"`, rr.Header().Get("Content-Disposition"))

	exported, err := domain.DecodeDocument(rr.Body.Bytes(), "import")
	require.NoError(t, err)
	assert.Len(t, exported.NavList, 2)
	assert.NotEmpty(t, exported.OperateLog)

	rr = env.do(t, http.MethodPost, "/api/import", `{"navList":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Len(t, env.coord.Session().Snapshot().Doc.NavList, 2, "failed import must not touch the catalog")
}

func TestResetSchedulesAdoption(t *testing.T) {
	env := newTestEnv(t, twoEntries)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/reset", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	res := decode[struct {
		Revision uint64 `json:"revision"`
	}](t, rr)
	env.adoption.mu.Lock()
	defer env.adoption.mu.Unlock()
	assert.Equal(t, []uint64{res.Revision}, env.adoption.revs)
}

func TestNotices(t *testing.T) {
	env := newTestEnv(t, twoEntries)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)
	env.do(t, http.MethodPost, "/api/sync/pull", "")

	body := decode[struct {
		Notices []session.Notice `json:"notices"`
	}](t, env.do(t, http.MethodGet, "/api/notices", ""))
	require.NotEmpty(t, body.Notices)
	last := body.Notices[len(body.Notices)-1]
	assert.Equal(t, "download complete", last.Message)

	after := decode[struct {
		Notices []session.Notice `json:"notices"`
	}](t, env.do(t, http.MethodGet, "/api/notices?after="+strconv.FormatUint(last.Seq, 10), ""))
	assert.Empty(t, after.Notices)
}

func TestOpsEndpoints(t *testing.T) {
	env := newTestEnv(t, `{"navList":[],"operateLog":[]}`)

	rr := env.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodGet, "/readyz", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"ready":true}`, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/infra", "")
	require.Equal(t, http.StatusOK, rr.Code)
	infra := decode[struct {
		Mode       string `json:"mode"`
		Components map[string]struct {
			OK bool `json:"ok"`
		} `json:"components"`
	}](t, rr)
	assert.Equal(t, "synced", infra.Mode)
	assert.True(t, infra.Components["store"].OK)
}

func TestSchemelessURLsAreFollowable(t *testing.T) {
	env := newTestEnv(t, `{"navList":[{"id":"x1","k":1,"name":"X","url":"example.com","alt":"X","backgroundColor":"#fff","iconBase64":null}],"operateLog":[]}`)
	_, err := env.coord.Bootstrap(t.Context())
	require.NoError(t, err)

	rr := env.do(t, http.MethodPost, "/api/sync/pull", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	stored, err := env.store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", stored.NavList[0].URL)

	rr = env.do(t, http.MethodGet, "/go/x1", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://example.com", rr.Header().Get("Location"))

	rr = env.do(t, http.MethodPost, "/api/import", `{"navList":[{"id":"y1","k":1,"name":"Y","url":"y.example","alt":"Y"}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	rr = env.do(t, http.MethodGet, "/go/y1", "")
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://y.example", rr.Header().Get("Location"))
}
