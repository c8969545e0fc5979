package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/httpserver/handlers"
	"github.com/Structurer/nav-front-build/internal/httpserver/mw"
)

func init() { Register(registerSync) }

// Sync routes reach the remote store and carry the upload credential,
// so they are rate limited per client IP. Downloads and uploads draw from
// separate buckets: a burst of pulls must not lock out a push.
func registerSync(r chi.Router, d deps.Deps) {
	rl := mw.NewRateLimiter(mw.RateLimiterConfig{
		MaxEntries: 4096,
		TrustProxy: d.TrustProxy,
	})
	pull := rl.Limit(mw.Scope{Name: "sync-pull", Burst: d.SyncRateBurst, PerMinute: d.SyncRatePerMin})
	upload := rl.Limit(mw.Scope{Name: "sync-upload", Burst: d.SyncRateBurst, PerMinute: d.SyncRatePerMin})

	r.Route("/api/sync", func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))

		r.With(pull).Post("/pull", handlers.Pull(d))
		r.With(upload).Post("/push", handlers.Push(d))
		r.With(upload).Post("/init", handlers.InitRemote(d))
	})
}
