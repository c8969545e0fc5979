package deps

import (
	"context"
	"time"

	"github.com/Structurer/nav-front-build/internal/coordinator"
	"github.com/Structurer/nav-front-build/internal/logger"
)

// Pinger reports backend reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AdoptionTrigger schedules a background remote adoption.
type AdoptionTrigger interface {
	Trigger(revision uint64)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time // for testing, defaults to time.Now
	AllowedHosts   []string         // Host headers allowed to access the API
	AllowedCIDRS   []string         // IPs allowed to access readyz/infra
	TrustProxy     bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RequestTimeout time.Duration    // per request; must cover remote calls
	SyncRateBurst  int              // sync endpoints burst per client IP
	SyncRatePerMin int              // sync endpoints refill per minute per client IP

	Catalog      *coordinator.Coordinator // single write path of the catalog
	Store        Pinger                   // local cache
	StoreBackend string                   // "sqlite" | "redis"
	RemoteURL    string                   // empty when the remote is disabled
	Adoption     AdoptionTrigger          // nil disables re-adoption after reset
}

// Now returns the configured clock.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
