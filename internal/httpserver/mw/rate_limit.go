package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/Structurer/nav-front-build/internal/utils"
)

// RateLimiterConfig holds the settings shared by every scope of a RateLimiter.
type RateLimiterConfig struct {
	MaxEntries    int           // sweep early once this many buckets exist
	SweepInterval time.Duration // how often idle buckets are dropped
	IdleTTL       time.Duration // a bucket unused this long is forgotten
	TrustProxy    bool          // resolve IP from proxy headers
	Now           func() time.Time
}

// Scope names a bucket family. Each client IP gets one bucket per scope,
// so exhausting one route group leaves the others usable.
type Scope struct {
	Name      string
	Burst     int
	PerMinute int
}

type visitor struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter owns the buckets of all its scopes and sweeps them together.
type RateLimiter struct {
	cfg RateLimiterConfig

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time
}

func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &RateLimiter{
		cfg:       cfg,
		visitors:  make(map[string]*visitor, 256),
		lastSweep: cfg.Now(),
	}
}

func (rl *RateLimiter) limiterFor(sc Scope, ip string, now time.Time) *rate.Limiter {
	key := sc.Name + "|" + ip

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.cfg.SweepInterval ||
		(rl.cfg.MaxEntries > 0 && len(rl.visitors) >= rl.cfg.MaxEntries) {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > rl.cfg.IdleTTL {
				delete(rl.visitors, k)
			}
		}
		rl.lastSweep = now
	}

	v := rl.visitors[key]
	if v == nil {
		v = &visitor{lim: rate.NewLimiter(rate.Limit(float64(sc.PerMinute)/60), sc.Burst)}
		rl.visitors[key] = v
	}
	v.lastSeen = now
	return v.lim
}

// Limit returns a middleware that spends one token of sc per request.
// Rejected requests get 429 with Retry-After in whole seconds.
func (rl *RateLimiter) Limit(sc Scope) func(http.Handler) http.Handler {
	sc.Burst = max(sc.Burst, 1)
	sc.PerMinute = max(sc.PerMinute, 1)
	limitStr := strconv.Itoa(sc.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			now := rl.cfg.Now()
			lim := rl.limiterFor(sc, utils.ClientIP(r, rl.cfg.TrustProxy), now)

			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Scope", sc.Name)
			if !lim.AllowN(now, 1) {
				wait := math.Ceil((1 - lim.TokensAt(now)) * 60 / float64(sc.PerMinute))
				w.Header().Set("Retry-After", strconv.Itoa(max(int(wait), 1)))
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(int(lim.TokensAt(now)), 0)))
			next.ServeHTTP(w, r)
		})
	}
}
