package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Structurer/nav-front-build/internal/coordinator"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
)

// Adopter is implemented by *coordinator.Coordinator.
type Adopter interface {
	AdoptRemote(ctx context.Context, issued uint64) (bool, error)
}

// RemoteAdopter runs the asynchronous remote step of startup. While an
// adoption is pending and the remote is unreachable it retries on every tick.
type RemoteAdopter struct {
	adopter  Adopter
	logger   logger.Logger
	interval time.Duration // 0 disables retries

	trigger  chan uint64
	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewRemoteAdopter creates an adopter. retryInterval <= 0 means one attempt per trigger.
func NewRemoteAdopter(a Adopter, log logger.Logger, retryInterval time.Duration) *RemoteAdopter {
	return &RemoteAdopter{
		adopter:  a,
		logger:   log,
		interval: retryInterval,
		trigger:  make(chan uint64, 1),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. When res asks for remote data the
// first attempt is made right away.
func (ra *RemoteAdopter) Start(ctx context.Context, res coordinator.BootstrapResult) {
	if res.NeedsRemote {
		ra.Trigger(res.Revision)
	}
	go ra.loop(ctx)
}

// Trigger schedules an adoption guarded by the given session revision.
// A pending trigger is replaced by the newer one.
func (ra *RemoteAdopter) Trigger(revision uint64) {
	for {
		select {
		case ra.trigger <- revision:
			return
		default:
			select {
			case <-ra.trigger:
			default:
			}
		}
	}
}

// Stop ends the loop and waits for it.
func (ra *RemoteAdopter) Stop() {
	ra.stopOnce.Do(func() { close(ra.stopCh) })
	ra.Wait()
}

// Wait blocks until the loop has exited.
func (ra *RemoteAdopter) Wait() {
	<-ra.done
}

func (ra *RemoteAdopter) loop(ctx context.Context) {
	defer close(ra.done)

	var tick <-chan time.Time
	if ra.interval > 0 {
		ticker := time.NewTicker(ra.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := false
	var issued uint64

	for {
		select {
		case rev := <-ra.trigger:
			issued = rev
			pending = !ra.attempt(ctx, issued)
		case <-tick:
			if pending {
				ra.logger.Debug("retrying remote adoption")
				pending = !ra.attempt(ctx, issued)
			}
		case <-ra.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// attempt reports whether the adoption is settled (adopted, empty remote,
// or superseded by a local change).
func (ra *RemoteAdopter) attempt(ctx context.Context, issued uint64) bool {
	adopted, err := ra.adopter.AdoptRemote(ctx, issued)
	switch {
	case err == nil:
		if !adopted {
			ra.logger.Info("remote has no catalog to adopt")
		}
		return true
	case errors.Is(err, domain.ErrStaleRemote), errors.Is(err, domain.ErrRemoteDisabled):
		ra.logger.Info("remote adoption skipped", logger.Error(err))
		return true
	case ctx.Err() != nil:
		return true
	default:
		ra.logger.Warn("remote adoption failed", logger.Error(err))
		return false
	}
}
