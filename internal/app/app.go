package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Structurer/nav-front-build/internal/config"
	"github.com/Structurer/nav-front-build/internal/httpserver"
	"github.com/Structurer/nav-front-build/internal/httpserver/deps"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/scheduler"
	"github.com/Structurer/nav-front-build/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	rt      *Runtime
	adopter *scheduler.RemoteAdopter
	server  *httpserver.Server
}

// New wires the server. The local store is opened here so a bad backend
// fails before anything listens.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	rt, err := NewRuntime(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	adopter := scheduler.NewRemoteAdopter(rt.Coordinator, log.Named("adopter"), cfg.RemoteRetryInterval)

	d := deps.Deps{
		Logger:         log,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		RequestTimeout: cfg.RequestTimeout,
		SyncRateBurst:  cfg.SyncRateBurst,
		SyncRatePerMin: cfg.SyncRatePerMin,
		Catalog:        rt.Coordinator,
		Store:          rt.Store,
		StoreBackend:   cfg.StoreBackend,
		RemoteURL:      cfg.RemoteURL,
		Adoption:       adopter,
	}

	return &App{
		cfg:     cfg,
		logger:  log,
		rt:      rt,
		adopter: adopter,
		server:  httpserver.New(cfg, log.Named("http"), d),
	}, nil
}

// Run bootstraps the catalog, serves until ctx is done, then shuts down.
func (a *App) Run(ctx context.Context) error {
	defer a.rt.Close()

	a.logger.Infof("%s on %s", version.String(), a.cfg.ListenPort)

	res, err := a.rt.Coordinator.Bootstrap(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap catalog: %w", err)
	}
	a.logger.Info("catalog ready",
		logger.String("source", string(res.Source)),
		logger.Int("entries", res.Entries),
		logger.Bool("seed_mode", res.SeedMode))

	a.adopter.Start(ctx, res)

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutting down gracefully")
	case runErr = <-errCh:
	}

	a.adopter.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to stop server: %w", err)
	}

	if runErr == nil {
		a.logger.Info("navgrid stopped cleanly")
	}
	return runErr
}
