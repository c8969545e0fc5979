package app

import (
	"context"
	"fmt"

	"github.com/Structurer/nav-front-build/internal/config"
	"github.com/Structurer/nav-front-build/internal/coordinator"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/redis"
	"github.com/Structurer/nav-front-build/internal/remote"
	"github.com/Structurer/nav-front-build/internal/session"
	"github.com/Structurer/nav-front-build/internal/sources/homepage"
	"github.com/Structurer/nav-front-build/internal/sources/seed"
	"github.com/Structurer/nav-front-build/internal/store"
	redisstore "github.com/Structurer/nav-front-build/internal/store/redis"
	"github.com/Structurer/nav-front-build/internal/store/sqlite"
	"github.com/Structurer/nav-front-build/internal/utils"
)

// Runtime is the catalog machinery shared by the server and the CLI commands.
type Runtime struct {
	Config      *config.Config
	Logger      logger.Logger
	Store       *store.CatalogStore
	Coordinator *coordinator.Coordinator
}

// NewRuntime opens the local cache and wires the coordinator. It does not
// bootstrap the session.
func NewRuntime(ctx context.Context, cfg *config.Config, log logger.Logger) (*Runtime, error) {
	slot, err := openSlot(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	st := store.New(slot)

	opts := coordinator.Options{
		Store:   st,
		Seed:    seedSource(cfg),
		Session: session.New(),
		Logger:  log.Named("coordinator"),
	}
	if cfg.RemoteEnabled() {
		gw, err := remote.New(remote.Options{
			BaseURL: cfg.RemoteURL,
			APIKey:  cfg.RemoteAPIKey,
			Timeout: cfg.RemoteTimeout,
		})
		if err != nil {
			utils.CloseLogged(st, "local store", log)
			return nil, fmt.Errorf("remote store: %w", err)
		}
		opts.Remote = gw
		log.Info("remote store enabled", logger.String("url", gw.BaseURL()))
	} else {
		log.Info("remote store not configured, running local-only")
	}

	return &Runtime{
		Config:      cfg,
		Logger:      log,
		Store:       st,
		Coordinator: coordinator.New(opts),
	}, nil
}

// Close releases the local cache.
func (rt *Runtime) Close() {
	utils.CloseLogged(rt.Store, "local store", rt.Logger)
}

func openSlot(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Slot, error) {
	switch cfg.StoreBackend {
	case config.BackendRedis:
		log.Infof("connecting to redis at %s", cfg.RedisAddr)
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("local store (redis): %w", err)
		}
		return redisstore.NewSlot(client), nil
	default:
		slot, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("local store (sqlite): %w", err)
		}
		log.Info("local store opened", logger.String("path", cfg.SQLitePath))
		return slot, nil
	}
}

// seedSource prefers the catalog seed file and falls back to Homepage files.
func seedSource(cfg *config.Config) coordinator.SeedSource {
	return seed.First{
		seed.FileSource{Path: cfg.SeedFile},
		homepage.Source{BookmarksPath: cfg.HomepageBookmarks, ServicesPath: cfg.HomepageServices},
	}
}
