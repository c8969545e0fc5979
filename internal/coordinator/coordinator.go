// Package coordinator decides which catalog source wins and commits every
// change through normalization and the local store.
//
// Order of authority at startup: local store, then the read-only seed, then
// the remote store (asynchronously, superseding the seed). Remote data is
// only written on an explicit push.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/remote"
	"github.com/Structurer/nav-front-build/internal/session"
)

// Store is the local cache.
type Store interface {
	Load(ctx context.Context) (domain.Document, error)
	Save(ctx context.Context, doc domain.Document) error
	Clear(ctx context.Context) error
}

// Remote is the mirrored key-value store.
type Remote interface {
	Fetch(ctx context.Context) (domain.Document, error)
	Push(ctx context.Context, doc domain.Document, credential string) (remote.PushResult, error)
}

// SeedSource provides the bundled default catalog.
type SeedSource interface {
	Load(ctx context.Context) (domain.Document, error)
}

// Options wires a Coordinator. Remote and Seed are optional.
type Options struct {
	Store   Store
	Remote  Remote
	Seed    SeedSource
	Session *session.Session
	Logger  logger.Logger
	Now     func() time.Time
}

// Coordinator serializes commits against a single Session.
type Coordinator struct {
	store   Store
	remote  Remote
	seed    SeedSource
	session *session.Session
	log     logger.Logger
	now     func() time.Time

	mu      sync.Mutex // held for every write to session + store
	fetches singleflight.Group
}

// New creates a coordinator.
func New(opts Options) *Coordinator {
	c := &Coordinator{
		store:   opts.Store,
		remote:  opts.Remote,
		seed:    opts.Seed,
		session: opts.Session,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if c.session == nil {
		c.session = session.New()
	}
	if c.log == nil {
		c.log = logger.NewNop()
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// Session exposes the session for read-only views.
func (c *Coordinator) Session() *session.Session { return c.session }

// RemoteEnabled reports whether a remote store is configured.
func (c *Coordinator) RemoteEnabled() bool { return c.remote != nil }

// LocalDocument returns the catalog held in the local store, which is what
// export and push work from. The seed is displayed but never stored, so in
// seed mode this is empty. A malformed store reads as its coerced form.
func (c *Coordinator) LocalDocument(ctx context.Context) (domain.Document, error) {
	doc, err := c.store.Load(ctx)
	if err != nil {
		var shapeErr *domain.ShapeError
		if !errors.As(err, &shapeErr) {
			return domain.Empty(), err
		}
		c.log.Warn("local catalog is malformed, treating it as empty", logger.Error(err))
	}
	return doc, nil
}

// BootstrapResult describes what the synchronous startup step displayed.
type BootstrapResult struct {
	Source      session.Source
	Entries     int
	Revision    uint64
	SeedMode    bool
	NeedsRemote bool // run AdoptRemote(ctx, Revision)
}

// Bootstrap loads the local store, falling back to the seed. It never fails
// because of bad data: unreadable sources are logged and skipped.
func (c *Coordinator) Bootstrap(ctx context.Context) (BootstrapResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.bootstrapLocked(ctx)
}

func (c *Coordinator) bootstrapLocked(ctx context.Context) (BootstrapResult, error) {
	doc, err := c.store.Load(ctx)
	if err != nil {
		c.log.Warn("local catalog unreadable, ignoring it", logger.Error(err))
		c.session.Post(session.LevelWarning, "local data could not be read")
	}

	if !doc.IsEmpty() {
		rev := c.session.Replace(doc, session.SourceLocal)
		c.log.Info("catalog loaded from local store", logger.Int("entries", len(doc.NavList)))
		return BootstrapResult{Source: session.SourceLocal, Entries: len(doc.NavList), Revision: rev}, nil
	}

	if err := ctx.Err(); err != nil {
		return BootstrapResult{}, err
	}

	result := BootstrapResult{Source: session.SourceEmpty, NeedsRemote: c.remote != nil}

	seedDoc := c.loadSeed(ctx)
	if !seedDoc.IsEmpty() {
		result.Revision = c.session.ShowSeed(domain.Canonical(seedDoc))
		result.Source = session.SourceSeed
		result.SeedMode = true
		result.Entries = len(seedDoc.NavList)
		c.log.Info("showing seed catalog", logger.Int("entries", result.Entries))
	} else {
		result.Revision = c.session.Replace(domain.Empty(), session.SourceEmpty)
	}

	return result, nil
}

func (c *Coordinator) loadSeed(ctx context.Context) domain.Document {
	if c.seed == nil {
		return domain.Empty()
	}
	doc, err := c.seed.Load(ctx)
	if err != nil {
		c.log.Warn("seed catalog unreadable", logger.Error(err))
		return domain.Empty()
	}
	return doc
}

// AdoptRemote fetches the remote document and, when it is non-empty and no
// local change happened since issued, persists and displays it.
func (c *Coordinator) AdoptRemote(ctx context.Context, issued uint64) (bool, error) {
	if c.remote == nil {
		return false, domain.ErrRemoteDisabled
	}

	doc, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("remote catalog unavailable", logger.Error(err))
		return false, err
	}
	if doc.IsEmpty() {
		c.log.Info("remote catalog is empty, keeping current view")
		return false, nil
	}
	doc = domain.Canonical(doc)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Revision() != issued {
		c.log.Info("remote catalog arrived after a local change, discarding it",
			logger.Uint64("issued", issued),
			logger.Uint64("current", c.session.Revision()))
		return false, domain.ErrStaleRemote
	}

	durable := c.persist(ctx, doc)
	if _, ok := c.session.ReplaceIf(issued, doc, session.SourceRemote); !ok {
		return false, domain.ErrStaleRemote
	}

	c.log.Info("remote catalog adopted",
		logger.Int("entries", len(doc.NavList)),
		logger.Bool("durable", durable))
	c.session.Post(session.LevelSuccess, "cloud data adopted")
	return true, nil
}

// fetch collapses concurrent remote reads into one request.
func (c *Coordinator) fetch(ctx context.Context) (domain.Document, error) {
	v, err, shared := c.fetches.Do("fetch", func() (any, error) {
		return c.remote.Fetch(ctx)
	})
	if shared {
		c.log.Debug("remote fetch shared with a concurrent caller")
	}
	doc, ok := v.(domain.Document)
	if !ok {
		doc = domain.Empty()
	}
	return doc.Clone(), err
}

// persist saves doc and reports whether the write succeeded. A failed write
// keeps the in-memory state and warns the user.
func (c *Coordinator) persist(ctx context.Context, doc domain.Document) bool {
	err := c.store.Save(ctx, doc)
	if err == nil {
		return true
	}
	c.log.Error("local store write failed, change kept in memory only", logger.Error(err))
	c.session.Post(session.LevelWarning, "change applied but could not be saved locally")
	return false
}
