package coordinator

import (
	"context"
	"fmt"

	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/remote"
	"github.com/Structurer/nav-front-build/internal/session"
)

// PullResult reports a manual download.
type PullResult struct {
	Entries  int
	Revision uint64
	Durable  bool
}

// Pull replaces the local catalog with the remote one. Any fetch failure
// leaves the local store and the session untouched.
func (c *Coordinator) Pull(ctx context.Context) (PullResult, error) {
	if c.remote == nil {
		return PullResult{}, domain.ErrRemoteDisabled
	}

	issued := c.session.Revision()
	doc, err := c.fetch(ctx)
	if err != nil {
		c.log.Warn("manual pull failed", logger.Error(err))
		c.session.Post(session.LevelError, "download failed: "+err.Error())
		return PullResult{}, err
	}
	doc = domain.Canonical(doc)
	doc = domain.AppendLog(doc, domain.OpPull, "", 0, c.now())

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session.Revision() != issued {
		c.session.Post(session.LevelWarning, "download discarded: the catalog changed meanwhile")
		return PullResult{}, domain.ErrStaleRemote
	}

	durable := c.persist(ctx, doc)
	rev, _ := c.session.ReplaceIf(issued, doc, session.SourceRemote)

	c.log.Info("catalog pulled from remote",
		logger.Int("entries", len(doc.NavList)),
		logger.Bool("durable", durable))
	c.session.Post(session.LevelSuccess, "download complete")
	return PullResult{Entries: len(doc.NavList), Revision: rev, Durable: durable}, nil
}

// Push uploads the locally stored catalog. An empty catalog is refused
// before any network call.
func (c *Coordinator) Push(ctx context.Context, credential string) (remote.PushResult, error) {
	if c.remote == nil {
		return remote.PushResult{}, domain.ErrRemoteDisabled
	}

	doc, err := c.LocalDocument(ctx)
	if err != nil {
		return remote.PushResult{}, err
	}
	return c.upload(ctx, doc, credential, "upload")
}

// InitRemote pushes the reshaped seed catalog, overwriting the remote store.
// The local store is not touched.
func (c *Coordinator) InitRemote(ctx context.Context, credential string) (remote.PushResult, error) {
	if c.remote == nil {
		return remote.PushResult{}, domain.ErrRemoteDisabled
	}

	seedDoc := c.loadSeed(ctx)
	doc := domain.Canonical(domain.ReshapeSeed(seedDoc, c.now()))

	return c.upload(ctx, doc, credential, "remote initialization")
}

func (c *Coordinator) upload(ctx context.Context, doc domain.Document, credential, what string) (remote.PushResult, error) {
	if doc.IsEmpty() {
		c.session.Post(session.LevelWarning, "nothing to upload")
		return remote.PushResult{}, domain.ErrNothingToUpload
	}

	result, err := c.remote.Push(ctx, doc, credential)
	if err != nil {
		c.log.Warn(what+" failed", logger.Error(err))
		c.session.Post(session.LevelError, what+" failed: "+err.Error())
		return result, err
	}
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = "no reason given"
		}
		c.session.Post(session.LevelError, what+" rejected: "+reason)
		return result, fmt.Errorf("%w: %s", domain.ErrPushRejected, reason)
	}

	c.log.Info(what+" complete", logger.Int("entries", len(doc.NavList)))
	c.session.Post(session.LevelSuccess, what+" complete")
	return result, nil
}
