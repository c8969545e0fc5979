package coordinator

import (
	"context"

	"github.com/Structurer/nav-front-build/internal/catalog"
	"github.com/Structurer/nav-front-build/internal/domain"
	"github.com/Structurer/nav-front-build/internal/logger"
	"github.com/Structurer/nav-front-build/internal/session"
)

// CommitResult reports a committed change.
// Durable is false when the local store rejected the write; the change is
// then live in memory only.
type CommitResult struct {
	Revision uint64
	Durable  bool
	Entry    domain.IconEntry // normalized; zero for list-level operations
}

// mutation computes the next document from a copy of the current one and
// returns the id of the touched entry, if any.
type mutation func(doc domain.Document) (domain.Document, string, error)

// commit runs the single write path: mutate, normalize, log, save, install.
func (c *Coordinator) commit(ctx context.Context, op string, allowInSeedMode bool, mutate mutation) (CommitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.session.Snapshot()
	if snap.SeedMode && !allowInSeedMode {
		return CommitResult{}, domain.ErrSeedMode
	}

	next, id, err := mutate(snap.Doc)
	if err != nil {
		return CommitResult{}, err
	}
	next = domain.Canonical(next)

	var entry domain.IconEntry
	if id != "" {
		entry, _ = next.Find(id)
	}
	next = domain.AppendLog(next, op, id, entry.K, c.now())

	durable := c.persist(ctx, next)
	rev := c.session.Replace(next, session.SourceLocal)

	c.log.Debug("catalog change committed",
		logger.String("op", op),
		logger.String("id", id),
		logger.Uint64("revision", rev),
		logger.Bool("durable", durable))

	return CommitResult{Revision: rev, Durable: durable, Entry: entry}, nil
}

// AddIcon appends a new entry to category k.
func (c *Coordinator) AddIcon(ctx context.Context, d catalog.Draft, k int) (CommitResult, error) {
	return c.commit(ctx, domain.OpAdd, false, func(doc domain.Document) (domain.Document, string, error) {
		out, entry, err := catalog.Add(doc, d, k, c.now())
		return out, entry.ID, err
	})
}

// EditIcon applies a patch to the entry with the given id.
func (c *Coordinator) EditIcon(ctx context.Context, id string, p catalog.Patch) (CommitResult, error) {
	return c.commit(ctx, domain.OpEdit, false, func(doc domain.Document) (domain.Document, string, error) {
		out, entry, err := catalog.Edit(doc, id, p)
		return out, entry.ID, err
	})
}

// DeleteIcon removes the entry by id, or by fallbackIndex when the id is unknown.
func (c *Coordinator) DeleteIcon(ctx context.Context, id string, fallbackIndex int) (CommitResult, error) {
	var removed domain.IconEntry
	res, err := c.commit(ctx, domain.OpDelete, false, func(doc domain.Document) (domain.Document, string, error) {
		out, entry, err := catalog.Delete(doc, id, fallbackIndex)
		removed = entry
		return out, entry.ID, err
	})
	if err != nil {
		return res, err
	}
	res.Entry = removed
	return res, nil
}

// MoveIcons commits the result of a drag across one or two categories.
func (c *Coordinator) MoveIcons(ctx context.Context, orders []catalog.CategoryOrder) (CommitResult, error) {
	return c.commit(ctx, domain.OpMove, false, func(doc domain.Document) (domain.Document, string, error) {
		out, err := catalog.Move(doc, orders)
		return out, "", err
	})
}

// Import replaces the whole catalog with doc. It is allowed in seed mode
// and leaves it.
func (c *Coordinator) Import(ctx context.Context, doc domain.Document) (CommitResult, error) {
	imported := doc.Clone()
	res, err := c.commit(ctx, domain.OpImport, true, func(domain.Document) (domain.Document, string, error) {
		return imported, "", nil
	})
	if err == nil {
		c.session.Post(session.LevelSuccess, "data imported")
	}
	return res, err
}

// Reset wipes the local store and runs the startup sequence again.
// When the result asks for it, the caller should schedule AdoptRemote.
func (c *Coordinator) Reset(ctx context.Context) (BootstrapResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		c.log.Error("failed to clear local store", logger.Error(err))
		return BootstrapResult{}, err
	}
	c.log.Info("local store cleared")
	c.session.Post(session.LevelInfo, "local data cleared")

	return c.bootstrapLocked(ctx)
}
