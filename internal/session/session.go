// Package session holds the single authoritative in-memory catalog.
package session

import (
	"sync"
	"time"

	"github.com/Structurer/nav-front-build/internal/domain"
)

// Source tells where the displayed document came from.
type Source string

const (
	SourceEmpty  Source = "empty"
	SourceLocal  Source = "local"
	SourceSeed   Source = "seed"
	SourceRemote Source = "remote"
)

// Snapshot is a consistent, detached view of the session.
type Snapshot struct {
	Doc       domain.Document
	Revision  uint64
	SeedMode  bool
	Source    Source
	UpdatedAt time.Time
}

// Session is safe for concurrent use. Every replacement of the document
// bumps the revision, which remote overwrites use as a compare-and-swap token.
type Session struct {
	mu        sync.RWMutex
	doc       domain.Document
	revision  uint64
	seedMode  bool
	source    Source
	updatedAt time.Time
	now       func() time.Time

	notices *noticeLog
}

// New returns an empty session.
func New() *Session {
	return &Session{
		doc:     domain.Empty(),
		source:  SourceEmpty,
		now:     time.Now,
		notices: newNoticeLog(defaultNoticeCapacity),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Snapshot{
		Doc:       s.doc.Clone(),
		Revision:  s.revision,
		SeedMode:  s.seedMode,
		Source:    s.source,
		UpdatedAt: s.updatedAt,
	}
}

// Revision returns the current revision.
func (s *Session) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.revision
}

// SeedMode reports whether the read-only seed document is displayed.
func (s *Session) SeedMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.seedMode
}

// Lookup returns the displayed entry with the given id.
func (s *Session) Lookup(id string) (domain.IconEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.Find(id)
}

// Replace installs doc unconditionally, leaves seed mode and returns the new revision.
func (s *Session) Replace(doc domain.Document, src Source) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(doc, src, false)
	return s.revision
}

// ShowSeed displays doc in read-only seed mode.
func (s *Session) ShowSeed(doc domain.Document) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.install(doc, SourceSeed, true)
	return s.revision
}

// ReplaceIf installs doc only when the revision still equals expected.
// It reports whether the document was installed.
func (s *Session) ReplaceIf(expected uint64, doc domain.Document, src Source) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.revision != expected {
		return s.revision, false
	}
	s.install(doc, src, false)
	return s.revision, true
}

func (s *Session) install(doc domain.Document, src Source, seed bool) {
	s.doc = doc.Clone()
	s.source = src
	s.seedMode = seed
	s.revision++
	s.updatedAt = s.now()
}

// Post records a user-facing notice.
func (s *Session) Post(level Level, message string) Notice {
	return s.notices.add(level, message, s.now())
}

// Notices returns notices with a sequence number greater than after, oldest first.
func (s *Session) Notices(after uint64) []Notice {
	return s.notices.since(after)
}
