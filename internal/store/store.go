// Package store persists the catalog document in a single named key-value slot.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Structurer/nav-front-build/internal/domain"
)

const (
	// SlotName is the slot holding the serialized catalog document.
	SlotName = "nav_data"
	// LegacySlotName is read when SlotName is absent. It is never written.
	LegacySlotName = "nav_data_base64"
)

// Slot is a minimal key-value backend.
type Slot interface {
	// Get returns ok=false when the slot does not exist.
	Get(ctx context.Context, name string) (data []byte, ok bool, err error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, names ...string) error
	Ping(ctx context.Context) error
	Close() error
}

// CatalogStore reads and writes the canonical catalog document.
// Every document crossing this boundary is normalized.
type CatalogStore struct {
	slot Slot
}

// New creates a catalog store on top of a slot backend.
func New(slot Slot) *CatalogStore {
	return &CatalogStore{slot: slot}
}

// Load returns the stored document, or an empty document when nothing is stored.
// Corrupt content yields a shaped document together with a *domain.ShapeError.
func (s *CatalogStore) Load(ctx context.Context) (domain.Document, error) {
	data, ok, err := s.slot.Get(ctx, SlotName)
	if err != nil {
		return domain.Empty(), &domain.StorageError{Op: "read", Err: err}
	}
	if !ok {
		data, ok, err = s.slot.Get(ctx, LegacySlotName)
		if err != nil {
			return domain.Empty(), &domain.StorageError{Op: "read", Err: err}
		}
		if !ok {
			return domain.Empty(), nil
		}
	}

	doc, err := domain.DecodeDocument(data, "local")
	return domain.Canonical(doc), err
}

// Save normalizes doc and writes it to the primary slot.
func (s *CatalogStore) Save(ctx context.Context, doc domain.Document) error {
	data, err := json.Marshal(domain.Canonical(doc))
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}
	if err := s.slot.Put(ctx, SlotName, data); err != nil {
		return &domain.StorageError{Op: "write", Err: err}
	}
	return nil
}

// Clear removes the stored document, including the legacy slot.
func (s *CatalogStore) Clear(ctx context.Context) error {
	if err := s.slot.Delete(ctx, SlotName, LegacySlotName); err != nil {
		return &domain.StorageError{Op: "clear", Err: err}
	}
	return nil
}

// Ping checks that the backend is reachable.
func (s *CatalogStore) Ping(ctx context.Context) error {
	if err := s.slot.Ping(ctx); err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	return nil
}

// Close releases the backend.
func (s *CatalogStore) Close() error {
	return s.slot.Close()
}
