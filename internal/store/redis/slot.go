package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Slot stores catalog slots as plain Redis strings without TTL
type Slot struct {
	client *redis.Client
}

// NewSlot creates a Redis-backed slot
func NewSlot(client *redis.Client) *Slot {
	return &Slot{
		client: client,
	}
}

// Get retrieves a slot value, ok=false on a missing key
func (s *Slot) Get(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, SlotKey(name)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get slot %s: %w", name, err)
	}
	return data, true, nil
}

// Put stores a slot value
func (s *Slot) Put(ctx context.Context, name string, data []byte) error {
	if err := s.client.Set(ctx, SlotKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save slot %s: %w", name, err)
	}
	return nil
}

// Delete removes slots in a single round trip
func (s *Slot) Delete(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	pipe := s.client.Pipeline()
	for _, name := range names {
		pipe.Del(ctx, SlotKey(name))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete slots: %w", err)
	}
	return nil
}

// Ping checks the connection
func (s *Slot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *Slot) Close() error {
	return s.client.Close()
}
