// Package cache keeps recently loaded runs by target host so a viewer can
// replay a trace without resubmitting its hops.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/sagoresarker/cabletrace/internal/models"
)

var ErrNotFound = errors.New("run not found in cache")

// Store caches runs by target.
type Store interface {
	Get(ctx context.Context, target string) (models.Run, error)
	Set(ctx context.Context, target string, run models.Run) error
	Close() error
}

// Key normalizes a target host into a cache key.
func Key(target string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(target)), ".")
}

// MemoryStore is an in-process Store with per-entry expiry.
type MemoryStore struct {
	items *gocache.Cache
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: gocache.New(ttl, time.Minute),
	}
}

func (c *MemoryStore) Get(_ context.Context, target string) (models.Run, error) {
	v, ok := c.items.Get(Key(target))
	if !ok {
		return models.Run{}, ErrNotFound
	}
	return v.(models.Run), nil
}

func (c *MemoryStore) Set(_ context.Context, target string, run models.Run) error {
	c.items.Set(Key(target), run, gocache.DefaultExpiration)
	return nil
}

func (c *MemoryStore) Len() int {
	return c.items.ItemCount()
}

func (c *MemoryStore) Close() error {
	c.items.Flush()
	return nil
}
