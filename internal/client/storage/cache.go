package storage

import (
	"context"

	"github.com/rsavin/bookdesk/internal/models"
)

//go:generate moq -out cache_mock.go . CacheStorage

// CacheStorage defines interface for the short-lived persisted cache copy.
// The sync client writes it opportunistically after cache mutations and
// hydrates from it on startup when the copy is fresh enough.
type CacheStorage interface {
	// SaveCache stores the snapshot, stamping SavedAt.
	SaveCache(ctx context.Context, state *models.CachedState) error

	// LoadCache retrieves the last persisted snapshot.
	// Returns ErrCacheNotFound if nothing has been saved.
	LoadCache(ctx context.Context) (*models.CachedState, error)

	// ClearCache removes the persisted snapshot.
	ClearCache(ctx context.Context) error
}
