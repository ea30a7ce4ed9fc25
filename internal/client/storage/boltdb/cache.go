package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/rsavin/bookdesk/internal/client/storage"
	"github.com/rsavin/bookdesk/internal/models"
)

const keyCachedState = "state"

// SaveCache stores the cache snapshot, stamping SavedAt with the current
// time so the hydrating side can enforce its TTL.
func (s *Storage) SaveCache(ctx context.Context, state *models.CachedState) error {
	snapshot := *state
	snapshot.SavedAt = time.Now()

	data, err := json.Marshal(&snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal cached state: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Put([]byte(keyCachedState), data); err != nil {
			return fmt.Errorf("failed to save cached state: %w", err)
		}

		return nil
	})
}

// LoadCache retrieves the last persisted cache snapshot.
// Returns storage.ErrCacheNotFound if nothing has been saved yet.
func (s *Storage) LoadCache(ctx context.Context) (*models.CachedState, error) {
	var state models.CachedState

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		data := bucket.Get([]byte(keyCachedState))
		if data == nil {
			return storage.ErrCacheNotFound
		}

		if err := json.Unmarshal(data, &state); err != nil {
			return fmt.Errorf("failed to unmarshal cached state: %w", err)
		}

		return nil
	})
	if err != nil {
		if err == storage.ErrCacheNotFound {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load cached state: %w", err)
	}

	return &state, nil
}

// ClearCache removes the persisted snapshot.
func (s *Storage) ClearCache(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketCache)
		if bucket == nil {
			return fmt.Errorf("cache bucket not found")
		}

		if err := bucket.Delete([]byte(keyCachedState)); err != nil {
			return fmt.Errorf("failed to clear cached state: %w", err)
		}

		return nil
	})
}
