package storage

import "errors"

// Common client storage errors
var (
	// ErrCacheNotFound indicates that no persisted cache snapshot exists
	ErrCacheNotFound = errors.New("cached state not found")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
