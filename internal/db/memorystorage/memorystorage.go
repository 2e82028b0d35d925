// Package memorystorage provides a purely in-memory storage
// implementation. It backs the default (no DSN, no file) configuration
// and serves as the fake in tests.
package memorystorage

import (
	"context"

	"github.com/csherman177/1MERN/internal/db/jsondb"
	"github.com/csherman177/1MERN/internal/models"
)

// MemoryStorage reuses the jsondb cache without a backing file.
type MemoryStorage struct {
	*jsondb.JSONDB
}

// New returns an empty in-memory storage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		JSONDB: &jsondb.JSONDB{
			Cache: jsondb.CacheStruct{
				Users:          map[string]*jsondb.UserRecord{},
				Books:          map[string]models.Book{},
				UserSavedBooks: map[string][]string{},
			},
		},
	}, nil
}

// Close is a no-op; there is nothing to flush.
func (theStorage *MemoryStorage) Close() error {
	return nil
}

// Ping reports storage health; memory is always reachable.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}
