// Package storage declares the persistence contract the application
// core is written against. Implementations live in sibling packages;
// tests use the in-memory one.
package storage

import (
	"context"
	"errors"

	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

// ErrConflict is returned by CreateUser when the username or email
// uniqueness constraint is violated.
var ErrConflict = errors.New("username or email already taken")

// Storage is the document-store capability set the core logic needs.
//
// All Find* methods return (nil, nil) when no record matches; callers
// must handle the absent case explicitly. Users are always returned
// with SavedBooks expanded to full book records in stored order.
type Storage interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)

	FindUserByID(ctx context.Context, userID string) (*user.User, error)

	FindUserByUsername(ctx context.Context, username string) (*user.User, error)

	FindUserByEmail(ctx context.Context, email string) (*user.User, error)

	CreateBook(ctx context.Context, book *models.Book) (string, error)

	// ReplaceUserSavedBooks persists the given ordered collection as the
	// user's saved books, overwriting the previous one.
	ReplaceUserSavedBooks(ctx context.Context, userID string, books []models.Book) error

	Ping(ctx context.Context) error

	Close() error
}
