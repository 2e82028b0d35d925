// Package mockstorage provides a testify-based mock implementation
// of the storage interface. It is used to simulate storage faults in
// unit tests of the service layer and HTTP handlers.
package mockstorage

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

// StorageMock is a testify mock that implements the storage interface.
type StorageMock struct {
	mock.Mock
}

// CreateUser mocks storing a new user.
func (m *StorageMock) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	args := m.Called(ctx, usr)
	return args.String(0), args.Error(1)
}

// FindUserByID mocks looking up a user by id.
func (m *StorageMock) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	args := m.Called(ctx, userID)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// FindUserByUsername mocks looking up a user by username.
func (m *StorageMock) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// FindUserByEmail mocks looking up a user by email.
func (m *StorageMock) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	usr, _ := args.Get(0).(*user.User)
	return usr, args.Error(1)
}

// CreateBook mocks storing a new book.
func (m *StorageMock) CreateBook(ctx context.Context, book *models.Book) (string, error) {
	args := m.Called(ctx, book)
	return args.String(0), args.Error(1)
}

// ReplaceUserSavedBooks mocks persisting a user's saved-books collection.
func (m *StorageMock) ReplaceUserSavedBooks(ctx context.Context, userID string, books []models.Book) error {
	args := m.Called(ctx, userID, books)
	return args.Error(0)
}

// Ping mocks a storage health check.
func (m *StorageMock) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// Close mocks releasing the storage resources.
func (m *StorageMock) Close() error {
	args := m.Called()
	return args.Error(0)
}
