package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/csherman177/1MERN/internal/logger"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

type bookCreator interface {
	CreateBook(ctx context.Context, book *models.Book) (string, error)
}

type userLoader interface {
	FindUserByID(ctx context.Context, userID string) (*user.User, error)
}

type savedBooksKeeper interface {
	ReplaceUserSavedBooks(ctx context.Context, userID string, books []models.Book) error
}

type booksStorage interface {
	bookCreator
	userLoader
	savedBooksKeeper
}

// ErrNotLoggedIn is returned when a mutation requires an authenticated
// session and the request is anonymous. The text is part of the
// observable contract.
var ErrNotLoggedIn = errors.New("You need to be logged in!")

// ErrBookNotFound is returned by RemoveBook when the targeted book is
// not in the user's saved collection.
var ErrBookNotFound = errors.New("Book not found in the savedBooks.")

// ErrRemoveBookFailed masks any storage fault hit during RemoveBook;
// the original cause is logged but not surfaced to the caller.
var ErrRemoveBookFailed = errors.New("Failed to remove the book from savedBooks.")

// BookRemovedMessage confirms a successful RemoveBook.
const BookRemovedMessage = "Book removed successfully."

// Books mutates users' saved-books collections.
type Books struct {
	db booksStorage
}

// NewBooks wires the collection mutator to its storage.
func NewBooks(db booksStorage) *Books {
	return &Books{db: db}
}

// SaveBook creates a new book record on behalf of the authenticated
// user. An empty userID means the session is anonymous and the call is
// rejected.
//
// The created book is not appended to the acting user's saved-books
// collection; that linkage is left to the caller.
func (s *Books) SaveBook(
	ctx context.Context,
	userID string,
	title string,
	authors []string,
	description string,
) (*models.Book, error) {
	if userID == "" {
		return nil, ErrNotLoggedIn
	}

	book := &models.Book{
		Title:       title,
		Authors:     authors,
		Description: description,
	}

	if _, err := s.db.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("failed to create the book: %w", err)
	}

	return book, nil
}

// RemoveBook removes the first saved-books entry whose book id equals
// bookID from the acting user's collection and persists the result.
// Duplicate entries with the same id are removed one at a time.
//
// Storage faults in the load-search-save sequence are deliberately
// reported as the uniform ErrRemoveBookFailed; only the not-found case
// is distinguished.
func (s *Books) RemoveBook(ctx context.Context, userID, bookID string) (string, error) {
	if userID == "" {
		return "", ErrNotLoggedIn
	}

	usr, err := s.db.FindUserByID(ctx, userID)
	if err != nil || usr == nil {
		logger.Log.Debugln("Error calling the `s.db.FindUserByID()`: ", zap.Error(err))
		return "", ErrRemoveBookFailed
	}

	bookIndex := -1
	for i, saved := range usr.SavedBooks {
		if saved.ID == bookID {
			bookIndex = i
			break
		}
	}
	if bookIndex == -1 {
		return "", ErrBookNotFound
	}

	remaining := make([]models.Book, 0, len(usr.SavedBooks)-1)
	remaining = append(remaining, usr.SavedBooks[:bookIndex]...)
	remaining = append(remaining, usr.SavedBooks[bookIndex+1:]...)

	if err := s.db.ReplaceUserSavedBooks(ctx, userID, remaining); err != nil {
		logger.Log.Debugln("Error calling the `s.db.ReplaceUserSavedBooks()`: ", zap.Error(err))
		return "", ErrRemoveBookFailed
	}

	return BookRemovedMessage, nil
}
