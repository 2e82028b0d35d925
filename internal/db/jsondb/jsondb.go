// Package jsondb provides a file-backed implementation of the storage
// interface. The whole dataset is held in memory and flushed to a JSON
// file on Close.
package jsondb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/csherman177/1MERN/internal/db/storage"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

// UserRecord is the persisted form of a user. Saved books are kept
// normalized as an ordered list of book ids in CacheStruct.
type UserRecord struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// CacheStruct is the in-memory dataset mirrored to the JSON file.
type CacheStruct struct {
	Users          map[string]*UserRecord
	Books          map[string]models.Book
	UserSavedBooks map[string][]string
}

// JSONDB is a JSON-file-backed storage implementation.
type JSONDB struct {
	fileName string
	Cache    CacheStruct

	mu sync.RWMutex
}

func emptyCache() CacheStruct {
	return CacheStruct{
		Users:          map[string]*UserRecord{},
		Books:          map[string]models.Book{},
		UserSavedBooks: map[string][]string{},
	}
}

func initDBFile(fileName string) error {
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{
	"Users": {},
	"Books": {},
	"UserSavedBooks": {}
}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, cache interface{}) error {
	jsonData, err := json.MarshalIndent(cache, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %w", err)
	}

	file, err := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("error opening file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("error writing to file: %w", err)
	}

	return nil
}

func parseJSONFile(fileName string, cache *CacheStruct) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	return json.NewDecoder(file).Decode(cache)
}

// New opens (or creates) the JSON database file and loads it into memory.
func New(fileName string) (*JSONDB, error) {
	db := &JSONDB{
		fileName: fileName,
		Cache:    emptyCache(),
	}

	err := parseJSONFile(db.fileName, &db.Cache)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := initDBFile(fileName); err != nil {
			return nil, err
		}
		if err := parseJSONFile(db.fileName, &db.Cache); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// CreateUser stores a new user, enforcing username and email uniqueness.
// It assigns the user a fresh id and returns it.
func (db *JSONDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.Cache.Users {
		if existing.Username == usr.Username || existing.Email == usr.Email {
			return "", storage.ErrConflict
		}
	}

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}

	db.Cache.Users[usr.ID] = &UserRecord{
		ID:           usr.ID,
		Username:     usr.Username,
		Email:        usr.Email,
		PasswordHash: usr.PasswordHash,
	}
	db.Cache.UserSavedBooks[usr.ID] = []string{}

	return usr.ID, nil
}

// FindUserByID returns the user with the given id, or (nil, nil) when
// there is no such user.
func (db *JSONDB) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	record, found := db.Cache.Users[userID]
	if !found {
		return nil, nil
	}

	return db.assembleUser(record), nil
}

// FindUserByUsername returns the user with the given username, or
// (nil, nil) when there is no such user.
func (db *JSONDB) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.assembleUser(db.findRecord(func(r *UserRecord) bool {
		return r.Username == username
	})), nil
}

// FindUserByEmail returns the user with the given email, or (nil, nil)
// when there is no such user.
func (db *JSONDB) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.assembleUser(db.findRecord(func(r *UserRecord) bool {
		return r.Email == email
	})), nil
}

// CreateBook stores a new book and returns its assigned id.
func (db *JSONDB) CreateBook(ctx context.Context, book *models.Book) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if book.ID == "" {
		book.ID = uuid.New().String()
	}
	db.Cache.Books[book.ID] = *book

	return book.ID, nil
}

// ReplaceUserSavedBooks overwrites the user's saved-books collection
// with the given ordered list.
func (db *JSONDB) ReplaceUserSavedBooks(ctx context.Context, userID string, books []models.Book) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	bookIDs := make([]string, 0, len(books))
	for _, book := range books {
		if _, known := db.Cache.Books[book.ID]; !known {
			db.Cache.Books[book.ID] = book
		}
		bookIDs = append(bookIDs, book.ID)
	}
	db.Cache.UserSavedBooks[userID] = bookIDs

	return nil
}

// Ping reports storage health; the in-memory cache is always reachable.
func (db *JSONDB) Ping(ctx context.Context) error {
	return nil
}

// Close flushes the in-memory dataset to the JSON file.
func (db *JSONDB) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return writeToJSONFile(db.fileName, db.Cache)
}

func (db *JSONDB) findRecord(matches func(*UserRecord) bool) *UserRecord {
	for _, record := range db.Cache.Users {
		if matches(record) {
			return record
		}
	}

	return nil
}

func (db *JSONDB) assembleUser(record *UserRecord) *user.User {
	if record == nil {
		return nil
	}

	savedBooks := make([]models.Book, 0, len(db.Cache.UserSavedBooks[record.ID]))
	for _, bookID := range db.Cache.UserSavedBooks[record.ID] {
		if book, found := db.Cache.Books[bookID]; found {
			savedBooks = append(savedBooks, book)
		}
	}

	return &user.User{
		ID:           record.ID,
		Username:     record.Username,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		SavedBooks:   savedBooks,
	}
}
