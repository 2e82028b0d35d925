// Package models defines the entity shapes and the request/response
// structures exchanged over the HTTP API.
package models

// Book is a saved-book record. Books exist independently of the users
// who saved them; removing a book from a user's collection never
// deletes the book itself.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
}

// RegisterRequest is the body of the addUser mutation.
type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginRequest is the body of the login mutation.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SaveBookRequest is the body of the saveBook mutation.
type SaveBookRequest struct {
	Title       string   `json:"title" validate:"required"`
	Authors     []string `json:"authors" validate:"required,min=1,dive,required"`
	Description string   `json:"description"`
}

// RemoveBookResponse confirms a successful removeBook mutation.
type RemoveBookResponse struct {
	Message string `json:"message"`
}

// Storage backend kinds selectable through configuration.
const (
	StorageTypeUnknown = iota
	StorageTypePostgresql
	StorageTypeFile
	StorageTypeMemory
)
