// Package user defines the user model used throughout the application,
// particularly for authentication and the saved-books collection.
package user

import "github.com/csherman177/1MERN/internal/models"

// User represents a registered account.
//
// PasswordHash holds the bcrypt hash of the password; the plaintext
// password is never persisted and the hash is never serialized into
// API responses.
type User struct {
	// ID is the unique identifier of the user, meaning a UUID.
	ID string `json:"id"`

	// Username is unique across all users.
	Username string `json:"username"`

	// Email is unique across all users.
	Email string `json:"email"`

	PasswordHash string `json:"-"`

	// SavedBooks is the ordered collection of books the user saved,
	// expanded to full book records.
	SavedBooks []models.Book `json:"savedBooks"`
}

// AuthPayload pairs a signed session token with the user it was
// issued for. It is returned by registration and login and is never
// persisted.
type AuthPayload struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
