// Package service implements the application core: the account gateway
// (lookup, registration, login) and the saved-books collection mutator.
// Storage is consumed through narrow capability interfaces so the logic
// is testable against the in-memory backend or a mock.
package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/csherman177/1MERN/internal/db/storage"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

type userFinder interface {
	FindUserByID(ctx context.Context, userID string) (*user.User, error)
	FindUserByUsername(ctx context.Context, username string) (*user.User, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, error)
}

type userCreator interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
}

type accountsStorage interface {
	userFinder
	userCreator
}

type tokenIssuer interface {
	BuildToken(usr *user.User) (string, error)
}

// ErrNoIdentifier is returned by ResolveUser when the caller supplied
// neither an id nor a username.
var ErrNoIdentifier = errors.New("no matching identifier")

// ErrUserExists is returned by Register when the username or email is
// already taken.
var ErrUserExists = errors.New("username or email already taken")

// ErrNoUserWithEmail is returned by Login when no account matches the
// given email. The text is part of the observable contract.
var ErrNoUserWithEmail = errors.New("No user found with this email address")

// ErrIncorrectCredentials is returned by Login when the password does
// not match. The text is part of the observable contract.
var ErrIncorrectCredentials = errors.New("Incorrect credentials")

// Accounts resolves identities, registers users and verifies credentials.
type Accounts struct {
	db     accountsStorage
	tokens tokenIssuer
}

// NewAccounts wires the account gateway to its storage and token issuer.
func NewAccounts(db accountsStorage, tokens tokenIssuer) *Accounts {
	return &Accounts{
		db:     db,
		tokens: tokens,
	}
}

// ResolveUser returns the user matching the given id or username, the id
// taking precedence when both are supplied. When no record matches it
// returns (nil, nil); callers must handle the absent user explicitly.
func (s *Accounts) ResolveUser(ctx context.Context, id, username string) (*user.User, error) {
	if id != "" {
		return s.db.FindUserByID(ctx, id)
	}
	if username != "" {
		return s.db.FindUserByUsername(ctx, username)
	}

	return nil, ErrNoIdentifier
}

// Register creates a new account with the password stored only as a
// bcrypt hash and returns a signed session token paired with the user.
// Username and email uniqueness is delegated to the store's constraint.
func (s *Accounts) Register(ctx context.Context, username, email, password string) (*user.AuthPayload, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash the password: %w", err)
	}

	usr := &user.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(passwordHash),
		SavedBooks:   []models.Book{},
	}

	if _, err := s.db.CreateUser(ctx, usr); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create the user: %w", err)
	}

	token, err := s.tokens.BuildToken(usr)
	if err != nil {
		return nil, fmt.Errorf("failed to sign the token: %w", err)
	}

	return &user.AuthPayload{Token: token, User: usr}, nil
}

// Login verifies the email/password pair and returns a signed session
// token paired with the user. The two failure modes carry deliberately
// distinct messages.
func (s *Accounts) Login(ctx context.Context, email, password string) (*user.AuthPayload, error) {
	usr, err := s.db.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find the user by email: %w", err)
	}
	if usr == nil {
		return nil, ErrNoUserWithEmail
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, ErrIncorrectCredentials
	}

	token, err := s.tokens.BuildToken(usr)
	if err != nil {
		return nil, fmt.Errorf("failed to sign the token: %w", err)
	}

	return &user.AuthPayload{Token: token, User: usr}, nil
}
