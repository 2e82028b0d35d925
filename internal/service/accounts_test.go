package service

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/csherman177/1MERN/internal/auth"
	"github.com/csherman177/1MERN/internal/db/memorystorage"
	"github.com/csherman177/1MERN/internal/logger"
	"github.com/csherman177/1MERN/internal/mockstorage"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

var testSigningKey = []byte("test-signing-key")

func TestMain(m *testing.M) {
	if err := logger.Init("debug"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newAccountsService(t *testing.T) (*Accounts, *memorystorage.MemoryStorage) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	authn := auth.New(db, "auth_token", testSigningKey, time.Hour)

	return NewAccounts(db, authn), db
}

func userIDFromToken(t *testing.T, tokenString string) string {
	t.Helper()

	claims := &auth.Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(tok *jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	})
	require.NoError(t, err)

	return claims.UserID
}

func TestResolveUserRequiresAnIdentifier(t *testing.T) {
	accounts, _ := newAccountsService(t)

	_, err := accounts.ResolveUser(context.Background(), "", "")
	assert.ErrorIs(t, err, ErrNoIdentifier)
}

func TestResolveUserByIDAndByUsername(t *testing.T) {
	accounts, db := newAccountsService(t)
	ctx := context.Background()

	userID, err := db.CreateUser(ctx, &user.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	byID, err := accounts.ResolveUser(ctx, userID, "")
	require.NoError(t, err)
	require.NotNil(t, byID)
	assert.Equal(t, "alice", byID.Username)

	byUsername, err := accounts.ResolveUser(ctx, "", "alice")
	require.NoError(t, err)
	require.NotNil(t, byUsername)
	assert.Equal(t, userID, byUsername.ID)
}

func TestResolveUserIDTakesPrecedenceOverUsername(t *testing.T) {
	accounts, db := newAccountsService(t)
	ctx := context.Background()

	aliceID, err := db.CreateUser(ctx, &user.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	_, err = db.CreateUser(ctx, &user.User{Username: "bob", Email: "b@x.com"})
	require.NoError(t, err)

	usr, err := accounts.ResolveUser(ctx, aliceID, "bob")
	require.NoError(t, err)
	require.NotNil(t, usr)
	assert.Equal(t, "alice", usr.Username)
}

func TestResolveUserAbsentIsNotAnError(t *testing.T) {
	accounts, _ := newAccountsService(t)

	usr, err := accounts.ResolveUser(context.Background(), "", "nobody")
	require.NoError(t, err)
	assert.Nil(t, usr)
}

func TestResolveUserExpandsSavedBooks(t *testing.T) {
	accounts, db := newAccountsService(t)
	ctx := context.Background()

	userID, err := db.CreateUser(ctx, &user.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)

	book := models.Book{ID: "b1", Title: "One", Authors: []string{"A. Writer"}, Description: "d"}
	_, err = db.CreateBook(ctx, &book)
	require.NoError(t, err)
	require.NoError(t, db.ReplaceUserSavedBooks(ctx, userID, []models.Book{book}))

	usr, err := accounts.ResolveUser(ctx, userID, "")
	require.NoError(t, err)
	require.NotNil(t, usr)
	require.Len(t, usr.SavedBooks, 1)
	assert.Equal(t, "One", usr.SavedBooks[0].Title)
	assert.Equal(t, []string{"A. Writer"}, usr.SavedBooks[0].Authors)
}

func TestRegisterThenLogin(t *testing.T) {
	accounts, _ := newAccountsService(t)
	ctx := context.Background()

	registered, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)
	require.NotNil(t, registered.User)
	assert.Equal(t, "alice", registered.User.Username)
	assert.NotEmpty(t, registered.Token)

	loggedIn, err := accounts.Login(ctx, "a@x.com", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "alice", loggedIn.User.Username)

	assert.Equal(t,
		userIDFromToken(t, registered.Token),
		userIDFromToken(t, loggedIn.Token),
	)
}

func TestRegisterNeverStoresThePlaintextPassword(t *testing.T) {
	accounts, db := newAccountsService(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	usr, err := db.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, usr)
	assert.NotEmpty(t, usr.PasswordHash)
	assert.NotContains(t, usr.PasswordHash, "pw123")
}

func TestRegisterRejectsTakenUsernameOrEmail(t *testing.T) {
	accounts, _ := newAccountsService(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, "alice", "other@x.com", "pw123")
	assert.ErrorIs(t, err, ErrUserExists)

	_, err = accounts.Register(ctx, "bob", "a@x.com", "pw123")
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginFailureMessagesAreDistinct(t *testing.T) {
	accounts, _ := newAccountsService(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, "alice", "a@x.com", "pw123")
	require.NoError(t, err)

	_, err = accounts.Login(ctx, "nobody@x.com", "pw123")
	require.ErrorIs(t, err, ErrNoUserWithEmail)
	assert.Equal(t, "No user found with this email address", err.Error())

	_, err = accounts.Login(ctx, "a@x.com", "wrong")
	require.ErrorIs(t, err, ErrIncorrectCredentials)
	assert.Equal(t, "Incorrect credentials", err.Error())
}

func TestLoginPropagatesStorageFailure(t *testing.T) {
	db := &mockstorage.StorageMock{}
	db.On("FindUserByEmail", mock.Anything, "a@x.com").
		Return(nil, errors.New("connection lost"))

	accounts := NewAccounts(db, auth.New(db, "auth_token", testSigningKey, time.Hour))

	_, err := accounts.Login(context.Background(), "a@x.com", "pw123")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoUserWithEmail)
	db.AssertExpectations(t)
}
