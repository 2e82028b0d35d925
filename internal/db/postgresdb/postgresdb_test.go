package postgresdb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csherman177/1MERN/internal/db/storage"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

const migrationsDir = `../../../cmd/booksearch/migrations`

// newTestDB connects to the database pointed at by TEST_DATABASE_DSN.
// The tests are skipped when the variable is unset.
func newTestDB(t *testing.T) *PostgresDB {
	t.Helper()

	databaseDSN := os.Getenv("TEST_DATABASE_DSN")
	if databaseDSN == "" {
		t.Skip("TEST_DATABASE_DSN is not set")
	}

	db, err := New(context.Background(), databaseDSN, 10*time.Second, migrationsDir)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})

	return db
}

func TestUserRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	usr := &user.User{
		Username:     "pg-alice-" + time.Now().Format("150405.000000000"),
		Email:        time.Now().Format("150405.000000000") + "@x.com",
		PasswordHash: "hash",
	}
	userID, err := db.CreateUser(ctx, usr)
	require.NoError(t, err)

	_, err = db.CreateUser(ctx, &user.User{
		Username:     usr.Username,
		Email:        "other-" + usr.Email,
		PasswordHash: "hash",
	})
	assert.ErrorIs(t, err, storage.ErrConflict)

	found, err := db.FindUserByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, usr.Username, found.Username)
	assert.Empty(t, found.SavedBooks)

	book := models.Book{Title: "One", Authors: []string{"A. Writer"}, Description: "d"}
	_, err = db.CreateBook(ctx, &book)
	require.NoError(t, err)

	require.NoError(t, db.ReplaceUserSavedBooks(ctx, userID, []models.Book{book}))

	found, err = db.FindUserByID(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Len(t, found.SavedBooks, 1)
	assert.Equal(t, []string{"A. Writer"}, found.SavedBooks[0].Authors)
}

func TestFindUserAbsent(t *testing.T) {
	db := newTestDB(t)

	usr, err := db.FindUserByID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, usr)
}
