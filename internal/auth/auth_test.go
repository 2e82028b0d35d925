package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csherman177/1MERN/internal/db/memorystorage"
	"github.com/csherman177/1MERN/internal/logger"
	"github.com/csherman177/1MERN/internal/user"
)

var testSigningKey = []byte("test-signing-key")

func TestMain(m *testing.M) {
	if err := logger.Init("debug"); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func newTestAuth(t *testing.T) (*Auth, *user.User) {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	usr := &user.User{Username: "alice", Email: "a@x.com"}
	_, err = db.CreateUser(context.Background(), usr)
	require.NoError(t, err)

	return New(db, "auth_token", testSigningKey, time.Hour), usr
}

func identityProbe(gotUserID *string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := UserIDFromContext(r.Context())
		*gotUserID = userID
		w.WriteHeader(http.StatusOK)
	})
}

func TestBuildTokenCarriesIdentityClaims(t *testing.T) {
	authn, usr := newTestAuth(t)

	tokenString, err := authn.BuildToken(usr)
	require.NoError(t, err)

	claims := &Claims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return testSigningKey, nil
	})
	require.NoError(t, err)

	assert.Equal(t, usr.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "a@x.com", claims.Email)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestAuthenticateUserFromBearerHeader(t *testing.T) {
	authn, usr := newTestAuth(t)

	tokenString, err := authn.BuildToken(usr)
	require.NoError(t, err)

	var gotUserID string
	handler := authn.AuthenticateUser(identityProbe(&gotUserID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+tokenString)
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, usr.ID, gotUserID)
}

func TestAuthenticateUserFromCookie(t *testing.T) {
	authn, usr := newTestAuth(t)

	tokenString, err := authn.BuildToken(usr)
	require.NoError(t, err)

	var gotUserID string
	handler := authn.AuthenticateUser(identityProbe(&gotUserID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.AddCookie(&http.Cookie{Name: "auth_token", Value: tokenString})
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Equal(t, usr.ID, gotUserID)
}

func TestAuthenticateUserPassesAnonymousThrough(t *testing.T) {
	authn, _ := newTestAuth(t)

	var gotUserID string
	handler := authn.AuthenticateUser(identityProbe(&gotUserID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Empty(t, gotUserID)
}

func TestAuthenticateUserIgnoresGarbageToken(t *testing.T) {
	authn, _ := newTestAuth(t)

	var gotUserID string
	handler := authn.AuthenticateUser(identityProbe(&gotUserID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer not-a-token")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Empty(t, gotUserID)
}

func TestAuthenticateUserIgnoresTokenOfUnknownUser(t *testing.T) {
	authn, _ := newTestAuth(t)

	tokenString, err := authn.BuildToken(&user.User{ID: "ghost", Username: "ghost", Email: "g@x.com"})
	require.NoError(t, err)

	var gotUserID string
	handler := authn.AuthenticateUser(identityProbe(&gotUserID))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("Authorization", "Bearer "+tokenString)
	handler.ServeHTTP(httptest.NewRecorder(), request)

	assert.Empty(t, gotUserID)
}
