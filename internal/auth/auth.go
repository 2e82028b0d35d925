// Package auth provides JWT issuance plus middleware that resolves the
// per-request identity. It supports cookie-based or Authorization
// header-based token parsing.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"

	"github.com/csherman177/1MERN/internal/logger"
	"github.com/csherman177/1MERN/internal/user"
)

type userKeeper interface {
	FindUserByID(ctx context.Context, userID string) (*user.User, error)
}

// Auth issues signed session tokens and authenticates incoming requests.
type Auth struct {
	// db is the interface to the user data storage.
	db userKeeper

	// authCookieName is the name of the cookie used to store the JWT.
	authCookieName string

	// tokenSigningSecretKey is the key used to sign JWTs.
	tokenSigningSecretKey []byte

	// tokenTTL bounds the validity of issued tokens.
	tokenTTL time.Duration
}

// Claims represents the JWT claims used by the system.
// It embeds standard JWT claims and adds the identity of the subject.
type Claims struct {
	jwt.RegisteredClaims
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ContextKey is a custom type for storing values in context to avoid collisions.
type ContextKey string

// UserIDKey is the context key used to store and retrieve the authenticated user's ID.
const UserIDKey ContextKey = "userID"

// New creates a new Auth handler with the given user data access layer,
// cookie name, JWT signing secret and token lifetime.
func New(
	db userKeeper,
	authCookieName string,
	tokenSigningSecretKey []byte,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		db:                    db,
		authCookieName:        authCookieName,
		tokenSigningSecretKey: tokenSigningSecretKey,
		tokenTTL:              tokenTTL,
	}
}

// BuildToken signs a session token carrying the user's id, username and
// email, valid for the configured lifetime.
func (a *Auth) BuildToken(usr *user.User) (string, error) {
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(a.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID:   usr.ID,
		Username: usr.Username,
		Email:    usr.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(a.tokenSigningSecretKey)
}

// AuthenticateUser is an HTTP middleware that resolves the session
// identity from a JWT found in the Authorization header or cookies.
// Requests without a valid token pass through as anonymous; the
// operations themselves decide whether a login is required.
func (a *Auth) AuthenticateUser(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		userID := a.getUserIDFromAuthorizationHeaderOrCookie(request)
		if userID == "" {
			h.ServeHTTP(response, request)
			return
		}

		usr, err := a.db.FindUserByID(request.Context(), userID)
		if err != nil {
			logger.Log.Debugln("Error calling the `a.db.FindUserByID()`: ", zap.Error(err))
			response.WriteHeader(http.StatusInternalServerError)
			return
		}
		if usr == nil {
			h.ServeHTTP(response, request)
			return
		}

		ctx := context.WithValue(request.Context(), UserIDKey, usr.ID)
		h.ServeHTTP(response, request.WithContext(ctx))
	}

	return http.HandlerFunc(middleware)
}

// UserIDFromContext extracts the authenticated user's id from a request
// context. The second return value is false for anonymous requests.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

func (a *Auth) getTokenStringFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := strings.TrimPrefix(request.Header.Get("Authorization"), "Bearer ")
	if tokenString != "" {
		return tokenString
	}
	cookie, err := request.Cookie(a.authCookieName)
	if err == nil {
		tokenString = cookie.Value
	}

	return tokenString
}

func (a *Auth) getUserIDFromAuthorizationHeaderOrCookie(request *http.Request) string {
	tokenString := a.getTokenStringFromAuthorizationHeaderOrCookie(request)
	if tokenString == "" {
		return ""
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return a.tokenSigningSecretKey, nil
		},
	)
	if err != nil || !token.Valid {
		return ""
	}

	return claims.UserID
}
