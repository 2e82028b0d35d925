// Package router wires the HTTP surface: route registration, request
// decoding/validation and the mapping of core errors to status codes.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/csherman177/1MERN/internal/auth"
	"github.com/csherman177/1MERN/internal/authenticator"
	"github.com/csherman177/1MERN/internal/gzippedhttp"
	"github.com/csherman177/1MERN/internal/logger"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/service"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type errorResponse struct {
	Message string `json:"message"`
}

// Router holds the handlers' dependencies.
type Router struct {
	accounts *service.Accounts
	books    *service.Books
	db       pinger
	validate *validator.Validate
}

// New builds the chi router with logging, gzip and authentication
// middleware applied and all API routes registered.
func New(
	accounts *service.Accounts,
	books *service.Books,
	db pinger,
	authn authenticator.Authenticator,
) *chi.Mux {
	handlers := &Router{
		accounts: accounts,
		books:    books,
		db:       db,
		validate: validator.New(),
	}

	router := chi.NewRouter()
	router.Use(logger.WithLoggingHTTPMiddleware)
	router.Use(gzippedhttp.Middleware)
	router.Use(authn.AuthenticateUser)

	router.Get(`/ping`, handlers.GetPing)
	router.Get(`/api/user`, handlers.GetUser)
	router.Post(`/api/users`, handlers.PostAddUser)
	router.Post(`/api/login`, handlers.PostLogin)
	router.Post(`/api/books`, handlers.PostSaveBook)
	router.Delete(`/api/books/{bookId}`, handlers.DeleteRemoveBook)

	return router
}

// GetPing reports storage health.
func (h *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := h.db.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `h.db.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}
	response.WriteHeader(http.StatusOK)
}

// GetUser resolves a user by id or username (id takes precedence).
// An absent user yields 204 No Content, not an error.
func (h *Router) GetUser(response http.ResponseWriter, request *http.Request) {
	id := request.URL.Query().Get("id")
	username := request.URL.Query().Get("username")

	usr, err := h.accounts.ResolveUser(request.Context(), id, username)
	switch {
	case errors.Is(err, service.ErrNoIdentifier):
		writeError(response, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `h.accounts.ResolveUser()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	case usr == nil:
		response.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(response, http.StatusOK, usr)
}

// PostAddUser registers a new user and returns the auth payload.
func (h *Router) PostAddUser(response http.ResponseWriter, request *http.Request) {
	requestBody := models.RegisterRequest{}
	if !h.decodeAndValidate(response, request, &requestBody) {
		return
	}

	payload, err := h.accounts.Register(
		request.Context(),
		requestBody.Username,
		requestBody.Email,
		requestBody.Password,
	)
	switch {
	case errors.Is(err, service.ErrUserExists):
		writeError(response, http.StatusConflict, err.Error())
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `h.accounts.Register()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, payload)
}

// PostLogin verifies credentials and returns the auth payload.
func (h *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	requestBody := models.LoginRequest{}
	if !h.decodeAndValidate(response, request, &requestBody) {
		return
	}

	payload, err := h.accounts.Login(request.Context(), requestBody.Email, requestBody.Password)
	switch {
	case errors.Is(err, service.ErrNoUserWithEmail), errors.Is(err, service.ErrIncorrectCredentials):
		writeError(response, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `h.accounts.Login()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusOK, payload)
}

// PostSaveBook creates a book on behalf of the authenticated user.
func (h *Router) PostSaveBook(response http.ResponseWriter, request *http.Request) {
	requestBody := models.SaveBookRequest{}
	if !h.decodeAndValidate(response, request, &requestBody) {
		return
	}

	userID, _ := auth.UserIDFromContext(request.Context())

	book, err := h.books.SaveBook(
		request.Context(),
		userID,
		requestBody.Title,
		requestBody.Authors,
		requestBody.Description,
	)
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		writeError(response, http.StatusUnauthorized, err.Error())
		return
	case err != nil:
		logger.Log.Debugln("Error calling the `h.books.SaveBook()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	writeJSON(response, http.StatusCreated, book)
}

// DeleteRemoveBook removes one entry from the authenticated user's
// saved-books collection.
func (h *Router) DeleteRemoveBook(response http.ResponseWriter, request *http.Request) {
	bookID := chi.URLParam(request, "bookId")
	userID, _ := auth.UserIDFromContext(request.Context())

	message, err := h.books.RemoveBook(request.Context(), userID, bookID)
	switch {
	case errors.Is(err, service.ErrNotLoggedIn):
		writeError(response, http.StatusUnauthorized, err.Error())
		return
	case errors.Is(err, service.ErrBookNotFound):
		writeError(response, http.StatusNotFound, err.Error())
		return
	case err != nil:
		writeError(response, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(response, http.StatusOK, models.RemoveBookResponse{Message: message})
}

func (h *Router) decodeAndValidate(
	response http.ResponseWriter,
	request *http.Request,
	requestBody interface{},
) bool {
	if err := json.NewDecoder(request.Body).Decode(requestBody); err != nil {
		writeError(response, http.StatusBadRequest, "invalid request body")
		return false
	}

	if err := h.validate.Struct(requestBody); err != nil {
		writeError(response, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func writeJSON(response http.ResponseWriter, statusCode int, payload interface{}) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error encoding the response body: ", zap.Error(err))
	}
}

func writeError(response http.ResponseWriter, statusCode int, message string) {
	writeJSON(response, statusCode, errorResponse{Message: message})
}
