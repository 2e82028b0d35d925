// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting users, books and users' saved-books
// collections. Schema migrations are applied with goose on startup.
package postgresdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"
	"github.com/thoas/go-funk"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/csherman177/1MERN/internal/db/storage"
	"github.com/csherman177/1MERN/internal/models"
	"github.com/csherman177/1MERN/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed implementation of the storage interface.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// New establishes a connection to the PostgreSQL database,
// runs schema migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
) (*PostgresDB, error) {
	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

func (db *PostgresDB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, db.connectionTimeout)
}

// CreateUser inserts a new user. A violation of the username or email
// uniqueness constraint is reported as storage.ErrConflict.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}

	_, err := db.database.ExecContext(
		ctx,
		`INSERT INTO users (id, username, email, password_hash) VALUES ($1, $2, $3, $4)`,
		usr.ID,
		usr.Username,
		usr.Email,
		usr.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", storage.ErrConflict
		}
		return "", err
	}

	return usr.ID, nil
}

// FindUserByID returns the user with the given id with the saved-books
// collection expanded, or (nil, nil) when there is no such user.
func (db *PostgresDB) FindUserByID(ctx context.Context, userID string) (*user.User, error) {
	return db.findUserBy(ctx, `id = $1`, userID)
}

// FindUserByUsername returns the user with the given username, or (nil, nil).
func (db *PostgresDB) FindUserByUsername(ctx context.Context, username string) (*user.User, error) {
	return db.findUserBy(ctx, `username = $1`, username)
}

// FindUserByEmail returns the user with the given email, or (nil, nil).
func (db *PostgresDB) FindUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return db.findUserBy(ctx, `email = $1`, email)
}

// CreateBook inserts a new book and returns its assigned id.
func (db *PostgresDB) CreateBook(ctx context.Context, book *models.Book) (string, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	if book.ID == "" {
		book.ID = uuid.New().String()
	}

	authors, err := json.Marshal(book.Authors)
	if err != nil {
		return "", err
	}

	_, err = db.database.ExecContext(
		ctx,
		`INSERT INTO books (id, title, authors, description) VALUES ($1, $2, $3, $4)`,
		book.ID,
		book.Title,
		authors,
		book.Description,
	)
	if err != nil {
		return "", err
	}

	return book.ID, nil
}

// ReplaceUserSavedBooks overwrites the user's saved-books collection with
// the given ordered list. The replacement runs in a single transaction.
func (db *PostgresDB) ReplaceUserSavedBooks(
	ctx context.Context,
	userID string,
	books []models.Book,
) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	transaction, err := db.database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = transaction.Rollback()
	}()

	_, err = transaction.ExecContext(
		ctx,
		`DELETE FROM users_saved_books WHERE user_id = $1`,
		userID,
	)
	if err != nil {
		return err
	}

	for position, bookID := range funk.Map(books, func(b models.Book) string { return b.ID }).([]string) {
		_, err = transaction.ExecContext(
			ctx,
			`INSERT INTO users_saved_books (user_id, position, book_id) VALUES ($1, $2, $3)`,
			userID,
			position,
			bookID,
		)
		if err != nil {
			return err
		}
	}

	return transaction.Commit()
}

// Ping verifies the database connection.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	return db.database.PingContext(ctx)
}

// Close closes the underlying database connection pool.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) findUserBy(ctx context.Context, condition string, arg any) (*user.User, error) {
	ctx, cancel := db.withTimeout(ctx)
	defer cancel()

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, username, email, password_hash FROM users WHERE `+condition,
		arg,
	)

	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Username, &usr.Email, &usr.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	usr.SavedBooks, err = db.getSavedBooks(ctx, usr.ID)
	if err != nil {
		return nil, err
	}

	return usr, nil
}

func (db *PostgresDB) getSavedBooks(ctx context.Context, userID string) ([]models.Book, error) {
	rows, err := db.database.QueryContext(
		ctx,
		`
			SELECT books.id, books.title, books.authors, books.description
				FROM books
					JOIN users_saved_books ON users_saved_books.book_id = books.id
				WHERE users_saved_books.user_id = $1
				ORDER BY users_saved_books.position
		`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	savedBooks := []models.Book{}
	for rows.Next() {
		book := models.Book{}
		var authors []byte
		if err := rows.Scan(&book.ID, &book.Title, &authors, &book.Description); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(authors, &book.Authors); err != nil {
			return nil, err
		}
		savedBooks = append(savedBooks, book)
	}

	return savedBooks, rows.Err()
}
