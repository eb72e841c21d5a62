// Package sqlstore persists users and games in SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
)

// Storage is a database/sql implementation of the storage interface.
// Queries use $n placeholders, which both drivers accept.
type Storage struct {
	db     *sql.DB
	driver string
}

// New opens the database, verifies the connection and applies the schema
func New(cfg Config) (*Storage, error) {
	schema, ok := schemas[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	dsn, err := prepareDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", cfg.Driver, err)
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &Storage{db: db, driver: cfg.Driver}, nil
}

// prepareDSN creates the parent directory of a SQLite file and turns on
// WAL journaling with a busy timeout
func prepareDSN(cfg Config) (string, error) {
	if cfg.Driver != DriverSQLite {
		return cfg.DSN, nil
	}
	if cfg.DSN == ":memory:" || strings.HasPrefix(cfg.DSN, "file:") {
		return cfg.DSN, nil
	}

	dir := filepath.Dir(cfg.DSN)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	return cfg.DSN + "?_busy_timeout=5000&_journal_mode=WAL", nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// uniqueViolation returns the violated constraint, or false if err is not
// a unique constraint failure. SQLite reports table.column, Postgres the
// constraint name.
func uniqueViolation(err error) (string, bool) {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) && liteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return liteErr.Error(), true
	}
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return pgErr.Constraint, true
	}
	return "", false
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, email_key, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(user.ID), user.Username, user.Email, strings.ToLower(user.Email),
		user.PasswordHash, user.CreatedAt.UTC(),
	)
	if constraint, ok := uniqueViolation(err); ok {
		if strings.Contains(constraint, "email") {
			return model.ErrEmailTaken
		}
		return model.ErrUsernameTaken
	}
	return err
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return s.queryUser(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE id = $1`,
		string(id))
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return s.queryUser(ctx,
		`SELECT id, username, email, password_hash, created_at FROM users WHERE email_key = $1`,
		strings.ToLower(email))
}

func (s *Storage) queryUser(ctx context.Context, query string, arg any) (*model.User, error) {
	var (
		u  model.User
		id string
	)
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&id, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}
	u.ID = model.UserID(id)
	return &u, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO games (id, user_id, is_game_over, revision, data, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		string(game.ID), string(game.UserID), game.IsGameOver, game.Revision,
		string(data), game.UpdatedAt.UTC(),
	)
	if _, ok := uniqueViolation(err); ok {
		return model.ErrActiveGameExists
	}
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	game, err := s.queryGame(ctx, `SELECT data FROM games WHERE id = $1`, string(id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrGameNotFound
	}
	return game, err
}

func (s *Storage) GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error) {
	game, err := s.queryGame(ctx,
		`SELECT data FROM games WHERE user_id = $1 AND is_game_over = FALSE`,
		string(userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrNoActiveGame
	}
	return game, err
}

func (s *Storage) queryGame(ctx context.Context, query string, arg any) (*model.Game, error) {
	var data []byte
	if err := s.db.QueryRowContext(ctx, query, arg).Scan(&data); err != nil {
		return nil, err
	}

	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("decode game: %w", err)
	}
	return &game, nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE games
		 SET is_game_over = $1, revision = $2, data = $3, updated_at = $4
		 WHERE id = $5 AND revision = $6`,
		game.IsGameOver, game.Revision, string(data), game.UpdatedAt.UTC(),
		string(game.ID), game.Revision-1,
	)
	if _, ok := uniqueViolation(err); ok {
		return model.ErrActiveGameExists
	}
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing matched: either the game is gone or another write won
	var exists int
	err = s.db.QueryRowContext(ctx, `SELECT 1 FROM games WHERE id = $1`, string(game.ID)).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrGameNotFound
	}
	if err != nil {
		return err
	}
	return model.ErrStaleGame
}
