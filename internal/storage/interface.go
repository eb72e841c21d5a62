package storage

import (
	"context"

	"github.com/mcoot/snakeladder/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations enforce two constraints at write time:
//   - email and username are unique across users
//   - a user owns at most one game with IsGameOver == false
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id model.UserID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Game operations

	// CreateGame inserts a new game. Returns model.ErrActiveGameExists if
	// the game is active and its owner already has an active game.
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// GetActiveGame returns model.ErrNoActiveGame if the user has none.
	GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error)
	// UpdateGame replaces a stored game whose revision is game.Revision-1.
	// Returns model.ErrStaleGame if the stored revision differs and
	// model.ErrActiveGameExists if reactivating would give the owner two
	// active games.
	UpdateGame(ctx context.Context, game *model.Game) error

	Close() error
}
