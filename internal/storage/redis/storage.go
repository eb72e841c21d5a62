package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Records are JSON documents; uniqueness is kept with SETNX index keys
// and game updates run inside WATCH/MULTI transactions.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return NewWithClient(client, cfg), nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	claimed, err := s.client.SetNX(ctx, emailIndexKey(user.Email), string(user.ID), 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return model.ErrEmailTaken
	}

	claimed, err = s.client.SetNX(ctx, usernameIndexKey(user.Username), string(user.ID), 0).Result()
	if err != nil || !claimed {
		// Release the email so a later signup can use it
		_ = s.client.Del(ctx, emailIndexKey(user.Email)).Err()
		if err != nil {
			return err
		}
		return model.ErrUsernameTaken
	}

	return s.client.Set(ctx, userKey(user.ID), data, 0).Err()
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	// Look up user ID from email index
	id, err := s.client.Get(ctx, emailIndexKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	return s.GetUser(ctx, model.UserID(id))
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	if !game.IsGameOver {
		claimed, err := s.client.SetNX(ctx, activeGameKey(game.UserID), string(game.ID), 0).Result()
		if err != nil {
			return err
		}
		if !claimed {
			return model.ErrActiveGameExists
		}
	}

	if err := s.client.Set(ctx, gameKey(game.ID), data, s.gameTTL(game)).Err(); err != nil {
		if !game.IsGameOver {
			_ = s.client.Del(ctx, activeGameKey(game.UserID)).Err()
		}
		return err
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	data, err := s.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return decodeGame(data)
}

func (s *Storage) GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error) {
	id, err := s.client.Get(ctx, activeGameKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrNoActiveGame
		}
		return nil, err
	}

	game, err := s.GetGame(ctx, model.GameID(id))
	if errors.Is(err, model.ErrGameNotFound) {
		return nil, model.ErrNoActiveGame
	}
	return game, err
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}

	gk := gameKey(game.ID)
	ak := activeGameKey(game.UserID)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return model.ErrGameNotFound
			}
			return err
		}
		stored, err := decodeGame(current)
		if err != nil {
			return err
		}
		if stored.Revision != game.Revision-1 {
			return model.ErrStaleGame
		}

		active, err := tx.Get(ctx, ak).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if !game.IsGameOver && active != "" && active != string(game.ID) {
			return model.ErrActiveGameExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gk, data, s.gameTTL(game))
			if game.IsGameOver {
				if active == string(game.ID) {
					pipe.Del(ctx, ak)
				}
			} else {
				pipe.Set(ctx, ak, string(game.ID), 0)
			}
			return nil
		})
		return err
	}

	err = s.client.Watch(ctx, txf, gk, ak)
	if errors.Is(err, redis.TxFailedErr) {
		return model.ErrStaleGame
	}
	return err
}

// gameTTL returns the expiry for a game document
func (s *Storage) gameTTL(game *model.Game) time.Duration {
	if game.IsGameOver {
		return s.cfg.FinishedGameTTL
	}
	return 0
}

func decodeGame(data []byte) (*model.Game, error) {
	var game model.Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	return &game, nil
}
