package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Records are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	users         map[model.UserID]*model.User
	emailIndex    map[string]model.UserID
	usernameIndex map[string]model.UserID
	games         map[model.GameID]*model.Game
	activeIndex   map[model.UserID]model.GameID
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users:         make(map[model.UserID]*model.User),
		emailIndex:    make(map[string]model.UserID),
		usernameIndex: make(map[string]model.UserID),
		games:         make(map[model.GameID]*model.Game),
		activeIndex:   make(map[model.UserID]model.GameID),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op for in-memory storage
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	if _, ok := s.emailIndex[email]; ok {
		return model.ErrEmailTaken
	}
	if _, ok := s.usernameIndex[user.Username]; ok {
		return model.ErrUsernameTaken
	}

	u := *user
	s.users[u.ID] = &u
	s.emailIndex[email] = u.ID
	s.usernameIndex[u.Username] = u.ID
	return nil
}

func (s *Storage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emailIndex[strings.ToLower(email)]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *s.users[id]
	return &out, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !game.IsGameOver {
		if _, ok := s.activeIndex[game.UserID]; ok {
			return model.ErrActiveGameExists
		}
		s.activeIndex[game.UserID] = game.ID
	}
	s.games[game.ID] = game.Clone()
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return g.Clone(), nil
}

func (s *Storage) GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.activeIndex[userID]
	if !ok {
		return nil, model.ErrNoActiveGame
	}
	return s.games[id].Clone(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.games[game.ID]
	if !ok {
		return model.ErrGameNotFound
	}
	if stored.Revision != game.Revision-1 {
		return model.ErrStaleGame
	}

	active, hasActive := s.activeIndex[game.UserID]
	switch {
	case game.IsGameOver && hasActive && active == game.ID:
		delete(s.activeIndex, game.UserID)
	case !game.IsGameOver && hasActive && active != game.ID:
		return model.ErrActiveGameExists
	case !game.IsGameOver:
		s.activeIndex[game.UserID] = game.ID
	}

	s.games[game.ID] = game.Clone()
	return nil
}
