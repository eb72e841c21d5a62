package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
	"github.com/mcoot/snakeladder/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	s := new(StorageSuite)
	s.NewStorage = func() storage.Storage {
		s.mini = miniredis.RunT(s.T())

		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})

		cfg := DefaultConfig()
		cfg.FinishedGameTTL = time.Hour
		return NewWithClient(client, cfg)
	}
	suite.Run(t, s)
}

func (s *StorageSuite) newGame(id model.GameID) *model.Game {
	return &model.Game{
		ID:          id,
		UserID:      "u-1",
		Mode:        model.ModeSingle,
		CurrentTurn: model.SeatPlayer1,
		Revision:    1,
	}
}

func (s *StorageSuite) TestActiveGameHasNoTTL() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.newGame("g-1")))

	s.Equal(time.Duration(0), s.mini.TTL(gameKey("g-1")))
	s.Equal(time.Duration(0), s.mini.TTL(activeGameKey("u-1")))
}

func (s *StorageSuite) TestFinishedGameGetsTTL() {
	g := s.newGame("g-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	g.IsGameOver = true
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	s.Equal(time.Hour, s.mini.TTL(gameKey("g-1")))
	s.False(s.mini.Exists(activeGameKey("u-1")))
}

func (s *StorageSuite) TestDefaultConfigKeepsFinishedGames() {
	store := NewWithClient(redis.NewClient(&redis.Options{Addr: s.mini.Addr()}), DefaultConfig())
	defer func() { _ = store.Close() }()

	g := s.newGame("g-kept")
	s.Require().NoError(store.CreateGame(s.Ctx, g))
	g.IsGameOver = true
	g.Revision = 2
	s.Require().NoError(store.UpdateGame(s.Ctx, g))

	s.mini.FastForward(8 * 24 * time.Hour)

	got, err := store.GetGame(s.Ctx, "g-kept")
	s.Require().NoError(err)
	s.True(got.IsGameOver)
	s.Equal(int64(2), got.Revision)
	s.Equal(time.Duration(0), s.mini.TTL(gameKey("g-kept")))
}

func (s *StorageSuite) TestReactivatedGameLosesTTL() {
	g := s.newGame("g-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))
	g.IsGameOver = true
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	g.IsGameOver = false
	g.Revision = 3
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	s.Equal(time.Duration(0), s.mini.TTL(gameKey("g-1")))
}

func (s *StorageSuite) TestDanglingActiveIndexReportsNoActiveGame() {
	s.Require().NoError(s.mini.Set(activeGameKey("u-1"), "expired-game"))

	_, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.ErrorIs(err, model.ErrNoActiveGame)
}

func (s *StorageSuite) TestKeysUsePrefix() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, &model.User{ID: "u-1", Username: "alice", Email: "Alice@example.com"}))

	s.True(s.mini.Exists("snl:user:u-1"))
	s.True(s.mini.Exists("snl:idx:email:alice@example.com"))
	s.True(s.mini.Exists("snl:idx:username:alice"))
}
