// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/storage"
)

// Suite runs the shared storage contract against a backend.
// Backends embed it and set NewStorage before suite.Run.
type Suite struct {
	suite.Suite
	NewStorage func() storage.Storage

	Storage storage.Storage
	Ctx     context.Context
	now     time.Time
}

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage()
	s.Ctx = context.Background()
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *Suite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}

func (s *Suite) user(id, username, email string) *model.User {
	return &model.User{
		ID:           model.UserID(id),
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    s.now,
	}
}

func (s *Suite) game(id, userID string) *model.Game {
	return &model.Game{
		ID:          model.GameID(id),
		UserID:      model.UserID(userID),
		Mode:        model.ModeDual,
		CurrentTurn: model.SeatPlayer1,
		Revision:    1,
		CreatedAt:   s.now,
		UpdatedAt:   s.now,
	}
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	err := s.Storage.CreateUser(s.Ctx, s.user("u-1", "alice", "alice@example.com"))
	s.Require().NoError(err)

	u, err := s.Storage.GetUser(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal("alice", u.Username)
	s.Equal("alice@example.com", u.Email)
	s.Equal("hash", u.PasswordHash)
}

func (s *Suite) TestGetUserByEmail() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("u-1", "alice", "alice@example.com")))

	u, err := s.Storage.GetUserByEmail(s.Ctx, "alice@example.com")
	s.Require().NoError(err)
	s.Equal(model.UserID("u-1"), u.ID)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrUserNotFound)

	_, err = s.Storage.GetUserByEmail(s.Ctx, "missing@example.com")
	s.ErrorIs(err, model.ErrUserNotFound)
}

func (s *Suite) TestCreateUserDuplicateEmail() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("u-1", "alice", "alice@example.com")))

	err := s.Storage.CreateUser(s.Ctx, s.user("u-2", "alice2", "alice@example.com"))
	s.ErrorIs(err, model.ErrEmailTaken)
}

func (s *Suite) TestCreateUserDuplicateUsername() {
	s.Require().NoError(s.Storage.CreateUser(s.Ctx, s.user("u-1", "alice", "alice@example.com")))

	err := s.Storage.CreateUser(s.Ctx, s.user("u-2", "alice", "other@example.com"))
	s.ErrorIs(err, model.ErrUsernameTaken)

	// The rejected email must still be free
	err = s.Storage.CreateUser(s.Ctx, s.user("u-3", "carol", "other@example.com"))
	s.NoError(err)
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	g := s.game("g-1", "u-1")
	g.Player1 = &model.PlayerInfo{Name: "Alice", Color: "red", Position: 1}
	g.Player2 = &model.PlayerInfo{Name: "Bob", Color: "blue", Position: 1}
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(model.ModeDual, got.Mode)
	s.Equal("Alice", got.Player1.Name)
	s.Equal("blue", got.Player2.Color)
	s.Equal(model.SeatPlayer1, got.CurrentTurn)
	s.Equal(int64(1), got.Revision)
	s.True(s.now.Equal(got.CreatedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestGetActiveGame() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.game("g-1", "u-1")))

	got, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("g-1"), got.ID)
}

func (s *Suite) TestGetActiveGameNone() {
	_, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.ErrorIs(err, model.ErrNoActiveGame)
}

func (s *Suite) TestSecondActiveGameRejected() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.game("g-1", "u-1")))

	err := s.Storage.CreateGame(s.Ctx, s.game("g-2", "u-1"))
	s.ErrorIs(err, model.ErrActiveGameExists)

	_, err = s.Storage.GetGame(s.Ctx, "g-2")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestActiveGamesArePerUser() {
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.game("g-1", "u-1")))
	s.NoError(s.Storage.CreateGame(s.Ctx, s.game("g-2", "u-2")))
}

func (s *Suite) TestUpdateGame() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	g.Player1 = &model.PlayerInfo{Name: "Alice", Position: 36}
	g.CurrentTurn = model.SeatPlayer2
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(36, got.Player1.Position)
	s.Equal(model.SeatPlayer2, got.CurrentTurn)
	s.Equal(int64(2), got.Revision)
}

func (s *Suite) TestUpdateGameNotFound() {
	g := s.game("missing", "u-1")
	g.Revision = 2
	s.ErrorIs(s.Storage.UpdateGame(s.Ctx, g), model.ErrGameNotFound)
}

func (s *Suite) TestUpdateGameStaleRevision() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	first := g.Clone()
	first.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, first))

	second := g.Clone()
	second.Revision = 2
	second.CurrentTurn = model.SeatPlayer2
	s.ErrorIs(s.Storage.UpdateGame(s.Ctx, second), model.ErrStaleGame)

	got, err := s.Storage.GetGame(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(model.SeatPlayer1, got.CurrentTurn)
}

func (s *Suite) TestFinishedGameReleasesActiveSlot() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	g.IsGameOver = true
	g.Winner = "Alice"
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	_, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.ErrorIs(err, model.ErrNoActiveGame)

	s.NoError(s.Storage.CreateGame(s.Ctx, s.game("g-2", "u-1")))

	active, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("g-2"), active.ID)
}

func (s *Suite) TestReactivatingFinishedGameWhileAnotherIsActive() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))
	g.IsGameOver = true
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, s.game("g-2", "u-1")))

	g.IsGameOver = false
	g.Revision = 3
	s.ErrorIs(s.Storage.UpdateGame(s.Ctx, g), model.ErrActiveGameExists)
}

func (s *Suite) TestReactivatingFinishedGameRestoresActiveSlot() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))
	g.IsGameOver = true
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	g.IsGameOver = false
	g.Revision = 3
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	active, err := s.Storage.GetActiveGame(s.Ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("g-1"), active.ID)
}

func (s *Suite) TestReturnedGamesAreCopies() {
	g := s.game("g-1", "u-1")
	g.Player1 = &model.PlayerInfo{Name: "Alice", Position: 1}
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	g.Player1.Position = 50

	got, err := s.Storage.GetGame(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(1, got.Player1.Position)
}

func (s *Suite) TestResetMarkRoundTrip() {
	g := s.game("g-1", "u-1")
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, g))

	g.ResetCount = 1
	g.LastReset = &model.ResetMark{Source: model.ResetSourceHardware, Seq: 1, At: s.now}
	g.Revision = 2
	s.Require().NoError(s.Storage.UpdateGame(s.Ctx, g))

	got, err := s.Storage.GetGame(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Require().NotNil(got.LastReset)
	s.Equal(model.ResetSourceHardware, got.LastReset.Source)
	s.Equal(int64(1), got.LastReset.Seq)
	s.Equal(int64(1), got.ResetCount)
}
