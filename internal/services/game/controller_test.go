package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/dependencies/mocks"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/board"
	"github.com/mcoot/snakeladder/internal/services/computer"
	"github.com/mcoot/snakeladder/internal/storage"
	"github.com/mcoot/snakeladder/internal/storage/memory"
	"github.com/mcoot/snakeladder/internal/testutil"
)

// recordingNotifier captures hardware notifications
type recordingNotifier struct {
	mu        sync.Mutex
	setups    []model.GameID
	playAgain []model.GameID
	endGame   []model.GameID
}

func (n *recordingNotifier) GameSetup(game *model.Game) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.setups = append(n.setups, game.ID)
}

func (n *recordingNotifier) PlayAgain(gameID model.GameID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.playAgain = append(n.playAgain, gameID)
}

func (n *recordingNotifier) EndGame(gameID model.GameID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.endGame = append(n.endGame, gameID)
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

func (p *recordingPublisher) Publish(event model.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// flakyStorage reports the first staleWrites updates as lost races
type flakyStorage struct {
	storage.Storage
	mu          sync.Mutex
	staleWrites int
	updates     int
}

func (f *flakyStorage) UpdateGame(ctx context.Context, game *model.Game) error {
	f.mu.Lock()
	f.updates++
	if f.staleWrites > 0 {
		f.staleWrites--
		f.mu.Unlock()
		return model.ErrStaleGame
	}
	f.mu.Unlock()
	return f.Storage.UpdateGame(ctx, game)
}

type ControllerSuite struct {
	suite.Suite
	storage    *flakyStorage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	ids        *mocks.SequenceIDs
	notifier   *recordingNotifier
	publisher  *recordingPublisher
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = &flakyStorage{Storage: memory.New()}
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.ids = mocks.NewSequenceIDs("game")
	s.notifier = &recordingNotifier{}
	s.publisher = &recordingPublisher{}
	s.controller = NewController(
		s.storage,
		board.New(testutil.NopLogger()),
		computer.NewRandomStrategy(s.random),
		s.notifier,
		s.publisher,
		s.ids,
		s.clock,
		testutil.NopLogger(),
	)
	s.ctx = context.Background()
}

// setupGame creates a game for u-1 with both seats filled
func (s *ControllerSuite) setupGame(mode model.Mode) *model.Game {
	_, err := s.controller.SelectMode(s.ctx, "u-1", mode)
	s.Require().NoError(err)

	var p2 *model.PlayerDetails
	if mode == model.ModeDual {
		p2 = &model.PlayerDetails{Name: "Bob", Color: "blue"}
	}
	g, err := s.controller.SubmitPlayerDetails(s.ctx, "u-1", &model.PlayerDetails{Name: "Alice", Color: "red"}, p2)
	s.Require().NoError(err)
	return g
}

// place moves both tokens directly in storage
func (s *ControllerSuite) place(id model.GameID, p1, p2 int) {
	g, err := s.storage.GetGame(s.ctx, id)
	s.Require().NoError(err)
	g.Player1.Position = p1
	g.Player2.Position = p2
	g.Revision++
	s.Require().NoError(s.storage.UpdateGame(s.ctx, g))
}

// SelectMode tests

func (s *ControllerSuite) TestSelectModeCreatesGame() {
	g, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeSingle)
	s.Require().NoError(err)

	s.Equal(model.GameID("game-1"), g.ID)
	s.Equal(model.UserID("u-1"), g.UserID)
	s.Equal(model.ModeSingle, g.Mode)
	s.Equal(model.SeatPlayer1, g.CurrentTurn)
	s.False(g.IsGameOver)
	s.Nil(g.Player1)
	s.Equal(int64(1), g.Revision)
	s.Equal(s.clock.Now(), g.CreatedAt)

	active, err := s.storage.GetActiveGame(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(g.ID, active.ID)
}

func (s *ControllerSuite) TestSelectModeUpdatesExistingActiveGame() {
	first, _ := s.controller.SelectMode(s.ctx, "u-1", model.ModeSingle)
	s.clock.Advance(time.Minute)

	second, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)
	s.Require().NoError(err)

	s.Equal(first.ID, second.ID)
	s.Equal(model.ModeDual, second.Mode)
	s.Equal(int64(2), second.Revision)
	s.Equal(s.clock.Now(), second.UpdatedAt)
}

func (s *ControllerSuite) TestSelectModeResetsTurn() {
	g := s.setupGame(model.ModeDual)
	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 3)
	s.Require().NoError(err)

	updated, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)
	s.Require().NoError(err)
	s.Equal(model.SeatPlayer1, updated.CurrentTurn)
}

func (s *ControllerSuite) TestSelectModeRejectsUnknownMode() {
	_, err := s.controller.SelectMode(s.ctx, "u-1", model.Mode("triple"))
	s.ErrorIs(err, model.ErrInvalidMode)
}

func (s *ControllerSuite) TestSelectModeAfterWinCreatesNewGame() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 95, 1)
	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 5)
	s.Require().NoError(err)

	next, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeSingle)
	s.Require().NoError(err)
	s.NotEqual(g.ID, next.ID)
}

func (s *ControllerSuite) TestConcurrentSelectModeLeavesOneActiveGame() {
	var wg sync.WaitGroup
	ids := make(chan model.GameID, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)
			if err == nil {
				ids <- g.ID
			}
		}()
	}
	wg.Wait()
	close(ids)

	active, err := s.storage.GetActiveGame(s.ctx, "u-1")
	s.Require().NoError(err)
	for id := range ids {
		s.Equal(active.ID, id)
	}
}

// SubmitPlayerDetails tests

func (s *ControllerSuite) TestSubmitPlayerDetailsDual() {
	g := s.setupGame(model.ModeDual)

	s.Equal("Alice", g.Player1.Name)
	s.Equal("red", g.Player1.Color)
	s.Equal(1, g.Player1.Position)
	s.Equal("Bob", g.Player2.Name)
	s.Equal(1, g.Player2.Position)
	s.Equal(model.SeatPlayer1, g.CurrentTurn)
	s.Equal([]model.GameID{g.ID}, s.notifier.setups)
}

func (s *ControllerSuite) TestSubmitPlayerDetailsSingleUsesComputer() {
	_, _ = s.controller.SelectMode(s.ctx, "u-1", model.ModeSingle)

	g, err := s.controller.SubmitPlayerDetails(s.ctx, "u-1",
		&model.PlayerDetails{Name: "Alice", Color: "red"},
		&model.PlayerDetails{Name: "Ignored", Color: "green"},
	)
	s.Require().NoError(err)

	s.Equal(model.ComputerName, g.Player2.Name)
	s.Equal(model.ComputerColor, g.Player2.Color)
	s.Equal(1, g.Player2.Position)
}

func (s *ControllerSuite) TestSubmitPlayerDetailsWithoutActiveGame() {
	_, err := s.controller.SubmitPlayerDetails(s.ctx, "u-1", &model.PlayerDetails{Name: "Alice"}, nil)
	s.ErrorIs(err, model.ErrNoActiveGame)
	s.Empty(s.notifier.setups)
}

func (s *ControllerSuite) TestSubmitPlayerDetailsRequiresPlayer1Name() {
	_, _ = s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)

	_, err := s.controller.SubmitPlayerDetails(s.ctx, "u-1", &model.PlayerDetails{Name: "  "}, &model.PlayerDetails{Name: "Bob"})
	s.ErrorIs(err, model.ErrInvalidPlayerInfo)

	_, err = s.controller.SubmitPlayerDetails(s.ctx, "u-1", nil, &model.PlayerDetails{Name: "Bob"})
	s.ErrorIs(err, model.ErrInvalidPlayerInfo)
}

func (s *ControllerSuite) TestSubmitPlayerDetailsDualRequiresPlayer2() {
	_, _ = s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)

	_, err := s.controller.SubmitPlayerDetails(s.ctx, "u-1", &model.PlayerDetails{Name: "Alice"}, nil)
	s.ErrorIs(err, model.ErrInvalidPlayerInfo)

	g, err := s.storage.GetActiveGame(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Nil(g.Player1)
}

// UpdatePosition tests

func (s *ControllerSuite) TestUpdatePositionFlipsTurn() {
	g := s.setupGame(model.ModeDual)

	res, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 4)
	s.Require().NoError(err)
	s.Equal(5, res.Game.Player1.Position)
	s.Equal(model.SeatPlayer2, res.Game.CurrentTurn)
	s.Equal(4, res.Outcome.Step.Die)

	res, err = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer2, 3)
	s.Require().NoError(err)
	s.Equal(14, res.Game.Player2.Position) // ladder from 4
	s.Equal(model.SeatPlayer1, res.Game.CurrentTurn)
}

func (s *ControllerSuite) TestUpdatePositionLadderScenario() {
	g := s.setupGame(model.ModeDual)

	res, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 1)
	s.Require().NoError(err)
	s.Equal(36, res.Game.Player1.Position)
	s.Equal(model.RedirectLadder, res.Outcome.Step.Via)
}

func (s *ControllerSuite) TestUpdatePositionWinScenario() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 95, 1)

	res, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 5)
	s.Require().NoError(err)
	s.True(res.Outcome.Won)
	s.Equal(100, res.Game.Player1.Position)
	s.Equal("Alice", res.Game.Winner)
	s.True(res.Game.IsGameOver)
	s.Equal(model.SeatPlayer1, res.Game.CurrentTurn)

	_, err = s.storage.GetActiveGame(s.ctx, "u-1")
	s.ErrorIs(err, model.ErrNoActiveGame)

	s.Contains(s.publisher.types(), model.EventGameWon)
}

func (s *ControllerSuite) TestUpdatePositionWrongTurnScenario() {
	g := s.setupGame(model.ModeDual)

	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer2, 3)
	s.ErrorIs(err, model.ErrNotPlayerTurn)

	stored, err := s.storage.GetGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(1, stored.Player2.Position)
	s.Equal(g.Revision, stored.Revision)
}

func (s *ControllerSuite) TestUpdatePositionAfterWinRejected() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 95, 1)
	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 5)
	s.Require().NoError(err)

	_, err = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 2)
	s.ErrorIs(err, model.ErrGameOver)
	_, err = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer2, 2)
	s.ErrorIs(err, model.ErrGameOver)
}

func (s *ControllerSuite) TestUpdatePositionBeforeDetails() {
	g, _ := s.controller.SelectMode(s.ctx, "u-1", model.ModeDual)

	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 3)
	s.ErrorIs(err, model.ErrPlayersNotSet)
}

func (s *ControllerSuite) TestUpdatePositionUnknownGame() {
	_, err := s.controller.UpdatePosition(s.ctx, "missing", model.SeatPlayer1, 3)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestUpdatePositionRetriesLostRace() {
	g := s.setupGame(model.ModeDual)
	s.storage.staleWrites = 2

	res, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 2)
	s.Require().NoError(err)
	s.Equal(3, res.Game.Player1.Position)
}

func (s *ControllerSuite) TestUpdatePositionGivesUpAfterRepeatedRaces() {
	g := s.setupGame(model.ModeDual)
	s.storage.staleWrites = maxAttempts
	before := s.storage.updates

	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 3)
	s.ErrorIs(err, model.ErrStaleGame)
	s.Equal(maxAttempts, s.storage.updates-before)
}

func (s *ControllerSuite) TestConcurrentMovesOnlyOneWins() {
	g := s.setupGame(model.ModeDual)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 2)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	succeeded := 0
	for err := range errs {
		if err == nil {
			succeeded++
		}
	}
	s.Equal(1, succeeded)

	stored, _ := s.storage.GetGame(s.ctx, g.ID)
	s.Equal(3, stored.Player1.Position)
	s.Equal(model.SeatPlayer2, stored.CurrentTurn)
}

// ComputerMove tests

func (s *ControllerSuite) TestComputerMoveRollsForPlayer2() {
	g := s.setupGame(model.ModeSingle)
	_, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 4)
	s.Require().NoError(err)

	s.random.QueueIntn(2) // rolls 3
	res, err := s.controller.ComputerMove(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(3, res.Outcome.Step.Die)
	s.Equal(model.SeatPlayer2, res.Outcome.Seat)
	s.Equal(14, res.Game.Player2.Position)
	s.Equal(model.SeatPlayer1, res.Game.CurrentTurn)
}

func (s *ControllerSuite) TestComputerMoveKeepsRollAcrossRetries() {
	g := s.setupGame(model.ModeSingle)
	_, _ = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 4)
	s.storage.staleWrites = 1

	s.random.QueueIntn(4) // rolls 5
	s.random.QueueIntn(0)
	res, err := s.controller.ComputerMove(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(5, res.Outcome.Step.Die)
	s.Equal(6, res.Game.Player2.Position)
}

func (s *ControllerSuite) TestComputerMoveOnPlayer1Turn() {
	g := s.setupGame(model.ModeSingle)

	_, err := s.controller.ComputerMove(s.ctx, g.ID)
	s.ErrorIs(err, model.ErrNotPlayerTurn)
}

func (s *ControllerSuite) TestComputerMoveInDualMode() {
	g := s.setupGame(model.ModeDual)

	_, err := s.controller.ComputerMove(s.ctx, g.ID)
	s.ErrorIs(err, model.ErrNotComputer)
}

// Reset tests

func (s *ControllerSuite) TestResetRestoresStartingState() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 57, 23)
	_, _ = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 1)

	reset, err := s.controller.Reset(s.ctx, g.ID, model.ResetSourceWeb)
	s.Require().NoError(err)

	v := reset.View()
	s.Equal(1, v.Player1.Position)
	s.Equal(1, v.Player2.Position)
	s.Nil(v.Winner)
	s.False(v.IsGameOver)
	s.Equal(model.SeatPlayer1, v.CurrentTurn)
	s.Equal("Alice", reset.Player1.Name)
	s.Equal(model.ResetSourceWeb, reset.LastReset.Source)
	s.Equal(int64(1), reset.LastReset.Seq)
}

func (s *ControllerSuite) TestHardwareResetReopensFinishedGame() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 95, 1)
	_, _ = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 5)

	reset, err := s.controller.Reset(s.ctx, g.ID, model.ResetSourceHardware)
	s.Require().NoError(err)
	s.False(reset.IsGameOver)
	s.Empty(reset.Winner)
	s.Equal(model.ResetSourceHardware, reset.LastReset.Source)

	active, err := s.storage.GetActiveGame(s.ctx, "u-1")
	s.Require().NoError(err)
	s.Equal(g.ID, active.ID)
}

func (s *ControllerSuite) TestResetFinishedGameWhileAnotherIsActive() {
	g := s.setupGame(model.ModeDual)
	s.place(g.ID, 95, 1)
	_, _ = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 5)
	_, err := s.controller.SelectMode(s.ctx, "u-1", model.ModeSingle)
	s.Require().NoError(err)

	_, err = s.controller.Reset(s.ctx, g.ID, model.ResetSourceWeb)
	s.ErrorIs(err, model.ErrActiveGameExists)
}

func (s *ControllerSuite) TestResetUnknownGame() {
	_, err := s.controller.Reset(s.ctx, "missing", model.ResetSourceWeb)
	s.ErrorIs(err, model.ErrGameNotFound)
}

// PlayAgain / EndGame tests

func (s *ControllerSuite) TestPlayAgainNotifiesWithoutChangingGame() {
	g := s.setupGame(model.ModeDual)

	got, err := s.controller.PlayAgain(s.ctx, g.ID)
	s.Require().NoError(err)
	s.Equal(g.Revision, got.Revision)
	s.Equal([]model.GameID{g.ID}, s.notifier.playAgain)
}

func (s *ControllerSuite) TestEndGameNotifiesWithoutFinishingGame() {
	g := s.setupGame(model.ModeDual)

	got, err := s.controller.EndGame(s.ctx, g.ID)
	s.Require().NoError(err)
	s.False(got.IsGameOver)
	s.Equal([]model.GameID{g.ID}, s.notifier.endGame)
}

func (s *ControllerSuite) TestPlayAgainAndEndGameUnknownGame() {
	_, err := s.controller.PlayAgain(s.ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
	_, err = s.controller.EndGame(s.ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)

	s.Empty(s.notifier.playAgain)
	s.Empty(s.notifier.endGame)
}

// Event tests

func (s *ControllerSuite) TestEventsFollowLifecycle() {
	g := s.setupGame(model.ModeDual)
	_, _ = s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 3)
	_, _ = s.controller.Reset(s.ctx, g.ID, model.ResetSourceWeb)
	_, _ = s.controller.PlayAgain(s.ctx, g.ID)
	_, _ = s.controller.EndGame(s.ctx, g.ID)

	s.Equal([]model.EventType{
		model.EventModeSelected,
		model.EventPlayersSet,
		model.EventPositionUpdated,
		model.EventGameReset,
		model.EventPlayAgain,
		model.EventGameEnded,
	}, s.publisher.types())
}

func (s *ControllerSuite) TestEventCarriesSnapshotCopy() {
	g := s.setupGame(model.ModeDual)
	res, err := s.controller.UpdatePosition(s.ctx, g.ID, model.SeatPlayer1, 2)
	s.Require().NoError(err)

	last := s.publisher.events[len(s.publisher.events)-1]
	s.Equal(model.EventPositionUpdated, last.Type)
	payload, ok := last.Payload.(model.PositionUpdatedPayload)
	s.Require().True(ok)
	s.Equal(1, payload.From)
	s.Equal(3, payload.To)

	res.Game.Player1.Position = 99
	s.Equal(3, last.Game.Player1.Position)
}
