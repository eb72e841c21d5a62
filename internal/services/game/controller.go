package game

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mcoot/snakeladder/internal/dependencies/clock"
	"github.com/mcoot/snakeladder/internal/dependencies/idgen"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/board"
	"github.com/mcoot/snakeladder/internal/services/computer"
	"github.com/mcoot/snakeladder/internal/storage"
)

// maxAttempts bounds the load/apply/save cycle when writes race
const maxAttempts = 3

// Notifier tells the physical board about lifecycle changes. Calls must
// not block.
type Notifier interface {
	GameSetup(game *model.Game)
	PlayAgain(gameID model.GameID)
	EndGame(gameID model.GameID)
}

// Publisher receives events after each persisted change
type Publisher interface {
	Publish(event model.Event)
}

// MoveResult is the outcome of a move together with the saved game
type MoveResult struct {
	Game    *model.Game
	Outcome *MoveOutcome
}

// Controller manages game records and turn flow
type Controller struct {
	storage      storage.Storage
	boardService *board.Service
	strategy     computer.Strategy
	notifier     Notifier
	publisher    Publisher
	ids          idgen.Generator
	clock        clock.Clock
	logger       *slog.Logger
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	boardService *board.Service,
	strategy computer.Strategy,
	notifier Notifier,
	publisher Publisher,
	ids idgen.Generator,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage:      storage,
		boardService: boardService,
		strategy:     strategy,
		notifier:     notifier,
		publisher:    publisher,
		ids:          ids,
		clock:        clock,
		logger:       logger.With(slog.String("component", "game-controller")),
	}
}

// SelectMode sets the mode of the user's active game, creating the game
// if the user has none. The turn goes back to player1 either way.
func (c *Controller) SelectMode(ctx context.Context, userID model.UserID, mode model.Mode) (*model.Game, error) {
	if !mode.Valid() {
		return nil, model.ErrInvalidMode
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		active, err := c.storage.GetActiveGame(ctx, userID)
		if err == nil {
			game, err := c.mutate(ctx, active.ID, func(g *model.Game) error {
				g.Mode = mode
				g.CurrentTurn = model.SeatPlayer1
				return nil
			})
			if err != nil {
				return nil, err
			}
			c.publish(model.EventModeSelected, game, nil)
			return game, nil
		}
		if !errors.Is(err, model.ErrNoActiveGame) {
			return nil, err
		}

		now := c.clock.Now()
		game := &model.Game{
			ID:          model.GameID(c.ids.NewID()),
			UserID:      userID,
			Mode:        mode,
			CurrentTurn: model.SeatPlayer1,
			Revision:    1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		err = c.storage.CreateGame(ctx, game)
		if errors.Is(err, model.ErrActiveGameExists) {
			// Another request created it first; update that one instead
			continue
		}
		if err != nil {
			c.logger.Error("failed to create game",
				slog.String("user_id", string(userID)),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		c.logger.Info("game created",
			slog.String("game_id", string(game.ID)),
			slog.String("user_id", string(userID)),
			slog.String("mode", string(mode)),
		)
		c.publish(model.EventModeSelected, game, nil)
		return game, nil
	}

	return nil, model.ErrActiveGameExists
}

// SubmitPlayerDetails fills both seats of the user's active game and puts
// both tokens on the start square. In single mode player2 is always the
// computer. The board is told about the new setup.
func (c *Controller) SubmitPlayerDetails(ctx context.Context, userID model.UserID, player1, player2 *model.PlayerDetails) (*model.Game, error) {
	if player1 == nil || strings.TrimSpace(player1.Name) == "" {
		return nil, model.ErrInvalidPlayerInfo
	}

	active, err := c.storage.GetActiveGame(ctx, userID)
	if err != nil {
		return nil, err
	}

	game, err := c.mutate(ctx, active.ID, func(g *model.Game) error {
		g.Player1 = &model.PlayerInfo{
			Name:     strings.TrimSpace(player1.Name),
			Color:    player1.Color,
			Position: model.StartSquare,
		}

		switch g.Mode {
		case model.ModeDual:
			if player2 == nil || strings.TrimSpace(player2.Name) == "" {
				return model.ErrInvalidPlayerInfo
			}
			g.Player2 = &model.PlayerInfo{
				Name:     strings.TrimSpace(player2.Name),
				Color:    player2.Color,
				Position: model.StartSquare,
			}
		default:
			g.Player2 = &model.PlayerInfo{
				Name:     model.ComputerName,
				Color:    model.ComputerColor,
				Position: model.StartSquare,
			}
		}

		g.CurrentTurn = model.SeatPlayer1
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("players set",
		slog.String("game_id", string(game.ID)),
		slog.String("player1", game.Player1.Name),
		slog.String("player2", game.Player2.Name),
	)

	c.notifier.GameSetup(game)
	c.publish(model.EventPlayersSet, game, nil)
	return game, nil
}

// UpdatePosition applies a die roll for seat
func (c *Controller) UpdatePosition(ctx context.Context, gameID model.GameID, seat model.Seat, die int) (*MoveResult, error) {
	var outcome *MoveOutcome
	game, err := c.mutate(ctx, gameID, func(g *model.Game) error {
		var err error
		outcome, err = ApplyMove(g, seat, die, c.boardService)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.afterMove(game, outcome)
	return &MoveResult{Game: game, Outcome: outcome}, nil
}

// ComputerMove rolls for the computer seat of a single-mode game and
// applies the roll
func (c *Controller) ComputerMove(ctx context.Context, gameID model.GameID) (*MoveResult, error) {
	die := 0
	var outcome *MoveOutcome
	game, err := c.mutate(ctx, gameID, func(g *model.Game) error {
		if g.Mode != model.ModeSingle {
			return model.ErrNotComputer
		}
		// Keep the first roll if the write has to be retried
		if die == 0 {
			die = c.strategy.RollDie(g)
		}
		var err error
		outcome, err = ApplyMove(g, model.SeatPlayer2, die, c.boardService)
		return err
	})
	if err != nil {
		return nil, err
	}

	c.afterMove(game, outcome)
	return &MoveResult{Game: game, Outcome: outcome}, nil
}

func (c *Controller) afterMove(game *model.Game, outcome *MoveOutcome) {
	c.logger.Info("position updated",
		slog.String("game_id", string(game.ID)),
		slog.String("seat", string(outcome.Seat)),
		slog.Int("die", outcome.Step.Die),
		slog.Int("from", outcome.Step.From),
		slog.Int("to", outcome.Step.To),
	)

	c.publish(model.EventPositionUpdated, game, model.PositionUpdatedPayload{
		Seat: outcome.Seat,
		From: outcome.Step.From,
		Die:  outcome.Step.Die,
		To:   outcome.Step.To,
		Via:  string(outcome.Step.Via),
	})

	if outcome.Won {
		c.logger.Info("game won",
			slog.String("game_id", string(game.ID)),
			slog.String("winner", game.Winner),
		)
		c.publish(model.EventGameWon, game, model.GameWonPayload{
			Seat:   outcome.Seat,
			Winner: game.Winner,
		})
	}
}

// GetGame retrieves a game by ID
func (c *Controller) GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	return c.storage.GetGame(ctx, gameID)
}

// GetActiveGame retrieves the user's unfinished game
func (c *Controller) GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error) {
	return c.storage.GetActiveGame(ctx, userID)
}

// Reset puts the game back to its starting state. Finished games become
// active again, which fails if the owner has since started another game.
func (c *Controller) Reset(ctx context.Context, gameID model.GameID, source model.ResetSource) (*model.Game, error) {
	game, err := c.mutate(ctx, gameID, func(g *model.Game) error {
		ResetGame(g, source, c.clock.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game reset",
		slog.String("game_id", string(game.ID)),
		slog.String("source", string(source)),
		slog.Int64("seq", game.LastReset.Seq),
	)
	c.publish(model.EventGameReset, game, model.GameResetPayload{
		Source: source,
		Seq:    game.LastReset.Seq,
	})
	return game, nil
}

// PlayAgain tells the board to start another round of the game
func (c *Controller) PlayAgain(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	c.notifier.PlayAgain(gameID)
	c.publish(model.EventPlayAgain, game, nil)
	return game, nil
}

// EndGame tells the board the session is over. The record is unchanged.
func (c *Controller) EndGame(ctx context.Context, gameID model.GameID) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	c.notifier.EndGame(gameID)
	c.publish(model.EventGameEnded, game, nil)
	return game, nil
}

// mutate loads a game, applies fn and saves the result with the next
// revision. A lost race reloads and reapplies fn.
func (c *Controller) mutate(ctx context.Context, gameID model.GameID, fn func(g *model.Game) error) (*model.Game, error) {
	for attempt := 1; ; attempt++ {
		game, err := c.storage.GetGame(ctx, gameID)
		if err != nil {
			return nil, err
		}

		if err := fn(game); err != nil {
			return nil, err
		}

		game.Revision++
		game.UpdatedAt = c.clock.Now()

		err = c.storage.UpdateGame(ctx, game)
		if err == nil {
			return game, nil
		}
		if !errors.Is(err, model.ErrStaleGame) || attempt == maxAttempts {
			return nil, err
		}

		c.logger.Debug("stale game write, retrying",
			slog.String("game_id", string(gameID)),
			slog.Int("attempt", attempt),
		)
	}
}

func (c *Controller) publish(eventType model.EventType, game *model.Game, payload any) {
	if c.publisher == nil {
		return
	}
	c.publisher.Publish(model.Event{
		Type:      eventType,
		Timestamp: c.clock.Now(),
		GameID:    game.ID,
		UserID:    game.UserID,
		Game:      game.Clone(),
		Payload:   payload,
	})
}

// Interface for dependency injection
type ControllerInterface interface {
	SelectMode(ctx context.Context, userID model.UserID, mode model.Mode) (*model.Game, error)
	SubmitPlayerDetails(ctx context.Context, userID model.UserID, player1, player2 *model.PlayerDetails) (*model.Game, error)
	UpdatePosition(ctx context.Context, gameID model.GameID, seat model.Seat, die int) (*MoveResult, error)
	ComputerMove(ctx context.Context, gameID model.GameID) (*MoveResult, error)
	GetGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
	GetActiveGame(ctx context.Context, userID model.UserID) (*model.Game, error)
	Reset(ctx context.Context, gameID model.GameID, source model.ResetSource) (*model.Game, error)
	PlayAgain(ctx context.Context, gameID model.GameID) (*model.Game, error)
	EndGame(ctx context.Context, gameID model.GameID) (*model.Game, error)
}

var _ ControllerInterface = (*Controller)(nil)
