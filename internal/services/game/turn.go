package game

import (
	"time"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/board"
)

// MoveOutcome describes an applied move
type MoveOutcome struct {
	Seat model.Seat
	Step model.Step
	Won  bool
}

// ApplyMove advances seat by die on g. The game is only modified when the
// move is accepted. Reaching the final square ends the game and leaves the
// turn with the winner; any other move hands the turn to the other seat.
func ApplyMove(g *model.Game, seat model.Seat, die int, boardService *board.Service) (*MoveOutcome, error) {
	if seat != model.SeatPlayer1 && seat != model.SeatPlayer2 {
		return nil, model.ErrInvalidSeat
	}
	if die < model.MinDie || die > model.MaxDie {
		return nil, model.ErrInvalidDie
	}
	if !g.HasPlayers() {
		return nil, model.ErrPlayersNotSet
	}
	if g.IsGameOver {
		return nil, model.ErrGameOver
	}
	if g.CurrentTurn != seat {
		return nil, model.ErrNotPlayerTurn
	}

	player := g.Player(seat)
	step := boardService.Move(player.Position, die)
	player.Position = step.To

	out := &MoveOutcome{Seat: seat, Step: step}
	if step.To == model.FinalSquare {
		g.Winner = player.Name
		g.IsGameOver = true
		out.Won = true
	} else {
		g.CurrentTurn = seat.Other()
	}
	return out, nil
}

// ResetGame returns g to its starting state, keeping names and colours,
// and records the reset marker
func ResetGame(g *model.Game, source model.ResetSource, now time.Time) {
	if g.Player1 != nil {
		g.Player1.Position = model.StartSquare
	}
	if g.Player2 != nil {
		g.Player2.Position = model.StartSquare
	}
	g.Winner = ""
	g.IsGameOver = false
	g.CurrentTurn = model.SeatPlayer1

	g.ResetCount++
	g.LastReset = &model.ResetMark{
		Source: source,
		Seq:    g.ResetCount,
		At:     now,
	}
}
