package response

import (
	"time"

	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/services/game"
)

// User represents an account in API responses
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserFromModel converts a model.User to a response User
func UserFromModel(u *model.User) User {
	return User{
		ID:        string(u.ID),
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// AuthResponse is the response for signup and login
type AuthResponse struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		User:      UserFromModel(&s.User),
		ExpiresAt: s.ExpiresAt,
	}
}

// MeResponse describes the caller and their active game, if any
type MeResponse struct {
	User         User    `json:"user"`
	ActiveGameID *string `json:"activeGameId"`
}

// GameMessage acknowledges an operation on a game
type GameMessage struct {
	Message string `json:"message"`
	GameID  string `json:"gameId"`
}

// PositionResponse is the result of a die roll
type PositionResponse struct {
	Message     string     `json:"message"`
	Player      int        `json:"player"`
	Position    int        `json:"position"`
	From        int        `json:"from"`
	Dice        int        `json:"dice"`
	Via         string     `json:"via,omitempty"`
	Winner      *string    `json:"winner"`
	CurrentTurn model.Seat `json:"currentTurn"`
	IsGameOver  bool       `json:"isGameOver"`
}

// PositionResponseFromResult converts a controller move result
func PositionResponseFromResult(message string, res *game.MoveResult) PositionResponse {
	view := res.Game.View()
	return PositionResponse{
		Message:     message,
		Player:      res.Outcome.Seat.Number(),
		Position:    res.Outcome.Step.To,
		From:        res.Outcome.Step.From,
		Dice:        res.Outcome.Step.Die,
		Via:         string(res.Outcome.Step.Via),
		Winner:      view.Winner,
		CurrentTurn: view.CurrentTurn,
		IsGameOver:  view.IsGameOver,
	}
}

// ResetResponse is the result of a reset
type ResetResponse struct {
	Message     string            `json:"message"`
	ResetSource model.ResetSource `json:"resetSource,omitempty"`
	GameState   model.GameView    `json:"gameState"`
}

// BoardResponse describes the board layout
type BoardResponse struct {
	StartSquare int         `json:"startSquare"`
	FinalSquare int         `json:"finalSquare"`
	Snakes      map[int]int `json:"snakes"`
	Ladders     map[int]int `json:"ladders"`
}

// BoardResponseFromLayout converts a layout
func BoardResponseFromLayout(l model.Layout) BoardResponse {
	return BoardResponse{
		StartSquare: model.StartSquare,
		FinalSquare: model.FinalSquare,
		Snakes:      l.Snakes,
		Ladders:     l.Ladders,
	}
}
