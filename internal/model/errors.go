package model

import "errors"

// Common errors used across the application
var (
	// User errors
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already registered")
	ErrUsernameTaken = errors.New("username already taken")

	// Game record errors
	ErrGameNotFound      = errors.New("game not found")
	ErrNoActiveGame      = errors.New("no active game")
	ErrActiveGameExists  = errors.New("user already has an active game")
	ErrStaleGame         = errors.New("game was modified concurrently")
	ErrInvalidMode       = errors.New("invalid game mode")
	ErrInvalidPlayerInfo = errors.New("invalid player details")

	// Turn errors
	ErrNotPlayerTurn = errors.New("not this player's turn")
	ErrGameOver      = errors.New("game is already over")
	ErrPlayersNotSet = errors.New("player details have not been submitted")
	ErrInvalidDie    = errors.New("die value must be between 1 and 6")
	ErrInvalidSeat   = errors.New("player must be 1 or 2")
	ErrNotComputer   = errors.New("seat is not played by the computer")

	// Board errors
	ErrInvalidLayout = errors.New("invalid snake and ladder layout")
)
