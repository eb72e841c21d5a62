package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	EventModeSelected    EventType = "mode_selected"
	EventPlayersSet      EventType = "players_set"
	EventPositionUpdated EventType = "position_updated"
	EventGameWon         EventType = "game_won"
	EventGameReset       EventType = "game_reset"
	EventPlayAgain       EventType = "play_again"
	EventGameEnded       EventType = "game_ended"
)

// Event is emitted after a game change has been persisted
type Event struct {
	Type      EventType
	Timestamp time.Time
	GameID    GameID
	UserID    UserID
	Game      *Game // Snapshot after the change
	Payload   any   // Type-specific data
}

// PositionUpdatedPayload contains data for position updated events
type PositionUpdatedPayload struct {
	Seat Seat   `json:"seat"`
	From int    `json:"from"`
	Die  int    `json:"dice"`
	To   int    `json:"to"`
	Via  string `json:"via,omitempty"`
}

// GameWonPayload contains data for game won events
type GameWonPayload struct {
	Seat   Seat   `json:"seat"`
	Winner string `json:"winner"`
}

// GameResetPayload contains data for game reset events
type GameResetPayload struct {
	Source ResetSource `json:"source"`
	Seq    int64       `json:"seq"`
}
