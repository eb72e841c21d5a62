// Package realtime pushes game state to websocket subscribers.
package realtime

import (
	"github.com/mcoot/snakeladder/internal/model"
)

// MessageTypeSnapshot is sent once when a subscriber connects
const MessageTypeSnapshot = "snapshot"

// Message is the JSON frame sent to subscribers
type Message struct {
	Type      string          `json:"type"`
	GameID    model.GameID    `json:"gameId"`
	GameState *model.GameView `json:"gameState,omitempty"`
	Payload   any             `json:"payload,omitempty"`
}

// NewSnapshotMessage wraps the current state of a game
func NewSnapshotMessage(game *model.Game) Message {
	view := game.View()
	return Message{Type: MessageTypeSnapshot, GameID: game.ID, GameState: &view}
}

// NewEventMessage converts a controller event into a frame
func NewEventMessage(event model.Event) Message {
	msg := Message{
		Type:    string(event.Type),
		GameID:  event.GameID,
		Payload: event.Payload,
	}
	if event.Game != nil {
		view := event.Game.View()
		msg.GameState = &view
	}
	return msg
}
