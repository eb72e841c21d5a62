package hardware

import (
	"github.com/mcoot/snakeladder/internal/model"
)

// Notifier turns game lifecycle changes into queued controller requests
type Notifier struct {
	dispatcher *Dispatcher
}

// NewNotifier creates a Notifier on top of a running Dispatcher
func NewNotifier(dispatcher *Dispatcher) *Notifier {
	return &Notifier{dispatcher: dispatcher}
}

// GameSetup announces the players of a freshly configured game
func (n *Notifier) GameSetup(game *model.Game) {
	n.dispatcher.Enqueue(Notification{Path: PathGameSetup, Body: NewGameSetupPayload(game)})
}

// PlayAgain asks the board to start another round
func (n *Notifier) PlayAgain(gameID model.GameID) {
	n.dispatcher.Enqueue(Notification{Path: PathPlayAgain, Body: GamePayload{GameID: gameID}})
}

// EndGame tells the board the session is over
func (n *Notifier) EndGame(gameID model.GameID) {
	n.dispatcher.Enqueue(Notification{Path: PathEndGame, Body: GamePayload{GameID: gameID}})
}

// Nop discards every notification. Used when no board is attached.
type Nop struct{}

func (Nop) GameSetup(*model.Game) {}
func (Nop) PlayAgain(model.GameID) {}
func (Nop) EndGame(model.GameID)   {}
