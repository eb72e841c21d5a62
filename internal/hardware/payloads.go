package hardware

import "github.com/mcoot/snakeladder/internal/model"

// PlayerPayload is one token as the board controller sees it
type PlayerPayload struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// GameSetupPayload tells the controller which tokens are in play
type GameSetupPayload struct {
	Mode    model.Mode      `json:"mode"`
	GameID  model.GameID    `json:"gameId"`
	Players []PlayerPayload `json:"players"`
}

// GamePayload identifies the game for play-again and end-game
type GamePayload struct {
	GameID model.GameID `json:"gameId"`
}

// NewGameSetupPayload builds the setup payload from a game with both seats filled
func NewGameSetupPayload(game *model.Game) GameSetupPayload {
	p := GameSetupPayload{
		Mode:    game.Mode,
		GameID:  game.ID,
		Players: make([]PlayerPayload, 0, 2),
	}
	for _, info := range []*model.PlayerInfo{game.Player1, game.Player2} {
		if info == nil {
			continue
		}
		p.Players = append(p.Players, PlayerPayload{Name: info.Name, Color: info.Color})
	}
	return p
}
