package model

import "time"

// GameID uniquely identifies a game
type GameID string

// Mode selects whether the second seat is played by a person or the computer
type Mode string

const (
	ModeSingle Mode = "single" // player2 is the computer
	ModeDual   Mode = "dual"   // two local players
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeSingle || m == ModeDual
}

// Seat identifies one of the two player slots in a game
type Seat string

const (
	SeatPlayer1 Seat = "player1"
	SeatPlayer2 Seat = "player2"
)

// SeatFromNumber maps the 1|2 wire representation to a Seat
func SeatFromNumber(n int) (Seat, error) {
	switch n {
	case 1:
		return SeatPlayer1, nil
	case 2:
		return SeatPlayer2, nil
	default:
		return "", ErrInvalidSeat
	}
}

// Other returns the opposing seat
func (s Seat) Other() Seat {
	if s == SeatPlayer1 {
		return SeatPlayer2
	}
	return SeatPlayer1
}

// Number returns the 1|2 wire representation of the seat
func (s Seat) Number() int {
	if s == SeatPlayer2 {
		return 2
	}
	return 1
}

// ResetSource records who asked for a reset
type ResetSource string

const (
	ResetSourceWeb      ResetSource = "web"
	ResetSourceHardware ResetSource = "arduino_mega"
)

// Board constants
const (
	StartSquare  = 1
	FinalSquare  = 100
	MinDie       = 1
	MaxDie       = 6
	ComputerName = "ROBUST"

	// ComputerColor is the fixed token colour of the computer seat
	ComputerColor = "#f79a04ff"
)

// PlayerInfo is one seat's identity and board position
type PlayerInfo struct {
	Name     string `json:"name" bson:"name"`
	Color    string `json:"color" bson:"color"`
	Position int    `json:"position" bson:"position"`
}

// ResetMark describes the most recent reset of a game
type ResetMark struct {
	Source ResetSource `json:"source" bson:"source"`
	Seq    int64       `json:"seq" bson:"seq"`
	At     time.Time   `json:"at" bson:"at"`
}

// Game is the persisted record of a single match owned by one user.
// A user has at most one game with IsGameOver == false.
type Game struct {
	ID     GameID `json:"id" bson:"_id"`
	UserID UserID `json:"userId" bson:"userId"`
	Mode   Mode   `json:"mode" bson:"mode"`

	// Nil until player details are submitted
	Player1 *PlayerInfo `json:"player1,omitempty" bson:"player1,omitempty"`
	Player2 *PlayerInfo `json:"player2,omitempty" bson:"player2,omitempty"`

	CurrentTurn Seat   `json:"currentTurn" bson:"currentTurn"`
	Winner      string `json:"winner,omitempty" bson:"winner,omitempty"`
	IsGameOver  bool   `json:"isGameOver" bson:"isGameOver"`

	// Revision increases by one on every persisted change
	Revision   int64      `json:"revision" bson:"revision"`
	ResetCount int64      `json:"resetCount" bson:"resetCount"`
	LastReset  *ResetMark `json:"lastReset,omitempty" bson:"lastReset,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Player returns the info for a seat, or nil if details are not yet set
func (g *Game) Player(seat Seat) *PlayerInfo {
	if seat == SeatPlayer2 {
		return g.Player2
	}
	return g.Player1
}

// HasPlayers returns true once both seats have been filled
func (g *Game) HasPlayers() bool {
	return g.Player1 != nil && g.Player2 != nil
}

// IsComputer returns true if the seat is played by the computer
func (g *Game) IsComputer(seat Seat) bool {
	return g.Mode == ModeSingle && seat == SeatPlayer2
}

// Clone returns a deep copy of the game
func (g *Game) Clone() *Game {
	c := *g
	if g.Player1 != nil {
		p := *g.Player1
		c.Player1 = &p
	}
	if g.Player2 != nil {
		p := *g.Player2
		c.Player2 = &p
	}
	if g.LastReset != nil {
		r := *g.LastReset
		c.LastReset = &r
	}
	return &c
}

// PlayerView is the public projection of a seat
type PlayerView struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// GameView is the projection returned to clients: names, positions,
// winner, over flag and whose turn it is, plus the revision markers used
// to tell resets apart.
type GameView struct {
	Player1     PlayerView `json:"player1"`
	Player2     PlayerView `json:"player2"`
	Winner      *string    `json:"winner"`
	IsGameOver  bool       `json:"isGameOver"`
	CurrentTurn Seat       `json:"currentTurn"`
	Revision    int64      `json:"revision"`
	LastReset   *ResetMark `json:"lastReset,omitempty"`
}

// View builds the client projection of the game
func (g *Game) View() GameView {
	v := GameView{
		IsGameOver:  g.IsGameOver,
		CurrentTurn: g.CurrentTurn,
		Revision:    g.Revision,
		LastReset:   g.LastReset,
	}
	if g.Player1 != nil {
		v.Player1 = PlayerView{Name: g.Player1.Name, Position: g.Player1.Position}
	}
	if g.Player2 != nil {
		v.Player2 = PlayerView{Name: g.Player2.Name, Position: g.Player2.Position}
	}
	if g.Winner != "" {
		w := g.Winner
		v.Winner = &w
	}
	return v
}
