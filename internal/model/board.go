package model

// Redirect names what moved a token after it landed
type Redirect string

const (
	RedirectNone   Redirect = ""
	RedirectSnake  Redirect = "snake"
	RedirectLadder Redirect = "ladder"
)

// Layout is the fixed snake and ladder table of a board.
// Keys are landing squares, values are where the token ends up.
type Layout struct {
	Snakes  map[int]int `json:"snakes" yaml:"snakes"`   // head -> tail, always downward
	Ladders map[int]int `json:"ladders" yaml:"ladders"` // foot -> top, always upward
}

// DefaultLayout returns the standard board used by the physical game
func DefaultLayout() Layout {
	return Layout{
		Snakes: map[int]int{
			16: 6,
			49: 11,
			64: 60,
			69: 51,
			88: 67,
			95: 38,
			99: 62,
		},
		Ladders: map[int]int{
			2:  36,
			4:  14,
			9:  31,
			33: 83,
			40: 42,
			71: 91,
		},
	}
}

// Step describes a single move across the board
type Step struct {
	From   int      `json:"from"`
	Die    int      `json:"die"`
	Landed int      `json:"landed"` // After bounce-back, before snakes and ladders
	To     int      `json:"to"`
	Via    Redirect `json:"via,omitempty"`
}
