// Package computer rolls the die for the computer-controlled seat.
package computer

import (
	"fmt"

	"github.com/mcoot/snakeladder/internal/dependencies/random"
	"github.com/mcoot/snakeladder/internal/model"
)

// Strategy names
const (
	StrategyRandom = "random"
)

// Strategy defines how the computer picks its die value
type Strategy interface {
	// RollDie returns a value in 1..6 for the computer's turn
	RollDie(game *model.Game) int
}

// NewStrategy returns the strategy registered under name
func NewStrategy(name string, rnd random.Random) (Strategy, error) {
	switch name {
	case "", StrategyRandom:
		return NewRandomStrategy(rnd), nil
	default:
		return nil, fmt.Errorf("unknown computer strategy %q", name)
	}
}
