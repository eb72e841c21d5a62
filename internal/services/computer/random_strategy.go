package computer

import (
	"github.com/mcoot/snakeladder/internal/dependencies/random"
	"github.com/mcoot/snakeladder/internal/model"
)

// RandomStrategy rolls a fair die
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// RollDie returns a uniformly random value in 1..6
func (s *RandomStrategy) RollDie(game *model.Game) int {
	return model.MinDie + s.random.Intn(model.MaxDie-model.MinDie+1)
}
