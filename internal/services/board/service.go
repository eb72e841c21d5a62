package board

import (
	"fmt"
	"log/slog"

	"github.com/mcoot/snakeladder/internal/model"
)

// Transform moves a token from pos by die squares on the given layout.
// Overshooting the final square bounces back by the excess, then the
// landing square is looked up in the snake and ladder tables.
func Transform(layout model.Layout, pos, die int) int {
	return walk(layout, pos, die).To
}

func walk(layout model.Layout, pos, die int) model.Step {
	step := model.Step{From: pos, Die: die}

	landed := pos + die
	if landed > model.FinalSquare {
		landed = model.FinalSquare - (landed - model.FinalSquare)
	}
	step.Landed = landed
	step.To = landed

	if tail, ok := layout.Snakes[landed]; ok {
		step.To = tail
		step.Via = model.RedirectSnake
	} else if top, ok := layout.Ladders[landed]; ok {
		step.To = top
		step.Via = model.RedirectLadder
	}
	return step
}

// Validate checks that a layout is playable: every entry lies strictly
// inside the board, snakes go down, ladders go up, and no square is both
// a snake head and a ladder foot.
func Validate(layout model.Layout) error {
	for head, tail := range layout.Snakes {
		if !inside(head) || !inside(tail) || tail >= head {
			return fmt.Errorf("%w: snake %d->%d", model.ErrInvalidLayout, head, tail)
		}
		if _, ok := layout.Ladders[head]; ok {
			return fmt.Errorf("%w: square %d is both snake and ladder", model.ErrInvalidLayout, head)
		}
	}
	for foot, top := range layout.Ladders {
		if !inside(foot) || !inside(top) || top <= foot {
			return fmt.Errorf("%w: ladder %d->%d", model.ErrInvalidLayout, foot, top)
		}
	}
	return nil
}

func inside(square int) bool {
	return square >= model.StartSquare && square < model.FinalSquare
}

// Service applies the board rules for a fixed layout
type Service struct {
	layout model.Layout
	logger *slog.Logger
}

// New creates a BoardService for the default layout
func New(logger *slog.Logger) *Service {
	return &Service{
		layout: model.DefaultLayout(),
		logger: logger,
	}
}

// NewWithLayout creates a BoardService for a custom layout
func NewWithLayout(layout model.Layout, logger *slog.Logger) (*Service, error) {
	if err := Validate(layout); err != nil {
		return nil, err
	}
	return &Service{
		layout: layout,
		logger: logger,
	}, nil
}

// Move computes the outcome of rolling die from pos
func (s *Service) Move(pos, die int) model.Step {
	step := walk(s.layout, pos, die)
	if step.Via != model.RedirectNone {
		s.logger.Debug("token redirected",
			slog.Int("landed", step.Landed),
			slog.Int("to", step.To),
			slog.String("via", string(step.Via)),
		)
	}
	return step
}

// Layout returns a copy of the snake and ladder tables
func (s *Service) Layout() model.Layout {
	out := model.Layout{
		Snakes:  make(map[int]int, len(s.layout.Snakes)),
		Ladders: make(map[int]int, len(s.layout.Ladders)),
	}
	for k, v := range s.layout.Snakes {
		out.Snakes[k] = v
	}
	for k, v := range s.layout.Ladders {
		out.Ladders[k] = v
	}
	return out
}
