// Package poller keeps a client's view of a game in step with the server
// by fetching its state on a fixed interval.
package poller

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/mcoot/snakeladder/internal/dependencies/clock"
	"github.com/mcoot/snakeladder/internal/model"
)

// Status is the connection state shown to the user
type Status string

const (
	StatusConnected     Status = "connected"
	StatusRetrying      Status = "retrying"
	StatusDisconnected  Status = "disconnected"
	StatusHardwareReset Status = "hardware_reset"
)

// Fetcher loads the current projection of a game
type Fetcher interface {
	GetGameState(ctx context.Context, gameID model.GameID) (*model.GameView, error)
}

// Config holds polling settings
type Config struct {
	Interval time.Duration
	// MaxFailures is the number of consecutive failures before the
	// status becomes disconnected
	MaxFailures int
	// ResetCooldown is how long a hardware reset notice stays up. Winner
	// announcements are held back meanwhile.
	ResetCooldown time.Duration
}

// DefaultConfig returns the standard polling settings
func DefaultConfig() Config {
	return Config{
		Interval:      time.Second,
		MaxFailures:   3,
		ResetCooldown: 5 * time.Second,
	}
}

// Update is the result of one poll
type Update struct {
	State      *model.GameView
	Status     Status
	StatusText string
	Err        error

	// Changed is true when State differs from the previous snapshot
	Changed bool
	// Reset is true when the game went back to its starting state
	Reset bool
	// HardwareReset is true when the reset came from the physical board
	HardwareReset bool
	// WinnerAnnounced is true the first time a finished game is seen
	WinnerAnnounced bool
}

// Poller tracks consecutive snapshots of one game. It is not safe for
// concurrent use; Run drives it from a single goroutine.
type Poller struct {
	fetcher Fetcher
	gameID  model.GameID
	cfg     Config
	clock   clock.Clock
	logger  *slog.Logger

	prev          *model.GameView
	failures      int
	cooldownUntil time.Time
	announced     bool
}

// New creates a Poller for gameID
func New(fetcher Fetcher, gameID model.GameID, cfg Config, clk clock.Clock, logger *slog.Logger) *Poller {
	defaults := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = defaults.Interval
	}
	if cfg.MaxFailures <= 0 {
		cfg.MaxFailures = defaults.MaxFailures
	}
	if cfg.ResetCooldown <= 0 {
		cfg.ResetCooldown = defaults.ResetCooldown
	}
	return &Poller{
		fetcher: fetcher,
		gameID:  gameID,
		cfg:     cfg,
		clock:   clk,
		logger:  logger.With(slog.String("component", "poller"), slog.String("game_id", string(gameID))),
	}
}

// Run polls immediately and then every Interval, passing each update to
// onUpdate, until ctx is cancelled
func (p *Poller) Run(ctx context.Context, onUpdate func(Update)) error {
	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()
	defer func() { p.cooldownUntil = time.Time{} }()

	onUpdate(p.Tick(ctx))
	for {
		select {
		case <-ticker.C:
			onUpdate(p.Tick(ctx))
		case <-ctx.Done():
			return nil
		}
	}
}

// Tick fetches the game once and reconciles it with the previous snapshot
func (p *Poller) Tick(ctx context.Context) Update {
	view, err := p.fetcher.GetGameState(ctx, p.gameID)
	if err != nil {
		return p.failed(err)
	}
	p.failures = 0

	now := p.clock.Now()
	u := Update{State: view, Status: StatusConnected, StatusText: "Connected"}
	u.Changed = p.prev == nil || !reflect.DeepEqual(p.prev, view)

	if p.prev != nil {
		u.Reset, u.HardwareReset = detectReset(p.prev, view)
	}
	if u.Reset {
		p.announced = false
	}
	if u.HardwareReset {
		p.cooldownUntil = now.Add(p.cfg.ResetCooldown)
		p.logger.Info("hardware reset detected")
	}

	cooling := now.Before(p.cooldownUntil)
	if cooling {
		u.Status = StatusHardwareReset
		u.StatusText = "Game reset by hardware device (Arduino Mega)"
	}

	switch {
	case !view.IsGameOver:
		p.announced = false
	case view.Winner != nil && !p.announced && !cooling:
		u.WinnerAnnounced = true
		p.announced = true
	}

	p.prev = view
	return u
}

// Rebase replaces the previous snapshot, so a change the caller made
// itself is not reported as a reset
func (p *Poller) Rebase(view *model.GameView) {
	p.prev = view
	if view != nil && !view.IsGameOver {
		p.announced = false
	}
}

func (p *Poller) failed(err error) Update {
	p.failures++
	u := Update{State: p.prev, Err: err}
	if p.failures >= p.cfg.MaxFailures {
		u.Status = StatusDisconnected
		u.StatusText = fmt.Sprintf("Connection lost: %v (%d consecutive failures)", err, p.failures)
	} else {
		u.Status = StatusRetrying
		u.StatusText = fmt.Sprintf("%v (Retry %d/%d)", err, p.failures, p.cfg.MaxFailures)
	}
	p.logger.Warn("poll failed", slog.Int("failures", p.failures), slog.String("error", err.Error()))
	return u
}

// detectReset compares two snapshots. An explicit reset marker decides
// when the server sends one; otherwise a game that was under way and now
// has both tokens on the start square with no winner counts as a reset
// from the board.
func detectReset(prev, cur *model.GameView) (reset, hardware bool) {
	if cur.LastReset != nil {
		if prev.LastReset != nil && cur.LastReset.Seq <= prev.LastReset.Seq {
			return false, false
		}
		return true, cur.LastReset.Source == model.ResetSourceHardware
	}

	inProgress := (prev.Player1.Position > model.StartSquare || prev.Player2.Position > model.StartSquare) && !prev.IsGameOver
	atStart := cur.Player1.Position == model.StartSquare && cur.Player2.Position == model.StartSquare
	cleared := !cur.IsGameOver && cur.Winner == nil
	if inProgress && atStart && cleared {
		return true, true
	}
	return false, false
}
