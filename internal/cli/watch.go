package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/dependencies/clock"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/poller"
	"github.com/mcoot/snakeladder/internal/realtime"
)

func newWatchCmd() *cobra.Command {
	var (
		interval time.Duration
		stream   bool
	)

	cmd := &cobra.Command{
		Use:   "watch <game-id>",
		Short: "Follow a game as it is played",
		Long: `Follow a game and print every change.

By default the game state is polled every --interval. Three failed polls in
a row mark the connection as lost; polling continues and recovers by itself.
Resets from the physical board are reported and hold back the winner
announcement for a few seconds.

With --stream the server pushes events over a websocket instead.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := model.GameID(args[0])
			w := &watcher{out: os.Stdout, json: cfg.Output == "json"}

			if stream {
				return w.stream(cmd.Context(), gameID)
			}

			pcfg := poller.DefaultConfig()
			if interval > 0 {
				pcfg.Interval = interval
			}
			p := poller.New(client, gameID, pcfg, clock.New(), cliLogger())
			return p.Run(cmd.Context(), w.handleUpdate)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", time.Second, "Polling interval")
	cmd.Flags().BoolVar(&stream, "stream", false, "Use the websocket stream instead of polling")

	return cmd
}

// WatchEvent is one line of watch output in JSON mode
type WatchEvent struct {
	Time       time.Time       `json:"time"`
	Event      string          `json:"event"`
	Status     string          `json:"status,omitempty"`
	StatusText string          `json:"statusText,omitempty"`
	GameState  *model.GameView `json:"gameState,omitempty"`
	Payload    any             `json:"payload,omitempty"`
}

type watcher struct {
	out        io.Writer
	json       bool
	lastStatus poller.Status
}

func (w *watcher) handleUpdate(u poller.Update) {
	if u.Status != w.lastStatus {
		w.lastStatus = u.Status
		w.emit(WatchEvent{Event: "status", Status: string(u.Status), StatusText: u.StatusText})
	}

	if u.Err != nil {
		return
	}

	switch {
	case u.HardwareReset:
		w.emit(WatchEvent{Event: string(model.EventGameReset), StatusText: u.StatusText, GameState: u.State})
	case u.Reset:
		w.emit(WatchEvent{Event: string(model.EventGameReset), StatusText: "Game reset", GameState: u.State})
	case u.Changed:
		w.emit(WatchEvent{Event: "state", GameState: u.State})
	}

	if u.WinnerAnnounced && u.State.Winner != nil {
		w.emit(WatchEvent{
			Event:      string(model.EventGameWon),
			StatusText: fmt.Sprintf("%s wins!", *u.State.Winner),
			GameState:  u.State,
		})
	}
}

// resetAndWatch resets the game and keeps polling it. The poller starts
// from the state the reset returned, so the reset is reported once.
func (w *watcher) resetAndWatch(ctx context.Context, c *Client, gameID model.GameID, action string, p *poller.Poller) error {
	var result response.ResetResponse
	if err := c.Post(ctx, gamePath(action, gameID), nil, &result); err != nil {
		return err
	}

	state := result.GameState
	w.emit(WatchEvent{Event: string(model.EventGameReset), StatusText: result.Message, GameState: &state})
	p.Rebase(&state)
	return p.Run(ctx, w.handleUpdate)
}

func (w *watcher) stream(ctx context.Context, gameID model.GameID) error {
	url, err := client.StreamURL(gameID)
	if err != nil {
		return err
	}

	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close(websocket.StatusNormalClosure, "") }()

	w.emit(WatchEvent{Event: "status", Status: string(poller.StatusConnected), StatusText: "Connected to game " + string(gameID)})

	for {
		var msg realtime.Message
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			// Context cancellation and server shutdown are expected
			if ctx.Err() != nil || websocket.CloseStatus(err) != -1 || errors.Is(err, io.EOF) {
				w.emit(WatchEvent{Event: "status", Status: string(poller.StatusDisconnected), StatusText: "Disconnected"})
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}
		w.emit(WatchEvent{Event: msg.Type, GameState: msg.GameState, Payload: msg.Payload})
	}
}

func (w *watcher) emit(e WatchEvent) {
	e.Time = time.Now()

	if w.json {
		data, _ := json.Marshal(e)
		fmt.Fprintln(w.out, string(data))
		return
	}

	timestamp := e.Time.Format("15:04:05")
	switch {
	case e.StatusText != "":
		fmt.Fprintf(w.out, "[%s] %s\n", timestamp, e.StatusText)
	case e.Status != "":
		fmt.Fprintf(w.out, "[%s] %s\n", timestamp, e.Status)
	default:
		fmt.Fprintf(w.out, "[%s] %s\n", timestamp, e.Event)
	}
	if e.GameState != nil {
		o := &Output{format: "text", w: w.out}
		o.printGameView(*e.GameState)
	}
}

func cliLogger() *slog.Logger {
	level := slog.LevelWarn
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
