package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to stdout
func NewOutput(format string) *Output {
	return &Output{format: format, w: os.Stdout}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.AuthResponse:
		o.printAuth(v)
	case response.MeResponse:
		o.printMe(v)
	case response.GameMessage:
		fmt.Fprintf(o.w, "%s (game %s)\n", v.Message, v.GameID)
	case response.PositionResponse:
		o.printPosition(v)
	case response.ResetResponse:
		fmt.Fprintln(o.w, v.Message)
		o.printGameView(v.GameState)
	case response.BoardResponse:
		o.printBoard(v, nil)
	case ActiveGame:
		fmt.Fprintf(o.w, "Game: %s\n", v.GameID)
		o.printGameView(v.GameView)
	case *model.GameView:
		o.printGameView(*v)
	case model.GameView:
		o.printGameView(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s (%s, %dms)\n", v.Status, v.Server, v.LatencyMS)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// ActiveGame is the response of the active-game endpoint
type ActiveGame struct {
	GameID string `json:"gameId"`
	model.GameView
}

// HealthResult response type
type HealthResult struct {
	Status    string `json:"status"`
	Server    string `json:"server,omitempty"`
	LatencyMS int64  `json:"latencyMs"`
}

func (o *Output) printAuth(a response.AuthResponse) {
	o.printUser(a.User)
	fmt.Fprintf(o.w, "Token expires: %s\n", a.ExpiresAt.Local().Format("2006-01-02 15:04"))
}

func (o *Output) printUser(u response.User) {
	fmt.Fprintf(o.w, "User: %s <%s> (%s)\n", u.Username, u.Email, u.ID)
}

func (o *Output) printMe(m response.MeResponse) {
	o.printUser(m.User)
	if m.ActiveGameID != nil {
		fmt.Fprintf(o.w, "Active game: %s\n", *m.ActiveGameID)
	} else {
		fmt.Fprintln(o.w, "Active game: none")
	}
}

func (o *Output) printPosition(p response.PositionResponse) {
	line := fmt.Sprintf("Player %d rolled %d: %d -> %d", p.Player, p.Dice, p.From, p.Position)
	if p.Via != "" {
		line += " (" + p.Via + ")"
	}
	fmt.Fprintln(o.w, line)

	if p.Winner != nil {
		fmt.Fprintf(o.w, "Winner: %s\n", *p.Winner)
		return
	}
	fmt.Fprintf(o.w, "Next turn: %s\n", p.CurrentTurn)
}

func (o *Output) printGameView(v model.GameView) {
	fmt.Fprintf(o.w, "Player 1: %-12s square %d\n", displayName(v.Player1.Name), v.Player1.Position)
	fmt.Fprintf(o.w, "Player 2: %-12s square %d\n", displayName(v.Player2.Name), v.Player2.Position)

	switch {
	case v.IsGameOver && v.Winner != nil:
		fmt.Fprintf(o.w, "Game over, winner: %s\n", *v.Winner)
	case v.IsGameOver:
		fmt.Fprintln(o.w, "Game over")
	default:
		fmt.Fprintf(o.w, "Turn: %s\n", v.CurrentTurn)
	}

	if v.LastReset != nil {
		fmt.Fprintf(o.w, "Last reset: #%d by %s\n", v.LastReset.Seq, v.LastReset.Source)
	}
}

func displayName(name string) string {
	if name == "" {
		return "(not set)"
	}
	return name
}

// printBoard draws the board top row first, alternating direction each row
// like the physical board. Tokens in view, if given, are marked 1 and 2.
func (o *Output) printBoard(b response.BoardResponse, view *model.GameView) {
	size := 10
	if b.FinalSquare > 0 {
		for size*size < b.FinalSquare {
			size++
		}
	}

	border := "+" + strings.Repeat("-----", size) + "+"
	fmt.Fprintln(o.w, border)
	for row := size - 1; row >= 0; row-- {
		var sb strings.Builder
		sb.WriteString("|")
		for col := 0; col < size; col++ {
			c := col
			if row%2 == 1 {
				c = size - 1 - col
			}
			square := row*size + c + 1
			sb.WriteString(cellLabel(b, view, square))
		}
		sb.WriteString("|")
		fmt.Fprintln(o.w, sb.String())
	}
	fmt.Fprintln(o.w, border)

	fmt.Fprintln(o.w, "S = snake head, L = ladder foot")
}

func cellLabel(b response.BoardResponse, view *model.GameView, square int) string {
	mark := " "
	if _, ok := b.Snakes[square]; ok {
		mark = "S"
	} else if _, ok := b.Ladders[square]; ok {
		mark = "L"
	}

	if view != nil {
		p1 := view.Player1.Position == square
		p2 := view.Player2.Position == square
		switch {
		case p1 && p2:
			mark = "*"
		case p1:
			mark = "1"
		case p2:
			mark = "2"
		}
	}
	return fmt.Sprintf("%3d%s ", square, mark)
}
