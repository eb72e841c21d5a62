package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/snakeladder/internal/api/request"
	"github.com/mcoot/snakeladder/internal/api/response"
	"github.com/mcoot/snakeladder/internal/dependencies/clock"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/poller"
)

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Game commands",
	}

	cmd.AddCommand(newGameModeCmd())
	cmd.AddCommand(newGamePlayersCmd())
	cmd.AddCommand(newGameActiveCmd())
	cmd.AddCommand(newGameStateCmd())
	cmd.AddCommand(newGameMoveCmd())
	cmd.AddCommand(newGameComputerMoveCmd())
	cmd.AddCommand(newGameResetCmd())
	cmd.AddCommand(newGamePlayAgainCmd())
	cmd.AddCommand(newGameEndCmd())

	return cmd
}

func newGameModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "mode <single|dual>",
		Short:     "Select the mode of your active game, creating it if needed",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(model.ModeSingle), string(model.ModeDual)},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.ModeSelectRequest{Mode: args[0]}
			var result response.GameMessage

			if err := client.Post(cmd.Context(), "/api/mode-select", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGamePlayersCmd() *cobra.Command {
	var p1Name, p1Color, p2Name, p2Color string

	cmd := &cobra.Command{
		Use:   "players",
		Short: "Set the players of your active game",
		Long: `Set the players of your active game and send them to the board.

In single mode the second seat is always the computer and --p2-name is ignored.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := request.PlayerDetailsRequest{
				Player1: &request.PlayerDetails{Name: p1Name, Color: p1Color},
			}
			if p2Name != "" {
				req.Player2 = &request.PlayerDetails{Name: p2Name, Color: p2Color}
			}
			var result response.GameMessage

			if err := client.Post(cmd.Context(), "/api/player-details", req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&p1Name, "p1-name", "", "Player 1 name (required)")
	cmd.Flags().StringVar(&p1Color, "p1-color", "red", "Player 1 token colour")
	cmd.Flags().StringVar(&p2Name, "p2-name", "", "Player 2 name (dual mode)")
	cmd.Flags().StringVar(&p2Color, "p2-color", "blue", "Player 2 token colour")
	_ = cmd.MarkFlagRequired("p1-name")

	return cmd
}

func newGameActiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show your active game",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result ActiveGame

			if err := client.Get(cmd.Context(), "/api/active-game", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameStateCmd() *cobra.Command {
	var showBoard bool

	cmd := &cobra.Command{
		Use:   "state <game-id>",
		Short: "Get current game state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := client.GetGameState(cmd.Context(), model.GameID(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(view)

			if showBoard && cfg.Output != "json" {
				var board response.BoardResponse
				if err := client.Get(cmd.Context(), "/api/board", &board); err != nil {
					return err
				}
				out.printBoard(board, view)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showBoard, "board", false, "Draw the board with both tokens")

	return cmd
}

func newGameMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <game-id> <player> <dice>",
		Short: "Report a die roll for player 1 or 2",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			player, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid player: %w", err)
			}

			dice, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid dice: %w", err)
			}

			req := request.UpdatePositionRequest{Dice: dice, Player: player}
			var result response.PositionResponse

			if err := client.Post(cmd.Context(), gamePath("update-position", model.GameID(args[0])), req, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameComputerMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "computer-move <game-id>",
		Short: "Roll for the computer in a single-mode game",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.PositionResponse

			if err := client.Post(cmd.Context(), gamePath("computer-move", model.GameID(args[0])), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameResetCmd() *cobra.Command {
	var hardware, watch bool

	cmd := &cobra.Command{
		Use:   "reset <game-id>",
		Short: "Put both tokens back on the start square",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gameID := model.GameID(args[0])
			action := "reset-game"
			if hardware {
				action = "hardware-reset"
			}

			if watch {
				w := &watcher{out: os.Stdout, json: cfg.Output == "json"}
				p := poller.New(client, gameID, poller.DefaultConfig(), clock.New(), cliLogger())
				return w.resetAndWatch(cmd.Context(), client, gameID, action, p)
			}

			var result response.ResetResponse
			if err := client.Post(cmd.Context(), gamePath(action, gameID), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hardware, "hardware", false, "Report the reset as coming from the board")
	cmd.Flags().BoolVar(&watch, "watch", false, "Keep following the game after the reset")

	return cmd
}

func newGamePlayAgainCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play-again <game-id>",
		Short: "Tell the board to start another round",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameMessage

			if err := client.Post(cmd.Context(), gamePath("play-again", model.GameID(args[0])), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newGameEndCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "end <game-id>",
		Short: "Tell the board the session is over",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.GameMessage

			if err := client.Post(cmd.Context(), gamePath("end-game", model.GameID(args[0])), nil, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}

func newBoardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "board",
		Short: "Show the board layout",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.BoardResponse

			if err := client.Get(cmd.Context(), "/api/board", &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
