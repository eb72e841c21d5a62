package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mcoot/snakeladder/internal/api/handler"
	"github.com/mcoot/snakeladder/internal/api/middleware"
	"github.com/mcoot/snakeladder/internal/api/response"
	commonmw "github.com/mcoot/snakeladder/internal/middleware"
	"github.com/mcoot/snakeladder/internal/realtime"
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/services/board"
	"github.com/mcoot/snakeladder/internal/services/game"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    *auth.Service
	GameController *game.Controller
	BoardService   *board.Service
	HubManager     *realtime.HubManager
	// AllowedOrigins are the browser origins allowed by CORS
	AllowedOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	authHandler := handler.NewAuthHandler(cfg.AuthService, cfg.GameController, cfg.Logger)
	gameHandler := handler.NewGameHandler(cfg.GameController, cfg.Logger)
	boardHandler := handler.NewBoardHandler(cfg.BoardService)

	authMiddleware := middleware.Auth(cfg.AuthService)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	// The board polls game state every second
	api.Use(commonmw.Logging(cfg.Logger, "/api/get-game-state/", "/api/health"))

	// Accounts
	api.HandleFunc("/signup", authHandler.Signup).Methods(http.MethodPost)
	api.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)

	// Routes owned by a signed-in user
	protected := api.NewRoute().Subrouter()
	protected.Use(authMiddleware)
	protected.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)
	protected.HandleFunc("/mode-select", gameHandler.SelectMode).Methods(http.MethodPost)
	protected.HandleFunc("/player-details", gameHandler.SubmitPlayerDetails).Methods(http.MethodPost)
	protected.HandleFunc("/active-game", gameHandler.ActiveGame).Methods(http.MethodGet)

	// Routes addressed by game id. The board controller calls these
	// without credentials.
	api.HandleFunc("/update-position/{gameId}", gameHandler.UpdatePosition).Methods(http.MethodPost)
	api.HandleFunc("/computer-move/{gameId}", gameHandler.ComputerMove).Methods(http.MethodPost)
	api.HandleFunc("/get-game-state/{gameId}", gameHandler.GetState).Methods(http.MethodGet)
	api.HandleFunc("/reset-game/{gameId}", gameHandler.Reset).Methods(http.MethodPost)
	api.HandleFunc("/hardware-reset/{gameId}", gameHandler.HardwareReset).Methods(http.MethodPost)
	api.HandleFunc("/play-again/{gameId}", gameHandler.PlayAgain).Methods(http.MethodPost)
	api.HandleFunc("/end-game/{gameId}", gameHandler.EndGame).Methods(http.MethodPost)

	if cfg.HubManager != nil {
		streamHandler := handler.NewStreamHandler(cfg.GameController, cfg.HubManager, cfg.Logger)
		api.HandleFunc("/game-stream/{gameId}", streamHandler.Stream).Methods(http.MethodGet)
	}

	api.HandleFunc("/board", boardHandler.Layout).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowCredentials(),
	)
	return cors(r)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
