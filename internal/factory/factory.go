package factory

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/snakeladder/internal/config"
	"github.com/mcoot/snakeladder/internal/dependencies/clock"
	"github.com/mcoot/snakeladder/internal/dependencies/idgen"
	"github.com/mcoot/snakeladder/internal/dependencies/random"
	"github.com/mcoot/snakeladder/internal/hardware"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/realtime"
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/services/board"
	"github.com/mcoot/snakeladder/internal/services/computer"
	"github.com/mcoot/snakeladder/internal/services/game"
	"github.com/mcoot/snakeladder/internal/storage"
	"github.com/mcoot/snakeladder/internal/storage/memory"
	mongostorage "github.com/mcoot/snakeladder/internal/storage/mongo"
	redisstorage "github.com/mcoot/snakeladder/internal/storage/redis"
	"github.com/mcoot/snakeladder/internal/storage/sqlstore"
)

// Storage type constants
const (
	StorageTypeMemory   = config.StorageMemory
	StorageTypeRedis    = config.StorageRedis
	StorageTypeMongo    = config.StorageMongo
	StorageTypeSQLite   = config.StorageSQLite
	StorageTypePostgres = config.StoragePostgres
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	IDs    idgen.Generator

	// Services
	BoardService   *board.Service
	AuthService    *auth.Service
	GameController *game.Controller
	HubManager     *realtime.HubManager

	// Dispatcher delivers board notifications. Nil when hardware is disabled.
	Dispatcher *hardware.Dispatcher
}

// HardwareConfig controls notifications to the physical board
type HardwareConfig struct {
	Enabled    bool
	BaseURL    string
	Dispatcher hardware.DispatcherConfig
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service.
	// A zero TokenTTL falls back to auth.DefaultConfig().
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend
	// If empty, defaults to "memory"
	StorageType string
	// Backend settings, required for the matching StorageType
	RedisConfig *redisstorage.Config
	MongoConfig *mongostorage.Config
	SQLConfig   *sqlstore.Config
	// Hardware configures board notifications; disabled when zero
	Hardware HardwareConfig
	// ComputerStrategy names the single-mode die roller; defaults to random
	ComputerStrategy string
	// AllowedOrigins are accepted for websocket streams
	AllowedOrigins []string
	// Layout replaces the standard snakes and ladders when set
	Layout *model.Layout
}

// ConfigFromSettings translates loaded server settings into a factory Config
func ConfigFromSettings(s *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		AuthConfig: auth.Config{
			Secret:   s.Auth.JWTSecret,
			TokenTTL: s.Auth.TokenTTL,
		},
		Logger:           logger,
		StorageType:      s.Storage.Type,
		ComputerStrategy: s.ComputerStrategy,
		AllowedOrigins:   s.AllowedOrigins,
		Layout:           s.Board.Layout,
		Hardware: HardwareConfig{
			Enabled: s.Hardware.Enabled,
			BaseURL: s.Hardware.BaseURL,
			Dispatcher: hardware.DispatcherConfig{
				Workers:        s.Hardware.Workers,
				QueueSize:      s.Hardware.QueueSize,
				RequestTimeout: s.Hardware.Timeout,
			},
		},
	}

	switch s.Storage.Type {
	case StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = s.Storage.RedisURL
		cfg.RedisConfig = &redisCfg
	case StorageTypeMongo:
		mongoCfg := mongostorage.DefaultConfig()
		mongoCfg.URI = s.Storage.MongoURI
		if s.Storage.MongoDatabase != "" {
			mongoCfg.Database = s.Storage.MongoDatabase
		}
		cfg.MongoConfig = &mongoCfg
	case StorageTypeSQLite:
		sqlCfg := sqlstore.SQLiteConfig(s.Storage.SQLitePath)
		cfg.SQLConfig = &sqlCfg
	case StorageTypePostgres:
		sqlCfg := sqlstore.PostgresConfig(s.Storage.DatabaseURL)
		cfg.SQLConfig = &sqlCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	boardService := board.New(logger)
	if cfg.Layout != nil {
		var err error
		if boardService, err = board.NewWithLayout(*cfg.Layout, logger); err != nil {
			return nil, err
		}
		logger.Info("using custom board layout",
			slog.Int("snakes", len(cfg.Layout.Snakes)),
			slog.Int("ladders", len(cfg.Layout.Ladders)),
		)
	}

	store, err := newStorage(cfg)
	if err != nil {
		return nil, err
	}

	rnd := random.New()
	strategy, err := computer.NewStrategy(cfg.ComputerStrategy, rnd)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	var dispatcher *hardware.Dispatcher
	var notifier game.Notifier = hardware.Nop{}
	if cfg.Hardware.Enabled {
		var opts []hardware.Option
		if d := cfg.Hardware.Dispatcher.RequestTimeout; d > 0 {
			opts = append(opts, hardware.WithTimeout(d))
		}
		if n := cfg.Hardware.Dispatcher.Workers; n > 0 {
			opts = append(opts, hardware.WithMaxConnsPerHost(n))
		}
		client := hardware.NewClient(cfg.Hardware.BaseURL, opts...)
		dispatcher = hardware.NewDispatcher(client, cfg.Hardware.Dispatcher, logger)
		notifier = hardware.NewNotifier(dispatcher)
	}

	authCfg := cfg.AuthConfig
	if authCfg.TokenTTL == 0 {
		authCfg.TokenTTL = auth.DefaultConfig().TokenTTL
	}

	app := newWithDependencies(dependencies{
		store:          store,
		board:          boardService,
		clock:          clock.New(),
		random:         rnd,
		ids:            idgen.New(),
		strategy:       strategy,
		notifier:       notifier,
		authConfig:     authCfg,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	})
	app.Dispatcher = dispatcher
	return app, nil
}

// newStorage creates the backend selected by cfg.StorageType
func newStorage(cfg Config) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeMongo:
		if cfg.MongoConfig == nil {
			return nil, errors.New("MongoConfig required when StorageType is mongo")
		}
		return mongostorage.New(*cfg.MongoConfig)
	case StorageTypeSQLite, StorageTypePostgres:
		if cfg.SQLConfig == nil {
			return nil, fmt.Errorf("SQLConfig required when StorageType is %s", storageType)
		}
		return sqlstore.New(*cfg.SQLConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q", storageType)
	}
}

// dependencies are the swappable parts of an App
type dependencies struct {
	store          storage.Storage
	board          *board.Service
	clock          clock.Clock
	random         random.Random
	ids            idgen.Generator
	strategy       computer.Strategy
	notifier       game.Notifier
	authConfig     auth.Config
	allowedOrigins []string
	logger         *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	boardService := d.board
	if boardService == nil {
		boardService = board.New(d.logger)
	}
	hubManager := realtime.NewHubManager(d.allowedOrigins, d.logger)
	authService := auth.New(d.store, d.clock, d.ids, d.authConfig, d.logger)
	gameController := game.NewController(
		d.store,
		boardService,
		d.strategy,
		d.notifier,
		hubManager,
		d.ids,
		d.clock,
		d.logger,
	)

	return &App{
		Storage:        d.store,
		Clock:          d.clock,
		Random:         d.random,
		IDs:            d.ids,
		BoardService:   boardService,
		AuthService:    authService,
		GameController: gameController,
		HubManager:     hubManager,
	}
}

// Close releases the storage backend and disconnects stream subscribers
func (a *App) Close() error {
	a.HubManager.CloseAll()
	return a.Storage.Close()
}
