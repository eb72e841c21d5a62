package factory

import (
	"sync"
	"time"

	"github.com/mcoot/snakeladder/internal/dependencies/mocks"
	"github.com/mcoot/snakeladder/internal/model"
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/services/computer"
	"github.com/mcoot/snakeladder/internal/storage/memory"
	"github.com/mcoot/snakeladder/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MockIDs    *mocks.SequenceIDs
	Notifier   *RecordingNotifier
}

// RecordingNotifier captures board notifications instead of sending them.
// Read the fields only after the requests that fill them have finished.
type RecordingNotifier struct {
	mu         sync.Mutex
	Setups     []*model.Game
	PlayAgains []model.GameID
	EndGames   []model.GameID
}

// GameSetup records the game
func (n *RecordingNotifier) GameSetup(game *model.Game) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Setups = append(n.Setups, game.Clone())
}

// PlayAgain records the game id
func (n *RecordingNotifier) PlayAgain(gameID model.GameID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.PlayAgains = append(n.PlayAgains, gameID)
}

// EndGame records the game id
func (n *RecordingNotifier) EndGame(gameID model.GameID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.EndGames = append(n.EndGames, gameID)
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Ids come out as g-1, g-2, ... and computer rolls are taken from
// MockRandom (Intn 0 rolls a 1).
func NewTestApp() *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()
	mockIDs := mocks.NewSequenceIDs("g")
	notifier := &RecordingNotifier{}

	authCfg := auth.DefaultConfig()
	authCfg.Secret = "test-secret"

	app := newWithDependencies(dependencies{
		store:      memory.New(),
		clock:      mockClock,
		random:     mockRandom,
		ids:        mockIDs,
		strategy:   computer.NewRandomStrategy(mockRandom),
		notifier:   notifier,
		authConfig: authCfg,
		logger:     testutil.NopLogger(),
	})

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MockIDs:    mockIDs,
		Notifier:   notifier,
	}
}
