package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/snakeladder/internal/dependencies/mocks"
)

type ConfigSuite struct {
	suite.Suite
	random *mocks.MockRandom
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	s.random = mocks.NewMockRandom()
}

func env(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func (s *ConfigSuite) TestDefaults() {
	cfg := Default()
	s.Equal(5000, cfg.Port)
	s.Equal(StorageMemory, cfg.Storage.Type)
	s.Equal(24*time.Hour, cfg.Auth.TokenTTL)
	s.Equal([]string{"http://localhost:5173", "http://192.168.4.1"}, cfg.AllowedOrigins)
	s.Equal(":5000", cfg.Addr())
}

func (s *ConfigSuite) TestEnvOverrides() {
	cfg := Default()
	err := cfg.applyEnv(env(map[string]string{
		"HOST":                "127.0.0.1",
		"PORT":                "8080",
		"STORAGE_TYPE":        "Redis",
		"REDIS_URL":           "redis://cache:6379",
		"JWT_TTL":             "2h",
		"ALLOWED_ORIGINS":     " http://a.test , http://b.test,,",
		"HARDWARE_ENABLED":    "false",
		"HARDWARE_BASE_URL":   "http://10.0.0.9/",
		"HARDWARE_TIMEOUT":    "500ms",
		"HARDWARE_WORKERS":    "4",
		"HARDWARE_QUEUE_SIZE": "8",
		"LOG_LEVEL":           "debug",
	}))
	s.Require().NoError(err)

	s.Equal("127.0.0.1:8080", cfg.Addr())
	s.Equal(StorageRedis, cfg.Storage.Type)
	s.Equal("redis://cache:6379", cfg.Storage.RedisURL)
	s.Equal(2*time.Hour, cfg.Auth.TokenTTL)
	s.Equal([]string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	s.False(cfg.Hardware.Enabled)
	s.Equal("http://10.0.0.9", cfg.Hardware.BaseURL)
	s.Equal(500*time.Millisecond, cfg.Hardware.Timeout)
	s.Equal(4, cfg.Hardware.Workers)
	s.Equal(8, cfg.Hardware.QueueSize)
	s.Equal("DEBUG", cfg.SlogLevel().String())
}

func (s *ConfigSuite) TestJWTAlias() {
	cfg := Default()
	s.Require().NoError(cfg.applyEnv(env(map[string]string{"JWT": "legacy"})))
	s.Equal("legacy", cfg.Auth.JWTSecret)

	cfg = Default()
	s.Require().NoError(cfg.applyEnv(env(map[string]string{"JWT": "legacy", "JWT_SECRET": "current"})))
	s.Equal("current", cfg.Auth.JWTSecret)
}

func (s *ConfigSuite) TestMalformedValuesFail() {
	for key, value := range map[string]string{
		"PORT":             "five",
		"JWT_TTL":          "forever",
		"HARDWARE_ENABLED": "maybe",
		"HARDWARE_TIMEOUT": "3",
		"HARDWARE_WORKERS": "two",
	} {
		cfg := Default()
		s.Error(cfg.applyEnv(env(map[string]string{key: value})), key)
	}
}

func (s *ConfigSuite) TestValidateRequiresConnectionStrings() {
	for _, storageType := range []string{StorageRedis, StorageMongo, StoragePostgres} {
		cfg := Default()
		cfg.Storage.Type = storageType
		cfg.Auth.JWTSecret = "secret"
		s.Error(cfg.Validate(s.random), storageType)
	}
}

func (s *ConfigSuite) TestValidateRejectsUnknownStorage() {
	cfg := Default()
	cfg.Storage.Type = "cassandra"
	s.ErrorContains(cfg.Validate(s.random), "invalid STORAGE_TYPE")
}

func (s *ConfigSuite) TestValidateRequiresSecretOutsideMemory() {
	cfg := Default()
	cfg.Storage.Type = StorageSQLite

	s.ErrorContains(cfg.Validate(s.random), "JWT_SECRET")
}

func (s *ConfigSuite) TestMemoryModeGeneratesSecret() {
	s.random.QueueString("generated-secret")
	cfg := Default()

	s.Require().NoError(cfg.Validate(s.random))
	s.Equal("generated-secret", cfg.Auth.JWTSecret)
	s.True(cfg.EphemeralSecret)
}

func (s *ConfigSuite) TestValidateRejectsBadPort() {
	cfg := Default()
	cfg.Auth.JWTSecret = "secret"
	cfg.Port = 70000
	s.Error(cfg.Validate(s.random))
}

func (s *ConfigSuite) TestLoadLayersFileThenEnv() {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "config.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
port: 7000
storage:
  type: sqlite
  sqlitePath: /tmp/snl.db
auth:
  jwtSecret: from-file
  tokenTtl: 1h
hardware:
  enabled: false
  timeout: 2s
allowedOrigins:
  - http://file.test
`), 0o600))

	s.T().Setenv("CONFIG_FILE", path)
	s.T().Setenv("PORT", "7001")
	s.T().Setenv("JWT_SECRET", "")
	s.T().Setenv("JWT", "")
	s.T().Setenv("STORAGE_TYPE", "")

	cfg, err := Load(s.random)
	s.Require().NoError(err)
	s.Equal(7001, cfg.Port)
	s.Equal(StorageSQLite, cfg.Storage.Type)
	s.Equal("/tmp/snl.db", cfg.Storage.SQLitePath)
	s.Equal("from-file", cfg.Auth.JWTSecret)
	s.Equal(time.Hour, cfg.Auth.TokenTTL)
	s.False(cfg.Hardware.Enabled)
	s.Equal(2*time.Second, cfg.Hardware.Timeout)
	s.Equal([]string{"http://file.test"}, cfg.AllowedOrigins)
}

func (s *ConfigSuite) TestLoadFailsOnMissingFile() {
	s.T().Setenv("CONFIG_FILE", filepath.Join(s.T().TempDir(), "missing.yaml"))

	_, err := Load(s.random)
	s.ErrorContains(err, "read config file")
}

func (s *ConfigSuite) TestLoadReadsBoardLayout() {
	path := filepath.Join(s.T().TempDir(), "board.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(`
snakes:
  50: 10
ladders:
  3: 30
  60: 90
`), 0o600))

	s.T().Setenv("CONFIG_FILE", "")
	s.T().Setenv("STORAGE_TYPE", "")
	s.T().Setenv("BOARD_LAYOUT_FILE", path)

	cfg, err := Load(s.random)
	s.Require().NoError(err)
	s.Equal(path, cfg.Board.LayoutFile)
	s.Require().NotNil(cfg.Board.Layout)
	s.Equal(map[int]int{50: 10}, cfg.Board.Layout.Snakes)
	s.Equal(map[int]int{3: 30, 60: 90}, cfg.Board.Layout.Ladders)
}

func (s *ConfigSuite) TestLoadWithoutLayoutUsesStandardBoard() {
	s.T().Setenv("CONFIG_FILE", "")
	s.T().Setenv("STORAGE_TYPE", "")
	s.T().Setenv("BOARD_LAYOUT_FILE", "")

	cfg, err := Load(s.random)
	s.Require().NoError(err)
	s.Nil(cfg.Board.Layout)
}

func (s *ConfigSuite) TestLoadFailsOnUnreadableLayout() {
	s.T().Setenv("CONFIG_FILE", "")
	s.T().Setenv("STORAGE_TYPE", "")
	s.T().Setenv("BOARD_LAYOUT_FILE", filepath.Join(s.T().TempDir(), "missing.yaml"))

	_, err := Load(s.random)
	s.ErrorContains(err, "read board layout")
}
