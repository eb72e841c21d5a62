package factory

import (
	"github.com/mcoot/snakeladder/internal/services/auth"
	"github.com/mcoot/snakeladder/internal/storage/sqlstore"
)

func sqlstoreMemoryConfig() sqlstore.Config {
	return sqlstore.SQLiteConfig(":memory:")
}

func testAuthConfig() auth.Config {
	cfg := auth.DefaultConfig()
	cfg.Secret = "test-secret"
	return cfg
}
