package sqlstore

// Games keep their full record as JSON in data; the other columns exist
// for lookups and constraints.
var schemas = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			email_key     TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMP NOT NULL,
			CONSTRAINT users_email_unique UNIQUE (email_key),
			CONSTRAINT users_username_unique UNIQUE (username)
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			is_game_over BOOLEAN NOT NULL,
			revision     BIGINT NOT NULL,
			data         TEXT NOT NULL,
			updated_at   TIMESTAMP NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS games_active_per_user
			ON games(user_id) WHERE is_game_over = FALSE`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL,
			email         TEXT NOT NULL,
			email_key     TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL,
			CONSTRAINT users_email_unique UNIQUE (email_key),
			CONSTRAINT users_username_unique UNIQUE (username)
		)`,
		`CREATE TABLE IF NOT EXISTS games (
			id           TEXT PRIMARY KEY,
			user_id      TEXT NOT NULL,
			is_game_over BOOLEAN NOT NULL,
			revision     BIGINT NOT NULL,
			data         JSONB NOT NULL,
			updated_at   TIMESTAMPTZ NOT NULL
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS games_active_per_user
			ON games(user_id) WHERE is_game_over = FALSE`,
	},
}
