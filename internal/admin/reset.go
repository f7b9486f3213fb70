// Package admin provides administrative operations for database management.
package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/jackc/pgx/v5/pgconn"
)

// ResetTimeout is the maximum duration for schema and reset operations.
const ResetTimeout = 30 * time.Second

// Execer runs statements. Satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       TEXT PRIMARY KEY,
		name          TEXT,
		nickname      TEXT,
		email         TEXT,
		picture       TEXT,
		last_login    TIMESTAMPTZ,
		logins_count  INTEGER NOT NULL DEFAULT 0,
		identities    JSONB NOT NULL DEFAULT '[]',
		app_metadata  JSONB NOT NULL DEFAULT '{}',
		user_metadata JSONB NOT NULL DEFAULT '{}',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS users_last_login_idx ON users (last_login DESC NULLS LAST)`,
	`CREATE TABLE IF NOT EXISTS logs (
		log_id      TEXT PRIMARY KEY,
		date        TIMESTAMPTZ NOT NULL,
		type        TEXT NOT NULL,
		description TEXT,
		user_id     TEXT,
		user_name   TEXT,
		client_name TEXT,
		ip          TEXT,
		details     JSONB
	)`,
	`CREATE INDEX IF NOT EXISTS logs_date_idx ON logs (date DESC, log_id DESC)`,
}

type step struct {
	name string
	sql  string
	args []any
}

// Migrate creates the users and logs tables when missing.
func Migrate(ctx context.Context, db Execer) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	steps := make([]step, len(schema))
	for i, sql := range schema {
		steps[i] = step{name: fmt.Sprintf("schema %d", i+1), sql: sql}
	}
	return runSteps(ctx, db, steps)
}

// ResetAll empties the users and logs tables.
// This is a destructive operation - use with caution.
func ResetAll(ctx context.Context, db Execer) error {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	return runSteps(ctx, db, []step{
		{name: "reset logs", sql: "TRUNCATE logs"},
		{name: "reset users", sql: "TRUNCATE users"},
	})
}

const upsertUser = `INSERT INTO users (user_id, name, nickname, email, picture,
	last_login, logins_count, identities, app_metadata, user_metadata)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (user_id) DO UPDATE SET
	name = EXCLUDED.name, nickname = EXCLUDED.nickname, email = EXCLUDED.email,
	picture = EXCLUDED.picture, last_login = EXCLUDED.last_login,
	logins_count = EXCLUDED.logins_count, identities = EXCLUDED.identities,
	app_metadata = EXCLUDED.app_metadata, user_metadata = EXCLUDED.user_metadata`

// ImportUsers upserts records into the users table. Records without a
// user_id are rejected before anything is written.
func ImportUsers(ctx context.Context, db Execer, records []columns.Record) (int, error) {
	steps := make([]step, 0, len(records))
	for i, rec := range records {
		id := rec.ID("user_id")
		if id == "" {
			return 0, fmt.Errorf("import users: record %d has no user_id", i)
		}
		args, err := userArgs(rec)
		if err != nil {
			return 0, fmt.Errorf("import users: record %s: %w", id, err)
		}
		steps = append(steps, step{name: "upsert " + id, sql: upsertUser, args: args})
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	if err := runSteps(ctx, db, steps); err != nil {
		return 0, err
	}
	return len(steps), nil
}

func userArgs(rec columns.Record) ([]any, error) {
	args := []any{rec.ID("user_id")}
	for _, k := range []string{"name", "nickname", "email", "picture", "last_login"} {
		args = append(args, nullable(rec[k]))
	}

	count := 0
	if n, ok := rec["logins_count"].(float64); ok {
		count = int(n)
	} else if n, ok := rec["logins_count"].(int); ok {
		count = n
	}
	args = append(args, count)

	identities, err := jsonOr(rec["identities"], "[]")
	if err != nil {
		return nil, err
	}
	args = append(args, identities)

	for _, k := range []string{"app_metadata", "user_metadata"} {
		b, err := jsonOr(rec[k], "{}")
		if err != nil {
			return nil, err
		}
		args = append(args, b)
	}
	return args, nil
}

func nullable(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}

func jsonOr(v any, empty string) (string, error) {
	if v == nil {
		return empty, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// runSteps executes steps in order and stops at the first failure.
func runSteps(ctx context.Context, db Execer, steps []step) error {
	for _, s := range steps {
		if _, err := db.Exec(ctx, s.sql, s.args...); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}
