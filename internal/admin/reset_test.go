package admin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/jackc/pgx/v5/pgconn"
)

type recorder struct {
	sql    []string
	args   [][]any
	failAt int // 1-based statement that fails; 0 never
}

func (r *recorder) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	r.sql = append(r.sql, sql)
	r.args = append(r.args, args)
	if r.failAt == len(r.sql) {
		return pgconn.CommandTag{}, errors.New("connection reset by peer")
	}
	return pgconn.NewCommandTag("OK"), nil
}

func TestMigrate(t *testing.T) {
	db := &recorder{}
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if len(db.sql) != len(schema) {
		t.Fatalf("statements = %d, want %d", len(db.sql), len(schema))
	}
	if !strings.Contains(db.sql[0], "CREATE TABLE IF NOT EXISTS users") {
		t.Errorf("first statement = %q, want users table", db.sql[0])
	}
}

func TestMigrate_StopsOnError(t *testing.T) {
	db := &recorder{failAt: 2}
	err := Migrate(context.Background(), db)
	if err == nil {
		t.Fatal("Migrate() expected error")
	}
	if !strings.Contains(err.Error(), "schema 2") {
		t.Errorf("error should name the failing step: %v", err)
	}
	if len(db.sql) != 2 {
		t.Errorf("statements = %d, want %d", len(db.sql), 2)
	}
}

func TestResetAll(t *testing.T) {
	db := &recorder{}
	if err := ResetAll(context.Background(), db); err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	want := []string{"TRUNCATE logs", "TRUNCATE users"}
	for i, w := range want {
		if db.sql[i] != w {
			t.Errorf("statement[%d] = %q, want %q", i, db.sql[i], w)
		}
	}
}

func TestImportUsers(t *testing.T) {
	db := &recorder{}
	n, err := ImportUsers(context.Background(), db, []columns.Record{
		{
			"user_id":      "u1",
			"name":         "Ada",
			"email":        "",
			"logins_count": float64(4),
			"identities":   []any{map[string]any{"connection": "github"}},
		},
	})
	if err != nil {
		t.Fatalf("ImportUsers() error = %v", err)
	}
	if n != 1 {
		t.Errorf("imported = %d, want %d", n, 1)
	}

	args := db.args[0]
	if args[0] != "u1" {
		t.Errorf("user_id arg = %v, want %v", args[0], "u1")
	}
	if args[3] != nil {
		t.Errorf("empty email should be NULL, got %v", args[3])
	}
	if args[6] != 4 {
		t.Errorf("logins_count arg = %v, want %v", args[6], 4)
	}
	if args[7] != `[{"connection":"github"}]` {
		t.Errorf("identities arg = %v", args[7])
	}
	if args[8] != "{}" {
		t.Errorf("app_metadata arg = %v, want {}", args[8])
	}
}

func TestImportUsers_MissingID(t *testing.T) {
	db := &recorder{}
	_, err := ImportUsers(context.Background(), db, []columns.Record{{"name": "nobody"}})
	if err == nil {
		t.Fatal("ImportUsers() expected error for record without user_id")
	}
	if len(db.sql) != 0 {
		t.Errorf("no statement should run, got %d", len(db.sql))
	}
}
