package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgx used by the Postgres sources.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

const userColumns = `user_id, name, nickname, email, picture, last_login,
	logins_count, identities, app_metadata, user_metadata, created_at`

// PostgresSource reads users from the users table.
type PostgresSource struct {
	db  DBTX
	now func() time.Time
}

// NewPostgresSource returns a Source backed by db.
func NewPostgresSource(db DBTX) *PostgresSource {
	return &PostgresSource{db: db, now: time.Now}
}

// List returns one page of users.
func (s *PostgresSource) List(ctx context.Context, q Query) (*Page, error) {
	q = q.normalize()
	where, args := searchClause(q.Search)

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	order, orderArgs := orderClause(q.Sort, len(args)+1)
	args = append(args, orderArgs...)
	sql := fmt.Sprintf("SELECT %s FROM users%s ORDER BY %s LIMIT $%d OFFSET $%d",
		userColumns, where, order, len(args)+1, len(args)+2)
	args = append(args, q.PerPage, q.Page*q.PerPage)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}

	now := s.now()
	records := make([]columns.Record, len(maps))
	for i, m := range maps {
		records[i] = withDerived(m, now)
	}

	return &Page{Records: records, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// Get returns the user with id.
func (s *PostgresSource) Get(ctx context.Context, id string) (columns.Record, error) {
	rows, err := s.db.Query(ctx, "SELECT "+userColumns+" FROM users WHERE user_id = $1", id)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	m, err := pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return withDerived(m, s.now()), nil
}

// searchClause matches the search term against name, nickname and email.
func searchClause(search string) (string, []any) {
	search = strings.TrimSpace(search)
	if search == "" {
		return "", nil
	}
	return " WHERE name ILIKE $1 OR nickname ILIKE $1 OR email ILIKE $1",
		[]any{"%" + escapeLike(search) + "%"}
}

// orderClause builds ORDER BY from a whitelisted key or a JSON path bound
// as parameter $param, with user_id as the tie breaker so pages are stable.
// Unknown keys order by last_login.
func orderClause(s columns.SortState, param int) (string, []any) {
	dir := "DESC"
	if s.Order == columns.Ascending {
		dir = "ASC"
	}
	if root, path, ok := jsonSortPath(s.Key); ok {
		return fmt.Sprintf("%s #>> $%d %s NULLS LAST, user_id ASC", root, param, dir), []any{path}
	}
	col, ok := SortKeys[s.Key]
	if !ok {
		col = "last_login"
	}
	return fmt.Sprintf("%s %s NULLS LAST, user_id ASC", col, dir), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
