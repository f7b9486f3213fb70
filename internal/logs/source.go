// Package logs provides the paginated log stream shown on the logs page.
package logs

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/format"
	"github.com/jackc/pgx/v5"
)

// IDKey is the record key holding the log id.
const IDKey = "log_id"

// DefaultPerPage is the page size of the log stream.
const DefaultPerPage = 20

// Page is one page of decorated log records, newest first.
type Page struct {
	Records  []columns.Record
	Total    int64
	Page     int // zero based
	PerPage  int
	NextPage int
}

// HasNext reports whether more records follow this page.
func (p Page) HasNext() bool {
	return int64(p.NextPage*p.PerPage) < p.Total
}

// Source reads log records.
type Source interface {
	Page(ctx context.Context, page, perPage int) (*Page, error)
}

// Decorate returns a copy of rec whose "type" holds the type description
// (code, event, icon) instead of the bare code. rec is not modified.
func Decorate(rec columns.Record, now time.Time) columns.Record {
	out := make(columns.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}

	code, _ := rec["type"].(string)
	t := Describe(code)
	out["type"] = map[string]any{
		"code":  code,
		"event": t.Event,
		"icon":  map[string]any{"name": t.Icon.Name, "color": t.Icon.Color},
	}
	if d, ok := format.ParseTime(rec["date"]); ok {
		out["date_relative"] = format.Relative(d, now)
	}
	return out
}

// Fields are the columns of the logs table.
func Fields() []columns.Field {
	return []columns.Field{
		{Property: columns.Path("type.event"), Label: "Event", Order: 0, Width: "25%"},
		{Property: columns.Path("description"), Label: "Description", Order: 1, Width: "30%"},
		{Property: columns.Path("date_relative"), Label: "Date", Order: 2, Width: "15%"},
		{Property: columns.Path("client_name"), Label: "Application", Order: 3, Width: "15%"},
		{Property: columns.Path("user_name"), Label: "User", Order: 4, Width: "15%"},
	}
}

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	QueryRow(context.Context, string, ...any) pgx.Row
}

// PostgresSource reads the logs table.
type PostgresSource struct {
	db  Querier
	now func() time.Time
}

// NewPostgresSource returns a log source backed by db.
func NewPostgresSource(db Querier) *PostgresSource {
	return &PostgresSource{db: db, now: time.Now}
}

// Page returns page (zero based) of the stream, newest first.
func (s *PostgresSource) Page(ctx context.Context, page, perPage int) (*Page, error) {
	page, perPage = clamp(page, perPage)

	var total int64
	if err := s.db.QueryRow(ctx, "SELECT COUNT(*) FROM logs").Scan(&total); err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}

	rows, err := s.db.Query(ctx, `SELECT log_id, date, type, description, user_id,
		user_name, client_name, ip, details FROM logs
		ORDER BY date DESC, log_id DESC LIMIT $1 OFFSET $2`, perPage, page*perPage)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("scan logs: %w", err)
	}

	now := s.now()
	records := make([]columns.Record, len(maps))
	for i, m := range maps {
		records[i] = Decorate(m, now)
	}
	return &Page{Records: records, Total: total, Page: page, PerPage: perPage, NextPage: page + 1}, nil
}

// MemorySource serves a fixed slice of log records, newest first.
type MemorySource struct {
	Records []columns.Record
	Err     error // returned by Page when set
}

// Page returns page (zero based) of the records.
func (s *MemorySource) Page(_ context.Context, page, perPage int) (*Page, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	page, perPage = clamp(page, perPage)

	start := page * perPage
	if start > len(s.Records) {
		start = len(s.Records)
	}
	end := start + perPage
	if end > len(s.Records) {
		end = len(s.Records)
	}

	now := time.Now()
	records := make([]columns.Record, 0, end-start)
	for _, rec := range s.Records[start:end] {
		records = append(records, Decorate(rec, now))
	}
	return &Page{
		Records:  records,
		Total:    int64(len(s.Records)),
		Page:     page,
		PerPage:  perPage,
		NextPage: page + 1,
	}, nil
}

// MaxPage is the highest page a source serves; larger requests get it.
const MaxPage = 100_000

func clamp(page, perPage int) (int, int) {
	page = max(0, min(page, MaxPage))
	if perPage <= 0 || perPage > 100 {
		perPage = DefaultPerPage
	}
	return page, perPage
}
