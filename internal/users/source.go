// Package users provides the row source of the users table.
package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/format"
)

// ErrNotFound is returned by Get when no user has the id.
var ErrNotFound = errors.New("user not found")

// IDKey is the record key holding the user id.
const IDKey = "user_id"

// DefaultPerPage is used when a query does not set PerPage.
const DefaultPerPage = 10

// MaxPage is the highest page a source serves; larger requests get it.
const MaxPage = 100_000

// Query selects one page of users.
type Query struct {
	Page    int // zero based
	PerPage int
	Sort    columns.SortState
	Search  string
}

// normalize fills defaults and clamps the page bounds.
func (q Query) normalize() Query {
	q.Page = max(0, min(q.Page, MaxPage))
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}
	if q.Sort.Order != columns.Ascending {
		q.Sort.Order = columns.Descending
	}
	return q
}

// Page is one page of users in display order.
type Page struct {
	Records []columns.Record
	Total   int64
	Page    int
	PerPage int
}

// TotalPages returns the number of pages, at least one.
func (p Page) TotalPages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Page+1 < p.TotalPages()
}

// Source reads users. Implementations return records the caller may read
// but must not modify.
type Source interface {
	List(ctx context.Context, q Query) (*Page, error)
	Get(ctx context.Context, id string) (columns.Record, error)
}

// SortKeys are the keys a Source can sort by.
var SortKeys = map[string]string{
	"name":         "name",
	"email":        "email",
	"last_login":   "last_login",
	"logins_count": "logins_count",
	"created_at":   "created_at",
}

// jsonSortRoots are the JSON columns whose nested keys can be sorted by.
var jsonSortRoots = map[string]bool{
	"app_metadata":  true,
	"user_metadata": true,
}

// CanSort reports whether the sources order by key: one of SortKeys or a
// dotted path into app_metadata or user_metadata.
func CanSort(key string) bool {
	if _, ok := SortKeys[key]; ok {
		return true
	}
	_, _, ok := jsonSortPath(key)
	return ok
}

// jsonSortPath splits "app_metadata.plan.tier" into its column and path.
func jsonSortPath(key string) (string, []string, bool) {
	root, rest, ok := strings.Cut(key, ".")
	if !ok || !jsonSortRoots[root] {
		return "", nil, false
	}
	path := strings.Split(rest, ".")
	for _, seg := range path {
		if seg == "" {
			return "", nil, false
		}
	}
	return root, path, true
}

// withDerived returns a copy of rec with display-only keys added.
func withDerived(rec columns.Record, now time.Time) columns.Record {
	out := make(columns.Record, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	if t, ok := format.ParseTime(rec["last_login"]); ok {
		out["last_login_relative"] = format.Relative(t, now)
	} else {
		out["last_login_relative"] = "never"
	}
	return out
}
