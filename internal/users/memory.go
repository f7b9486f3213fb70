package users

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
)

// MemorySource serves users from memory. It backs file based listings and
// tests.
type MemorySource struct {
	mu      sync.RWMutex
	records []columns.Record
	now     func() time.Time
}

// NewMemorySource returns a source holding records.
func NewMemorySource(records []columns.Record) *MemorySource {
	return &MemorySource{records: records, now: time.Now}
}

// ReadJSON reads a JSON array of user objects.
func ReadJSON(r io.Reader) (*MemorySource, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	records := make([]columns.Record, len(raw))
	for i, m := range raw {
		records[i] = m
	}
	return NewMemorySource(records), nil
}

// List returns one page of users.
func (s *MemorySource) List(_ context.Context, q Query) (*Page, error) {
	q = q.normalize()

	s.mu.RLock()
	matched := make([]columns.Record, 0, len(s.records))
	for _, rec := range s.records {
		if matchesSearch(rec, q.Search) {
			matched = append(matched, rec)
		}
	}
	s.mu.RUnlock()

	key := q.Sort.Key
	if !CanSort(key) {
		key = "last_login"
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, _ := columns.Lookup(matched[i], key)
		b, _ := columns.Lookup(matched[j], key)
		c := compareValues(a, b)
		if q.Sort.Order == columns.Ascending {
			return c < 0
		}
		return c > 0
	})

	total := int64(len(matched))
	start := q.Page * q.PerPage
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PerPage
	if end > len(matched) {
		end = len(matched)
	}

	now := s.now()
	records := make([]columns.Record, 0, end-start)
	for _, rec := range matched[start:end] {
		records = append(records, withDerived(rec, now))
	}
	return &Page{Records: records, Total: total, Page: q.Page, PerPage: q.PerPage}, nil
}

// Get returns the user with id.
func (s *MemorySource) Get(_ context.Context, id string) (columns.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.records {
		if rec.ID(IDKey) == id {
			return withDerived(rec, s.now()), nil
		}
	}
	return nil, ErrNotFound
}

func matchesSearch(rec columns.Record, search string) bool {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, key := range []string{"name", "nickname", "email"} {
		if s, ok := rec[key].(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

// compareValues orders nil lowest, numbers numerically, times chronologically
// and everything else as strings.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}
