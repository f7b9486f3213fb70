package fieldrules

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/JonMunkholm/userdash/internal/format"
)

// Registry maps formatter names used in rules files to format functions.
type Registry struct {
	mu         sync.RWMutex
	formatters map[string]columns.FormatFunc
}

// NewRegistry returns a registry holding the built-in formatters.
func NewRegistry() *Registry {
	r := &Registry{formatters: make(map[string]columns.FormatFunc)}
	r.Register("upper", stringFormatter(strings.ToUpper))
	r.Register("lower", stringFormatter(strings.ToLower))
	r.Register("relative_time", relativeTime)
	r.Register("date", dateOnly)
	r.Register("yes_no", yesNo)
	r.Register("count", count)
	r.Register("first_connection", firstConnection)
	return r
}

// Register adds a formatter. Panics if the name is already taken.
func (r *Registry) Register(name string, fn columns.FormatFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.formatters[name]; exists {
		panic(fmt.Sprintf("formatter already registered: %s", name))
	}
	r.formatters[name] = fn
}

// Get returns the formatter registered under name.
func (r *Registry) Get(name string) (columns.FormatFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.formatters[name]
	return fn, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.formatters))
	for name := range r.formatters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringFormatter(fn func(string) string) columns.FormatFunc {
	return func(_ columns.Record, v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return v, nil
		}
		return fn(s), nil
	}
}

func relativeTime(_ columns.Record, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := format.ParseTime(v)
	if !ok {
		return nil, fmt.Errorf("relative_time: not a timestamp: %v", v)
	}
	return format.Relative(t, time.Now()), nil
}

func dateOnly(_ columns.Record, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	t, ok := format.ParseTime(v)
	if !ok {
		return nil, fmt.Errorf("date: not a timestamp: %v", v)
	}
	return t.Format("2006-01-02"), nil
}

func yesNo(_ columns.Record, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, nil
	}
	if b {
		return "Yes", nil
	}
	return "No", nil
}

func count(_ columns.Record, v any) (any, error) {
	switch x := v.(type) {
	case []any:
		return len(x), nil
	case map[string]any:
		return len(x), nil
	case nil:
		return 0, nil
	}
	return nil, fmt.Errorf("count: not a list: %T", v)
}

func firstConnection(row columns.Record, _ any) (any, error) {
	v, ok := columns.Lookup(row, "identities.0.connection")
	if !ok {
		return columns.NoValue, nil
	}
	return v, nil
}
