package columns

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink collects diagnostics for assertions.
type recordingSink struct {
	mu    sync.Mutex
	diags []Diagnostic
}

func (s *recordingSink) FormatterFailed(_ context.Context, d Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.diags = append(s.diags, d)
}

func TestValue_FallbackChain(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	row := Record{"id": "1", "name": "Ada"}

	assert.Equal(t, "N/A", r.Value(t.Context(), Field{Property: Path("missing")}, row, "N/A"))
	assert.Equal(t, "Ada", r.Value(t.Context(), Field{Property: Path("name")}, row, "N/A"))
	assert.Nil(t, r.Value(t.Context(), Field{Property: Path("missing")}, row, nil))
}

func TestValue_ZeroIsAValue(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	row := Record{"logins_count": 0, "blocked": false, "nickname": ""}

	assert.Equal(t, 0, r.Value(t.Context(), Field{Property: Path("logins_count")}, row, "-"))
	assert.Equal(t, false, r.Value(t.Context(), Field{Property: Path("blocked")}, row, "-"))
	assert.Equal(t, "-", r.Value(t.Context(), Field{Property: Path("nickname")}, row, "-"))
}

func TestValue_NestedLookup(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	row := Record{
		"app_metadata": map[string]any{"vendor": "acme"},
		"identities":   []any{map[string]any{"connection": "github"}},
	}

	assert.Equal(t, "acme", r.Value(t.Context(), Field{Property: Path("app_metadata.vendor")}, row, nil))
	assert.Equal(t, "github", r.Value(t.Context(), Field{Property: Path("identities.0.connection")}, row, nil))
	assert.Equal(t, "x", r.Value(t.Context(), Field{Property: Path("app_metadata.vendor.deeper")}, row, "x"))
	assert.Equal(t, "x", r.Value(t.Context(), Field{Property: Path("identities.3.connection")}, row, "x"))
}

func TestValue_Formatter(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	upper := Formatted(func(row Record, v any) (any, error) {
		return "<" + row.ID("id") + ":" + v.(string) + ">", nil
	})

	got := r.Value(t.Context(), Field{Property: Path("name"), Display: upper}, Record{"id": "7", "name": "a"}, nil)
	assert.Equal(t, "<7:a>", got)
}

func TestValue_FormatterIsolation(t *testing.T) {
	sink := &recordingSink{}
	r := NewCellResolver("id", sink)

	field := Field{
		Property: Path("n"),
		Label:    "Double",
		Display: Formatted(func(row Record, v any) (any, error) {
			if row["id"] == "42" {
				return nil, errors.New("boom")
			}
			return v.(int) * 2, nil
		}),
	}
	rows := []Record{
		{"id": "41", "n": 1},
		{"id": "42", "n": 2},
		{"id": "43", "n": 3},
	}

	var got []any
	for _, row := range rows {
		got = append(got, r.Value(t.Context(), field, row, nil))
	}

	assert.Equal(t, []any{2, ErrorSentinel, 6}, got)
	require.Len(t, sink.diags, 1)
	assert.Equal(t, Diagnostic{RowID: "42", Column: "Double", Message: "boom"}, sink.diags[0])
}

func TestValue_FormatterPanic(t *testing.T) {
	sink := &recordingSink{}
	r := NewCellResolver("user_id", sink)

	field := Field{
		Property: Path("identities"),
		Label:    "Connection",
		Display: Formatted(func(_ Record, v any) (any, error) {
			return v.([]any)[0], nil
		}),
	}

	got := r.Value(t.Context(), field, Record{"user_id": "auth0|1", "identities": []any{}}, nil)
	assert.Equal(t, ErrorSentinel, got)
	require.Len(t, sink.diags, 1)
	assert.Equal(t, "auth0|1", sink.diags[0].RowID)
	assert.Contains(t, sink.diags[0].Message, "formatter panic")
}

func TestValue_StructuredValuesAreCanonicalJSON(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	row := Record{"meta": map[string]any{"b": 2, "a": "x"}}

	got := r.Value(t.Context(), Field{Property: Path("meta")}, row, nil)
	assert.Equal(t, `{"a":"x","b":2}`, got)
}

func TestValue_AccessorProperty(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	field := Field{Property: Func("full", func(row Record) any {
		return row["given_name"].(string) + " " + row["family_name"].(string)
	})}

	assert.Equal(t, "Ada Lovelace", r.Value(t.Context(), field, Record{"given_name": "Ada", "family_name": "Lovelace"}, nil))
	// A panicking accessor is a miss.
	assert.Equal(t, "?", r.Value(t.Context(), field, Record{}, "?"))
}

func TestValue_ConnectionColumnEmptyIdentities(t *testing.T) {
	cols, err := Resolve(DefaultUserFields(), []Customization{{Property: Path("connection"), Display: Shown}})
	require.NoError(t, err)
	conn := cols[4]

	r := &CellResolver{Sink: Discard}
	assert.Equal(t, "github", r.Value(t.Context(), conn, Record{"identities": []any{map[string]any{"connection": "github"}}}, nil))
	assert.Equal(t, "-", r.Value(t.Context(), conn, Record{"identities": []any{}}, "-"))
	assert.Equal(t, "-", r.Value(t.Context(), conn, Record{"identities": []any{map[string]any{"provider": "x"}}}, "-"))
	assert.Equal(t, "-", r.Value(t.Context(), conn, Record{}, "-"))
	assert.Nil(t, r.Value(t.Context(), conn, Record{"identities": []any{}}, nil))
}

func TestValue_NoValueSkipsSerialization(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	field := Field{
		Property: Path("tags"),
		Display: Formatted(func(Record, any) (any, error) {
			return NoValue, nil
		}),
	}

	assert.Equal(t, "none", r.Value(t.Context(), field, Record{"tags": []any{"a", "b"}}, "none"))
}

func TestDefaultUserFields_Formatters(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	fields := DefaultUserFields()
	name, email := fields[0], fields[1]

	assert.Equal(t, "nick", r.Value(t.Context(), name, Record{"nickname": "nick", "email": "e@x"}, nil))
	assert.Equal(t, "e@x", r.Value(t.Context(), name, Record{"email": "e@x"}, nil))
	assert.Equal(t, "auth0|9", r.Value(t.Context(), name, Record{"user_id": "auth0|9"}, nil))
	assert.Equal(t, "(empty)", r.Value(t.Context(), name, Record{}, "(empty)"))
	assert.Equal(t, "N/A", r.Value(t.Context(), email, Record{}, nil))
}

func TestText(t *testing.T) {
	r := &CellResolver{Sink: Discard}
	assert.Equal(t, "3", r.Text(t.Context(), Field{Property: Path("n")}, Record{"n": 3}, nil))
	assert.Equal(t, "", r.Text(t.Context(), Field{Property: Path("n")}, Record{}, nil))
}
