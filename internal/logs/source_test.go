package logs

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/JonMunkholm/userdash/internal/columns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, "Success Login", Describe("s").Event)
	assert.Equal(t, Unknown, Describe("zz"))
	assert.Equal(t, "354", Describe("").Icon.Name)
	assert.Equal(t, "#FFA500", Describe("").Icon.Color)
}

func TestDecorate_DoesNotModifyInput(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	rec := columns.Record{"log_id": "1", "type": "f", "date": now.Add(-2 * time.Hour)}

	out := Decorate(rec, now)

	assert.Equal(t, "f", rec["type"])
	_, has := rec["date_relative"]
	assert.False(t, has)

	v, ok := columns.Lookup(out, "type.event")
	require.True(t, ok)
	assert.Equal(t, "Failed Login", v)
	v, ok = columns.Lookup(out, "type.code")
	require.True(t, ok)
	assert.Equal(t, "f", v)
	assert.Equal(t, "2 hours ago", out["date_relative"])
}

func TestDecorate_UnknownType(t *testing.T) {
	out := Decorate(columns.Record{"type": "nope"}, time.Now())
	v, _ := columns.Lookup(out, "type.icon.name")
	assert.Equal(t, "354", v)
}

func TestMemorySource_Pages(t *testing.T) {
	var recs []columns.Record
	for i := 0; i < 25; i++ {
		recs = append(recs, columns.Record{"log_id": i, "type": "s"})
	}
	src := &MemorySource{Records: recs}

	first, err := src.Page(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Len(t, first.Records, 10)
	assert.True(t, first.HasNext())
	assert.Equal(t, 1, first.NextPage)

	last, err := src.Page(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Len(t, last.Records, 5)
	assert.False(t, last.HasNext())

	past, err := src.Page(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Empty(t, past.Records)
}

func TestMemorySource_Error(t *testing.T) {
	src := &MemorySource{Err: errors.New("upstream down")}
	_, err := src.Page(context.Background(), 0, 10)
	require.Error(t, err)
}

func TestFields_ResolveWithoutCustomizations(t *testing.T) {
	cols, err := columns.Resolve(Fields(), nil)
	require.NoError(t, err)
	assert.Len(t, cols, 5)
	assert.Equal(t, "type.event", cols[0].Key())
}

func TestMemorySource_HugePage(t *testing.T) {
	src := &MemorySource{Records: []columns.Record{{"log_id": "l1", "type": "s"}}}

	p, err := src.Page(context.Background(), math.MaxInt, 20)
	require.NoError(t, err)
	assert.Empty(t, p.Records)
	assert.Equal(t, MaxPage, p.Page)
}
