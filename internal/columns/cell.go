package columns

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	slogcontext "github.com/veqryn/slog-context"
)

// ErrorSentinel is rendered in place of a cell whose formatter failed.
const ErrorSentinel = "error"

// NoValue is returned by a formatter to leave the cell empty. The cell then
// shows the fallback; the raw value is neither shown nor serialized.
var NoValue any = noValue{}

type noValue struct{}

// Diagnostic describes one formatter failure.
type Diagnostic struct {
	RowID   string
	Column  string
	Message string
}

// DiagnosticSink receives formatter failures.
type DiagnosticSink interface {
	FormatterFailed(ctx context.Context, d Diagnostic)
}

// SlogSink reports diagnostics through the context logger.
type SlogSink struct{}

func (SlogSink) FormatterFailed(ctx context.Context, d Diagnostic) {
	slogcontext.FromCtx(ctx).Error("cell formatter failed",
		"row_id", d.RowID,
		"column", d.Column,
		"error", d.Message,
	)
}

// CellResolver computes cell display values.
// The zero value reads ids from "id" and logs failures with slog.
type CellResolver struct {
	IDKey string
	Sink  DiagnosticSink
}

// NewCellResolver returns a resolver reading row ids from idKey.
func NewCellResolver(idKey string, sink DiagnosticSink) *CellResolver {
	return &CellResolver{IDKey: idKey, Sink: sink}
}

// Value returns what to display for field in row: the formatted value, else
// the raw value, else fallback. It never panics because of a formatter.
func (r *CellResolver) Value(ctx context.Context, field Field, row Record, fallback any) any {
	raw, ok := r.raw(ctx, field, row)
	if !ok {
		raw = nil
	}

	var display any
	if field.Display.Mode == DisplayCustom && field.Display.Format != nil {
		v, err := r.format(field, row, raw)
		if err != nil {
			r.report(ctx, field, row, err)
			return ErrorSentinel
		}
		if v == NoValue {
			return fallback
		}
		display = v
	}

	if !present(display) && isStructured(raw) {
		s, err := canonical(raw)
		if err != nil {
			r.report(ctx, field, row, err)
			return ErrorSentinel
		}
		display = s
	}

	switch {
	case present(display):
		return display
	case present(raw):
		return raw
	case fallback != nil:
		return fallback
	}
	return nil
}

// Text is Value rendered as a string; nil becomes "".
func (r *CellResolver) Text(ctx context.Context, field Field, row Record, fallback any) string {
	v := r.Value(ctx, field, row, fallback)
	if v == nil {
		return ""
	}
	return formatScalar(v)
}

// raw reads the unformatted value. Accessor panics are reported as misses.
func (r *CellResolver) raw(ctx context.Context, field Field, row Record) (v any, ok bool) {
	if field.Property.Fn == nil {
		return Lookup(row, field.Property.Path)
	}
	defer func() {
		if p := recover(); p != nil {
			r.report(ctx, field, row, fmt.Errorf("accessor panic: %v", p))
			v, ok = nil, false
		}
	}()
	v = field.Property.Fn(row)
	return v, v != nil
}

// format runs the formatter inside a recover boundary.
func (r *CellResolver) format(field Field, row Record, raw any) (v any, err error) {
	defer func() {
		if p := recover(); p != nil {
			v, err = nil, fmt.Errorf("formatter panic: %v", p)
		}
	}()
	return field.Display.Format(row, raw)
}

func (r *CellResolver) report(ctx context.Context, field Field, row Record, err error) {
	idKey := r.IDKey
	if idKey == "" {
		idKey = "id"
	}
	var sink DiagnosticSink = SlogSink{}
	if r.Sink != nil {
		sink = r.Sink
	}
	sink.FormatterFailed(ctx, Diagnostic{
		RowID:   row.ID(idKey),
		Column:  field.Label,
		Message: err.Error(),
	})
}

// canonical serializes v as RFC 8785 canonical JSON.
func canonical(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("serialize value: %w", err)
	}
	out, err := jsoncanonicalizer.Transform(b)
	if err != nil {
		return "", fmt.Errorf("canonicalize value: %w", err)
	}
	return string(out), nil
}

// discardSink drops diagnostics.
type discardSink struct{}

func (discardSink) FormatterFailed(context.Context, Diagnostic) {}

// Discard is a DiagnosticSink that drops everything.
var Discard DiagnosticSink = discardSink{}
