package columns

import (
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Epoch is one version of the resolved column list. It must not be modified.
type Epoch struct {
	ID        string
	Columns   []Field
	Customs   []Customization
	CreatedAt time.Time
}

// Epochs holds the current epoch. Readers call Current once per render pass
// and use that epoch for every row.
type Epochs struct {
	defaults func() []Field
	current  atomic.Pointer[Epoch]
	mu       sync.Mutex // serializes Apply
}

// NewEpochs resolves customs over defaults and returns the holder.
func NewEpochs(defaults func() []Field, customs []Customization) (*Epochs, error) {
	e := &Epochs{defaults: defaults}
	ep, err := e.build(customs)
	if err != nil {
		return nil, err
	}
	e.current.Store(ep)
	return e, nil
}

// Current returns the active epoch.
func (e *Epochs) Current() *Epoch {
	return e.current.Load()
}

// Apply resolves customs and swaps in a new epoch when they differ
// structurally from the active ones. It reports whether a swap happened.
// On error the active epoch is kept.
func (e *Epochs) Apply(customs []Customization) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if EqualCustomizations(e.current.Load().Customs, customs) {
		return false, nil
	}
	ep, err := e.build(customs)
	if err != nil {
		return false, err
	}
	e.current.Store(ep)
	return true, nil
}

func (e *Epochs) build(customs []Customization) (*Epoch, error) {
	cols, err := Resolve(e.defaults(), customs)
	if err != nil {
		return nil, err
	}
	owned := make([]Customization, len(customs))
	copy(owned, customs)
	return &Epoch{
		ID:        uuid.NewString(),
		Columns:   cols,
		Customs:   owned,
		CreatedAt: time.Now(),
	}, nil
}

// EqualCustomizations compares two lists structurally. Functions are
// compared by code pointer.
func EqualCustomizations(a, b []Customization) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !equalCustomization(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalCustomization(a, b Customization) bool {
	if a.Kind != b.Kind || a.Label != b.Label || a.OverrideKey != b.OverrideKey {
		return false
	}
	if a.Property.Path != b.Property.Path || a.Property.Key != b.Property.Key ||
		!sameFunc(a.Property.Fn, b.Property.Fn) {
		return false
	}
	if !equalDisplay(a.Display, b.Display) {
		return false
	}
	ao, bo := a.Override, b.Override
	if ao.Label != bo.Label || ao.Width != bo.Width || ao.Sortable != bo.Sortable ||
		ao.SortProperty != bo.SortProperty || !equalDisplay(ao.Display, bo.Display) {
		return false
	}
	switch {
	case ao.Order == nil && bo.Order == nil:
		return true
	case ao.Order == nil || bo.Order == nil:
		return false
	}
	return *ao.Order == *bo.Order
}

func equalDisplay(a, b Display) bool {
	return a.Mode == b.Mode && sameFunc(a.Format, b.Format)
}

func sameFunc(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.IsNil() || vb.IsNil() {
		return va.IsNil() && vb.IsNil()
	}
	return va.Pointer() == vb.Pointer()
}
