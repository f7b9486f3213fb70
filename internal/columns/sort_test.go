package columns

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextSort_Toggles(t *testing.T) {
	logins := DefaultUserFields()[3]
	state := SortState{Key: "logins_count", Order: Descending}

	req := NextSort(logins, state)
	assert.Equal(t, SortRequest{SortKey: "logins_count", Order: Ascending}, req)

	state = SortState{Key: req.SortKey, Order: req.Order}
	req = NextSort(logins, state)
	assert.Equal(t, SortRequest{SortKey: "logins_count", Order: Descending}, req)
}

func TestNextSort_UsesSortProperty(t *testing.T) {
	latest := DefaultUserFields()[2]

	req := NextSort(latest, SortState{})
	assert.Equal(t, "last_login", req.SortKey)
	assert.Equal(t, Descending, req.Order)
}

func TestSortState_Active(t *testing.T) {
	fields := DefaultUserFields()
	state := SortState{Key: "last_login", Order: Ascending}

	assert.True(t, state.Active(fields[2]))
	assert.False(t, state.Active(fields[3]))
	// Email is not sortable even if the key matches.
	assert.False(t, SortState{Key: "email"}.Active(fields[1]))
}
