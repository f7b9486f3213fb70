package columns

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEpochs_ApplySwapsOnChange(t *testing.T) {
	e, err := NewEpochs(DefaultUserFields, nil)
	require.NoError(t, err)
	first := e.Current()
	assert.Len(t, first.Columns, 4)

	swapped, err := e.Apply([]Customization{{Property: Path("phone"), Kind: KindAppend}})
	require.NoError(t, err)
	assert.True(t, swapped)

	second := e.Current()
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, second.Columns, 5)
	// The previous epoch is untouched.
	assert.Len(t, first.Columns, 4)
}

func TestEpochs_ApplyIgnoresEqualCustomizations(t *testing.T) {
	customs := []Customization{
		{Property: Path("phone"), Kind: KindOverride, Override: Override{Order: intPtr(2)}},
	}
	e, err := NewEpochs(DefaultUserFields, customs)
	require.NoError(t, err)
	id := e.Current().ID

	same := []Customization{
		{Property: Path("phone"), Kind: KindOverride, Override: Override{Order: intPtr(2)}},
	}
	swapped, err := e.Apply(same)
	require.NoError(t, err)
	assert.False(t, swapped)
	assert.Equal(t, id, e.Current().ID)
}

func TestEpochs_ApplyKeepsEpochOnError(t *testing.T) {
	e, err := NewEpochs(DefaultUserFields, nil)
	require.NoError(t, err)
	id := e.Current().ID

	_, err = e.Apply([]Customization{{Kind: KindAppend}})
	require.ErrorIs(t, err, ErrInvalidField)
	assert.Equal(t, id, e.Current().ID)
}

func TestEpochs_ConcurrentReaders(t *testing.T) {
	e, err := NewEpochs(DefaultUserFields, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				ep := e.Current()
				n := len(ep.Columns)
				assert.True(t, n == 4 || n == 5)
			}
		}()
	}
	for j := 0; j < 50; j++ {
		kind := KindAppend
		if j%2 == 1 {
			kind = KindSuppress
		}
		_, err := e.Apply([]Customization{{Property: Path("phone"), Kind: kind}})
		require.NoError(t, err)
	}
	wg.Wait()
}

func TestEqualCustomizations(t *testing.T) {
	fn := func(Record, any) (any, error) { return nil, nil }
	a := []Customization{{Property: Path("x"), Display: Formatted(fn)}}
	b := []Customization{{Property: Path("x"), Display: Formatted(fn)}}
	c := []Customization{{Property: Path("x"), Display: Shown}}

	assert.True(t, EqualCustomizations(a, b))
	assert.False(t, EqualCustomizations(a, c))
	assert.False(t, EqualCustomizations(a, nil))
	assert.True(t, EqualCustomizations(nil, []Customization{}))
}
