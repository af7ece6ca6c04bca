package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedSet_PreservesInsertionOrder(t *testing.T) {
	set := NewOrderedSet[string]()

	require.True(t, set.Add("gamma"))
	require.True(t, set.Add("alpha"))
	require.True(t, set.Add("beta"))

	assert.Equal(t, []string{"gamma", "alpha", "beta"}, set.Items())
	assert.Equal(t, 3, set.Len())
}

func TestOrderedSet_DropsDuplicates(t *testing.T) {
	set := NewOrderedSet[string]()

	require.True(t, set.Add("x"))
	assert.False(t, set.Add("x"))

	assert.Equal(t, []string{"x"}, set.Items())
	assert.True(t, set.Has("x"))
	assert.False(t, set.Has("y"))
}

func TestOrderedSet_ItemsReturnsCopy(t *testing.T) {
	set := NewOrderedSet[int]()
	set.Add(1)
	set.Add(2)

	items := set.Items()
	items[0] = 99

	assert.Equal(t, []int{1, 2}, set.Items())
}
