package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumSet(t *testing.T) {
	e := NewEnumSet[string](2)
	id, isNew := e.Add("NN")
	assert.Equal(t, 0, id)
	assert.True(t, isNew)
	id, isNew = e.Add("VB")
	assert.Equal(t, 1, id)
	assert.True(t, isNew)
	id, isNew = e.Add("NN")
	assert.Equal(t, 0, id)
	assert.False(t, isNew)

	assert.Equal(t, "VB", e.ValueOf(1))
	assert.Equal(t, 2, e.Len())
	assert.Panics(t, func() { e.ValueOf(2) })
	assert.Panics(t, func() { e.ValueOf(-1) })
}

func TestEnumSetFrozen(t *testing.T) {
	e := NewEnumSet[string](2)
	e.Add("NN")
	e.Freeze()
	assert.True(t, e.IsFrozen())
	assert.Equal(t, 0, e.Lookup("NN"))
	assert.Equal(t, -1, e.Lookup("JJ"), "unknown values are not added to a frozen set")
	assert.Equal(t, 1, e.Len())
	assert.NotPanics(t, func() { e.Add("NN") }, "known values are always found")
	assert.Panics(t, func() { e.Add("JJ") })
}
