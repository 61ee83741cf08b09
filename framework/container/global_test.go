package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetInstance_BeforeSet(t *testing.T) {
	instance.Store(nil)
	t.Cleanup(func() { instance.Store(nil) })

	c, err := GetInstance()
	assert.Nil(t, c)
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestSetInstance(t *testing.T) {
	instance.Store(nil)
	t.Cleanup(func() { instance.Store(nil) })

	first := New()
	SetInstance(first)

	got, err := GetInstance()
	require.NoError(t, err)
	assert.Same(t, first, got)

	again, err := GetInstance()
	require.NoError(t, err)
	assert.Same(t, got, again)

	second := New()
	SetInstance(second)
	got, err = GetInstance()
	require.NoError(t, err)
	assert.Same(t, second, got, "a later SetInstance replaces the shared container")
}
