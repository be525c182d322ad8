package instance_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/internal/instance"
)

func TestAcquireIsExclusive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "padrelay.lock")

	first, err := instance.Acquire(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())

	_, err = instance.Acquire(path)
	assert.ErrorIs(t, err, instance.ErrAlreadyRunning)

	require.NoError(t, first.Release())
	again, err := instance.Acquire(path)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestDefaultPath(t *testing.T) {
	assert.Equal(t, "padrelay.lock", filepath.Base(instance.DefaultPath()))
}
