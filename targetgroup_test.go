package rowan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTargetGroup(t *testing.T) {
	_, err := NewTargetGroup(0, 10)
	require.Error(t, err)

	g, err := NewTargetGroup(16, 8)
	require.NoError(t, err)
	assert.Equal(t, 16, g.Width())
	assert.Equal(t, 8, g.Height())
	require.NotNil(t, g.Image())
	assert.False(t, g.Lost())
	assert.False(t, g.restore(), "nothing to restore")

	g.Invalidate()
	g.Invalidate()
	assert.True(t, g.Lost())
	assert.Nil(t, g.Image())

	assert.True(t, g.restore())
	require.NotNil(t, g.Image())
	assert.Equal(t, 16, g.Image().Bounds().Dx())
	assert.Equal(t, 8, g.Image().Bounds().Dy())
}
