package rowan

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTextureHandle() TextureHandle {
	return NewRegistry[*ebiten.Image]().Insert(nil)
}

func testTargetGroupHandle() TargetGroupHandle {
	return NewRegistry[*TargetGroup]().Insert(nil)
}

func TestCommandType_String(t *testing.T) {
	assert.Equal(t, "Begin", CommandBegin.String())
	assert.Equal(t, "RestoreRenderTargetGroup", CommandRestoreRenderTargetGroup.String())
	assert.Equal(t, "End", CommandEnd.String())
	assert.Equal(t, "CommandType(42)", CommandType(42).String())
}

func TestNewRestoreRenderTargetGroupCommand_ZeroHandle(t *testing.T) {
	_, err := NewRestoreRenderTargetGroupCommand(TargetGroupHandle{})
	require.ErrorIs(t, err, ErrNilReference)

	h := testTargetGroupHandle()
	cmd, err := NewRestoreRenderTargetGroupCommand(h)
	require.NoError(t, err)
	assert.Equal(t, CommandRestoreRenderTargetGroup, cmd.Type())
	assert.Equal(t, h, cmd.TargetGroup())
}

func TestNewBeginWithTargetGroupCommand(t *testing.T) {
	_, err := NewBeginWithTargetGroupCommand(TargetGroupHandle{}, ColorWhite)
	require.ErrorIs(t, err, ErrNilReference)

	h := testTargetGroupHandle()
	cmd, err := NewBeginWithTargetGroupCommand(h, Color{R: 1, A: 1})
	require.NoError(t, err)
	assert.Equal(t, CommandBeginWithTargetGroup, cmd.Type())
	assert.Equal(t, h, cmd.TargetGroup())
	assert.Equal(t, Color{R: 1, A: 1}, cmd.ClearColor())
}

func TestNewBeginCommand(t *testing.T) {
	cmd := NewBeginCommand(ColorWhite)
	assert.Equal(t, CommandBegin, cmd.Type())
	assert.Equal(t, ColorWhite, cmd.ClearColor())
}

func TestNewApplyCameraCommand(t *testing.T) {
	vp := mgl32.Ortho(-1, 1, -1, 1, -1, 1)
	cmd, err := NewApplyCameraCommand(mgl32.Vec3{1, 2, 3}, vp)
	require.NoError(t, err)
	assert.Equal(t, CommandApplyCamera, cmd.Type())
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, cmd.Position())
	assert.Equal(t, vp, cmd.ViewProjection())

	bad := mgl32.Ident4()
	bad[5] = math32.NaN()
	_, err = NewApplyCameraCommand(mgl32.Vec3{}, bad)
	require.ErrorIs(t, err, ErrInvalidCommand)

	_, err = NewApplyCameraCommand(mgl32.Vec3{math32.Inf(1), 0, 0}, mgl32.Ident4())
	require.ErrorIs(t, err, ErrInvalidCommand)
}

func TestNewApplyCameraCommandFrom(t *testing.T) {
	_, err := NewApplyCameraCommandFrom(nil)
	require.ErrorIs(t, err, ErrNilReference)

	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}), WithPosition(mgl32.Vec3{4, 5, -6}))
	cmd, err := NewApplyCameraCommandFrom(cam)
	require.NoError(t, err)
	assert.Equal(t, cam.Position(), cmd.Position())
	assert.Equal(t, cam.ViewProjection(), cmd.ViewProjection())
}

func TestNewRenderInstanceCommand(t *testing.T) {
	tex := testTextureHandle()
	uvs := UVs{U: 0.25, V: 0.5, S: 0.125, T: 0.25}
	world := mgl32.Translate3D(10, 20, 0).Mul4(mgl32.Scale3D(32, 16, 1))

	cmd, err := NewRenderInstanceCommand(tex, uvs, world, ColorWhite, BlendAdd)
	require.NoError(t, err)
	assert.Equal(t, CommandRenderInstance, cmd.Type())
	assert.Equal(t, tex, cmd.Texture())
	assert.Equal(t, uvs, cmd.UVs())
	assert.Equal(t, world, cmd.World())
	assert.Equal(t, ColorWhite, cmd.Color())
	assert.Equal(t, BlendAdd, cmd.BlendMode())
}

func TestNewRenderInstanceCommand_Invalid(t *testing.T) {
	_, err := NewRenderInstanceCommand(TextureHandle{}, UVs{}, mgl32.Ident4(), ColorWhite, BlendNormal)
	require.ErrorIs(t, err, ErrNilReference)

	tex := testTextureHandle()
	world := mgl32.Ident4()
	world[12] = math32.Inf(-1)
	_, err = NewRenderInstanceCommand(tex, UVs{}, world, ColorWhite, BlendNormal)
	require.ErrorIs(t, err, ErrInvalidCommand)

	_, err = NewRenderInstanceCommand(tex, UVs{S: -0.5, T: 1}, mgl32.Ident4(), ColorWhite, BlendNormal)
	require.ErrorIs(t, err, ErrInvalidCommand)
}

func TestNewEndCommand(t *testing.T) {
	assert.Equal(t, CommandEnd, NewEndCommand().Type())
}
