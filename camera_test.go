package rowan

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tanema/gween/ease"
)

const epsilon = 1e-4

func approxEqual(a, b, eps float32) bool {
	return math32.Abs(a-b) < eps
}

func vec2Near(t *testing.T, want, got mgl32.Vec2) {
	t.Helper()
	if !approxEqual(want[0], got[0], epsilon) || !approxEqual(want[1], got[1], epsilon) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func vec3Near(t *testing.T, want, got mgl32.Vec3) {
	t.Helper()
	for i := range want {
		if !approxEqual(want[i], got[i], epsilon) {
			t.Errorf("got %v, want %v", got, want)
			return
		}
	}
}

func newTestCamera(t *testing.T, screen ScreenState, options ...CameraOption) *Camera {
	t.Helper()
	cam, err := NewCamera(screen, options...)
	require.NoError(t, err)
	t.Cleanup(cam.Close)
	return cam
}

func TestCameraDefaults(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))

	assert.Equal(t, ProjectionOrthographic, cam.Mode())
	assert.Equal(t, ResizeNone, cam.ResizePolicy())
	assert.Equal(t, mgl32.Vec2{800, 600}, cam.ViewportSize())
	assert.Equal(t, mgl32.Vec2{800, 600}, cam.ReferenceScreenSize())
	assert.Equal(t, float32(defaultNearClip), cam.NearClipping())
	assert.Equal(t, float32(defaultFarClip), cam.FarClipping())
	assert.Equal(t, mgl32.Ident4(), cam.View())
}

func TestNewCamera_Errors(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{800, 600})

	_, err := NewCamera(nil)
	require.ErrorIs(t, err, ErrNilReference)

	tests := []struct {
		name    string
		options []CameraOption
	}{
		{"zero viewport", []CameraOption{WithViewportSize(mgl32.Vec2{0, 100})}},
		{"negative viewport", []CameraOption{WithViewportSize(mgl32.Vec2{100, -1})}},
		{"near after far", []CameraOption{WithClipPlanes(10, 5)}},
		{"near equals far", []CameraOption{WithClipPlanes(5, 5)}},
		{"negative near", []CameraOption{WithClipPlanes(-1, 5)}},
		{"perspective zero near", []CameraOption{WithPerspective(1), WithClipPlanes(0, 5)}},
		{"fov zero", []CameraOption{WithPerspective(0)}},
		{"fov pi", []CameraOption{WithPerspective(math32.Pi)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCamera(screen, tt.options...)
			require.Error(t, err)
		})
	}
	assert.Equal(t, 0, screen.Subscribers())
}

func TestCameraResize_ScaleWithScreen(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{200, 200})
	cam := newTestCamera(t, screen,
		WithViewportSize(mgl32.Vec2{100, 100}),
		WithResizePolicy(ResizeScaleWithScreen),
	)

	screen.SetResolution(mgl32.Vec2{400, 400})
	assert.Equal(t, mgl32.Vec2{200, 200}, cam.ViewportSize())
	assert.Equal(t, mgl32.Vec2{100, 100}, cam.ReferenceViewportSize())

	// Scaling is always relative to the reference, never compounded.
	screen.SetResolution(mgl32.Vec2{300, 100})
	assert.Equal(t, mgl32.Vec2{150, 50}, cam.ViewportSize())
	screen.SetResolution(mgl32.Vec2{200, 200})
	assert.Equal(t, mgl32.Vec2{100, 100}, cam.ViewportSize())
}

func TestCameraResize_ProjectionFollowsViewport(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{200, 200})
	cam := newTestCamera(t, screen,
		WithViewportSize(mgl32.Vec2{100, 100}),
		WithResizePolicy(ResizeScaleWithScreen),
	)
	screen.SetResolution(mgl32.Vec2{400, 400})
	assert.Equal(t, orthographicLH(200, 200, defaultNearClip, defaultFarClip), cam.Projection())
}

func TestCameraResize_None(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{200, 200})
	cam := newTestCamera(t, screen, WithViewportSize(mgl32.Vec2{100, 100}))
	assert.Equal(t, 0, screen.Subscribers())

	screen.SetResolution(mgl32.Vec2{400, 400})
	assert.Equal(t, mgl32.Vec2{100, 100}, cam.ViewportSize())
}

func TestCameraSetViewportSize_Exact(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{640, 480})
	cam := newTestCamera(t, screen, WithResizePolicy(ResizeScaleWithScreen))
	screen.SetResolution(mgl32.Vec2{1280, 720})

	v := mgl32.Vec2{123.456, 78.9}
	require.NoError(t, cam.SetViewportSize(v))
	assert.Equal(t, v, cam.ViewportSize())
	assert.Equal(t, v, cam.ReferenceViewportSize())
	assert.Equal(t, mgl32.Vec2{1280, 720}, cam.ReferenceScreenSize())

	// Later resizes scale against the newly captured screen size.
	screen.SetResolution(mgl32.Vec2{2560, 1440})
	vec2Near(t, mgl32.Vec2{246.912, 157.8}, cam.ViewportSize())
}

func TestCameraSetViewportSize_Invalid(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{640, 480}))
	require.Error(t, cam.SetViewportSize(mgl32.Vec2{0, 0}))
	assert.Equal(t, mgl32.Vec2{640, 480}, cam.ViewportSize())
}

func TestCameraClose_Unsubscribes(t *testing.T) {
	screen := NewScreen(mgl32.Vec2{200, 200})
	cam, err := NewCamera(screen, WithResizePolicy(ResizeScaleWithScreen))
	require.NoError(t, err)
	assert.Equal(t, 1, screen.Subscribers())

	cam.Close()
	cam.Close()
	assert.Equal(t, 0, screen.Subscribers())

	screen.SetResolution(mgl32.Vec2{400, 400})
	assert.Equal(t, mgl32.Vec2{200, 200}, cam.ViewportSize())
}

func TestCameraView_MapsPositionToOrigin(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))
	p := mgl32.Vec3{10, 20, -5}
	cam.SetPosition(p)
	vec3Near(t, mgl32.Vec3{}, cam.View().Mul4x1(p.Vec4(1)).Vec3())

	cam.SetOrientation(mgl32.QuatRotate(math32.Pi/2, mgl32.Vec3{0, 1, 0}))
	vec3Near(t, mgl32.Vec3{}, cam.View().Mul4x1(p.Vec4(1)).Vec3())
}

func TestCameraProject_Orthographic(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}), WithPosition(mgl32.Vec3{0, 0, -10}))

	got, ok := cam.Project(mgl32.Vec3{0, 0, 0})
	require.True(t, ok)
	vec2Near(t, mgl32.Vec2{400, 300}, got)

	// +Y is up in world space and down in screen space.
	got, ok = cam.Project(mgl32.Vec3{100, 50, 0})
	require.True(t, ok)
	vec2Near(t, mgl32.Vec2{500, 250}, got)
}

func TestCameraProject_Perspective(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{100, 100}), WithPerspective(math32.Pi/2))

	got, ok := cam.Project(mgl32.Vec3{0, 0, 10})
	require.True(t, ok)
	vec2Near(t, mgl32.Vec2{50, 50}, got)

	got, ok = cam.Project(mgl32.Vec3{10, 0, 10})
	require.True(t, ok)
	vec2Near(t, mgl32.Vec2{100, 50}, got)

	_, ok = cam.Project(mgl32.Vec3{0, 0, -5})
	assert.False(t, ok, "point behind the camera")
}

func TestCameraUnproject_Roundtrip(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{100, 100}), WithPerspective(math32.Pi/2))

	ray := cam.Unproject(mgl32.Vec2{50, 50})
	vec3Near(t, mgl32.Vec3{0, 0, 1}, ray.Direction)
	vec3Near(t, mgl32.Vec3{0, 0, 1}, ray.Origin) // on the near plane

	ray = cam.Unproject(mgl32.Vec2{100, 50})
	// Right edge at 90° fov: direction is 45° between +X and +Z.
	d := float32(math32.Sqrt2 / 2)
	vec3Near(t, mgl32.Vec3{d, 0, d}, ray.Direction)
}

func TestCameraUnproject_Orthographic(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}), WithPosition(mgl32.Vec3{0, 0, -10}))
	ray := cam.Unproject(mgl32.Vec2{500, 250})
	vec3Near(t, mgl32.Vec3{0, 0, 1}, ray.Direction)
	assert.InDelta(t, 100, ray.Origin[0], 1e-3)
	assert.InDelta(t, 50, ray.Origin[1], 1e-3)
}

func TestCameraSetClipPlanes(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))
	require.NoError(t, cam.SetClipPlanes(0, 50))
	assert.Equal(t, float32(0), cam.NearClipping())
	assert.Equal(t, float32(50), cam.FarClipping())
	assert.Equal(t, orthographicLH(800, 600, 0, 50), cam.Projection())

	require.Error(t, cam.SetClipPlanes(50, 10))
	assert.Equal(t, float32(50), cam.FarClipping())
}

func TestCameraSetFieldOfView(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{100, 100}), WithPerspective(1))
	require.NoError(t, cam.SetFieldOfView(math32.Pi/2))
	assert.Equal(t, perspectiveLH(math32.Pi/2, 1, defaultNearClip, defaultFarClip), cam.Projection())
	require.Error(t, cam.SetFieldOfView(-1))
}

func TestCameraPanTo(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))
	cam.PanTo(mgl32.Vec3{100, 50, 0}, 1.0, ease.Linear)
	require.True(t, cam.Panning())

	cam.Update(0.5)
	vec3Near(t, mgl32.Vec3{50, 25, 0}, cam.Position())
	assert.True(t, cam.Panning())

	cam.Update(0.5)
	vec3Near(t, mgl32.Vec3{100, 50, 0}, cam.Position())
	assert.False(t, cam.Panning())

	// The view follows the animated position.
	vec3Near(t, mgl32.Vec3{}, cam.View().Mul4x1(cam.Position().Vec4(1)).Vec3())
}

func TestCameraPanTo_NilEaseIsLinear(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))
	cam.PanTo(mgl32.Vec3{10, 0, 0}, 2, nil)
	cam.Update(1)
	vec3Near(t, mgl32.Vec3{5, 0, 0}, cam.Position())
}

func TestCameraSetPosition_CancelsPan(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{800, 600}))
	cam.PanTo(mgl32.Vec3{100, 0, 0}, 1, nil)
	cam.SetPosition(mgl32.Vec3{-5, 0, 0})
	assert.False(t, cam.Panning())

	cam.Update(0.5)
	assert.Equal(t, mgl32.Vec3{-5, 0, 0}, cam.Position())
}

func TestCameraUpdateFrustum(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{200, 100}), WithPosition(mgl32.Vec3{0, 0, -10}))
	assert.Equal(t, Frustum{}, cam.Frustum(), "frustum is not computed until UpdateFrustum")

	cam.UpdateFrustum()
	f := cam.Frustum()
	assert.True(t, f.ContainsPoint(mgl32.Vec3{0, 0, 0}))
	assert.False(t, f.ContainsPoint(mgl32.Vec3{150, 0, 0}))

	// Moving the camera leaves the frustum stale until the next update.
	cam.SetPosition(mgl32.Vec3{150, 0, -10})
	assert.Equal(t, f, cam.Frustum())
	cam.UpdateFrustum()
	assert.True(t, cam.Frustum().ContainsPoint(mgl32.Vec3{150, 0, 0}))
}

func TestResizePolicy_Text(t *testing.T) {
	for _, p := range []ResizePolicy{ResizeNone, ResizeScaleWithScreen} {
		text, err := p.MarshalText()
		require.NoError(t, err)
		var back ResizePolicy
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, p, back)
	}

	var p ResizePolicy
	require.Error(t, p.UnmarshalText([]byte("stretch")))
	_, err := ResizePolicy(9).MarshalText()
	require.Error(t, err)
	assert.Equal(t, "ResizePolicy(9)", ResizePolicy(9).String())
}

func TestProjectionMode_String(t *testing.T) {
	assert.Equal(t, "orthographic", ProjectionOrthographic.String())
	assert.Equal(t, "perspective", ProjectionPerspective.String())
}

func TestCameraResize_IgnoresDegenerateResolution(t *testing.T) {
	for _, res := range []mgl32.Vec2{{0, 0}, {0, 480}, {640, 0}, {-1, 480}} {
		screen := NewScreen(mgl32.Vec2{640, 480})
		ortho := newTestCamera(t, screen, WithResizePolicy(ResizeScaleWithScreen))
		persp := newTestCamera(t, screen, WithResizePolicy(ResizeScaleWithScreen), WithPerspective(math32.Pi/3))
		orthoProj, perspProj := ortho.Projection(), persp.Projection()

		screen.SetResolution(res)
		assert.Equal(t, mgl32.Vec2{640, 480}, ortho.ViewportSize(), "resolution %v", res)
		assert.Equal(t, orthoProj, ortho.Projection(), "resolution %v", res)
		assert.Equal(t, perspProj, persp.Projection(), "resolution %v", res)

		_, err := NewApplyCameraCommandFrom(ortho)
		require.NoError(t, err)

		// Scaling resumes against the original reference.
		screen.SetResolution(mgl32.Vec2{1280, 960})
		assert.Equal(t, mgl32.Vec2{1280, 960}, ortho.ViewportSize())
	}
}

func TestCameraSetViewportSize_RecomputesProjection(t *testing.T) {
	cam := newTestCamera(t, NewScreen(mgl32.Vec2{640, 480}))
	size := mgl32.Vec2{321.5, 123.25}

	require.NoError(t, cam.SetViewportSize(size))
	first := cam.Projection()
	assert.Equal(t, orthographicLH(size[0], size[1], cam.NearClipping(), cam.FarClipping()), first)

	require.NoError(t, cam.SetViewportSize(size))
	assert.True(t, first == cam.Projection(), "same size must give a bit-identical projection")
}
