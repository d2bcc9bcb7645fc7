package rowan

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ResizePolicy governs how a camera's viewport follows screen resolution
// changes.
type ResizePolicy uint8

const (
	ResizeNone            ResizePolicy = iota // viewport stays fixed
	ResizeScaleWithScreen                     // viewport scales proportionally with the screen
)

// String returns the configuration name of the policy.
func (p ResizePolicy) String() string {
	switch p {
	case ResizeNone:
		return "none"
	case ResizeScaleWithScreen:
		return "scale_with_screen"
	default:
		return fmt.Sprintf("ResizePolicy(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p ResizePolicy) MarshalText() ([]byte, error) {
	switch p {
	case ResizeNone, ResizeScaleWithScreen:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("rowan: unknown resize policy %d", uint8(p))
}

// UnmarshalText implements encoding.TextUnmarshaler. Accepts "none" and
// "scale_with_screen".
func (p *ResizePolicy) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "none":
		*p = ResizeNone
	case "scale_with_screen":
		*p = ResizeScaleWithScreen
	default:
		return fmt.Errorf("rowan: unknown resize policy %q", text)
	}
	return nil
}

// CameraOption configures a Camera in NewCamera. Options only record values;
// NewCamera validates them and computes the matrices once all are applied.
type CameraOption func(*Camera)

// WithOrthographic selects an orthographic projection (the default).
func WithOrthographic() CameraOption {
	return func(c *Camera) {
		c.mode = ProjectionOrthographic
	}
}

// WithPerspective selects a perspective projection with the given vertical
// field of view in radians.
func WithPerspective(fov float32) CameraOption {
	return func(c *Camera) {
		c.mode = ProjectionPerspective
		c.fov = fov
	}
}

// WithViewportSize sets the reference viewport size. Defaults to the screen
// resolution at construction.
func WithViewportSize(size mgl32.Vec2) CameraOption {
	return func(c *Camera) {
		c.referenceViewport = size
	}
}

// WithClipPlanes sets the near and far clip distances.
func WithClipPlanes(near, far float32) CameraOption {
	return func(c *Camera) {
		c.near = near
		c.far = far
	}
}

// WithResizePolicy sets the viewport resize policy.
func WithResizePolicy(policy ResizePolicy) CameraOption {
	return func(c *Camera) {
		c.policy = policy
	}
}

// WithPosition sets the initial camera position.
func WithPosition(p mgl32.Vec3) CameraOption {
	return func(c *Camera) {
		c.position = p
	}
}
