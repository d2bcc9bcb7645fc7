package rowan

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// ProjectionMode selects how a Camera maps view space to clip space.
type ProjectionMode uint8

const (
	ProjectionOrthographic ProjectionMode = iota // parallel projection sized by the viewport
	ProjectionPerspective                        // perspective projection with a vertical field of view
)

// String returns the lower-case name of the mode.
func (m ProjectionMode) String() string {
	switch m {
	case ProjectionOrthographic:
		return "orthographic"
	case ProjectionPerspective:
		return "perspective"
	default:
		return fmt.Sprintf("ProjectionMode(%d)", uint8(m))
	}
}

// Ray is a half-line in world space.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3 // unit length
}

// panAnim holds active pan tweens for the camera position.
type panAnim struct {
	tweens [3]*gween.Tween
	done   [3]bool
}

// Camera computes the view and projection matrices used to build render
// commands, and the view frustum used for culling.
//
// A Camera is not safe for concurrent use. Read and mutate it only from the
// goroutine that owns scene update; resolution-changed notifications arrive
// on that same goroutine.
//
// The frustum is not kept in sync automatically. Call UpdateFrustum after
// changing the view or projection and before reading Frustum.
type Camera struct {
	screen ScreenState
	sub    *Subscription

	mode   ProjectionMode
	policy ResizePolicy

	referenceViewport mgl32.Vec2
	viewport          mgl32.Vec2
	referenceScreen   mgl32.Vec2

	near, far float32
	fov       float32

	position    mgl32.Vec3
	orientation mgl32.Quat

	view       mgl32.Mat4
	projection mgl32.Mat4
	frustum    Frustum

	pan *panAnim
}

const (
	defaultNearClip    = 1
	defaultFarClip     = 1000
	defaultFieldOfView = math32.Pi / 3
)

// NewCamera creates a camera reading resolution from screen. Without options
// it is an orthographic camera whose viewport matches the current screen
// resolution, with no resize policy.
//
// Under ResizeScaleWithScreen the camera captures the current resolution as
// its reference and subscribes to resolution changes until Close is called.
func NewCamera(screen ScreenState, options ...CameraOption) (*Camera, error) {
	if screen == nil {
		return nil, fmt.Errorf("rowan: new camera: screen: %w", ErrNilReference)
	}
	c := &Camera{
		screen:      screen,
		mode:        ProjectionOrthographic,
		policy:      ResizeNone,
		near:        defaultNearClip,
		far:         defaultFarClip,
		fov:         defaultFieldOfView,
		orientation: mgl32.QuatIdent(),
		view:        mgl32.Ident4(),
	}
	c.referenceViewport = screen.Resolution()
	for _, option := range options {
		option(c)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("rowan: new camera: %w", err)
	}

	c.viewport = c.referenceViewport
	c.referenceScreen = screen.Resolution()
	if c.policy == ResizeScaleWithScreen {
		c.sub = screen.OnResolutionChanged(c.onResolutionChanged)
	}
	c.updateView()
	c.updateProjection()
	return c, nil
}

func (c *Camera) validate() error {
	if err := validateViewport(c.referenceViewport); err != nil {
		return err
	}
	if err := validateClipPlanes(c.mode, c.near, c.far); err != nil {
		return err
	}
	if c.mode == ProjectionPerspective {
		if err := validateFieldOfView(c.fov); err != nil {
			return err
		}
	}
	return nil
}

func validateViewport(size mgl32.Vec2) error {
	if !(size[0] > 0) || !(size[1] > 0) {
		return fmt.Errorf("viewport size %v must be positive", size)
	}
	return nil
}

func validateClipPlanes(mode ProjectionMode, near, far float32) error {
	if !(near >= 0) || !(far > near) {
		return fmt.Errorf("clip planes near=%v far=%v: need 0 <= near < far", near, far)
	}
	if mode == ProjectionPerspective && near == 0 {
		return fmt.Errorf("perspective near clip must be > 0")
	}
	return nil
}

func validateFieldOfView(fov float32) error {
	if !(fov > 0) || !(fov < math32.Pi) {
		return fmt.Errorf("field of view %v must be in (0, pi)", fov)
	}
	return nil
}

// Close releases the resolution-changed subscription. Safe to call more than once.
func (c *Camera) Close() {
	c.sub.Close()
	c.sub = nil
}

// Mode returns the projection mode.
func (c *Camera) Mode() ProjectionMode { return c.mode }

// ResizePolicy returns the viewport resize policy.
func (c *Camera) ResizePolicy() ResizePolicy { return c.policy }

// ViewportSize returns the current viewport size.
func (c *Camera) ViewportSize() mgl32.Vec2 { return c.viewport }

// ReferenceViewportSize returns the viewport size last set explicitly.
func (c *Camera) ReferenceViewportSize() mgl32.Vec2 { return c.referenceViewport }

// ReferenceScreenSize returns the screen resolution captured alongside the
// reference viewport.
func (c *Camera) ReferenceScreenSize() mgl32.Vec2 { return c.referenceScreen }

// NearClipping returns the near clip distance.
func (c *Camera) NearClipping() float32 { return c.near }

// FarClipping returns the far clip distance.
func (c *Camera) FarClipping() float32 { return c.far }

// FieldOfView returns the vertical field of view in radians. Only meaningful
// for perspective cameras.
func (c *Camera) FieldOfView() float32 { return c.fov }

// Position returns the camera position in world space.
func (c *Camera) Position() mgl32.Vec3 { return c.position }

// Orientation returns the camera orientation.
func (c *Camera) Orientation() mgl32.Quat { return c.orientation }

// View returns the world-to-view matrix.
func (c *Camera) View() mgl32.Mat4 { return c.view }

// Projection returns the view-to-clip matrix.
func (c *Camera) Projection() mgl32.Mat4 { return c.projection }

// ViewProjection returns Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 { return c.projection.Mul4(c.view) }

// Frustum returns the clipping planes as of the last UpdateFrustum call.
func (c *Camera) Frustum() Frustum { return c.frustum }

// SetViewportSize sets both the reference and the current viewport size,
// re-captures the reference screen resolution and recomputes the projection.
func (c *Camera) SetViewportSize(size mgl32.Vec2) error {
	if err := validateViewport(size); err != nil {
		return fmt.Errorf("rowan: camera: %w", err)
	}
	c.referenceViewport = size
	c.viewport = size
	c.referenceScreen = c.screen.Resolution()
	c.updateProjection()
	return nil
}

// SetClipPlanes sets the near and far clip distances and recomputes the
// projection.
func (c *Camera) SetClipPlanes(near, far float32) error {
	if err := validateClipPlanes(c.mode, near, far); err != nil {
		return fmt.Errorf("rowan: camera: %w", err)
	}
	c.near, c.far = near, far
	c.updateProjection()
	return nil
}

// SetFieldOfView sets the vertical field of view in radians and recomputes
// the projection.
func (c *Camera) SetFieldOfView(fov float32) error {
	if err := validateFieldOfView(fov); err != nil {
		return fmt.Errorf("rowan: camera: %w", err)
	}
	c.fov = fov
	c.updateProjection()
	return nil
}

// SetPosition moves the camera and recomputes the view matrix. Any running
// pan is cancelled.
func (c *Camera) SetPosition(p mgl32.Vec3) {
	c.pan = nil
	c.position = p
	c.updateView()
}

// SetOrientation rotates the camera and recomputes the view matrix.
func (c *Camera) SetOrientation(q mgl32.Quat) {
	c.orientation = q.Normalize()
	c.updateView()
}

// UpdateFrustum recomputes the clipping planes from the current view and
// projection.
func (c *Camera) UpdateFrustum() {
	c.frustum = FrustumFromMatrix(c.ViewProjection())
}

// onResolutionChanged rescales the viewport by the ratio of the new
// resolution to the reference screen size. A resolution with a non-positive
// axis, as a minimized window reports, leaves the viewport and projection
// unchanged.
func (c *Camera) onResolutionChanged(resolution mgl32.Vec2) {
	if c.policy != ResizeScaleWithScreen {
		return
	}
	if resolution[0] <= 0 || resolution[1] <= 0 {
		return
	}
	if c.referenceScreen[0] <= 0 || c.referenceScreen[1] <= 0 {
		// Nothing sensible to scale against; adopt the new resolution as
		// the reference instead.
		c.referenceScreen = resolution
		return
	}
	c.viewport = mgl32.Vec2{
		c.referenceViewport[0] / c.referenceScreen[0] * resolution[0],
		c.referenceViewport[1] / c.referenceScreen[1] * resolution[1],
	}
	c.updateProjection()
}

func (c *Camera) updateProjection() {
	switch c.mode {
	case ProjectionPerspective:
		c.projection = perspectiveLH(c.fov, c.viewport[0]/c.viewport[1], c.near, c.far)
	default:
		c.projection = orthographicLH(c.viewport[0], c.viewport[1], c.near, c.far)
	}
}

// updateView inverts the camera's rigid transform: R^-1 * T(-position).
func (c *Camera) updateView() {
	p := c.position
	c.view = c.orientation.Conjugate().Mat4().Mul4(mgl32.Translate3D(-p[0], -p[1], -p[2]))
}

// Project converts a world-space point to screen pixels with the origin at
// the top-left of the screen. The second result is false when the point is
// behind the camera.
func (c *Camera) Project(world mgl32.Vec3) (mgl32.Vec2, bool) {
	clip := c.ViewProjection().Mul4x1(world.Vec4(1))
	if clip[3] <= 0 {
		return mgl32.Vec2{}, false
	}
	res := c.screen.Resolution()
	ndcX := clip[0] / clip[3]
	ndcY := clip[1] / clip[3]
	return mgl32.Vec2{
		(ndcX + 1) / 2 * res[0],
		(1 - ndcY) / 2 * res[1],
	}, true
}

// Unproject returns the world-space ray passing through the given screen
// pixel, starting on the near plane.
func (c *Camera) Unproject(screen mgl32.Vec2) Ray {
	res := c.screen.Resolution()
	ndcX := screen[0]/res[0]*2 - 1
	ndcY := 1 - screen[1]/res[1]*2
	inv := c.ViewProjection().Inv()

	nearPt := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, -1, 1})
	farPt := inv.Mul4x1(mgl32.Vec4{ndcX, ndcY, 1, 1})
	n := nearPt.Vec3().Mul(1 / nearPt[3])
	f := farPt.Vec3().Mul(1 / farPt[3])
	return Ray{Origin: n, Direction: f.Sub(n).Normalize()}
}

// PanTo animates the camera position to target over duration seconds.
// Advance the animation with Update.
func (c *Camera) PanTo(target mgl32.Vec3, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	anim := &panAnim{}
	for i := range anim.tweens {
		anim.tweens[i] = gween.New(c.position[i], target[i], duration, easeFn)
	}
	c.pan = anim
}

// Panning reports whether a PanTo animation is in progress.
func (c *Camera) Panning() bool { return c.pan != nil }

// Update advances an active pan by dt seconds. The view matrix is recomputed
// when the position changes; the frustum is not.
func (c *Camera) Update(dt float32) {
	if c.pan == nil {
		return
	}
	prev := c.position
	finished := true
	for i, tw := range c.pan.tweens {
		if !c.pan.done[i] {
			val, done := tw.Update(dt)
			c.position[i] = val
			c.pan.done[i] = done
		}
		finished = finished && c.pan.done[i]
	}
	if finished {
		c.pan = nil
	}
	if c.position != prev {
		c.updateView()
	}
}
