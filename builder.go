package rowan

import (
	"fmt"
	"time"
)

// Sprite is one textured quad submitted to a FrameBuilder. The drawn region
// is the atlas frame named by Frame; Texture is the page image the atlas
// describes.
type Sprite struct {
	Atlas   *TextureAtlas
	Frame   uint32 // atlas key, see HashID
	Texture TextureHandle

	X, Y, Z        float32
	ScaleX, ScaleY float32
	Rotation       float32 // radians, counter-clockwise
	SkewX, SkewY   float32 // radians
	PivotX, PivotY float32 // in untrimmed frame pixels from the bottom-left

	Color     Color
	BlendMode BlendMode

	// RenderLayer is the primary sort key; lower layers draw first.
	RenderLayer uint8
	// GlobalOrder breaks ties within a layer.
	GlobalOrder int

	Visible bool
}

// NewSprite returns a visible, unscaled, white sprite drawing frame from
// atlas. The frame is looked up by name through HashID.
func NewSprite(atlas *TextureAtlas, frame string, texture TextureHandle) Sprite {
	return Sprite{
		Atlas:   atlas,
		Frame:   HashID(frame),
		Texture: texture,
		ScaleX:  1,
		ScaleY:  1,
		Color:   ColorWhite,
		Visible: true,
	}
}

// FrameRequest describes one frame for FrameBuilder.Build.
type FrameRequest struct {
	Camera *Camera

	// Target is the group rendered to. The zero handle renders to the screen.
	Target     TargetGroupHandle
	ClearColor Color

	// Restore lists target groups to bring back before rendering begins.
	Restore []TargetGroupHandle

	// Cull drops sprites whose bounds lie entirely outside the camera
	// frustum. The caller must have called Camera.UpdateFrustum.
	Cull bool

	Sprites []Sprite
}

// instance is a resolved sprite waiting to be sorted.
type instance struct {
	cmd         RenderInstanceCommand
	renderLayer uint8
	globalOrder int
	submitOrder int
}

// FrameBuilder turns sprites into sealed command lists. Scratch buffers are
// reused between calls, so a FrameBuilder must not be shared across
// goroutines. Each Build returns a fresh list that may be handed off.
type FrameBuilder struct {
	// Debug logs per-frame statistics at debug level.
	Debug bool

	instances []instance
	sortBuf   []instance
}

// Build resolves, culls and sorts req.Sprites and returns the frame's sealed
// command list:
//
//	RestoreRenderTargetGroup... -> Begin | BeginWithTargetGroup -> ApplyCamera -> RenderInstance... -> End
//
// A sprite naming a frame its atlas lacks fails the whole build with an
// error wrapping ErrNotFound.
func (fb *FrameBuilder) Build(req FrameRequest) (*CommandList, error) {
	if req.Camera == nil {
		return nil, fmt.Errorf("rowan: build frame: camera: %w", ErrNilReference)
	}
	var start time.Time
	if fb.Debug {
		start = time.Now()
	}

	fb.instances = fb.instances[:0]
	frustum := req.Camera.Frustum()
	culled := 0
	for i := range req.Sprites {
		s := &req.Sprites[i]
		if !s.Visible {
			continue
		}
		if s.Atlas == nil {
			return nil, fmt.Errorf("rowan: build frame: sprite %d: atlas: %w", i, ErrNilReference)
		}
		f, err := s.Atlas.FrameByHash(s.Frame)
		if err != nil {
			return nil, fmt.Errorf("rowan: build frame: sprite %d: %w", i, err)
		}
		world := quadTransform(spriteLocalTransform(s), f)
		if req.Cull {
			center, radius := quadBoundingSphere(world)
			if frustum.SphereCullTest(center, radius) {
				culled++
				continue
			}
		}
		cmd, err := NewRenderInstanceCommand(s.Texture, f.UVs, world, s.Color, s.BlendMode)
		if err != nil {
			return nil, fmt.Errorf("rowan: build frame: sprite %d: %w", i, err)
		}
		fb.instances = append(fb.instances, instance{
			cmd:         cmd,
			renderLayer: s.RenderLayer,
			globalOrder: s.GlobalOrder,
			submitOrder: i,
		})
	}
	fb.mergeSort()

	list := NewCommandList(len(req.Restore) + len(fb.instances) + 3)
	for _, h := range req.Restore {
		cmd, err := NewRestoreRenderTargetGroupCommand(h)
		if err != nil {
			return nil, fmt.Errorf("rowan: build frame: restore: %w", err)
		}
		if err := list.Append(cmd); err != nil {
			return nil, fmt.Errorf("rowan: build frame: %w", err)
		}
	}
	var begin Command = NewBeginCommand(req.ClearColor)
	if !req.Target.IsZero() {
		cmd, err := NewBeginWithTargetGroupCommand(req.Target, req.ClearColor)
		if err != nil {
			return nil, fmt.Errorf("rowan: build frame: %w", err)
		}
		begin = cmd
	}
	if err := list.Append(begin); err != nil {
		return nil, fmt.Errorf("rowan: build frame: %w", err)
	}
	camCmd, err := NewApplyCameraCommandFrom(req.Camera)
	if err != nil {
		return nil, fmt.Errorf("rowan: build frame: %w", err)
	}
	if err := list.Append(camCmd); err != nil {
		return nil, fmt.Errorf("rowan: build frame: %w", err)
	}
	for i := range fb.instances {
		if err := list.Append(fb.instances[i].cmd); err != nil {
			return nil, fmt.Errorf("rowan: build frame: instance %d: %w", i, err)
		}
	}
	if err := list.Append(NewEndCommand()); err != nil {
		return nil, fmt.Errorf("rowan: build frame: %w", err)
	}
	if err := list.Seal(); err != nil {
		return nil, fmt.Errorf("rowan: build frame: %w", err)
	}

	if fb.Debug {
		fb.debugLog(frameStats{
			buildTime: time.Since(start),
			commands:  list.Stats(),
			culled:    culled,
			batches:   countBatches(list),
		})
	}
	return list, nil
}

// instanceLessOrEqual returns true if a should sort before or at the same
// position as b. Using <= for submitOrder keeps the sort stable.
func instanceLessOrEqual(a, b *instance) bool {
	if a.renderLayer != b.renderLayer {
		return a.renderLayer < b.renderLayer
	}
	if a.globalOrder != b.globalOrder {
		return a.globalOrder < b.globalOrder
	}
	return a.submitOrder <= b.submitOrder
}

// mergeSort sorts fb.instances in place using fb.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations once the sort buffer reaches its
// high-water mark.
func (fb *FrameBuilder) mergeSort() {
	n := len(fb.instances)
	if n <= 1 {
		return
	}
	if cap(fb.sortBuf) < n {
		fb.sortBuf = make([]instance, n)
	}
	fb.sortBuf = fb.sortBuf[:n]

	a := fb.instances
	b := fb.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(fb.instances, fb.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []instance, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if instanceLessOrEqual(&src[i], &src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	k += copy(dst[k:hi], src[i:mid])
	copy(dst[k:hi], src[j:hi])
}
