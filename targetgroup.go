package rowan

import (
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// TargetGroup is an offscreen render target: a color image that render
// commands can draw into instead of the screen. Commands never own a
// TargetGroup; they refer to one through a TargetGroupHandle.
type TargetGroup struct {
	width, height int
	image         *ebiten.Image
	lost          bool
}

// TargetGroupHandle is a weak reference to a registered TargetGroup.
type TargetGroupHandle = Handle[*TargetGroup]

// TextureHandle is a weak reference to a registered texture (atlas page).
type TextureHandle = Handle[*ebiten.Image]

// NewTargetGroup allocates a w×h offscreen target.
func NewTargetGroup(w, h int) (*TargetGroup, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("rowan: new target group: size %dx%d must be positive", w, h)
	}
	g := &TargetGroup{width: w, height: h}
	g.allocate()
	return g, nil
}

func (g *TargetGroup) allocate() {
	g.image = ebiten.NewImageWithOptions(
		image.Rect(0, 0, g.width, g.height),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
	g.lost = false
}

// Width returns the target width in pixels.
func (g *TargetGroup) Width() int { return g.width }

// Height returns the target height in pixels.
func (g *TargetGroup) Height() int { return g.height }

// Image returns the color image, or nil while the target is lost.
func (g *TargetGroup) Image() *ebiten.Image {
	if g.lost {
		return nil
	}
	return g.image
}

// Lost reports whether the target's GPU memory has been released and needs
// a RestoreRenderTargetGroup command before it can be drawn to again.
func (g *TargetGroup) Lost() bool { return g.lost }

// Invalidate releases the target's GPU memory, as happens on graphics
// context loss. The group stays registered; restoring it reallocates the
// image with the same size.
func (g *TargetGroup) Invalidate() {
	if g.lost {
		return
	}
	g.image.Deallocate()
	g.image = nil
	g.lost = true
}

// restore reallocates a lost target. Reports whether work was done.
func (g *TargetGroup) restore() bool {
	if !g.lost {
		return false
	}
	g.allocate()
	return true
}
