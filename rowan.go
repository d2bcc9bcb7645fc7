package rowan

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color is a straight-alpha RGBA tint or clear color, each channel in
// [0, 1]. Backends premultiply it when they consume a command.
type Color struct {
	R, G, B, A float32
}

// ColorWhite leaves sampled texels unchanged when used as a tint.
var ColorWhite = Color{1, 1, 1, 1}

// ColorTransparent clears a target to nothing. It is the zero Color.
var ColorTransparent = Color{}

func (c Color) premultiplied() (r, g, b, a float32) {
	return c.R * c.A, c.G * c.A, c.B * c.A, c.A
}

// RGBA returns c premultiplied and quantized to 8 bits per channel, as
// ebiten.Image.Fill expects.
func (c Color) RGBA() color.RGBA {
	r, g, b, a := c.premultiplied()
	return color.RGBA{R: quantize(r), G: quantize(g), B: quantize(b), A: quantize(a)}
}

func quantize(v float32) uint8 {
	v = max(0, min(v, 1))
	return uint8(v*255 + 0.5)
}

// BlendMode is how a RenderInstance command composites onto its target.
// Instances with different blend modes never share a draw call.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over
	BlendAdd                       // lighter
	BlendMultiply                  // darkens only
	BlendScreen                    // brightens only
	BlendErase                     // destination-out
	BlendNone                      // copy, no blending
	blendModeCount
)

var blendModeNames = [blendModeCount]string{
	BlendNormal:   "normal",
	BlendAdd:      "add",
	BlendMultiply: "multiply",
	BlendScreen:   "screen",
	BlendErase:    "erase",
	BlendNone:     "none",
}

var ebitenBlends = [blendModeCount]ebiten.Blend{
	BlendNormal: ebiten.BlendSourceOver,
	BlendAdd:    ebiten.BlendLighter,
	BlendMultiply: {
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendScreen: {
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	BlendErase: ebiten.BlendDestinationOut,
	BlendNone:  ebiten.BlendCopy,
}

func (b BlendMode) String() string {
	if b < blendModeCount {
		return blendModeNames[b]
	}
	return fmt.Sprintf("BlendMode(%d)", uint8(b))
}

// EbitenBlend returns the ebiten blend state the backend draws b with.
// Unknown modes fall back to source-over.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	if b < blendModeCount {
		return ebitenBlends[b]
	}
	return ebiten.BlendSourceOver
}
