package rowan

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection matrices are column-major (mgl32 layout) and left-handed: +Z
// points into the screen and depth in [near, far] maps to clip-space [-1, 1].

// orthographicLH returns a left-handed orthographic projection centred on the
// view axis, spanning width×height units.
func orthographicLH(width, height, near, far float32) mgl32.Mat4 {
	depth := far - near
	return mgl32.Mat4{
		2 / width, 0, 0, 0,
		0, 2 / height, 0, 0,
		0, 0, 2 / depth, 0,
		0, 0, -(far + near) / depth, 1,
	}
}

// perspectiveLH returns a left-handed perspective projection. fovY is the
// vertical field of view in radians.
func perspectiveLH(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1 / math32.Tan(fovY/2)
	depth := far - near
	return mgl32.Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) / depth, 1,
		0, 0, -2 * far * near / depth, 0,
	}
}
