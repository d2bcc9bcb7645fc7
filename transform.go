package rowan

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// spriteLocalTransform computes a sprite's world matrix from its transform
// properties.
//
// Composition order:
//
//	Translate(-PivotX, -PivotY) -> Scale -> Skew -> Rotate -> Translate(X, Y, Z)
func spriteLocalTransform(s *Sprite) mgl32.Mat4 {
	sx := s.ScaleX
	sy := s.ScaleY

	sin, cos := math32.Sincos(s.Rotation)

	var tanSkewX, tanSkewY float32
	if s.SkewX != 0 {
		tanSkewX = math32.Tan(s.SkewX)
	}
	if s.SkewY != 0 {
		tanSkewY = math32.Tan(s.SkewY)
	}

	a := sx
	b := tanSkewY * sx
	c := tanSkewX * sy
	d := sy

	px := s.PivotX
	py := s.PivotY
	preTx := -px*sx - tanSkewX*py*sy
	preTy := -tanSkewY*px*sx - py*sy

	ra := cos*a - sin*b
	rb := sin*a + cos*b
	rc := cos*c - sin*d
	rd := sin*c + cos*d
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return affineToMat4([6]float32{ra, rb, rc, rd, rtx + s.X, rty + s.Y}, s.Z)
}

// affineToMat4 lifts a 2D affine matrix [a, b, c, d, tx, ty] to a column-major
// 4x4 matrix placing the XY plane at depth z.
//
//	| a  c  0  tx |
//	| b  d  0  ty |
//	| 0  0  1  z  |
//	| 0  0  0  1  |
func affineToMat4(m [6]float32, z float32) mgl32.Mat4 {
	return mgl32.Mat4{
		m[0], m[1], 0, 0,
		m[2], m[3], 0, 0,
		0, 0, 1, 0,
		m[4], m[5], z, 1,
	}
}

// quadTransform maps the unit quad onto a frame's trimmed rectangle inside
// the sprite's local space, then applies local. Local space is y-up with the
// origin at the bottom-left of the untrimmed frame; Frame.Offset is measured
// from the top-left, as packers write it.
func quadTransform(local mgl32.Mat4, f Frame) mgl32.Mat4 {
	x := f.Offset[0]
	y := f.OriginalSize[1] - f.Offset[1] - f.CroppedSize[1]
	place := mgl32.Mat4{
		f.CroppedSize[0], 0, 0, 0,
		0, f.CroppedSize[1], 0, 0,
		0, 0, 1, 0,
		x, y, 0, 1,
	}
	return local.Mul4(place)
}

// unitQuadCorners lists the unit quad corners in triangle-strip-friendly
// order: bottom-left, bottom-right, top-left, top-right.
var unitQuadCorners = [4]mgl32.Vec4{
	{0, 0, 0, 1},
	{1, 0, 0, 1},
	{0, 1, 0, 1},
	{1, 1, 0, 1},
}

// quadBoundingSphere returns the center and radius of a sphere enclosing the
// unit quad transformed by world.
func quadBoundingSphere(world mgl32.Mat4) (mgl32.Vec3, float32) {
	center := world.Mul4x1(mgl32.Vec4{0.5, 0.5, 0, 1}).Vec3()
	var radius float32
	for _, corner := range unitQuadCorners {
		p := world.Mul4x1(corner).Vec3()
		if d := p.Sub(center).Len(); d > radius {
			radius = d
		}
	}
	return center, radius
}
