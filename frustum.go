package rowan

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Plane is the plane Normal·p + D = 0. For frustum planes the positive
// half-space is inside the frustum.
type Plane struct {
	Normal mgl32.Vec3
	D      float32
}

// Distance returns the signed distance from p to the plane. It is a true
// distance only when Normal has unit length.
func (p Plane) Distance(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.D
}

// Frustum plane indices.
const (
	FrustumLeft = iota
	FrustumRight
	FrustumBottom
	FrustumTop
	FrustumNear
	FrustumFar
)

// Frustum is the six clipping planes of a camera's visible volume.
type Frustum struct {
	Planes [6]Plane // Left, Right, Bottom, Top, Near, Far
}

// FrustumFromMatrix extracts normalized clipping planes from a combined
// projection·view matrix (Gribb/Hartmann). Each plane is the sum or
// difference of the matrix's fourth row with one of the first three.
func FrustumFromMatrix(viewProj mgl32.Mat4) Frustum {
	r0, r1, r2, r3 := viewProj.Row(0), viewProj.Row(1), viewProj.Row(2), viewProj.Row(3)

	var f Frustum
	f.Planes[FrustumLeft] = planeFromVec4(r3.Add(r0))
	f.Planes[FrustumRight] = planeFromVec4(r3.Sub(r0))
	f.Planes[FrustumBottom] = planeFromVec4(r3.Add(r1))
	f.Planes[FrustumTop] = planeFromVec4(r3.Sub(r1))
	f.Planes[FrustumNear] = planeFromVec4(r3.Add(r2))
	f.Planes[FrustumFar] = planeFromVec4(r3.Sub(r2))
	return f
}

// planeFromVec4 builds a plane from (a, b, c, d) and normalizes it so the
// normal has unit length.
func planeFromVec4(v mgl32.Vec4) Plane {
	p := Plane{Normal: mgl32.Vec3{v[0], v[1], v[2]}, D: v[3]}
	length := math32.Sqrt(p.Normal.Dot(p.Normal))
	if length > 0 {
		inv := 1 / length
		p.Normal = p.Normal.Mul(inv)
		p.D *= inv
	}
	return p
}

// ContainsPoint reports whether p lies inside or on the frustum.
func (f Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(p) < 0 {
			return false
		}
	}
	return true
}

// SphereCullTest reports whether the sphere lies entirely outside the frustum
// and can be culled. Spheres that straddle a plane are kept.
func (f Frustum) SphereCullTest(center mgl32.Vec3, radius float32) bool {
	for i := range f.Planes {
		if f.Planes[i].Distance(center) < -radius {
			return true
		}
	}
	return false
}
