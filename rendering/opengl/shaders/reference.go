package shaders

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RingAlpha mirrors ring.frag: the ring is opaque within one unit of its
// satellite and fades with the fifth power of distance beyond that.
func RingAlpha(target, frag mgl32.Vec3) float32 {
	d := float64(target.Sub(frag).Len())
	return float32(math.Min(1/math.Pow(d, 5), 1))
}

// MarkerShade mirrors marker.frag for a point-sprite coordinate in [0,1]².
// It returns false for fragments the shader discards.
func MarkerShade(pointCoord mgl32.Vec2, col mgl32.Vec3) (mgl32.Vec4, bool) {
	cxy := pointCoord.Mul(2).Sub(mgl32.Vec2{1, 1})
	r := cxy.Dot(cxy)
	if r > 1 {
		return mgl32.Vec4{}, false
	}
	if r < 0.5 {
		return col.Vec4(1), true
	}
	return col.Mul(0.5).Vec4(1), true
}
