package shaders

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestRingAlpha(t *testing.T) {
	target := mgl32.Vec3{2, 0, 0}
	tests := []struct {
		name string
		frag mgl32.Vec3
		want float32
	}{
		{"at marker", target, 1},
		{"within one unit", mgl32.Vec3{2, 0.5, 0}, 1},
		{"two units", mgl32.Vec3{0, 0, 0}, 1.0 / 32},
		{"far away", mgl32.Vec3{-100, 0, 0}, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, RingAlpha(target, tc.frag), 1e-6)
		})
	}
	assert.Less(t, RingAlpha(target, mgl32.Vec3{12, 0, 0}), float32(1e-4))
}

func TestMarkerShade(t *testing.T) {
	col := mgl32.Vec3{0.1, 1, 0.1}
	tests := []struct {
		name    string
		coord   mgl32.Vec2
		want    mgl32.Vec4
		visible bool
	}{
		{"centre", mgl32.Vec2{0.5, 0.5}, mgl32.Vec4{0.1, 1, 0.1, 1}, true},
		{"outer ring", mgl32.Vec2{0.9, 0.5}, mgl32.Vec4{0.05, 0.5, 0.05, 1}, true},
		{"corner", mgl32.Vec2{0, 0}, mgl32.Vec4{}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, visible := MarkerShade(tc.coord, col)
			assert.Equal(t, tc.visible, visible)
			assert.True(t, got.ApproxEqualThreshold(tc.want, 1e-6), "got %v", got)
		})
	}
}
