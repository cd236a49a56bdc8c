package core

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newController() (*Scene, *CameraController) {
	scene := NewScene()
	return scene, NewCameraController(scene, DefaultCameraSettings())
}

func TestPitchStaysClamped(t *testing.T) {
	scene, ctrl := newController()
	rng := rand.New(rand.NewSource(7))

	ctrl.PointerDown(PrimaryButton, 0, 0)
	x, y := float32(0), float32(0)
	for i := 0; i < 2000; i++ {
		x += float32(rng.Intn(81) - 40)
		step := float32(rng.Intn(81) - 40)
		y += step
		before := ctrl.Pitch()
		ctrl.PointerMove(x, y)

		p := ctrl.Pitch()
		require.LessOrEqual(t, p, float32(85))
		require.GreaterOrEqual(t, p, float32(-85))
		if next := before + step*0.5; next > 85 || next < -85 {
			require.Equal(t, before, p, "move %d overshot", i)
		} else {
			require.InDelta(t, next, p, 1e-3)
		}
		require.InDelta(t, 1, scene.Camera.Direction.Len(), 1e-4)
	}
}

func TestPitchHardStop(t *testing.T) {
	_, ctrl := newController()
	ctrl.PointerDown(PrimaryButton, 0, 0)

	// 160px * 0.5 = 80 degrees
	ctrl.PointerMove(0, 160)
	assert.InDelta(t, 80, ctrl.Pitch(), 1e-4)

	// +10 degrees would reach 90: dropped entirely
	ctrl.PointerMove(0, 180)
	assert.InDelta(t, 80, ctrl.Pitch(), 1e-4)

	// +4 degrees is fine
	ctrl.PointerMove(0, 188)
	assert.InDelta(t, 84, ctrl.Pitch(), 1e-4)

	// back down works
	ctrl.PointerMove(0, 0)
	assert.InDelta(t, -10, ctrl.Pitch(), 1e-4)
}

func TestPointerMoveRequiresPrimaryDrag(t *testing.T) {
	scene, ctrl := newController()
	dir := scene.Camera.Direction

	assert.False(t, ctrl.PointerMove(50, 50))
	ctrl.PointerDown(SecondaryButton, 0, 0)
	assert.False(t, ctrl.Dragging())
	assert.False(t, ctrl.PointerMove(50, 50))
	assert.Equal(t, dir, scene.Camera.Direction)

	ctrl.PointerDown(PrimaryButton, 0, 0)
	assert.True(t, ctrl.Dragging())
	assert.True(t, ctrl.PointerMove(10, 0))
	ctrl.PointerUp(PrimaryButton)
	assert.False(t, ctrl.Dragging())
	assert.False(t, ctrl.PointerMove(100, 0))
}

func TestHorizontalDragYaws(t *testing.T) {
	scene, ctrl := newController()
	var fields []Field
	scene.OnChange(func(f Field) { fields = append(fields, f) })

	ctrl.PointerDown(PrimaryButton, 100, 100)
	// -0.5 deg/px * 180 px = -90 degrees about +Y
	ctrl.PointerMove(280, 100)

	want := mgl32.HomogRotate3DY(mgl32.DegToRad(-90)).Mul4x1(mgl32.Vec4{0, 0, 1, 0}).Vec3()
	assert.True(t, scene.Camera.Direction.ApproxEqualThreshold(want, 1e-5), "direction %v", scene.Camera.Direction)
	assert.Equal(t, float32(0), ctrl.Pitch())
	assert.Equal(t, []Field{View}, fields)
}

func TestVerticalDragPitchesAroundSideAxis(t *testing.T) {
	scene, ctrl := newController()
	ctrl.PointerDown(PrimaryButton, 0, 0)
	ctrl.PointerMove(0, 60) // 30 degrees

	d := scene.Camera.Direction
	assert.InDelta(t, 0, d.X(), 1e-5)
	assert.InDelta(t, 0.5, mgl32.Abs(d.Y()), 1e-5)
	assert.InDelta(t, 1, d.Len(), 1e-5)
}

func TestZoomClamp(t *testing.T) {
	tests := []struct {
		name   string
		deltas []float32
		want   float32
	}{
		{"one notch in", []float32{WheelNotch}, 2.88},
		{"large delta", []float32{1000}, 2.0},
		{"clamped near", []float32{5000}, 0.02},
		{"clamped far", []float32{-20000}, 12},
		{"clamp then recover", []float32{-20000, 1000}, 11},
		{"in and out", []float32{500, -500}, 3},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			scene, ctrl := newController()
			for _, d := range tc.deltas {
				ctrl.Wheel(d)
				require.GreaterOrEqual(t, scene.Camera.Zoom, float32(0.02))
				require.LessOrEqual(t, scene.Camera.Zoom, float32(12))
			}
			assert.InDelta(t, tc.want, scene.Camera.Zoom, 1e-4)
		})
	}
}

func TestZoomRandomWalkStaysInRange(t *testing.T) {
	scene, ctrl := newController()
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 1000; i++ {
		prev := scene.Camera.Zoom
		d := float32(rng.Intn(4001) - 2000)
		ctrl.Wheel(d)
		want := mgl32.Clamp(prev-d*0.001, 0.02, 12)
		require.InDelta(t, want, scene.Camera.Zoom, 1e-4)
	}
}
