package feed

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbitviz/core"
)

func decode(t *testing.T, raw string) Command {
	t.Helper()
	var cmd Command
	require.NoError(t, json.Unmarshal([]byte(raw), &cmd))
	return cmd
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{"sun", `{"type":"sun","position":[1,2,3]}`, nil},
		{"sun without position", `{"type":"sun"}`, ErrMissingField},
		{"moon rotation only", `{"type":"moon","rotation":[0,90,0]}`, nil},
		{"moon empty", `{"type":"moon"}`, ErrMissingField},
		{"planet", `{"type":"planet","rotation":[0,15,0]}`, nil},
		{"camera target", `{"type":"camera_target","position":[0,0,0]}`, nil},
		{"unknown type", `{"type":"comet"}`, ErrUnknownCommand},
		{"unknown category", `{"type":"satellites","category":"blue"}`, core.ErrUnknownCategory},
		{"length mismatch", `{"type":"satellites","category":"red","markers":[{"position":[1,0,0]}],"orbits":[]}`, core.ErrLengthMismatch},
		{"marker without position", `{"type":"satellites","category":"red","markers":[{}],"orbits":[{"scale":[1,1,1]}]}`, ErrMissingField},
		{"empty category", `{"type":"satellites","category":"green"}`, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cmd := decode(t, tc.raw)
			err := cmd.Validate()
			if tc.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestMarkerResolve(t *testing.T) {
	pos := mgl32.Vec3{1, 2, 3}
	got, err := Marker{Position: &pos}.Resolve()
	require.NoError(t, err)
	assert.Equal(t, pos, got)

	got, err = Marker{Geodetic: &core.Geographic{Lat: 0, Lon: 0}}.Resolve()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.X(), 0.002)
	assert.InDelta(t, 0, got.Y(), 1e-4)
	assert.InDelta(t, 0, got.Z(), 1e-4)

	got, err = Marker{Geodetic: &core.Geographic{Lat: 90}}.Resolve()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, got.Y(), 0.002)

	_, err = Marker{Geodetic: &core.Geographic{Lat: 91}}.Resolve()
	assert.Error(t, err)

	_, err = Marker{Position: &pos, Geodetic: &core.Geographic{}}.Resolve()
	assert.Error(t, err)
}

func TestApplyToScene(t *testing.T) {
	scene := core.NewScene()
	var changed []core.Field
	scene.OnChange(func(f core.Field) { changed = append(changed, f) })

	cmds := []string{
		`{"type":"sun","position":[100,0,0]}`,
		`{"type":"moon","position":[-20,0,0],"rotation":[0,45,0]}`,
		`{"type":"planet","rotation":[0,10,0]}`,
		`{"type":"camera_target","position":[0,1,0]}`,
		`{"type":"satellites","category":"green","markers":[{"position":[1,0,0]},{"geodetic":{"lat":0,"lon":90,"alt":0}}],"orbits":[{"scale":[1,1,1]},{"scale":[2,2,2],"tilt":[30,0,0]}]}`,
	}
	for _, raw := range cmds {
		cmd := decode(t, raw)
		require.NoError(t, cmd.Validate(), raw)
		require.NoError(t, cmd.Apply(scene), raw)
	}

	assert.Equal(t, mgl32.Vec3{100, 0, 0}, scene.Sun.Position)
	assert.Equal(t, mgl32.Vec3{-20, 0, 0}, scene.Moon.Position)
	assert.Equal(t, mgl32.Vec3{0, 45, 0}, scene.Moon.Rotation)
	assert.Equal(t, mgl32.Vec3{0, 10, 0}, scene.Planet.Rotation)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, scene.Camera.Target)
	assert.Equal(t, []core.Field{core.Sun, core.Moon, core.Moon, core.Planet, core.View}, changed)

	sats := scene.Satellites(core.Green)
	require.Len(t, sats, 2)
	assert.Equal(t, mgl32.Vec3{1, 0, 0}, sats[0].Marker)
	assert.InDelta(t, 0.5, sats[1].Marker.Z(), 0.002)
	assert.Equal(t, mgl32.Vec3{30, 0, 0}, sats[1].Orbit.Tilt)
}

func TestQueueDrainInOrder(t *testing.T) {
	q := NewQueue(4, zerolog.Nop())
	for _, x := range []float32{1, 2, 3} {
		p := mgl32.Vec3{x, 0, 0}
		require.NoError(t, q.Push(Command{Type: TypeSun, Position: &p}))
	}
	assert.Equal(t, 3, q.Len())

	scene := core.NewScene()
	var seen []float32
	scene.OnChange(func(core.Field) { seen = append(seen, scene.Sun.Position.X()) })

	n, err := q.Drain(scene)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []float32{1, 2, 3}, seen)
	assert.Zero(t, q.Len())

	n, err = q.Drain(scene)
	assert.NoError(t, err)
	assert.Zero(t, n)
}

func TestQueueFull(t *testing.T) {
	q := NewQueue(1, zerolog.Nop())
	p := mgl32.Vec3{}
	require.NoError(t, q.Push(Command{Type: TypeSun, Position: &p}))
	assert.ErrorIs(t, q.Push(Command{Type: TypeSun, Position: &p}), ErrQueueFull)
}

func TestDrainReportsUnvalidatedCommands(t *testing.T) {
	q := NewQueue(2, zerolog.Nop())
	require.NoError(t, q.Push(Command{Type: "comet"}))

	n, err := q.Drain(core.NewScene())
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrUnknownCommand)
}
