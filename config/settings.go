// Package config loads orbitviz settings from defaults, an optional
// orbitviz.json file and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FileName is the settings file looked up in the config directory
const FileName = "orbitviz.json"

type Settings struct {
	LogLevel   string
	LogConsole bool

	Window WindowSettings
	Render RenderSettings
	Camera CameraSettings
	Assets AssetSettings
	Feed   FeedSettings
}

type WindowSettings struct {
	Width    int
	Height   int
	Title    string
	TickRate float64
	VSync    bool
}

type RenderSettings struct {
	PointSize   float32
	LineWidth   float32
	FOV         float32
	Near        float32
	Far         float32
	CloudPeriod time.Duration
	ClearColor  [4]float32
}

type CameraSettings struct {
	SensX      float32
	SensY      float32
	ZoomFactor float32
	MinZoom    float32
	MaxZoom    float32
	MaxPitch   float32
}

type AssetSettings struct {
	Dir string
	// Mesh is the sphere asset; empty means a generated sphere
	Mesh     string
	Textures map[string]string
}

type FeedSettings struct {
	Enabled   bool
	Addr      string
	QueueSize int
}

// flag name → viper key
var flagKeys = map[string]string{
	"log-level":    "logLevel",
	"log-console":  "logConsole",
	"width":        "window.width",
	"height":       "window.height",
	"tick-rate":    "window.tickRate",
	"vsync":        "window.vsync",
	"assets":       "assets.dir",
	"mesh":         "assets.mesh",
	"cloud-period": "render.cloudPeriod",
	"feed":         "feed.enabled",
	"feed-addr":    "feed.addr",
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logConsole", true)

	viper.SetDefault("window.width", 1280)
	viper.SetDefault("window.height", 720)
	viper.SetDefault("window.title", "orbitviz")
	viper.SetDefault("window.tickRate", 30)
	viper.SetDefault("window.vsync", false)

	viper.SetDefault("render.pointSize", 20)
	viper.SetDefault("render.lineWidth", 5)
	viper.SetDefault("render.fov", 45)
	viper.SetDefault("render.near", 0.01)
	viper.SetDefault("render.far", 15000)
	viper.SetDefault("render.cloudPeriod", "1000s")
	viper.SetDefault("render.clearColor", []float64{0, 0, 0, 1})

	viper.SetDefault("camera.sensX", -0.5)
	viper.SetDefault("camera.sensY", 0.5)
	viper.SetDefault("camera.zoomFactor", 0.001)
	viper.SetDefault("camera.minZoom", 0.02)
	viper.SetDefault("camera.maxZoom", 12)
	viper.SetDefault("camera.maxPitch", 85)

	viper.SetDefault("assets.dir", "./assets")
	viper.SetDefault("assets.mesh", "")
	viper.SetDefault("assets.textures", map[string]string{})

	viper.SetDefault("feed.enabled", false)
	viper.SetDefault("feed.addr", "127.0.0.1:8080")
	viper.SetDefault("feed.queueSize", 64)
}

// NewFlagSet declares the command-line overrides
func NewFlagSet(name string) *pflag.FlagSet {
	flags := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flags.String("config-dir", ".", "directory containing "+FileName)
	flags.String("log-level", "info", "trace, debug, info, warn or error")
	flags.Bool("log-console", true, "human-readable console logs instead of JSON")
	flags.Int("width", 1280, "window width in pixels")
	flags.Int("height", 720, "window height in pixels")
	flags.Float64("tick-rate", 30, "frames per second")
	flags.Bool("vsync", false, "wait for vertical sync on swap")
	flags.String("assets", "./assets", "texture and mesh directory")
	flags.String("mesh", "", "sphere mesh (OBJ); empty generates one")
	flags.Duration("cloud-period", 1000*time.Second, "period of the cloud animation")
	flags.Bool("feed", false, "serve the websocket scene feed")
	flags.String("feed-addr", "127.0.0.1:8080", "scene feed listen address")
	return flags
}

// Load sets defaults, merges configDir/orbitviz.json when it exists and
// binds any flags the caller set. flags may be nil.
func Load(configDir string, flags *pflag.FlagSet) (Settings, error) {
	setDefaults()

	path := filepath.Join(configDir, FileName)
	viper.SetConfigFile(path)
	viper.SetConfigType("json")

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
		// no file, defaults and flags only
	} else if err := viper.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("error reading config file: %w", err)
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := viper.BindPFlag(key, f); err != nil {
				return Settings{}, fmt.Errorf("binding flag %s: %w", name, err)
			}
		}
	}

	return Current()
}

// Current builds Settings from the values viper holds now
func Current() (Settings, error) {
	s := Settings{
		LogLevel:   viper.GetString("logLevel"),
		LogConsole: viper.GetBool("logConsole"),
		Window: WindowSettings{
			Width:    viper.GetInt("window.width"),
			Height:   viper.GetInt("window.height"),
			Title:    viper.GetString("window.title"),
			TickRate: viper.GetFloat64("window.tickRate"),
			VSync:    viper.GetBool("window.vsync"),
		},
		Render: RenderSettings{
			PointSize:   getFloat32("render.pointSize"),
			LineWidth:   getFloat32("render.lineWidth"),
			FOV:         getFloat32("render.fov"),
			Near:        getFloat32("render.near"),
			Far:         getFloat32("render.far"),
			CloudPeriod: viper.GetDuration("render.cloudPeriod"),
		},
		Camera: CameraSettings{
			SensX:      getFloat32("camera.sensX"),
			SensY:      getFloat32("camera.sensY"),
			ZoomFactor: getFloat32("camera.zoomFactor"),
			MinZoom:    getFloat32("camera.minZoom"),
			MaxZoom:    getFloat32("camera.maxZoom"),
			MaxPitch:   getFloat32("camera.maxPitch"),
		},
		Assets: AssetSettings{
			Dir:      viper.GetString("assets.dir"),
			Mesh:     viper.GetString("assets.mesh"),
			Textures: viper.GetStringMapString("assets.textures"),
		},
		Feed: FeedSettings{
			Enabled:   viper.GetBool("feed.enabled"),
			Addr:      viper.GetString("feed.addr"),
			QueueSize: viper.GetInt("feed.queueSize"),
		},
	}

	rgba, err := getFloats("render.clearColor")
	if err != nil {
		return Settings{}, err
	}
	if len(rgba) != 4 {
		return Settings{}, fmt.Errorf("render.clearColor: want 4 components, got %d", len(rgba))
	}
	copy(s.Render.ClearColor[:], rgba)

	if s.Camera.MinZoom <= 0 || s.Camera.MinZoom > s.Camera.MaxZoom {
		return Settings{}, fmt.Errorf("camera zoom range [%g, %g] is invalid", s.Camera.MinZoom, s.Camera.MaxZoom)
	}
	if s.Render.Near <= 0 || s.Render.Far <= s.Render.Near {
		return Settings{}, fmt.Errorf("render clip range near=%g far=%g is invalid", s.Render.Near, s.Render.Far)
	}
	if s.Window.TickRate <= 0 {
		return Settings{}, fmt.Errorf("window.tickRate must be positive, got %g", s.Window.TickRate)
	}
	return s, nil
}

// getFloats reads a numeric list from defaults ([]float64) or JSON ([]any)
func getFloats(key string) ([]float32, error) {
	switch v := viper.Get(key).(type) {
	case []float64:
		out := make([]float32, len(v))
		for i, f := range v {
			out[i] = float32(f)
		}
		return out, nil
	case []any:
		out := make([]float32, len(v))
		for i, e := range v {
			switch n := e.(type) {
			case float64:
				out[i] = float32(n)
			case int:
				out[i] = float32(n)
			default:
				return nil, fmt.Errorf("%s[%d]: not a number: %v", key, i, e)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%s: not a list: %v", key, v)
	}
}

func getFloat32(key string) float32 {
	return float32(viper.GetFloat64(key))
}
