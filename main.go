package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"orbitviz/assets"
	"orbitviz/config"
	"orbitviz/core"
	"orbitviz/feed"
	"orbitviz/gpu"
	"orbitviz/logging"
	"orbitviz/rendering/opengl"
	"orbitviz/rendering/textures"
)

// maxTextureSize bounds decoded textures to what every 4.3 driver accepts
const maxTextureSize = 8192

func main() {
	runtime.LockOSThread()

	flags := config.NewFlagSet("orbitviz")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	dir, _ := flags.GetString("config-dir")

	settings, err := config.Load(dir, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(settings.LogLevel, settings.LogConsole)

	if err := run(settings, log); err != nil {
		log.Fatal().Err(err).Msg("orbitviz stopped")
	}
}

func run(s config.Settings, log zerolog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	win, err := opengl.NewWindow(opengl.WindowConfig{
		Width:    s.Window.Width,
		Height:   s.Window.Height,
		Title:    s.Window.Title,
		TickRate: s.Window.TickRate,
		VSync:    s.Window.VSync,
	}, log)
	if err != nil {
		return err
	}
	defer win.Close()

	dev, err := gpu.NewGL()
	if err != nil {
		return err
	}
	log.Info().Str("version", dev.Version()).Msg("OpenGL ready")

	vis, err := opengl.NewVisualizer(dev, visualizerOptions(s, log), log)
	if err != nil {
		return err
	}
	defer vis.Close()

	win.Attach(vis)
	if err := vis.Init(); err != nil {
		log.Warn().Err(err).Msg("running with missing assets")
	}
	checkGL(dev, "init", log)

	if s.Feed.Enabled {
		queue := feed.NewQueue(s.Feed.QueueSize, log)
		srv := feed.NewServer(s.Feed.Addr, queue, log)
		go func() {
			if err := srv.ListenAndServe(); err != nil {
				log.Error().Err(err).Msg("scene feed stopped")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Warn().Err(err).Msg("scene feed shutdown")
			}
		}()
		win.BeforeTick = func() {
			// rejected commands are logged by the queue
			_, _ = queue.Drain(vis)
		}
	}

	err = win.Run(ctx)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("interrupted")
		return nil
	}
	return err
}

// glErrorSource is the part of the GL device that reports its error queue
type glErrorSource interface {
	Error() error
}

// checkGL logs a pending GL error raised during stage and reports whether
// there was one
func checkGL(dev glErrorSource, stage string, log zerolog.Logger) bool {
	err := dev.Error()
	if err == nil {
		return false
	}
	log.Error().Err(err).Str("stage", stage).Msg("OpenGL error")
	return true
}

func visualizerOptions(s config.Settings, log zerolog.Logger) opengl.Options {
	opts := opengl.DefaultOptions()
	opts.AssetsDir = s.Assets.Dir
	opts.MeshPath = s.Assets.Mesh
	opts.Meshes = assets.OBJLoader{}
	opts.Images = assets.ImageDecoder{MaxSize: maxTextureSize}

	known := make(map[textures.Name]bool, len(textures.Names))
	for _, n := range textures.Names {
		known[n] = true
	}
	for name, file := range s.Assets.Textures {
		if !known[textures.Name(name)] {
			log.Warn().Str("texture", name).Msg("unknown texture in settings")
			continue
		}
		opts.Textures[textures.Name(name)] = file
	}

	opts.Camera = core.CameraSettings{
		SensX:      s.Camera.SensX,
		SensY:      s.Camera.SensY,
		ZoomFactor: s.Camera.ZoomFactor,
		MinZoom:    s.Camera.MinZoom,
		MaxZoom:    s.Camera.MaxZoom,
		MaxPitch:   s.Camera.MaxPitch,
	}
	opts.Lens = core.Lens{FOV: s.Render.FOV, Near: s.Render.Near, Far: s.Render.Far}
	opts.State = gpu.StateConfig{
		ClearColor: mgl32.Vec4(s.Render.ClearColor),
		PointSize:  s.Render.PointSize,
		LineWidth:  s.Render.LineWidth,
	}
	opts.CloudPeriod = s.Render.CloudPeriod
	return opts
}
