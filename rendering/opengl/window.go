package opengl

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/rs/zerolog"

	"orbitviz/core"
)

// DefaultTickRate is the render rate in frames per second
const DefaultTickRate = 30

// WindowConfig describes the host window
type WindowConfig struct {
	Width, Height int
	Title         string
	TickRate      float64
	VSync         bool
}

// Window hosts a Visualizer in a glfw window with a 4.3 core context.
// It must be created, run and closed on the same OS thread.
type Window struct {
	win *glfw.Window
	cfg WindowConfig
	log zerolog.Logger
	vis *Visualizer

	// BeforeTick runs on the render thread ahead of every frame
	BeforeTick func()
	// AfterTick receives the stats of every frame
	AfterTick func(FrameStats)
}

// NewWindow initializes glfw, opens the window and makes its context current
func NewWindow(cfg WindowConfig, log zerolog.Logger) (*Window, error) {
	runtime.LockOSThread()

	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultTickRate
	}

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	win, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	win.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	return &Window{
		win: win,
		cfg: cfg,
		log: log.With().Str("component", "window").Logger(),
	}, nil
}

// Attach forwards input and resize events to vis and sizes its viewport
func (w *Window) Attach(vis *Visualizer) {
	w.vis = vis

	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		b, ok := buttonFor(button)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			x, y := w.win.GetCursorPos()
			vis.PointerDown(b, float32(x), float32(y))
		case glfw.Release:
			vis.PointerUp(b)
		}
	})

	w.win.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		vis.PointerMove(float32(x), float32(y))
	})

	w.win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		vis.Wheel(wheelDelta(yoff))
	})

	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		vis.Resize(width, height)
	})

	w.win.SetKeyCallback(func(win *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			win.SetShouldClose(true)
		}
	})

	vis.Resize(w.win.GetFramebufferSize())
}

// Run ticks the visualizer at the configured rate until the window closes
// or ctx is cancelled. Events are handled between ticks on this thread.
func (w *Window) Run(ctx context.Context) error {
	if w.vis == nil {
		return fmt.Errorf("no visualizer attached")
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			glfw.PostEmptyEvent()
		case <-done:
		}
	}()

	interval := time.Duration(float64(time.Second) / w.cfg.TickRate)
	w.log.Info().Dur("interval", interval).Msg("render loop started")

	var next time.Time
	for !w.win.ShouldClose() {
		if err := ctx.Err(); err != nil {
			return err
		}
		now := time.Now()
		if wait := next.Sub(now); wait > 0 {
			glfw.WaitEventsTimeout(wait.Seconds())
			continue
		}
		next = nextDeadline(next, now, interval)

		if w.BeforeTick != nil {
			w.BeforeTick()
		}
		stats := w.vis.Tick(now)
		w.win.SwapBuffers()
		if w.AfterTick != nil {
			w.AfterTick(stats)
		}
		glfw.PollEvents()
	}
	return nil
}

// Close destroys the window and terminates glfw
func (w *Window) Close() {
	if w.win == nil {
		return
	}
	w.win.Destroy()
	w.win = nil
	glfw.Terminate()
}

// nextDeadline advances a fixed-rate schedule, skipping missed ticks instead
// of bursting to catch up
func nextDeadline(prev, now time.Time, interval time.Duration) time.Time {
	next := prev.Add(interval)
	if prev.IsZero() || next.Before(now) {
		return now.Add(interval)
	}
	return next
}

func buttonFor(b glfw.MouseButton) (core.Button, bool) {
	switch b {
	case glfw.MouseButtonLeft:
		return core.PrimaryButton, true
	case glfw.MouseButtonRight:
		return core.SecondaryButton, true
	case glfw.MouseButtonMiddle:
		return core.MiddleButton, true
	default:
		return 0, false
	}
}

// wheelDelta converts glfw scroll offsets (one per notch) to 1/8 degree units
func wheelDelta(yoff float64) float32 {
	return float32(yoff * core.WheelNotch)
}
