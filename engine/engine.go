// Package engine runs the start-up sequence, idles in the window event loop
// and tears everything down in reverse order.
package engine

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/vulkan-go/tutorial/renderer"
)

var ErrVulkanUnsupported = errors.New("vulkan is not supported by the windowing system")

type Window interface {
	renderer.Window
	VulkanSupported() bool
	ShouldClose() bool
	PollEvents()
	Destroy()
}

type Renderer interface {
	Init(window renderer.Window) error
	Destroy()
}

type Engine struct {
	window     Window
	renderer   Renderer
	log        *slog.Logger
	frameDelay time.Duration

	exitC        chan struct{}
	doneC        chan struct{}
	teardownOnce sync.Once
}

// New returns an engine polling window events fps times per second.
func New(window Window, r Renderer, fps int, log *slog.Logger) *Engine {
	if fps <= 0 {
		fps = 60
	}
	return &Engine{
		window:     window,
		renderer:   r,
		log:        log,
		frameDelay: time.Second / time.Duration(fps),
		exitC:      make(chan struct{}, 2),
		doneC:      make(chan struct{}, 2),
	}
}

// Run initializes the renderer and blocks until the window is closed or
// Stop is called. Resources are released before it returns, including when
// initialization fails.
func (e *Engine) Run() error {
	defer func() {
		e.doneC <- struct{}{}
	}()
	if err := e.init(); err != nil {
		e.teardown()
		return err
	}
	e.log.Info("entering event loop", "frame_delay", e.frameDelay)
	e.loop()
	return nil
}

func (e *Engine) init() error {
	if !e.window.VulkanSupported() {
		return ErrVulkanUnsupported
	}
	return e.renderer.Init(e.window)
}

func (e *Engine) loop() {
	ticker := time.NewTicker(e.frameDelay)
	defer ticker.Stop()
	for {
		select {
		case <-e.exitC:
			e.teardown()
			return
		case <-ticker.C:
			if e.window.ShouldClose() {
				e.log.Debug("window closed")
				e.teardown()
				return
			}
			e.window.PollEvents()
		}
	}
}

// Stop asks the event loop to exit and waits for teardown to finish. It is
// safe to call from another goroutine, such as a signal handler.
func (e *Engine) Stop() {
	select {
	case e.exitC <- struct{}{}:
	default:
	}
	<-e.doneC
}

func (e *Engine) teardown() {
	e.teardownOnce.Do(func() {
		e.renderer.Destroy()
		e.window.Destroy()
		e.log.Info("engine stopped")
	})
}
