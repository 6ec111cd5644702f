package opengl

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/go-theft-auto/scene"
)

// WindowConfig describes the window created by NewPlatform.
type WindowConfig struct {
	Title         string
	Width, Height int
	VSync         bool
	Hidden        bool // offscreen use, e.g. capturing screenshots
}

// Platform owns a GLFW window with an OpenGL 4.1 core context and the
// scene.Graphics rendering into it. It forwards framebuffer resizes to the
// scene and runs the frame loop.
//
// GLFW must run on the main thread: call runtime.LockOSThread in an init
// function of package main.
type Platform struct {
	window *glfw.Window
	driver *Driver
	gfx    *scene.Graphics

	// OnKey, when set, receives key presses.
	OnKey func(key glfw.Key)
}

// NewPlatform creates the window, initializes GL and builds a Graphics
// with opts.
func NewPlatform(cfg WindowConfig, opts ...scene.Option) (*Platform, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.Hidden {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	window, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}
	scene.Logger().Info("OpenGL initialized", "version", gl.GoStr(gl.GetString(gl.VERSION)))

	drv := NewDriver()
	gfx, err := scene.New(drv, opts...)
	if err != nil {
		drv.Release()
		window.Destroy()
		glfw.Terminate()
		return nil, err
	}

	p := &Platform{window: window, driver: drv, gfx: gfx}
	gfx.SetSize(window.GetFramebufferSize())
	window.SetFramebufferSizeCallback(p.framebufferSizeCallback)
	window.SetKeyCallback(p.keyCallback)
	return p, nil
}

// Graphics returns the scene graphics bound to the window's context.
func (p *Platform) Graphics() *scene.Graphics { return p.gfx }

// Window returns the GLFW window.
func (p *Platform) Window() *glfw.Window { return p.window }

func (p *Platform) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	p.gfx.SetSize(width, height)
}

func (p *Platform) keyCallback(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action == glfw.Press && p.OnKey != nil {
		p.OnKey(key)
	}
}

// Run polls events and paints frames until the window is closed. update,
// if non-nil, runs before each paint with the time since the last frame.
func (p *Platform) Run(update func(dt time.Duration)) error {
	last := time.Now()
	for !p.window.ShouldClose() {
		glfw.PollEvents()

		now := time.Now()
		if update != nil {
			update(now.Sub(last))
		}
		last = now

		if err := p.gfx.Paint(); err != nil && !errors.Is(err, scene.ErrContextLost) {
			return fmt.Errorf("paint: %w", err)
		}
		p.window.SwapBuffers()
	}
	return nil
}

// SimulateContextLoss runs the context loss and recreation signals against
// the live context. GPU objects of the old generation are abandoned, not
// deleted; use it to exercise surface restore paths during development.
func (p *Platform) SimulateContextLoss() {
	p.gfx.ContextLost()
	w, h := p.window.GetFramebufferSize()
	p.gfx.ContextCreated(w, h)
}

// Close destroys the scene, the GL state and the window.
func (p *Platform) Close() {
	p.gfx.Close()
	p.driver.Release()
	p.window.Destroy()
	glfw.Terminate()
}
