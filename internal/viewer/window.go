// Package viewer is the interactive front-end: a glfw window with an
// OpenGL 4.1 context, per-frame input polling and a renderer for the edited
// mesh and its handles.
package viewer

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"mesh-editor/internal/logger"
)

func init() {
	// OpenGL and glfw calls must stay on the main thread.
	runtime.LockOSThread()
}

// Window wraps a glfw window and its current GL context.
type Window struct {
	Handle *glfw.Window
	Width  int
	Height int
	Title  string

	onScroll func(xoff, yoff float64)
	onFocus  func(focused bool)
	onResize func(width, height int)
	onDrop   func(paths []string)
}

type WindowConfig struct {
	Width     int
	Height    int
	Title     string
	Resizable bool
	VSync     bool
}

func DefaultWindowConfig() WindowConfig {
	return WindowConfig{
		Width:     1280,
		Height:    720,
		Title:     "Mesh Editor",
		Resizable: true,
		VSync:     true,
	}
}

// NewWindow creates the window and makes its GL context current.
func NewWindow(config WindowConfig) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.Samples, 4)
	glfw.WindowHint(glfw.Resizable, boolToInt(config.Resizable))

	handle, err := glfw.CreateWindow(config.Width, config.Height, config.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	handle.MakeContextCurrent()
	if config.VSync {
		glfw.SwapInterval(1)
	} else {
		glfw.SwapInterval(0)
	}

	window := &Window{
		Handle: handle,
		Width:  config.Width,
		Height: config.Height,
		Title:  config.Title,
	}

	handle.SetSizeCallback(func(w *glfw.Window, width, height int) {
		window.Width = width
		window.Height = height
		if window.onResize != nil {
			window.onResize(width, height)
		}
	})
	handle.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		if window.onScroll != nil {
			window.onScroll(xoff, yoff)
		}
	})
	handle.SetDropCallback(func(w *glfw.Window, names []string) {
		if window.onDrop != nil {
			window.onDrop(names)
		}
	})
	handle.SetFocusCallback(func(w *glfw.Window, focused bool) {
		if window.onFocus != nil {
			window.onFocus(focused)
		}
	})

	logger.Named("viewer").Info("window created",
		zap.String("title", config.Title),
		zap.Int("width", config.Width),
		zap.Int("height", config.Height),
		zap.Bool("vsync", config.VSync),
	)
	return window, nil
}

func (w *Window) ShouldClose() bool {
	return w.Handle.ShouldClose()
}

func (w *Window) PollEvents() {
	glfw.PollEvents()
}

func (w *Window) SwapBuffers() {
	w.Handle.SwapBuffers()
}

func (w *Window) GetFramebufferSize() (int, int) {
	return w.Handle.GetFramebufferSize()
}

func (w *Window) Destroy() {
	w.Handle.Destroy()
	glfw.Terminate()
}

func (w *Window) IsKeyPressed(key glfw.Key) bool {
	return w.Handle.GetKey(key) == glfw.Press
}

func (w *Window) SetTitle(title string) {
	w.Handle.SetTitle(title)
	w.Title = title
}

func (w *Window) IsMouseButtonPressed(button glfw.MouseButton) bool {
	return w.Handle.GetMouseButton(button) == glfw.Press
}

func (w *Window) GetCursorPos() (float64, float64) {
	return w.Handle.GetCursorPos()
}

// SetScrollCallback registers the handler for wheel events.
func (w *Window) SetScrollCallback(cb func(xoff, yoff float64)) {
	w.onScroll = cb
}

// SetFocusCallback registers the handler for focus changes.
func (w *Window) SetFocusCallback(cb func(focused bool)) {
	w.onFocus = cb
}

// SetResizeCallback registers the handler for window size changes.
func (w *Window) SetResizeCallback(cb func(width, height int)) {
	w.onResize = cb
}

// SetDropCallback registers the handler for files dropped on the window.
func (w *Window) SetDropCallback(cb func(paths []string)) {
	w.onDrop = cb
}

func boolToInt(b bool) int {
	if b {
		return glfw.True
	}
	return glfw.False
}
