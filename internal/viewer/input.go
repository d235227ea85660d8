package viewer

import (
	"github.com/go-gl/glfw/v3.3/glfw"

	"mesh-editor/editor"
)

// Input tracks mouse and keyboard state between frames.
type Input struct {
	// Mouse state
	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	lastMouseX, lastMouseY   float64
	ScrollDelta              float64

	mouseButtons     [3]bool
	mouseButtonsPrev [3]bool

	keys     map[glfw.Key]bool
	keysPrev map[glfw.Key]bool

	// Modifiers
	ShiftDown bool
	CtrlDown  bool
	SuperDown bool
	AltDown   bool

	window     *Window
	firstFrame bool
}

// Mouse button indices
const (
	MouseLeft   = 0
	MouseRight  = 1
	MouseMiddle = 2
)

// polledKeys are the keys shortcuts can query.
var polledKeys = []glfw.Key{
	glfw.KeyEscape, glfw.KeyDelete,
	glfw.Key1, glfw.Key2, glfw.Key3, glfw.Key4,
	glfw.KeyE, glfw.KeyF, glfw.KeyG, glfw.KeyZ, glfw.KeyY,
	glfw.KeyX, glfw.KeyC, glfw.KeyS, glfw.KeyO, glfw.KeyN,
	glfw.KeyB, glfw.KeyP, glfw.KeyQ, glfw.KeyT, glfw.KeyM, glfw.KeyR,
}

// NewInput creates an input tracker bound to window's scroll events.
func NewInput(window *Window) *Input {
	in := &Input{
		window:     window,
		keys:       make(map[glfw.Key]bool, len(polledKeys)),
		keysPrev:   make(map[glfw.Key]bool, len(polledKeys)),
		firstFrame: true,
	}
	window.SetScrollCallback(func(xoff, yoff float64) {
		in.ScrollDelta += yoff
	})
	return in
}

// Update should be called once per frame to compute deltas and poll state.
func (in *Input) Update() {
	x, y := in.window.GetCursorPos()
	if in.firstFrame {
		in.lastMouseX, in.lastMouseY = x, y
		in.firstFrame = false
	}
	in.MouseDeltaX = x - in.lastMouseX
	in.MouseDeltaY = y - in.lastMouseY
	in.lastMouseX, in.lastMouseY = x, y
	in.MouseX, in.MouseY = x, y

	copy(in.mouseButtonsPrev[:], in.mouseButtons[:])
	for k, v := range in.keys {
		in.keysPrev[k] = v
	}

	in.mouseButtons[MouseLeft] = in.window.IsMouseButtonPressed(glfw.MouseButtonLeft)
	in.mouseButtons[MouseRight] = in.window.IsMouseButtonPressed(glfw.MouseButtonRight)
	in.mouseButtons[MouseMiddle] = in.window.IsMouseButtonPressed(glfw.MouseButtonMiddle)

	in.ShiftDown = in.window.IsKeyPressed(glfw.KeyLeftShift) || in.window.IsKeyPressed(glfw.KeyRightShift)
	in.CtrlDown = in.window.IsKeyPressed(glfw.KeyLeftControl) || in.window.IsKeyPressed(glfw.KeyRightControl)
	in.SuperDown = in.window.IsKeyPressed(glfw.KeyLeftSuper) || in.window.IsKeyPressed(glfw.KeyRightSuper)
	in.AltDown = in.window.IsKeyPressed(glfw.KeyLeftAlt) || in.window.IsKeyPressed(glfw.KeyRightAlt)

	for _, k := range polledKeys {
		in.keys[k] = in.window.IsKeyPressed(k)
	}
}

// EndFrame clears per-frame state.
func (in *Input) EndFrame() {
	in.ScrollDelta = 0
}

// Modifiers samples the selection modifiers from the held keys.
func (in *Input) Modifiers() editor.Modifiers {
	return editor.ModifiersFromKeys(in.ShiftDown, in.CtrlDown, in.SuperDown)
}

// Reset forgets held buttons, e.g. after focus loss.
func (in *Input) Reset() {
	in.mouseButtons = [3]bool{}
	in.mouseButtonsPrev = [3]bool{}
	in.firstFrame = true
}

func (in *Input) IsMouseDown(button int) bool {
	if button < 0 || button >= len(in.mouseButtons) {
		return false
	}
	return in.mouseButtons[button]
}

func (in *Input) IsMousePressed(button int) bool {
	if button < 0 || button >= len(in.mouseButtons) {
		return false
	}
	return in.mouseButtons[button] && !in.mouseButtonsPrev[button]
}

func (in *Input) IsMouseReleased(button int) bool {
	if button < 0 || button >= len(in.mouseButtons) {
		return false
	}
	return !in.mouseButtons[button] && in.mouseButtonsPrev[button]
}

func (in *Input) IsKeyPressed(key glfw.Key) bool {
	return in.keys[key] && !in.keysPrev[key]
}

// IsShortcut checks for a Ctrl (or Cmd) + key press.
func (in *Input) IsShortcut(key glfw.Key) bool {
	return (in.CtrlDown || in.SuperDown) && in.IsKeyPressed(key)
}

// IsShiftShortcut checks for a Ctrl+Shift+key press.
func (in *Input) IsShiftShortcut(key glfw.Key) bool {
	return in.IsShortcut(key) && in.ShiftDown
}
