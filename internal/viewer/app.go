package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"mesh-editor/editor"
	"mesh-editor/internal/config"
	"mesh-editor/internal/logger"
	"mesh-editor/internal/workspace"
	meshio "mesh-editor/io"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// Options select the file behind the scene and the session to resume.
type Options struct {
	Source     string              // file Ctrl+S writes back to, may be empty
	SessionDir string              // empty disables the session
	Session    *meshio.SessionFile // restored session whose view to reuse
}

// App runs the interactive editor loop over a scene manager.
type App struct {
	cfg *config.Config
	log *zap.Logger

	window   *Window
	renderer *Renderer
	input    *Input

	manager    *scene.Manager
	controller *editor.Controller
	gestures   *editor.Gestures
	camera     *scene.OrbitCamera
	workspace  *workspace.Workspace
	dropped    []string

	hotAxis  editor.Axis
	axisDrag bool
	pressed  bool

	status     string
	lastStatus string
}

// NewApp opens the window and wires the editor to m.
func NewApp(cfg *config.Config, m *scene.Manager, opts Options) (*App, error) {
	wc := DefaultWindowConfig()
	if cfg.Window.Width > 0 && cfg.Window.Height > 0 {
		wc.Width, wc.Height = cfg.Window.Width, cfg.Window.Height
	}
	if cfg.Window.Title != "" {
		wc.Title = cfg.Window.Title
	}
	wc.VSync = cfg.Window.VSync
	window, err := NewWindow(wc)
	if err != nil {
		return nil, err
	}
	renderer, err := NewRenderer()
	if err != nil {
		window.Destroy()
		return nil, err
	}

	params := cfg.Params()
	aspect := float32(window.Width) / float32(window.Height)
	camera := scene.NewOrbitCamera(math.Vec3Zero, 5.0, 1.0472, aspect)
	m.Scene.SetCamera(&camera.Camera)
	m.Scene.AddNode(scene.CreateGridNode(10, 10))

	controller := editor.NewController(m, params)
	controller.SetCamera(&camera.Camera)
	ws := workspace.New(m, controller, opts.SessionDir, opts.Source)
	ws.SetCamera(camera)

	a := &App{
		cfg:        cfg,
		log:        logger.Named("viewer"),
		window:     window,
		renderer:   renderer,
		input:      NewInput(window),
		manager:    m,
		controller: controller,
		gestures:   editor.NewGestures(controller, params),
		camera:     camera,
		workspace:  ws,
		hotAxis:    editor.AxisNone,
		status:     "Ready",
	}

	window.SetFocusCallback(a.onFocus)
	window.SetResizeCallback(func(width, height int) { a.resize() })
	window.SetDropCallback(func(paths []string) { a.dropped = append(a.dropped, paths...) })
	a.resize()

	if opts.Session != nil && opts.Session.ApplyCamera(camera) {
		a.status = "Session restored"
	} else if sel := m.Selected(); sel != nil {
		a.frame(sel)
	}
	return a, nil
}

// Run blocks until the window is closed.
func (a *App) Run() error {
	a.log.Info("viewer running", zap.String("mode", a.manager.EditMode().String()))
	frames := 0
	for !a.window.ShouldClose() {
		a.window.PollEvents()
		a.input.Update()

		a.handleDrops()
		a.handleShortcuts()
		a.handleCamera()
		a.handlePointer()
		a.render()

		a.window.SwapBuffers()
		a.input.EndFrame()

		frames++
		if frames%30 == 0 {
			a.renderer.Prune(a.manager.Scene)
		}
	}
	return nil
}

// Close saves the session and the window size, then releases the
// controller, GPU resources and the window.
func (a *App) Close() {
	a.controller.CancelDrag()
	if err := a.workspace.SaveSession(); err != nil {
		a.log.Warn("session not saved", zap.Error(err))
	}
	if w, h := a.window.Width, a.window.Height; w > 0 && h > 0 && (w != a.cfg.Window.Width || h != a.cfg.Window.Height) {
		if err := config.RememberWindowSize(w, h); err != nil {
			a.log.Warn("window size not saved", zap.Error(err))
		}
	}
	a.controller.Close()
	a.renderer.Destroy()
	a.window.Destroy()
}

func (a *App) resize() {
	fw, fh := a.window.GetFramebufferSize()
	a.renderer.SetViewport(fw, fh)
	w, h := float64(a.window.Width), float64(a.window.Height)
	if w <= 0 || h <= 0 {
		return
	}
	a.camera.UpdateAspectRatio(float32(w), float32(h))
	a.controller.SetViewport(w, h)
	a.gestures.SetViewport(w, h)
}

// onFocus abandons any drag or gesture when the window loses focus.
func (a *App) onFocus(focused bool) {
	if focused {
		return
	}
	if a.controller.CancelDrag() {
		a.status = "Drag cancelled"
	}
	a.gestures.Cancel()
	a.axisDrag = false
	a.pressed = false
	a.input.Reset()
}

func (a *App) handleShortcuts() {
	in := a.input
	if a.controller.Gizmo().Dragging() {
		if in.IsKeyPressed(glfw.KeyEscape) && a.controller.CancelDrag() {
			a.axisDrag = false
			a.pressed = false
			a.status = "Drag cancelled"
		}
		return
	}

	switch {
	case in.IsShiftShortcut(glfw.KeyZ), in.IsShortcut(glfw.KeyY):
		if a.controller.Redo() {
			a.status = "Redo"
		}
		return
	case in.IsShortcut(glfw.KeyZ):
		if a.controller.Undo() {
			a.status = "Undo"
		}
		return
	case in.IsShortcut(glfw.KeyS):
		a.report(a.workspace.Save())
		return
	case in.IsShortcut(glfw.KeyO):
		if err := a.workspace.ReloadSession(); err != nil {
			a.fail("Reload", err)
		} else {
			a.status = "Session reloaded"
		}
		return
	case in.IsShortcut(glfw.KeyE):
		path := a.workspace.ExportPath(meshio.FormatSTL)
		if err := a.workspace.Export(path); err != nil {
			a.fail("Export", err)
		} else {
			a.status = "Exported " + filepath.Base(path)
		}
		return
	case in.IsShortcut(glfw.KeyN):
		if a.workspace.Clear() {
			a.status = "Scene cleared"
		}
		return
	}
	if in.CtrlDown || in.SuperDown {
		return
	}

	if in.ShiftDown {
		a.handleAddPrimitive()
		return
	}

	modes := []struct {
		key  glfw.Key
		mode scene.EditMode
	}{
		{glfw.Key1, scene.ModeObject},
		{glfw.Key2, scene.ModeVertex},
		{glfw.Key3, scene.ModeEdge},
		{glfw.Key4, scene.ModeFace},
	}
	for _, m := range modes {
		if in.IsKeyPressed(m.key) {
			a.manager.SetEditMode(m.mode)
			a.status = fmt.Sprintf("Mode: %s", m.mode)
		}
	}

	if in.IsKeyPressed(glfw.KeyG) || in.IsKeyPressed(glfw.KeyE) {
		if a.controller.ToggleExtrude() {
			a.status = "Face drag extrudes"
		} else {
			a.status = "Face drag moves"
		}
	}
	if in.IsKeyPressed(glfw.KeyF) {
		if sel := a.manager.Selected(); sel != nil {
			a.frame(sel)
		}
	}
	if in.IsKeyPressed(glfw.KeyEscape) {
		a.controller.Escape()
		a.status = "Selection cleared"
	}
	if (in.IsKeyPressed(glfw.KeyDelete) || in.IsKeyPressed(glfw.KeyX)) && a.manager.EditMode() == scene.ModeObject {
		if a.workspace.DeleteSelected() {
			a.status = "Deleted"
		}
	}
	a.handleMaterial()
}

// primitiveKeys are the Shift shortcuts that add primitives.
var primitiveKeys = []struct {
	key  glfw.Key
	kind scene.PrimitiveKind
}{
	{glfw.KeyB, scene.PrimitiveBox},
	{glfw.KeyS, scene.PrimitiveSphere},
	{glfw.KeyP, scene.PrimitivePlane},
	{glfw.KeyQ, scene.PrimitiveQuad},
	{glfw.KeyC, scene.PrimitiveCylinder},
	{glfw.KeyT, scene.PrimitiveTriangle},
}

func (a *App) handleAddPrimitive() {
	for _, p := range primitiveKeys {
		if !a.input.IsKeyPressed(p.key) {
			continue
		}
		node, err := a.workspace.AddPrimitive(p.kind)
		if err != nil {
			a.fail("Add", err)
			return
		}
		a.frame(node)
		a.status = "Added " + node.Name
		return
	}
}

func (a *App) handleMaterial() {
	in := a.input
	switch {
	case in.IsKeyPressed(glfw.KeyC):
		if name, err := a.workspace.CycleAlbedo(); err != nil {
			a.fail("Color", err)
		} else {
			a.status = "Color: " + name
		}
	case in.IsKeyPressed(glfw.KeyM):
		if v, err := a.workspace.ToggleMetallic(); err != nil {
			a.fail("Metallic", err)
		} else {
			a.status = fmt.Sprintf("Metallic: %.2f", v)
		}
	case in.IsKeyPressed(glfw.KeyR):
		if v, err := a.workspace.StepRoughness(); err != nil {
			a.fail("Roughness", err)
		} else {
			a.status = fmt.Sprintf("Roughness: %.2f", v)
		}
	}
}

// handleDrops imports the files dropped since the last frame.
func (a *App) handleDrops() {
	if len(a.dropped) == 0 {
		return
	}
	paths := a.dropped
	a.dropped = nil
	n, err := a.workspace.Import(paths...)
	if err != nil {
		a.fail("Import", err)
		return
	}
	if sel := a.manager.Selected(); sel != nil {
		a.frame(sel)
	}
	a.status = fmt.Sprintf("Imported %d objects", n)
}

func (a *App) report(status string, err error) {
	if err != nil {
		a.fail("Save", err)
		return
	}
	a.status = status
}

// fail logs err and shows it in the title bar.
func (a *App) fail(action string, err error) {
	if errors.Is(err, workspace.ErrNoSelection) || errors.Is(err, workspace.ErrBusy) {
		a.status = fmt.Sprintf("%s: %v", action, err)
		return
	}
	a.log.Warn("action failed", zap.String("action", action), zap.Error(err))
	a.status = action + " failed"
}

func (a *App) handleCamera() {
	in := a.input
	if in.ScrollDelta != 0 {
		a.camera.Zoom(-float32(in.ScrollDelta) * 0.5)
	}

	if in.IsMouseDown(MouseMiddle) || in.IsMouseDown(MouseRight) {
		dx := float32(in.MouseDeltaX) * 0.01
		dy := float32(in.MouseDeltaY) * 0.01
		if in.ShiftDown {
			speed := a.camera.Distance * 0.2
			a.camera.Pan(-dx*speed, dy*speed)
		} else {
			a.camera.Orbit(-dx, -dy)
		}
	}
}

// handlePointer routes the left button to the gizmo when an axis is under
// the cursor and to the gesture recognizer otherwise.
func (a *App) handlePointer() {
	in := a.input
	gizmo := a.controller.Gizmo()
	ray := editor.ScreenToRay(in.MouseX, in.MouseY, float64(a.window.Width), float64(a.window.Height), &a.camera.Camera)

	if !a.axisDrag {
		a.hotAxis = gizmo.PickAxis(ray)
	}

	switch {
	case in.IsMousePressed(MouseLeft):
		a.pressed = true
		if a.hotAxis != editor.AxisNone && gizmo.StartAxisDrag(ray, a.hotAxis) {
			a.axisDrag = true
			return
		}
		a.gestures.PointerDown(in.MouseX, in.MouseY)
	case in.IsMouseReleased(MouseLeft):
		if !a.pressed {
			return
		}
		a.pressed = false
		if a.axisDrag {
			a.axisDrag = false
			gizmo.EndDrag()
			a.status = "Moved"
			return
		}
		a.gestures.PointerUp(in.MouseX, in.MouseY, in.Modifiers())
	case in.IsMouseDown(MouseLeft) && a.pressed:
		if a.axisDrag {
			gizmo.UpdateAxisDrag(ray)
			return
		}
		if in.MouseDeltaX != 0 || in.MouseDeltaY != 0 {
			a.gestures.PointerMove(in.MouseX, in.MouseY)
		}
	}
}

func (a *App) render() {
	s := a.manager.Scene
	cam := &a.camera.Camera
	session := a.controller.Session()

	a.renderer.BeginFrame(s.SkyColor)
	a.renderer.DrawScene(s, cam, session.Registry().Group())
	a.renderer.DrawPivot(session.Pivot(), cam)
	a.renderer.DrawGizmo(a.controller.Gizmo(), cam, a.hotAxis)
	if rect, ok := a.gestures.Marquee(); ok {
		a.renderer.DrawMarquee(rect, float64(a.window.Width), float64(a.window.Height))
	}
	a.updateTitle()
}

func (a *App) updateTitle() {
	title := fmt.Sprintf("%s | %s | %s", a.cfg.Window.Title, a.manager.EditMode(), a.status)
	if t := a.controller.Session().Target(); t != nil {
		title += fmt.Sprintf(" | %s: %d verts, %d selected", t.Name, len(t.Mesh.Vertices), a.controller.Session().Selection().Len())
	}
	if title != a.lastStatus {
		a.window.SetTitle(title)
		a.lastStatus = title
	}
}

// frame points the orbit camera at node's world bounds.
func (a *App) frame(node *scene.Node) {
	if node.Mesh == nil || len(node.Mesh.Vertices) == 0 {
		return
	}
	box := worldBounds(node)
	a.camera.Frame(box)
	a.status = "Framed " + node.Name
}

func worldBounds(node *scene.Node) scene.AABB {
	first := node.LocalToWorld(node.Mesh.Vertices[0].Position)
	box := scene.AABB{Min: first, Max: first}
	for _, v := range node.Mesh.Vertices[1:] {
		p := node.LocalToWorld(v.Position)
		box.Min = math.Vec3{X: min(box.Min.X, p.X), Y: min(box.Min.Y, p.Y), Z: min(box.Min.Z, p.Z)}
		box.Max = math.Vec3{X: max(box.Max.X, p.X), Y: max(box.Max.Y, p.Y), Z: max(box.Max.Z, p.Z)}
	}
	return box
}

// RunScene opens a viewer on m until its window closes.
func RunScene(cfg *config.Config, m *scene.Manager, opts Options) error {
	start := time.Now()
	app, err := NewApp(cfg, m, opts)
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	defer app.Close()
	err = app.Run()
	app.log.Info("viewer closed", zap.Duration("uptime", time.Since(start)))
	return err
}
