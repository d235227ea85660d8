package editor

import (
	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// Controller binds a Session to the scene manager, the gizmo and the undo
// history. It implements PointerTarget for a Gestures recognizer.
type Controller struct {
	manager *scene.Manager
	session *Session
	gizmo   *Gizmo
	history *History
	log     *zap.Logger

	camera   *scene.Camera
	viewport core.Viewport

	dragStart  *scene.Snapshot
	cancelling bool
	unsubs     []func()
}

// NewController wires a new session for m's scene.
func NewController(m *scene.Manager, params Params) *Controller {
	gizmo := NewGizmo()
	c := &Controller{
		manager:  m,
		session:  NewSession(m.Scene, gizmo, params),
		gizmo:    gizmo,
		history:  NewHistory(params.HistoryDepth),
		log:      logger.Named("controller"),
		camera:   m.Scene.Camera,
		viewport: core.Viewport{Width: 1, Height: 1},
	}

	c.unsubs = append(c.unsubs,
		m.OnSelection(c.onSelection),
		m.OnEditMode(c.onEditMode),
		m.OnChange(c.onChange),
		gizmo.OnDraggingChanged(c.onDragging),
		gizmo.OnChange(c.onGizmoChange),
		c.session.OnMeshChanged(c.onMeshChanged),
	)

	c.session.mode = m.EditMode()
	if m.EditMode() != scene.ModeObject {
		c.beginEditing(m.Selected())
	} else if sel := m.Selected(); sel != nil {
		gizmo.Attach(sel)
	}
	return c
}

func (c *Controller) Session() *Session { return c.session }

func (c *Controller) Gizmo() *Gizmo { return c.gizmo }

func (c *Controller) History() *History { return c.history }

// SetCamera sets the camera used for picking and marquee projection.
func (c *Controller) SetCamera(camera *scene.Camera) { c.camera = camera }

// SetViewport sets the viewport size in pixels.
func (c *Controller) SetViewport(width, height float64) {
	c.viewport = core.Viewport{Width: float32(width), Height: float32(height)}
}

// Close ends editing and drops every subscription.
func (c *Controller) Close() {
	for _, unsub := range c.unsubs {
		unsub()
	}
	c.unsubs = nil
	c.session.End()
	c.gizmo.Detach()
}

// EditMode implements PointerTarget.
func (c *Controller) EditMode() scene.EditMode { return c.manager.EditMode() }

// Transforming implements PointerTarget.
func (c *Controller) Transforming() bool { return c.gizmo.Dragging() }

// PickAt implements PointerTarget. Object mode picks whole meshes; edit
// modes pick handle proxies.
func (c *Controller) PickAt(x, y float64, mods Modifiers) {
	if c.camera == nil {
		return
	}
	ray := ScreenToRay(x, y, float64(c.viewport.Width), float64(c.viewport.Height), c.camera)
	if c.manager.EditMode() == scene.ModeObject {
		hit, ok := RaycastScene(ray, c.manager.Scene)
		if ok {
			c.manager.Select(hit.Node)
		} else if !mods.Additive && !mods.Toggle {
			c.manager.Select(nil)
		}
		return
	}
	c.session.PickAt(ray, mods)
}

// SelectRect implements PointerTarget.
func (c *Controller) SelectRect(rect math.Rect, mods Modifiers) int {
	if c.camera == nil || c.manager.EditMode() == scene.ModeObject {
		return 0
	}
	return c.session.SelectInRect(rect, c.camera, mods)
}

// Undo restores the state before the last recorded drag.
func (c *Controller) Undo() bool {
	if c.gizmo.Dragging() {
		return false
	}
	return c.history.Undo()
}

// Redo reapplies the last undone drag.
func (c *Controller) Redo() bool {
	if c.gizmo.Dragging() {
		return false
	}
	return c.history.Redo()
}

// Apply runs fn as one undoable step. The scene is snapshotted around fn
// and the step is recorded only if something changed. Apply refuses to run
// during a drag.
func (c *Controller) Apply(desc string, fn func()) bool {
	if c.gizmo.Dragging() {
		return false
	}
	before := c.manager.Snapshot()
	fn()
	recorded := c.history.Push(NewSnapshotCommand(c.manager, before, c.manager.Snapshot(), desc))
	if recorded {
		c.log.Debug("applied", zap.String("action", desc))
	}
	return recorded
}

// CancelDrag abandons a drag in progress, restoring the state from its
// start without recording history.
func (c *Controller) CancelDrag() bool {
	if !c.gizmo.Dragging() {
		return false
	}
	c.cancelling = true
	c.gizmo.EndDrag()
	c.cancelling = false

	if !c.session.CancelDrag() && c.dragStart != nil {
		c.manager.Restore(*c.dragStart)
	}
	c.dragStart = nil
	return true
}

// ToggleExtrude flips extrusion on face drags and returns the new state.
func (c *Controller) ToggleExtrude() bool {
	on := !c.session.Params().FaceDragExtrudes
	c.session.SetFaceDragExtrudes(on)
	c.log.Info("face drag extrusion", zap.Bool("enabled", on))
	return on
}

// Escape clears the handle selection, or the object selection in object
// mode.
func (c *Controller) Escape() {
	if c.manager.EditMode() == scene.ModeObject {
		c.manager.Select(nil)
		return
	}
	c.session.ClearSelection()
}

func (c *Controller) beginEditing(node *scene.Node) {
	c.session.End()
	if node == nil {
		return
	}
	if err := c.session.Begin(node); err != nil {
		c.log.Warn("cannot edit selection", zap.String("node", node.Name), zap.Error(err))
	}
}

func (c *Controller) onSelection(node *scene.Node) {
	if c.manager.EditMode() != scene.ModeObject {
		c.beginEditing(node)
		return
	}
	if node == nil {
		c.gizmo.Detach()
	} else {
		c.gizmo.Attach(node)
	}
}

func (c *Controller) onEditMode(mode scene.EditMode) {
	if mode == scene.ModeObject {
		c.session.End()
		c.session.mode = mode
		if sel := c.manager.Selected(); sel != nil {
			c.gizmo.Attach(sel)
		}
		return
	}
	if !c.session.Editing() {
		c.gizmo.Detach()
		c.session.mode = mode
		c.beginEditing(c.manager.Selected())
	}
	c.session.SetMode(mode)
}

func (c *Controller) onChange(ev scene.ChangeEvent) {
	if ev.Node == nil || ev.Node != c.session.Target() {
		return
	}
	switch ev.Kind {
	case scene.ChangeRestored:
		c.session.Rebuild()
	case scene.ChangeRemoved:
		c.session.End()
	}
}

func (c *Controller) onDragging(dragging bool) {
	if dragging {
		snap := c.manager.Snapshot()
		c.dragStart = &snap
		c.session.BeginDrag()
		return
	}
	if c.cancelling {
		return
	}

	target := c.session.Target()
	c.session.Commit()
	if c.dragStart == nil {
		return
	}
	after := c.manager.Snapshot()
	desc := "Edit mesh"
	if target == nil {
		desc = "Move object"
	}
	if c.history.Push(NewSnapshotCommand(c.manager, *c.dragStart, after, desc)) && target != nil {
		c.manager.NotifyChange(scene.ChangeGeometry, target)
	}
	c.dragStart = nil
}

// onMeshChanged forwards live buffer rewrites so views can redraw while a
// drag is still in progress.
func (c *Controller) onMeshChanged(node *scene.Node) {
	c.manager.NotifyChange(scene.ChangeLiveEdit, node)
}

func (c *Controller) onGizmoChange(target *scene.Node) {
	if c.session.Editing() {
		c.session.ApplyDelta(target, target.WorldPosition())
	}
}
