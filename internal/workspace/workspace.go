// Package workspace implements the viewer's file and scene actions: saving
// back to the opened file, the session kept between runs, import, export,
// and undoable edits to the object list and materials.
package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"mesh-editor/editor"
	"mesh-editor/internal/logger"
	meshio "mesh-editor/io"
	"mesh-editor/scene"
)

var (
	// ErrNoSelection is returned by material actions when no object is
	// selected.
	ErrNoSelection = errors.New("no object selected")
	// ErrBusy is returned while a gizmo drag is in progress.
	ErrBusy = errors.New("drag in progress")
)

// Palette is the albedo cycle, as SVG color names.
var Palette = []string{"lightgray", "tomato", "gold", "mediumseagreen", "steelblue", "orchid"}

// Workspace binds a scene manager and its controller to a source file and
// a session directory.
type Workspace struct {
	manager    *scene.Manager
	controller *editor.Controller
	camera     *scene.OrbitCamera
	sessionDir string
	source     string
	color      int
	log        *zap.Logger
}

// New returns a workspace. source is the file the scene was opened from and
// may be empty; sessionDir may be empty to disable the session.
func New(m *scene.Manager, c *editor.Controller, sessionDir, source string) *Workspace {
	return &Workspace{
		manager:    m,
		controller: c,
		sessionDir: sessionDir,
		source:     source,
		log:        logger.Named("workspace"),
	}
}

// SetCamera sets the camera stored with the session.
func (w *Workspace) SetCamera(cam *scene.OrbitCamera) { w.camera = cam }

func (w *Workspace) Source() string { return w.source }

// Save writes the objects back to the source file, if there is one, and
// saves the session. It returns a short status line.
func (w *Workspace) Save() (string, error) {
	var saved []string
	if w.source != "" {
		if err := meshio.Save(w.source, w.manager.Scene.MeshNodes()); err != nil {
			return "", err
		}
		saved = append(saved, filepath.Base(w.source))
	}
	if w.sessionDir != "" {
		if err := w.SaveSession(); err != nil {
			return "", err
		}
		saved = append(saved, "session")
	}
	if len(saved) == 0 {
		return "Nothing to save", nil
	}
	w.log.Info("saved", zap.String("source", w.source), zap.String("session", w.sessionDir))
	return "Saved " + strings.Join(saved, " and "), nil
}

// SaveSession saves the session, if a session dir is set.
func (w *Workspace) SaveSession() error {
	if w.sessionDir == "" {
		return nil
	}
	return meshio.SaveSession(w.sessionDir, w.manager, w.camera, w.source)
}

// ReloadSession replaces the objects with the saved session as one undo
// step and moves the camera to the saved view.
func (w *Workspace) ReloadSession() error {
	if w.sessionDir == "" {
		return meshio.ErrNoSession
	}
	file, nodes, err := meshio.LoadSession(w.sessionDir)
	if err != nil {
		return err
	}
	if err := w.apply("Load session", func() {
		w.manager.Clear()
		file.Restore(w.manager, nodes)
	}); err != nil {
		return err
	}
	w.source = file.Source
	file.ApplyCamera(w.camera)
	return nil
}

// ExportPath returns where Export writes format: beside the source file, or
// in the session dir for a scene without one.
func (w *Workspace) ExportPath(format meshio.Format) string {
	base := "scene"
	dir := w.sessionDir
	if w.source != "" {
		dir = filepath.Dir(w.source)
		base = strings.TrimSuffix(filepath.Base(w.source), filepath.Ext(w.source))
	}
	return filepath.Join(dir, base+"."+string(format))
}

// Export writes the objects to path in the format named by its extension.
func (w *Workspace) Export(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := meshio.Save(path, w.manager.Scene.MeshNodes()); err != nil {
		return err
	}
	w.log.Info("exported", zap.String("path", path))
	return nil
}

// Import adds the objects of every path as one undo step. Nothing is added
// if any file fails to load.
func (w *Workspace) Import(paths ...string) (int, error) {
	var nodes []*scene.Node
	for _, path := range paths {
		loaded, err := meshio.Load(path)
		if err != nil {
			return 0, err
		}
		nodes = append(nodes, loaded...)
	}
	if len(nodes) == 0 {
		return 0, nil
	}
	if err := w.apply("Import", func() {
		for _, node := range nodes {
			w.manager.AddObject(node)
		}
	}); err != nil {
		return 0, err
	}
	w.log.Info("imported", zap.Strings("paths", paths), zap.Int("objects", len(nodes)))
	return len(nodes), nil
}

// AddPrimitive creates a primitive as one undo step.
func (w *Workspace) AddPrimitive(kind scene.PrimitiveKind) (*scene.Node, error) {
	var node *scene.Node
	var err error
	if busy := w.apply("Add "+string(kind), func() {
		node, err = w.manager.CreatePrimitive(kind)
	}); busy != nil {
		return nil, busy
	}
	return node, err
}

// Clear removes every object as one undo step.
func (w *Workspace) Clear() bool {
	return w.controller.Apply("Clear scene", func() { w.manager.Clear() })
}

// DeleteSelected removes the selected object as one undo step.
func (w *Workspace) DeleteSelected() bool {
	return w.controller.Apply("Delete", func() { w.manager.DeleteSelected() })
}

// CycleAlbedo gives the selected object the next palette color and returns
// its name.
func (w *Workspace) CycleAlbedo() (string, error) {
	node := w.manager.Selected()
	if node == nil {
		return "", ErrNoSelection
	}
	w.color = (w.color + 1) % len(Palette)
	name := Palette[w.color]
	c, err := scene.ParseColor(name)
	if err != nil {
		return "", err
	}
	if err := w.apply("Set color", func() { w.manager.SetAlbedo(node, c) }); err != nil {
		return "", err
	}
	return name, nil
}

// ToggleMetallic switches the selected object between dielectric and
// metallic and returns the new factor.
func (w *Workspace) ToggleMetallic() (float32, error) {
	node := w.manager.Selected()
	if node == nil {
		return 0, ErrNoSelection
	}
	v := float32(1)
	if node.Material != nil && node.Material.Metallic >= 0.5 {
		v = 0
	}
	if err := w.apply("Set metallic", func() { w.manager.SetMetallic(node, v) }); err != nil {
		return 0, err
	}
	return v, nil
}

// StepRoughness raises the selected object's roughness by a quarter,
// wrapping to zero past one, and returns the new factor.
func (w *Workspace) StepRoughness() (float32, error) {
	node := w.manager.Selected()
	if node == nil {
		return 0, ErrNoSelection
	}
	v := float32(0.5)
	if node.Material != nil {
		v = node.Material.Roughness + 0.25
	}
	if v > 1+1e-6 {
		v = 0
	}
	if err := w.apply("Set roughness", func() { w.manager.SetRoughness(node, v) }); err != nil {
		return 0, err
	}
	return node.Material.Roughness, nil
}

// apply runs fn through the controller's history. Steps that change
// nothing are dropped there.
func (w *Workspace) apply(desc string, fn func()) error {
	if w.controller.Gizmo().Dragging() {
		return ErrBusy
	}
	w.controller.Apply(desc, fn)
	return nil
}
