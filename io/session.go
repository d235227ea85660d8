package io

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

const (
	// SessionFileName is the session description inside a session dir.
	SessionFileName = "session.yaml"
	sessionMeshFile = "session.glb"
	sessionVersion  = 1
)

// ErrNoSession is returned by LoadSession when the dir holds no session.
var ErrNoSession = errors.New("no saved session")

// SessionFile is the editor state saved between runs. The objects live in
// a glb file beside it.
type SessionFile struct {
	Version  int            `yaml:"version"`
	Source   string         `yaml:"source,omitempty"` // file the scene was opened from
	EditMode string         `yaml:"edit_mode"`
	Selected string         `yaml:"selected,omitempty"`
	Camera   *SessionCamera `yaml:"camera,omitempty"`
	MeshFile string         `yaml:"mesh_file,omitempty"`
}

// SessionCamera stores the orbit camera.
type SessionCamera struct {
	Target   [3]float32 `yaml:"target"`
	Distance float32    `yaml:"distance"`
	Yaw      float32    `yaml:"yaw"`
	Pitch    float32    `yaml:"pitch"`
}

// SaveSession writes the objects, selection, edit mode and camera of m into
// dir. cam may be nil.
func SaveSession(dir string, m *scene.Manager, cam *scene.OrbitCamera, source string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	file := SessionFile{
		Version:  sessionVersion,
		Source:   source,
		EditMode: m.EditMode().String(),
	}
	if sel := m.Selected(); sel != nil {
		file.Selected = sel.Name
	}
	if cam != nil {
		file.Camera = &SessionCamera{
			Target:   cam.Target.Array(),
			Distance: cam.Distance,
			Yaw:      cam.Yaw,
			Pitch:    cam.Pitch,
		}
	}

	meshPath := filepath.Join(dir, sessionMeshFile)
	objects := m.Scene.MeshNodes()
	if len(objects) > 0 {
		if err := scene.SaveGLTF(meshPath, objects); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
		file.MeshFile = sessionMeshFile
	} else if err := os.Remove(meshPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("save session: %w", err)
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, SessionFileName), data, 0644); err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	logger.Named("session").Debug("session saved",
		zap.String("dir", dir),
		zap.Int("objects", len(objects)),
	)
	return nil
}

// LoadSession reads the session saved in dir and the objects it refers to.
func LoadSession(dir string) (*SessionFile, []*scene.Node, error) {
	path := filepath.Join(dir, SessionFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, ErrNoSession
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load session: %w", err)
	}

	var file SessionFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("load session %q: %w", path, err)
	}
	if file.Version != sessionVersion {
		return nil, nil, fmt.Errorf("load session %q: unsupported version %d", path, file.Version)
	}

	var nodes []*scene.Node
	if file.MeshFile != "" {
		nodes, err = scene.LoadGLTF(filepath.Join(dir, filepath.Base(file.MeshFile)))
		if err != nil {
			return nil, nil, fmt.Errorf("load session: %w", err)
		}
	}
	return &file, nodes, nil
}

// Restore adds nodes to m and applies the saved selection and edit mode.
func (f *SessionFile) Restore(m *scene.Manager, nodes []*scene.Node) {
	for _, node := range nodes {
		m.AddObject(node)
	}
	sel, _ := m.FindObject(f.Selected)
	m.Select(sel)

	mode, err := scene.ParseEditMode(f.EditMode)
	if err != nil {
		logger.Named("session").Warn("ignoring saved edit mode", zap.Error(err))
		return
	}
	m.SetEditMode(mode)
}

// ApplyCamera moves cam to the saved view. It reports whether the session
// held one.
func (f *SessionFile) ApplyCamera(cam *scene.OrbitCamera) bool {
	if f.Camera == nil || cam == nil || f.Camera.Distance <= 0 {
		return false
	}
	cam.Target = math.Vec3FromArray(f.Camera.Target)
	cam.Distance = f.Camera.Distance
	cam.Yaw = f.Camera.Yaw
	cam.Pitch = f.Camera.Pitch
	cam.UpdatePosition()
	return true
}
