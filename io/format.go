package io

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"mesh-editor/scene"
)

// ErrUnsupportedFormat is returned for a file extension no reader or
// writer handles.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// Format is a mesh file format, named by its extension.
type Format string

const (
	FormatOBJ  Format = "obj"
	FormatGLTF Format = "gltf"
	FormatGLB  Format = "glb"
	FormatSTL  Format = "stl"
)

// DetectFormat maps the extension of path to a Format.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch Format(ext) {
	case FormatOBJ, FormatGLTF, FormatGLB, FormatSTL:
		return Format(ext), nil
	}
	return "", fmt.Errorf("%q: %w", path, ErrUnsupportedFormat)
}

// CanRead reports whether Load accepts f.
func (f Format) CanRead() bool {
	switch f {
	case FormatOBJ, FormatGLTF, FormatGLB, FormatSTL:
		return true
	}
	return false
}

// Load reads the editable nodes stored at path.
func Load(path string) ([]*scene.Node, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	var nodes []*scene.Node
	switch format {
	case FormatOBJ:
		nodes, err = LoadOBJ(path)
	case FormatGLTF, FormatGLB:
		nodes, err = scene.LoadGLTF(path)
	case FormatSTL:
		nodes, err = LoadSTL(path)
	default:
		return nil, fmt.Errorf("load %q: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf("load %q: %w", path, ErrEmptyMesh)
	}
	return nodes, nil
}

// Save writes nodes to path in the format named by its extension.
func Save(path string, nodes []*scene.Node) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	switch format {
	case FormatOBJ:
		return ExportOBJ(path, nodes)
	case FormatGLTF, FormatGLB:
		return scene.SaveGLTF(path, nodes)
	case FormatSTL:
		return ExportSTL(path, nodes)
	}
	return fmt.Errorf("save %q: %w", path, ErrUnsupportedFormat)
}
