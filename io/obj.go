package io

import (
	"bufio"
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
	"mesh-editor/scene"
)

// ErrEmptyMesh is returned when a file holds no usable triangles.
var ErrEmptyMesh = errors.New("no mesh data")

// LoadOBJ parses a Wavefront .obj file into one editable node per object or
// group. Faces are fan-triangulated into non-indexed triangle soups.
// Materials referenced through mtllib contribute their diffuse color.
func LoadOBJ(path string) ([]*scene.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open OBJ file: %w", err)
	}
	defer f.Close()

	return ReadOBJ(f, func(name string) (map[string]*scene.Material, error) {
		return LoadMTL(filepath.Join(filepath.Dir(path), name))
	})
}

// MTLResolver loads the library named by an mtllib statement.
type MTLResolver func(name string) (map[string]*scene.Material, error)

type objGroup struct {
	name     string
	material string
	vertices []core.Vertex
	hasNorm  bool
}

// ReadOBJ parses OBJ text from r. resolve may be nil, in which case mtllib
// statements are ignored.
func ReadOBJ(r stdio.Reader, resolve MTLResolver) ([]*scene.Node, error) {
	var positions []math.Vec3
	var normals []math.Vec3
	var uvs []math.Vec2
	materials := make(map[string]*scene.Material)

	var groups []*objGroup
	current := &objGroup{name: "default"}
	currentMaterial := ""

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.Fields(line)
		switch parts[0] {
		case "v":
			v, err := parseVec3(parts)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			positions = append(positions, v)
		case "vn":
			v, err := parseVec3(parts)
			if err != nil {
				return nil, fmt.Errorf("obj line %d: %w", lineNo, err)
			}
			normals = append(normals, v)
		case "vt":
			if len(parts) >= 3 {
				u, _ := strconv.ParseFloat(parts[1], 32)
				v, _ := strconv.ParseFloat(parts[2], 32)
				uvs = append(uvs, math.Vec2{X: float32(u), Y: float32(v)})
			}
		case "f":
			if len(parts) < 4 {
				return nil, fmt.Errorf("obj line %d: face needs at least 3 vertices", lineNo)
			}
			faceVerts := make([]core.Vertex, 0, len(parts)-1)
			for _, spec := range parts[1:] {
				vertex, hasNormal := parseFaceVertex(spec, positions, normals, uvs)
				if hasNormal {
					current.hasNorm = true
				}
				faceVerts = append(faceVerts, vertex)
			}
			// Fan triangulation
			for i := 2; i < len(faceVerts); i++ {
				current.vertices = append(current.vertices, faceVerts[0], faceVerts[i-1], faceVerts[i])
			}
		case "o", "g":
			// New object/group, flush current mesh
			if len(current.vertices) > 0 {
				groups = append(groups, current)
			}
			name := "unnamed"
			if len(parts) > 1 {
				name = strings.Join(parts[1:], " ")
			}
			current = &objGroup{name: name, material: currentMaterial}
		case "usemtl":
			if len(parts) > 1 {
				currentMaterial = parts[1]
				current.material = currentMaterial
			}
		case "mtllib":
			if len(parts) > 1 && resolve != nil {
				mtls, err := resolve(parts[1])
				if err != nil {
					logger.Named("obj").Warn("failed to load material library",
						zap.String("mtllib", parts[1]), zap.Error(err))
				} else {
					for k, v := range mtls {
						materials[k] = v
					}
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}

	// Flush last mesh
	if len(current.vertices) > 0 {
		groups = append(groups, current)
	}
	if len(groups) == 0 {
		return nil, fmt.Errorf("read obj: %w", ErrEmptyMesh)
	}

	nodes := make([]*scene.Node, 0, len(groups))
	for _, g := range groups {
		mesh := scene.CreateMeshFromData(g.name, g.vertices, nil)
		if !g.hasNorm {
			mesh.ComputeVertexNormals()
		}
		node := scene.NewMeshNode(g.name, mesh)
		if mat, ok := materials[g.material]; ok {
			node.Material = mat.Clone()
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// LoadMTL parses a Wavefront .mtl material file
func LoadMTL(path string) (map[string]*scene.Material, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadMTL(f)
}

// ReadMTL parses MTL text. Kd maps to albedo, Ns to roughness and d/Tr to
// albedo alpha.
func ReadMTL(r stdio.Reader) (map[string]*scene.Material, error) {
	result := make(map[string]*scene.Material)
	var current *scene.Material

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Fields(line)

		switch parts[0] {
		case "newmtl":
			if len(parts) > 1 {
				current = scene.NewMaterial(parts[1], core.ColorWhite)
				result[parts[1]] = current
			}
		case "Kd":
			if current != nil && len(parts) >= 4 {
				r, _ := strconv.ParseFloat(parts[1], 32)
				g, _ := strconv.ParseFloat(parts[2], 32)
				b, _ := strconv.ParseFloat(parts[3], 32)
				current.Albedo = core.Color{R: float32(r), G: float32(g), B: float32(b), A: current.Albedo.A}
			}
		case "Ns":
			if current != nil && len(parts) >= 2 {
				ns, _ := strconv.ParseFloat(parts[1], 32)
				// Convert OBJ shininess (0-1000) to roughness (0-1)
				current.Roughness = 1.0 - float32(ns)/1000.0
				if current.Roughness < 0 {
					current.Roughness = 0
				}
			}
		case "d", "Tr":
			if current != nil && len(parts) >= 2 {
				d, _ := strconv.ParseFloat(parts[1], 32)
				if parts[0] == "Tr" {
					d = 1.0 - d // Tr is inverse of d
				}
				current.Albedo.A = float32(d)
			}
		}
	}

	return result, scanner.Err()
}

// ExportOBJ writes the meshes of nodes to a .obj file in local space.
func ExportOBJ(path string, nodes []*scene.Node) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create OBJ file: %w", err)
	}
	defer f.Close()

	if err := WriteOBJ(f, nodes); err != nil {
		return err
	}
	return f.Close()
}

// WriteOBJ writes one object per node. Every raw vertex becomes one v/vt/vn
// triple, so a non-indexed soup round-trips with the same vertex order.
func WriteOBJ(w stdio.Writer, nodes []*scene.Node) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, "# Exported by meshedit")
	fmt.Fprintln(bw)

	offset := 0
	written := 0
	for _, node := range nodes {
		if node.Mesh == nil || node.Mesh.DrawMode != scene.DrawTriangles {
			continue
		}
		mesh := node.Mesh
		if mesh.IsIndexed() {
			mesh = mesh.ToNonIndexed()
		}
		fmt.Fprintf(bw, "o %s\n", node.Name)

		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X, v.Position.Y, v.Position.Z)
		}
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "vt %g %g\n", v.UV.X, v.UV.Y)
		}
		for _, v := range mesh.Vertices {
			fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X, v.Normal.Y, v.Normal.Z)
		}

		// Faces are 1-indexed in OBJ
		for i := 0; i+2 < len(mesh.Vertices); i += 3 {
			a, b, c := offset+i+1, offset+i+2, offset+i+3
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}

		offset += len(mesh.Vertices)
		written++
		fmt.Fprintln(bw)
	}
	if written == 0 {
		return fmt.Errorf("write obj: %w", ErrEmptyMesh)
	}
	return bw.Flush()
}

func parseVec3(parts []string) (math.Vec3, error) {
	if len(parts) < 4 {
		return math.Vec3{}, fmt.Errorf("%s needs 3 components", parts[0])
	}
	var out [3]float32
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(parts[i+1], 32)
		if err != nil {
			return math.Vec3{}, fmt.Errorf("%s component %d: %w", parts[0], i, err)
		}
		out[i] = float32(f)
	}
	return math.Vec3FromArray(out), nil
}

// parseFaceVertex parses an OBJ face vertex spec like "v/vt/vn"
func parseFaceVertex(spec string, positions []math.Vec3, normals []math.Vec3, uvs []math.Vec2) (core.Vertex, bool) {
	v := core.Vertex{Normal: math.Vec3Up}
	hasNormal := false

	parts := strings.Split(spec, "/")

	// Position (required)
	if idx, ok := resolveIndex(parts, 0, len(positions)); ok {
		v.Position = positions[idx]
	}
	// UV (optional)
	if idx, ok := resolveIndex(parts, 1, len(uvs)); ok {
		v.UV = uvs[idx]
	}
	// Normal (optional)
	if idx, ok := resolveIndex(parts, 2, len(normals)); ok {
		v.Normal = normals[idx]
		hasNormal = true
	}

	return v, hasNormal
}

// resolveIndex turns a 1-based or negative OBJ reference into a 0-based
// index into a list of length n.
func resolveIndex(parts []string, field, n int) (int, bool) {
	if field >= len(parts) || parts[field] == "" {
		return 0, false
	}
	idx, err := strconv.Atoi(parts[field])
	if err != nil {
		return 0, false
	}
	if idx < 0 {
		idx = n + idx + 1
	}
	if idx <= 0 || idx > n {
		return 0, false
	}
	return idx - 1, true
}
