package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"mesh-editor/core"
	"mesh-editor/internal/logger"
	"mesh-editor/math"
)

// LoadGLTF opens a .glb or .gltf file and returns one editable node per
// mesh primitive. The node hierarchy is flattened: each primitive's world
// matrix is baked into its vertices, and indexed primitives are expanded to
// triangle soups. Material base color, metallic and roughness are kept.
func LoadGLTF(path string) ([]*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}

	materials := make([]*Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		mat := DefaultMaterial()
		if gm.Name != "" {
			mat.Name = gm.Name
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			cf := pbr.BaseColorFactorOrDefault()
			mat.Albedo = core.Color{
				R: float32(cf[0]), G: float32(cf[1]),
				B: float32(cf[2]), A: float32(cf[3]),
			}
			mat.Metallic = float32(pbr.MetallicFactorOrDefault())
			mat.Roughness = float32(pbr.RoughnessFactorOrDefault())
		}
		materials[i] = mat
	}

	log := logger.Named("gltf")
	var out []*Node
	var visit func(idx int, parentWorld math.Mat4)
	visit = func(idx int, parentWorld math.Mat4) {
		if idx < 0 || idx >= len(doc.Nodes) {
			return
		}
		gn := doc.Nodes[idx]
		local := nodeTransform(gn).GetMatrix()
		world := local.Mul(parentWorld)

		if gn.Mesh != nil && *gn.Mesh < len(doc.Meshes) {
			gm := doc.Meshes[*gn.Mesh]
			for pi, prim := range gm.Primitives {
				if prim.Mode != gltf.PrimitiveTriangles {
					continue
				}
				mesh, err := loadGLTFPrimitive(doc, *prim, world)
				if err != nil {
					log.Warn("skipping primitive",
						zap.String("path", path),
						zap.Int("mesh", *gn.Mesh),
						zap.Int("primitive", pi),
						zap.Error(err),
					)
					continue
				}
				name := primitiveName(gn.Name, gm.Name, idx, pi, len(gm.Primitives))
				mesh.Name = name
				node := NewMeshNode(name, mesh)
				if prim.Material != nil && *prim.Material < len(materials) {
					node.Material = materials[*prim.Material].Clone()
				}
				out = append(out, node)
			}
		}
		for _, child := range gn.Children {
			visit(child, world)
		}
	}

	for _, root := range gltfRoots(doc) {
		visit(root, math.Mat4Identity())
	}
	return out, nil
}

func nodeTransform(gn *gltf.Node) core.Transform {
	t := gn.TranslationOrDefault()
	sc := gn.ScaleOrDefault()
	r := gn.RotationOrDefault() // [x, y, z, w]
	return core.Transform{
		Position: math.Vec3{X: float32(t[0]), Y: float32(t[1]), Z: float32(t[2])},
		Rotation: math.Quaternion{X: float32(r[0]), Y: float32(r[1]), Z: float32(r[2]), W: float32(r[3])},
		Scale:    math.Vec3{X: float32(sc[0]), Y: float32(sc[1]), Z: float32(sc[2])},
	}
}

// gltfRoots returns the nodes of the default scene, or every parentless
// node when the document has no default scene.
func gltfRoots(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, gn := range doc.Nodes {
		for _, c := range gn.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func primitiveName(nodeName, meshName string, nodeIdx, primIdx, primCount int) string {
	name := nodeName
	if name == "" {
		name = meshName
	}
	if name == "" {
		name = fmt.Sprintf("node_%d", nodeIdx)
	}
	if primCount > 1 {
		name = fmt.Sprintf("%s_p%d", name, primIdx)
	}
	return name
}

// loadGLTFPrimitive converts one glTF triangle primitive into a non-indexed
// mesh with positions and normals in world space.
func loadGLTFPrimitive(doc *gltf.Document, prim gltf.Primitive, world math.Mat4) (*Mesh, error) {
	// Positions are required
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, fmt.Errorf("no POSITION attribute")
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}

	var normals [][3]float32
	var uvs [][2]float32

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, _ = modeler.ReadNormal(doc, doc.Accessors[idx], nil)
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, _ = modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
	}

	verts := make([]core.Vertex, len(positions))
	for i, p := range positions {
		v := core.Vertex{
			Position: world.MulVec3(math.Vec3FromArray(p)),
			Normal:   math.Vec3Up,
		}
		if i < len(normals) {
			v.Normal = world.MulNormal(math.Vec3FromArray(normals[i]))
		}
		if i < len(uvs) {
			v.UV = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
		}
		verts[i] = v
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	}

	mesh := CreateMeshFromData("", verts, indices).ToNonIndexed()
	if len(mesh.Vertices)%3 != 0 {
		return nil, fmt.Errorf("vertex count %d is not a multiple of 3", len(mesh.Vertices))
	}
	if len(normals) == 0 {
		mesh.ComputeVertexNormals()
	}
	return mesh, nil
}

// SaveGLTF writes nodes to path as a .gltf (JSON + embedded buffer) or, for
// a .glb extension, a binary file. Each node keeps its transform and
// exports its mesh as one triangle primitive with position, normal and uv.
func SaveGLTF(path string, nodes []*Node) error {
	doc := gltf.NewDocument()

	for _, node := range nodes {
		if node.Mesh == nil || node.Mesh.DrawMode != DrawTriangles {
			continue
		}
		mesh := node.Mesh
		if mesh.IsIndexed() {
			mesh = mesh.ToNonIndexed()
		}
		if len(mesh.Vertices) == 0 {
			continue
		}

		positions := make([][3]float32, len(mesh.Vertices))
		normals := make([][3]float32, len(mesh.Vertices))
		uvs := make([][2]float32, len(mesh.Vertices))
		for i, v := range mesh.Vertices {
			positions[i] = v.Position.Array()
			normals[i] = v.Normal.Array()
			uvs[i] = v.UV.Array()
		}

		mat := node.Material
		if mat == nil {
			mat = DefaultMaterial()
		}
		metallic := float64(mat.Metallic)
		roughness := float64(mat.Roughness)
		doc.Materials = append(doc.Materials, &gltf.Material{
			Name: mat.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &[4]float64{float64(mat.Albedo.R), float64(mat.Albedo.G), float64(mat.Albedo.B), float64(mat.Albedo.A)},
				MetallicFactor:  &metallic,
				RoughnessFactor: &roughness,
			},
		})

		doc.Meshes = append(doc.Meshes, &gltf.Mesh{
			Name: node.Name,
			Primitives: []*gltf.Primitive{{
				Attributes: map[string]int{
					gltf.POSITION:   modeler.WritePosition(doc, positions),
					gltf.NORMAL:     modeler.WriteNormal(doc, normals),
					gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
				},
				Material: gltf.Index(len(doc.Materials) - 1),
			}},
		})

		t := node.Transform
		doc.Nodes = append(doc.Nodes, &gltf.Node{
			Name:        node.Name,
			Mesh:        gltf.Index(len(doc.Meshes) - 1),
			Translation: [3]float64{float64(t.Position.X), float64(t.Position.Y), float64(t.Position.Z)},
			Rotation:    [4]float64{float64(t.Rotation.X), float64(t.Rotation.Y), float64(t.Rotation.Z), float64(t.Rotation.W)},
			Scale:       [3]float64{float64(t.Scale.X), float64(t.Scale.Y), float64(t.Scale.Z)},
		})
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if len(doc.Meshes) == 0 {
		return fmt.Errorf("gltf save %q: no triangle meshes to export", path)
	}

	var err error
	if strings.EqualFold(filepath.Ext(path), ".glb") {
		err = gltf.SaveBinary(doc, path)
	} else {
		doc.Buffers[0].EmbeddedResource()
		err = gltf.Save(doc, path)
	}
	if err != nil {
		return fmt.Errorf("gltf save %q: %w", path, err)
	}
	return nil
}
