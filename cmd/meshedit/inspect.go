package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mesh-editor/editor"
	"mesh-editor/math"
	"mesh-editor/scene"
)

var (
	inspectPrimitive string
	inspectFaces     bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Print the vertex, edge and face handles of a mesh",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectPrimitive, "primitive", "p", string(scene.PrimitiveBox), "Primitive to inspect when no file is given")
	inspectCmd.Flags().BoolVarP(&inspectFaces, "faces", "f", false, "List every face with its centroid and normal")
}

func runInspect(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	m, err := loadScene(path, inspectPrimitive)
	if err != nil {
		return err
	}

	params := cfg.Params()
	out := cmd.OutOrStdout()
	for _, node := range m.Scene.MeshNodes() {
		topo, err := buildTopology(node, params)
		if err != nil {
			return fmt.Errorf("%s: %w", node.Name, err)
		}
		fmt.Fprintln(out, node.Name)
		fmt.Fprintln(out, "====================")
		fmt.Fprintf(out, "Raw vertices:     %d\n", topo.Triangles*3)
		fmt.Fprintf(out, "Triangles:        %d\n", topo.Triangles)
		fmt.Fprintf(out, "Vertex handles:   %d\n", len(topo.Vertices))
		fmt.Fprintf(out, "Edge handles:     %d\n", len(topo.Edges))
		fmt.Fprintf(out, "Face handles:     %d\n", len(topo.Faces))
		fmt.Fprintf(out, "Hidden diagonals: %d\n\n", topo.SuppressedEdges)

		if inspectFaces && len(topo.Faces) > 0 {
			fmt.Fprintf(out, "%-6s %-10s %-30s %-30s\n", "Face", "Triangles", "Centroid", "Normal")
			for i, f := range topo.Faces {
				fmt.Fprintf(out, "%-6d %-10d %-30s %-30s\n", i, len(f.Indices)/3, formatVec(f.RefLocal), formatVec(f.LocalNormal))
			}
			fmt.Fprintln(out)
		}
	}
	return nil
}

// buildTopology derives handles from node's mesh in local space.
func buildTopology(node *scene.Node, params editor.Params) (*editor.Topology, error) {
	mesh := node.Mesh
	if mesh == nil {
		return nil, editor.ErrNoMesh
	}
	if mesh.IsIndexed() {
		mesh = mesh.ToNonIndexed()
	}
	return editor.Build(mesh.Positions(), params)
}

func formatVec(v math.Vec3) string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", v.X, v.Y, v.Z)
}
