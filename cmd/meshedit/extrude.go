package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mesh-editor/editor"
	"mesh-editor/internal/logger"
	meshio "mesh-editor/io"
	"mesh-editor/scene"
)

var (
	extrudePrimitive string
	extrudeFace      int
	extrudeDistance  float32
	extrudeMove      bool
	extrudeOutput    string
)

var extrudeCmd = &cobra.Command{
	Use:   "extrude [file]",
	Short: "Extrude one face of a mesh along its normal and save the result",
	Long: `Extrude one face of the first object along its normal, the same way a
face drag does in the viewer. Use "inspect --faces" to list face numbers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtrude,
}

func init() {
	rootCmd.AddCommand(extrudeCmd)

	extrudeCmd.Flags().StringVarP(&extrudePrimitive, "primitive", "p", string(scene.PrimitiveBox), "Primitive to extrude when no file is given")
	extrudeCmd.Flags().IntVarP(&extrudeFace, "face", "f", 0, "Face number as listed by inspect --faces")
	extrudeCmd.Flags().Float32VarP(&extrudeDistance, "distance", "d", 0.5, "Distance along the face normal")
	extrudeCmd.Flags().BoolVar(&extrudeMove, "move", false, "Translate the face instead of extruding it")
	extrudeCmd.Flags().StringVarP(&extrudeOutput, "output", "o", "", "Output file (.obj, .gltf, .glb or .stl)")
	_ = extrudeCmd.MarkFlagRequired("output")
}

func runExtrude(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}
	m, err := loadScene(path, extrudePrimitive)
	if err != nil {
		return err
	}

	params := cfg.Params()
	params.FaceDragExtrudes = !extrudeMove
	m.SetEditMode(scene.ModeFace)
	c := editor.NewController(m, params)
	defer c.Close()

	before, err := extrudeFaceBy(c, extrudeFace, extrudeDistance)
	if err != nil {
		return err
	}

	target := c.Session().Target()
	logger.Info("face edited",
		zap.String("object", target.Name),
		zap.Int("face", extrudeFace),
		zap.Int("vertices_before", before),
		zap.Int("vertices_after", len(target.Mesh.Vertices)))

	if err := meshio.Save(extrudeOutput, m.Scene.MeshNodes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d -> %d vertices, wrote %s\n", target.Name, before, len(target.Mesh.Vertices), extrudeOutput)
	return nil
}

// extrudeFaceBy drags face number face of the controller's edit target
// distance units along its normal. It returns the vertex count before the
// drag.
func extrudeFaceBy(c *editor.Controller, face int, distance float32) (int, error) {
	session := c.Session()
	if !session.Editing() {
		return 0, errors.New("no object to edit")
	}
	faces := session.Registry().Topology().Faces
	if face < 0 || face >= len(faces) {
		return 0, fmt.Errorf("face %d out of range [0, %d)", face, len(faces))
	}
	h := faces[face]
	before := len(session.Target().Mesh.Vertices)

	session.SelectAt(h.Proxy, editor.Modifiers{})
	gizmo := c.Gizmo()
	if !gizmo.BeginDrag() {
		return 0, errors.New("face could not be dragged")
	}
	start := gizmo.Target().WorldPosition()
	gizmo.SetTargetWorldPosition(start.Add(h.Normal.Mul(distance)))
	gizmo.EndDrag()
	return before, nil
}
