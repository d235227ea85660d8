package main

import (
	"github.com/spf13/cobra"

	"mesh-editor/internal/config"
	"mesh-editor/internal/viewer"
	meshio "mesh-editor/io"
	"mesh-editor/scene"
)

var (
	viewPrimitive string
	viewMode      string
	viewFresh     bool
)

var viewCmd = &cobra.Command{
	Use:   "view [file]",
	Short: "Open a mesh in the interactive editor",
	Long: `Open an OBJ, glTF, GLB or STL file. Without a file the last session is
reopened, or a primitive when there is none (or with --fresh).

Keys: 1-4 object/vertex/edge/face mode, G or E toggle face extrusion,
F frame selection, Esc clear selection, Delete or X delete the object,
Ctrl+Z undo, Ctrl+Shift+Z redo.
Ctrl+S save to the opened file and the session, Ctrl+O reload the session,
Ctrl+E export STL, Ctrl+N clear the scene. Drop files on the window to
import them.
Shift+B/S/P/Q/C/T add a box, sphere, plane, quad, cylinder or triangle.
C cycles the object color, M toggles metallic, R steps roughness.
Drag with the middle or right button to orbit, add Shift to pan.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)

	viewCmd.Flags().StringVarP(&viewPrimitive, "primitive", "p", string(scene.PrimitiveBox), "Primitive to open when no file or session is used")
	viewCmd.Flags().StringVarP(&viewMode, "mode", "m", "object", "Initial edit mode: object, vertex, edge or face")
	viewCmd.Flags().BoolVar(&viewFresh, "fresh", false, "Ignore the saved session")
}

func runView(cmd *cobra.Command, args []string) error {
	mode, err := scene.ParseEditMode(viewMode)
	if err != nil {
		return err
	}

	opts := viewer.Options{SessionDir: config.ConfigDir()}
	var m *scene.Manager
	switch {
	case len(args) == 1:
		opts.Source = args[0]
		m, err = loadScene(opts.Source, viewPrimitive)
	case viewFresh:
		m, err = loadScene("", viewPrimitive)
	default:
		var file *meshio.SessionFile
		m, file, err = resumeSession(opts.SessionDir, viewPrimitive)
		if file != nil {
			opts.Source = file.Source
			opts.Session = file
		}
	}
	if err != nil {
		return err
	}
	if opts.Session == nil || cmd.Flags().Changed("mode") {
		m.SetEditMode(mode)
	}
	return viewer.RunScene(cfg, m, opts)
}
