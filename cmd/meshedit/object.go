package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	meshio "mesh-editor/io"
	"mesh-editor/scene"
)

var (
	objectName      string
	objectRename    string
	objectAlbedo    string
	objectMetallic  float32
	objectRoughness float32
	objectOutput    string
)

var objectCmd = &cobra.Command{
	Use:   "object <file>",
	Short: "Rename an object or change its material",
	Long: `Rename one object of a file or change its material, then save the file.
Colors are SVG names ("tomato") or hex values ("#ff6347"). Without --output
the input file is rewritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runObject,
}

func init() {
	rootCmd.AddCommand(objectCmd)

	objectCmd.Flags().StringVarP(&objectName, "name", "n", "", "Object to change (default: the first)")
	objectCmd.Flags().StringVar(&objectRename, "rename", "", "New object name")
	objectCmd.Flags().StringVar(&objectAlbedo, "albedo", "", "Base color")
	objectCmd.Flags().Float32Var(&objectMetallic, "metallic", 0, "Metallic factor in [0, 1]")
	objectCmd.Flags().Float32Var(&objectRoughness, "roughness", 0.5, "Roughness factor in [0, 1]")
	objectCmd.Flags().StringVarP(&objectOutput, "output", "o", "", "Output file (default: the input file)")
}

func runObject(cmd *cobra.Command, args []string) error {
	m, err := loadScene(args[0], "")
	if err != nil {
		return err
	}
	node := m.Selected()
	if objectName != "" {
		found, ok := m.FindObject(objectName)
		if !ok {
			return fmt.Errorf("no object named %q", objectName)
		}
		node = found
	}

	var changes []string
	flags := cmd.Flags()
	if flags.Changed("albedo") {
		c, err := scene.ParseColor(objectAlbedo)
		if err != nil {
			return err
		}
		m.SetAlbedo(node, c)
		changes = append(changes, "albedo")
	}
	if flags.Changed("metallic") {
		m.SetMetallic(node, objectMetallic)
		changes = append(changes, "metallic")
	}
	if flags.Changed("roughness") {
		m.SetRoughness(node, objectRoughness)
		changes = append(changes, "roughness")
	}
	if flags.Changed("rename") {
		old := node.Name
		m.Rename(node, objectRename)
		if node.Name != old {
			changes = append(changes, "name")
		}
	}
	if len(changes) == 0 {
		return errors.New("nothing to change: pass --rename, --albedo, --metallic or --roughness")
	}

	out := objectOutput
	if out == "" {
		out = args[0]
	}
	if err := meshio.Save(out, m.Scene.MeshNodes()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: changed %s, wrote %s\n", node.Name, strings.Join(changes, ", "), out)
	return nil
}
