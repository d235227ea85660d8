package main

import (
	"fmt"

	"github.com/spf13/cobra"

	meshio "mesh-editor/io"
)

var convertCmd = &cobra.Command{
	Use:   "convert <input> <output>",
	Short: "Convert a mesh between OBJ, glTF, GLB and STL",
	Long:  "Convert a mesh file. The formats are chosen by extension; STL can only be written.",
	Args:  cobra.ExactArgs(2),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	in, out := args[0], args[1]
	if _, err := meshio.DetectFormat(out); err != nil {
		return err
	}
	nodes, err := meshio.Load(in)
	if err != nil {
		return err
	}
	if err := meshio.Save(out, nodes); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d objects to %s\n", len(nodes), out)
	return nil
}
