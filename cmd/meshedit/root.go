package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mesh-editor/internal/config"
	"mesh-editor/internal/logger"
	meshio "mesh-editor/io"
	"mesh-editor/scene"
)

var (
	configPath string
	debug      bool
	logFile    string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "meshedit",
	Short:         "View and edit triangle meshes",
	Long:          "meshedit opens OBJ and glTF meshes for vertex, edge and face editing, and runs the same edits headlessly.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if debug {
			cfg.Logging.Level = "debug"
		}
		if cmd.Flags().Changed("log-file") {
			cfg.Logging.LogFile = logFile
		}
		if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

// loadScene builds a manager holding the objects of path, or a single
// primitive when path is empty. The first object is selected.
func loadScene(path string, primitive string) (*scene.Manager, error) {
	m := scene.NewManager(nil)
	if path == "" {
		if _, err := m.CreatePrimitive(scene.PrimitiveKind(primitive)); err != nil {
			return nil, err
		}
		return m, nil
	}

	nodes, err := meshio.Load(path)
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		m.AddObject(node)
	}
	m.Select(nodes[0])
	logger.Info("scene loaded", zap.String("path", path), zap.Int("objects", len(nodes)))
	return m, nil
}

// resumeSession rebuilds the scene saved in dir. A missing, unreadable or
// empty session falls back to a fresh primitive and a nil file.
func resumeSession(dir string, primitive string) (*scene.Manager, *meshio.SessionFile, error) {
	file, nodes, err := meshio.LoadSession(dir)
	if err != nil {
		if !errors.Is(err, meshio.ErrNoSession) {
			logger.Warn("ignoring saved session", zap.String("dir", dir), zap.Error(err))
		}
		m, err := loadScene("", primitive)
		return m, nil, err
	}
	if len(nodes) == 0 {
		m, err := loadScene("", primitive)
		return m, nil, err
	}
	m := scene.NewManager(nil)
	file.Restore(m, nodes)
	logger.Info("session restored", zap.String("dir", dir), zap.Int("objects", len(nodes)))
	return m, file, nil
}
