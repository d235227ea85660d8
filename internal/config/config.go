// Package config handles editor configuration loading and management.
package config

import (
	"time"

	"mesh-editor/editor"
)

// Config holds all editor settings.
type Config struct {
	Editor   EditorConfig   `yaml:"editor"`
	Gestures GesturesConfig `yaml:"gestures"`
	History  HistoryConfig  `yaml:"history"`
	Window   WindowConfig   `yaml:"window"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// EditorConfig holds the topology and handle settings. The precisions are
// empirical and may need tuning for meshes far from unit scale.
type EditorConfig struct {
	PositionPrecision   float64 `yaml:"position_precision"`
	PlanePrecision      float64 `yaml:"plane_precision"`
	DriftThreshold      float64 `yaml:"drift_threshold"`
	FaceDragExtrudes    bool    `yaml:"face_drag_extrudes"`
	VertexHandleSize    float32 `yaml:"vertex_handle_size"`
	EdgeHandleThickness float32 `yaml:"edge_handle_thickness"`
	FaceInset           float32 `yaml:"face_inset"`
}

// GesturesConfig holds click versus marquee disambiguation settings.
type GesturesConfig struct {
	ClickMaxDuration time.Duration `yaml:"click_max_duration"`
	DragThresholdPx  float64       `yaml:"drag_threshold_px"`
}

// HistoryConfig holds undo settings.
type HistoryConfig struct {
	MaxDepth int `yaml:"max_depth"`
}

// WindowConfig holds viewer window settings.
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
	VSync  bool   `yaml:"vsync"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	p := editor.DefaultParams()
	return &Config{
		Editor: EditorConfig{
			PositionPrecision:   p.PositionPrecision,
			PlanePrecision:      p.PlanePrecision,
			DriftThreshold:      p.DriftThreshold,
			FaceDragExtrudes:    p.FaceDragExtrudes,
			VertexHandleSize:    p.VertexHandleSize,
			EdgeHandleThickness: p.EdgeHandleThickness,
			FaceInset:           p.FaceInset,
		},
		Gestures: GesturesConfig{
			ClickMaxDuration: p.ClickMaxDuration,
			DragThresholdPx:  p.DragThresholdPx,
		},
		History: HistoryConfig{
			MaxDepth: p.HistoryDepth,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "Mesh Editor",
			VSync:  true,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Params converts the editor, gesture and history sections into the
// parameters the editor package consumes. Non-positive values fall back
// to the defaults.
func (c *Config) Params() editor.Params {
	p := editor.DefaultParams()
	if c.Editor.PositionPrecision > 0 {
		p.PositionPrecision = c.Editor.PositionPrecision
	}
	if c.Editor.PlanePrecision > 0 {
		p.PlanePrecision = c.Editor.PlanePrecision
	}
	if c.Editor.DriftThreshold > 0 {
		p.DriftThreshold = c.Editor.DriftThreshold
	}
	p.FaceDragExtrudes = c.Editor.FaceDragExtrudes
	if c.Editor.VertexHandleSize > 0 {
		p.VertexHandleSize = c.Editor.VertexHandleSize
	}
	if c.Editor.EdgeHandleThickness > 0 {
		p.EdgeHandleThickness = c.Editor.EdgeHandleThickness
	}
	if c.Editor.FaceInset >= 0 {
		p.FaceInset = c.Editor.FaceInset
	}
	if c.Gestures.ClickMaxDuration > 0 {
		p.ClickMaxDuration = c.Gestures.ClickMaxDuration
	}
	if c.Gestures.DragThresholdPx > 0 {
		p.DragThresholdPx = c.Gestures.DragThresholdPx
	}
	if c.History.MaxDepth > 0 {
		p.HistoryDepth = c.History.MaxDepth
	}
	return p
}
