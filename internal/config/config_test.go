package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Editor.PositionPrecision != 1e-5 {
		t.Errorf("expected position precision 1e-5, got %g", cfg.Editor.PositionPrecision)
	}
	if cfg.Editor.PlanePrecision != 1e-3 {
		t.Errorf("expected plane precision 1e-3, got %g", cfg.Editor.PlanePrecision)
	}
	if cfg.Editor.DriftThreshold != 1e-4 {
		t.Errorf("expected drift threshold 1e-4, got %g", cfg.Editor.DriftThreshold)
	}
	if !cfg.Editor.FaceDragExtrudes {
		t.Error("expected face_drag_extrudes to be true by default")
	}

	if cfg.Gestures.ClickMaxDuration != 300*time.Millisecond {
		t.Errorf("expected click duration 300ms, got %v", cfg.Gestures.ClickMaxDuration)
	}
	if cfg.Gestures.DragThresholdPx != 6 {
		t.Errorf("expected drag threshold 6, got %g", cfg.Gestures.DragThresholdPx)
	}

	if cfg.History.MaxDepth != 32 {
		t.Errorf("expected history depth 32, got %d", cfg.History.MaxDepth)
	}

	if cfg.Window.Width != 1280 || cfg.Window.Height != 720 {
		t.Errorf("expected window 1280x720, got %dx%d", cfg.Window.Width, cfg.Window.Height)
	}
	if !cfg.Window.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
editor:
  position_precision: 0.0001
  face_drag_extrudes: false

gestures:
  click_max_duration: 250ms
  drag_threshold_px: 4

history:
  max_depth: 8

window:
  title: "Test"

logging:
  level: "debug"
  log_file: "edit.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Editor.PositionPrecision != 0.0001 {
		t.Errorf("expected position precision 0.0001, got %g", cfg.Editor.PositionPrecision)
	}
	if cfg.Editor.FaceDragExtrudes {
		t.Error("expected face_drag_extrudes to be false")
	}
	// Untouched keys keep their defaults.
	if cfg.Editor.PlanePrecision != 1e-3 {
		t.Errorf("expected plane precision to stay 1e-3, got %g", cfg.Editor.PlanePrecision)
	}
	if cfg.Gestures.ClickMaxDuration != 250*time.Millisecond {
		t.Errorf("expected click duration 250ms, got %v", cfg.Gestures.ClickMaxDuration)
	}
	if cfg.History.MaxDepth != 8 {
		t.Errorf("expected history depth 8, got %d", cfg.History.MaxDepth)
	}
	if cfg.Window.Title != "Test" {
		t.Errorf("expected title 'Test', got %s", cfg.Window.Title)
	}
	if cfg.Window.Width != 1280 {
		t.Errorf("expected width to stay 1280, got %d", cfg.Window.Width)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}

	p := cfg.Params()
	if p.PositionPrecision != 0.0001 {
		t.Errorf("Params: expected position precision 0.0001, got %g", p.PositionPrecision)
	}
	if p.FaceDragExtrudes {
		t.Error("Params: expected extrusion disabled")
	}
	if p.DragThresholdPx != 4 {
		t.Errorf("Params: expected drag threshold 4, got %g", p.DragThresholdPx)
	}
	if p.HistoryDepth != 8 {
		t.Errorf("Params: expected history depth 8, got %d", p.HistoryDepth)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
editor:
  position_precision: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing explicit file, got nil")
	}
}

func TestParamsFallback(t *testing.T) {
	cfg := Default()
	cfg.Editor.PositionPrecision = 0
	cfg.History.MaxDepth = -1

	p := cfg.Params()
	if p.PositionPrecision != 1e-5 {
		t.Errorf("expected fallback precision 1e-5, got %g", p.PositionPrecision)
	}
	if p.HistoryDepth != 32 {
		t.Errorf("expected fallback depth 32, got %d", p.HistoryDepth)
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Editor.DriftThreshold = 0.01
	cfg.Gestures.ClickMaxDuration = time.Second
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Editor.DriftThreshold != 0.01 {
		t.Errorf("expected drift threshold 0.01, got %g", loaded.Editor.DriftThreshold)
	}
	if loaded.Gestures.ClickMaxDuration != time.Second {
		t.Errorf("expected click duration 1s, got %v", loaded.Gestures.ClickMaxDuration)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)

	// Point the user config dir somewhere empty.
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected no config file found, got %s", path)
	}

	if err := os.WriteFile("meshedit.yaml", []byte("logging:\n  level: warn\n"), 0644); err != nil {
		t.Fatalf("failed to create config file: %v", err)
	}

	if path := findConfigFile(); path != "./meshedit.yaml" {
		t.Errorf("expected ./meshedit.yaml, got %s", path)
	}
}

func TestRememberWindowSize(t *testing.T) {
	if runtime.GOOS == "darwin" || runtime.GOOS == "windows" {
		t.Skip("config dir ignores XDG_CONFIG_HOME on this platform")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	path := filepath.Join(ConfigDir(), "config.yaml")

	// A fresh config dir gets a full default file.
	if err := RememberWindowSize(800, 600); err != nil {
		t.Fatalf("RememberWindowSize: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Window.Width != 800 || loaded.Window.Height != 600 {
		t.Errorf("expected 800x600, got %dx%d", loaded.Window.Width, loaded.Window.Height)
	}

	// Existing settings survive.
	loaded.Editor.DriftThreshold = 0.01
	if err := loaded.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := RememberWindowSize(1024, 768); err != nil {
		t.Fatalf("RememberWindowSize: %v", err)
	}
	loaded, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Window.Width != 1024 || loaded.Window.Height != 768 {
		t.Errorf("expected 1024x768, got %dx%d", loaded.Window.Width, loaded.Window.Height)
	}
	if loaded.Editor.DriftThreshold != 0.01 {
		t.Errorf("expected drift threshold 0.01 kept, got %g", loaded.Editor.DriftThreshold)
	}
}
