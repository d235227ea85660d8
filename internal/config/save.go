package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Save writes the config to the user's config directory.
func (c *Config) Save() error {
	return c.SaveTo(filepath.Join(ConfigDir(), "config.yaml"))
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// RememberWindowSize stores the window size in the user's config file,
// keeping whatever else that file holds.
func RememberWindowSize(width, height int) error {
	cfg := Default()
	path := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(path); err == nil {
		if err := loadFromFile(cfg, path); err != nil {
			return err
		}
	}
	cfg.Window.Width = width
	cfg.Window.Height = height
	return cfg.Save()
}
