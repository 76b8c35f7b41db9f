package configpath

import (
	"fmt"
	"os"
	"path/filepath"
)

// Dir returns the directory crest reads its configuration from.
// Priority:
// 1) XDG_CONFIG_HOME/crest (if XDG_CONFIG_HOME is set)
// 2) ~/.config/crest
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "crest"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "crest"), nil
}

// ConfigFile returns the default configuration file path. The file
// does not have to exist; loading falls back to built-in defaults.
func ConfigFile() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}
