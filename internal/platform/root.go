package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigName is the project configuration file looked up by FindRoot.
const ConfigName = "manual.yaml"

// FindRoot recursively looks upwards for a project root indicator.
// Indicators are: a manual.yaml file or a .manual directory.
// If found, returns the absolute path to the root.
func FindRoot(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if hasFile(dir, ConfigName) || hasFile(dir, ".manual") {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("root not found")
}

func hasFile(dir, name string) bool {
	_, err := os.Stat(filepath.Join(dir, name))
	return err == nil
}
