package platform

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a platform description and a task graph from disk and
// builds the Platform. Both files may be YAML (.yaml/.yml) or JSON
// (.json); the format is selected by extension.
func Load(platformPath, graphPath string, logger *slog.Logger) (*Platform, error) {
	var spec Spec
	if err := readSpecFile(platformPath, &spec); err != nil {
		return nil, fmt.Errorf("load platform %s: %w", platformPath, err)
	}

	var graph Spec
	if err := readSpecFile(graphPath, &graph); err != nil {
		return nil, fmt.Errorf("load graph %s: %w", graphPath, err)
	}
	spec.Tasks = graph.Tasks

	return New(spec, logger)
}

func readSpecFile(path string, out *Spec) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse json: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("parse yaml: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file extension %q (want .yaml, .yml or .json)", filepath.Ext(path))
	}
	return nil
}
