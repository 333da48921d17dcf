package feed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"feedplay/pkg/types"
)

// LoadManifest reads a feed manifest based on its extension.
// Supports: .json, .yaml/.yml, .toml. All use the {"videos": [...]} envelope.
func LoadManifest(path string) ([]types.Video, error) {
	p, err := expandHome(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var data types.VideoData
	switch ext := strings.ToLower(filepath.Ext(p)); ext {
	case ".json":
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("decode manifest: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported manifest extension: %s", ext)
	}
	for i, v := range data.Videos {
		if strings.TrimSpace(v.Video) == "" {
			return nil, fmt.Errorf("manifest entry %d (id %d): empty video locator", i, v.ID)
		}
	}
	return data.Videos, nil
}

// expandHome expands a leading '~' to the user's home directory.
func expandHome(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("empty manifest path")
	}
	if path[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home dir: %w", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
}
