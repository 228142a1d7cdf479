package scene

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Name accepted by -scene
	Name        string `json:"name"`        // Display name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the scene file (json type only)
}

// ListJSONScenes scans dir for scene description files.
// Files that fail to parse are logged to logger and skipped.
func ListJSONScenes(dir string, logger *slog.Logger) ([]SceneInfo, error) {
	logger = core.LoggerOrNop(logger)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return []SceneInfo{}, nil
		}
		return nil, err
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := make([]SceneInfo, 0, len(files))
	for _, filePath := range files {
		info, err := ParseSceneMetadata(filePath)
		if err != nil {
			logger.Warn("skipping scene file", "path", filePath, "error", err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].Name < scenes[j].Name
	})
	return scenes, nil
}

// ParseSceneMetadata reads the name and description of a scene file.
// The file name stands in for a missing name.
func ParseSceneMetadata(filePath string) (SceneInfo, error) {
	filename := filepath.Base(filePath)
	nameWithoutExt := strings.TrimSuffix(filename, filepath.Ext(filename))

	info := SceneInfo{
		ID:       filePath,
		Name:     titleCase(nameWithoutExt),
		Type:     "json",
		FilePath: filePath,
	}

	cfg, err := LoadConfig(filePath)
	if err != nil {
		return info, err
	}
	if cfg.Name != "" {
		info.Name = cfg.Name
	}
	info.Description = cfg.Description
	return info, nil
}

// ListAllScenes returns the built-in scenes followed by the scene files found in dir
func ListAllScenes(dir string, logger *slog.Logger) ([]SceneInfo, error) {
	var scenes []SceneInfo
	for _, p := range presets {
		scenes = append(scenes, SceneInfo{
			ID:          p.Name,
			Name:        titleCase(p.Name),
			Description: p.Description,
			Type:        "builtin",
		})
	}

	files, err := ListJSONScenes(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to list scene files: %w", err)
	}
	return append(scenes, files...), nil
}

// titleCase converts a filename-style string to title case
// e.g., "glass-spheres" -> "Glass Spheres"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
