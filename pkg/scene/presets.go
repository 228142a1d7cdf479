package scene

import (
	"fmt"
	"strings"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Preset is a built-in scene
type Preset struct {
	Name        string
	Description string
	build       func(seed int64, override renderer.CameraConfig) (*Scene, error)
}

var presets = []Preset{
	{
		Name:        "default",
		Description: "Ground with a diffuse, a hollow glass and a metal sphere",
		build: func(_ int64, override renderer.CameraConfig) (*Scene, error) {
			return NewDefaultScene(override)
		},
	},
	{
		Name:        "diffuse",
		Description: "One gray diffuse sphere on a gray ground, linear output",
		build: func(_ int64, override renderer.CameraConfig) (*Scene, error) {
			return NewDiffuseScene(override)
		},
	},
	{
		Name:        "random",
		Description: "Seeded field of small random spheres around three large ones",
		build: func(seed int64, override renderer.CameraConfig) (*Scene, error) {
			return NewRandomScene(seed, override)
		},
	},
	{
		Name:        "empty",
		Description: "Sky gradient only",
		build: func(_ int64, override renderer.CameraConfig) (*Scene, error) {
			return NewEmptyScene(override)
		},
	},
}

// Presets returns the built-in scenes in display order
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// PresetNames returns the names of the built-in scenes
func PresetNames() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.Name
	}
	return names
}

// NewPreset builds the named built-in scene. seed only affects randomized presets.
func NewPreset(name string, seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	var override renderer.CameraConfig
	if len(cameraOverrides) > 0 {
		override = cameraOverrides[0]
	}

	for _, p := range presets {
		if p.Name == name {
			return p.build(seed, override)
		}
	}
	return nil, fmt.Errorf("unknown scene %q (available: %s): %w",
		name, strings.Join(PresetNames(), ", "), core.ErrInvalidConfig)
}
