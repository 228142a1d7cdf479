package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Vec3Cfg is a vector written as a three element JSON array
type Vec3Cfg [3]float64

// Vec3 converts the array to a vector
func (v Vec3Cfg) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// CameraCfg is the camera section of a scene file
type CameraCfg struct {
	LookFrom      Vec3Cfg `json:"lookFrom"`
	LookAt        Vec3Cfg `json:"lookAt"`
	Up            Vec3Cfg `json:"up,omitempty"`
	AspectRatio   float64 `json:"aspectRatio,omitempty"`
	VFov          float64 `json:"vfov,omitempty"`
	Aperture      float64 `json:"aperture,omitempty"`
	FocusDistance float64 `json:"focusDistance,omitempty"` // 0 focuses on lookAt
}

// RenderCfg holds the recommended sampling settings; zero fields keep the defaults
type RenderCfg struct {
	Width    int     `json:"width,omitempty"`
	Spp      int     `json:"spp,omitempty"`
	MaxDepth int     `json:"maxDepth,omitempty"`
	Gamma    float64 `json:"gamma,omitempty"`
	Seed     int64   `json:"seed,omitempty"`
}

// SkyCfg overrides the background gradient colors
type SkyCfg struct {
	Top    *Vec3Cfg `json:"top,omitempty"`
	Bottom *Vec3Cfg `json:"bottom,omitempty"`
}

// MaterialCfg describes one entry of the material table.
// Type is "lambertian", "metal" or "dielectric".
type MaterialCfg struct {
	Type    string  `json:"type"`
	Albedo  Vec3Cfg `json:"albedo,omitempty"`
	Fuzz    float64 `json:"fuzz,omitempty"`
	IOR     float64 `json:"ior,omitempty"`
	Diffuse string  `json:"diffuse,omitempty"` // sphere, unit-vector or hemisphere
}

// SphereCfg places a sphere using a material from the table
type SphereCfg struct {
	Center   Vec3Cfg `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// PlaneCfg places an infinite plane using a material from the table
type PlaneCfg struct {
	Point    Vec3Cfg `json:"point"`
	Normal   Vec3Cfg `json:"normal"`
	Material string  `json:"material"`
}

// Config is the on-disk scene description
type Config struct {
	Name        string                 `json:"name,omitempty"`
	Description string                 `json:"description,omitempty"`
	Camera      *CameraCfg             `json:"camera,omitempty"`
	Render      RenderCfg              `json:"render,omitempty"`
	Sky         *SkyCfg                `json:"sky,omitempty"`
	Materials   map[string]MaterialCfg `json:"materials"`
	Spheres     []SphereCfg            `json:"spheres,omitempty"`
	Planes      []PlaneCfg             `json:"planes,omitempty"`
}

// Build validates and constructs the material
func (m MaterialCfg) Build() (material.Material, error) {
	switch m.Type {
	case "lambertian":
		mode, err := material.ParseDiffuseMode(m.Diffuse)
		if err != nil {
			return nil, err
		}
		return material.NewLambertianWithMode(m.Albedo.Vec3(), mode), nil
	case "metal":
		if !(m.Fuzz >= 0 && m.Fuzz <= 1) {
			return nil, fmt.Errorf("metal fuzz must be between 0 and 1, got %v: %w", m.Fuzz, core.ErrInvalidConfig)
		}
		return material.NewMetal(m.Albedo.Vec3(), m.Fuzz), nil
	case "dielectric":
		return material.NewDielectric(m.IOR)
	default:
		return nil, fmt.Errorf("unknown material type %q: %w", m.Type, core.ErrInvalidConfig)
	}
}

func (c CameraCfg) toCameraConfig() renderer.CameraConfig {
	return renderer.CameraConfig{
		Center:        c.LookFrom.Vec3(),
		LookAt:        c.LookAt.Vec3(),
		Up:            c.Up.Vec3(),
		AspectRatio:   c.AspectRatio,
		VFov:          c.VFov,
		Aperture:      c.Aperture,
		FocusDistance: c.FocusDistance,
	}
}

func (r RenderCfg) toSamplingConfig() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		Width:           r.Width,
		SamplesPerPixel: r.Spp,
		MaxDepth:        r.MaxDepth,
		Gamma:           r.Gamma,
		Seed:            r.Seed,
	}
}

// Build constructs the scene. Omitted camera and render fields take default values.
func (c *Config) Build() (*Scene, error) {
	cameraConfig := renderer.DefaultCameraConfig()
	if c.Camera != nil {
		// lookFrom and lookAt are always taken as written since the origin is a valid position
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, c.Camera.toCameraConfig())
		cameraConfig.Center = c.Camera.LookFrom.Vec3()
		cameraConfig.LookAt = c.Camera.LookAt.Vec3()
	}
	samplingConfig := renderer.MergeSamplingConfig(renderer.DefaultSamplingConfig(), c.Render.toSamplingConfig())

	s, err := New(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}
	if c.Sky != nil {
		if c.Sky.Top != nil {
			s.SkyTop = c.Sky.Top.Vec3()
		}
		if c.Sky.Bottom != nil {
			s.SkyBottom = c.Sky.Bottom.Vec3()
		}
	}

	// Shapes referencing the same name share one material value
	materials := make(map[string]material.Material, len(c.Materials))
	for name, mc := range c.Materials {
		mat, err := mc.Build()
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = mat
	}
	lookup := func(name string) (material.Material, error) {
		mat, ok := materials[name]
		if !ok {
			return nil, fmt.Errorf("unknown material %q: %w", name, core.ErrInvalidConfig)
		}
		return mat, nil
	}

	for i, sc := range c.Spheres {
		mat, err := lookup(sc.Material)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		if err := s.AddSphere(sc.Center.Vec3(), sc.Radius, mat); err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
	}
	for i, pc := range c.Planes {
		mat, err := lookup(pc.Material)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		plane, err := geometry.NewPlane(pc.Point.Vec3(), pc.Normal.Vec3(), mat)
		if err != nil {
			return nil, fmt.Errorf("plane %d: %w", i, err)
		}
		s.Add(plane)
	}

	return s, nil
}

// ParseConfig decodes a scene description, rejecting unknown fields
func ParseConfig(r io.Reader) (*Config, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	return &cfg, nil
}

// LoadConfig reads a scene description from path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := ParseConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// LoadFile reads and builds the scene stored at path
func LoadFile(path string) (*Scene, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	s, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}
