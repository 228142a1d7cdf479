package scene

import (
	"errors"
	"testing"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

func spheresOf(t *testing.T, s *Scene) []*geometry.Sphere {
	t.Helper()
	var spheres []*geometry.Sphere
	for _, shape := range s.World.Shapes() {
		sphere, ok := shape.(*geometry.Sphere)
		if !ok {
			t.Fatalf("Expected only spheres, got %T", shape)
		}
		spheres = append(spheres, sphere)
	}
	return spheres
}

func TestPresetsBuild(t *testing.T) {
	tests := []struct {
		name       string
		primitives int // -1 skips the count check
	}{
		{"default", 5},
		{"diffuse", 2},
		{"random", -1},
		{"empty", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPreset(tt.name, 42)
			if err != nil {
				t.Fatalf("NewPreset(%q) failed: %v", tt.name, err)
			}
			if s.GetCamera() == nil {
				t.Fatal("Scene has no camera")
			}
			if tt.primitives >= 0 && s.GetPrimitiveCount() != tt.primitives {
				t.Errorf("Expected %d primitives, got %d", tt.primitives, s.GetPrimitiveCount())
			}
			if err := s.SamplingConfig.Validate(); err != nil {
				t.Errorf("Preset sampling config is invalid: %v", err)
			}
			if _, err := renderer.NewRaytracer(s, s.SamplingConfig); err != nil {
				t.Errorf("Preset cannot be rendered: %v", err)
			}
		})
	}
}

func TestPresetNamesMatchPresets(t *testing.T) {
	names := PresetNames()
	if len(names) != len(Presets()) {
		t.Fatalf("Expected %d names, got %d", len(Presets()), len(names))
	}
	for _, name := range names {
		if _, err := NewPreset(name, 1); err != nil {
			t.Errorf("Preset %q failed to build: %v", name, err)
		}
	}
}

func TestNewPresetUnknown(t *testing.T) {
	_, err := NewPreset("cornell", 42)
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestPresetCameraOverride(t *testing.T) {
	s, err := NewPreset("default", 42, renderer.CameraConfig{VFov: 30, AspectRatio: 2})
	if err != nil {
		t.Fatal(err)
	}
	if s.CameraConfig.VFov != 30 || s.Camera.AspectRatio() != 2 {
		t.Errorf("Expected vfov 30 and aspect 2, got %v and %v", s.CameraConfig.VFov, s.Camera.AspectRatio())
	}
	if s.CameraConfig.LookAt != renderer.DefaultCameraConfig().LookAt {
		t.Errorf("Unset override fields should keep preset values, got %v", s.CameraConfig.LookAt)
	}
}

func TestPresetInvalidCameraOverride(t *testing.T) {
	_, err := NewPreset("empty", 42, renderer.CameraConfig{VFov: 200})
	if !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestDefaultSceneHollowGlass(t *testing.T) {
	s, err := NewDefaultScene()
	if err != nil {
		t.Fatal(err)
	}

	var outer, inner *geometry.Sphere
	for _, sphere := range spheresOf(t, s) {
		if sphere.Center != core.NewVec3(-1, 0, -1) {
			continue
		}
		if sphere.Radius > 0 {
			outer = sphere
		} else {
			inner = sphere
		}
	}

	if outer == nil || inner == nil {
		t.Fatal("Expected an outer and an inner glass sphere at (-1, 0, -1)")
	}
	if inner.Radius != -0.4 {
		t.Errorf("Expected inner radius -0.4, got %v", inner.Radius)
	}
	if outer.Material != inner.Material {
		t.Error("Expected both glass surfaces to share one material")
	}
	if _, ok := outer.Material.(*material.Dielectric); !ok {
		t.Errorf("Expected dielectric glass, got %T", outer.Material)
	}
}

func TestRandomSceneDeterministic(t *testing.T) {
	a, err := NewRandomScene(7)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewRandomScene(7)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewRandomScene(8)
	if err != nil {
		t.Fatal(err)
	}

	sa, sb, sc := spheresOf(t, a), spheresOf(t, b), spheresOf(t, c)
	if len(sa) != len(sb) {
		t.Fatalf("Same seed built %d and %d spheres", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].Center != sb[i].Center || sa[i].Radius != sb[i].Radius {
			t.Fatalf("Sphere %d differs between builds with the same seed", i)
		}
	}

	// Ground plus three feature spheres surround at most 22*22 small ones
	if len(sa) < 4 || len(sa) > 4+22*22 {
		t.Errorf("Unexpected sphere count %d", len(sa))
	}

	differs := len(sa) != len(sc)
	for i := 0; !differs && i < len(sa); i++ {
		differs = sa[i].Center != sc[i].Center
	}
	if !differs {
		t.Error("Expected a different seed to change the layout")
	}
}

func TestRandomSceneKeepsFeatureAreaClear(t *testing.T) {
	s, err := NewRandomScene(42)
	if err != nil {
		t.Fatal(err)
	}

	keepClear := core.NewVec3(4, 0.2, 0)
	for _, sphere := range spheresOf(t, s) {
		if sphere.Radius != 0.2 {
			continue
		}
		if d := sphere.Center.Subtract(keepClear).Length(); d <= 0.9 {
			t.Errorf("Small sphere at %v is %v from the metal feature sphere", sphere.Center, d)
		}
	}
}

func TestSceneImplementsRendererScene(t *testing.T) {
	var _ renderer.Scene = (*Scene)(nil)

	s, err := NewEmptyScene()
	if err != nil {
		t.Fatal(err)
	}
	top, bottom := s.BackgroundColors()
	if top != integrator.DefaultSkyTop || bottom != integrator.DefaultSkyBottom {
		t.Errorf("Expected the default sky, got %v and %v", top, bottom)
	}
	if _, hit := s.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1)), 0.001, 1e9); hit {
		t.Error("Empty scene should not report hits")
	}
}

func TestAddSphereValidation(t *testing.T) {
	s, err := NewEmptyScene()
	if err != nil {
		t.Fatal(err)
	}

	if err := s.AddSphere(core.NewVec3(0, 0, -1), 0, material.NewLambertian(core.NewVec3(1, 1, 1))); !errors.Is(err, core.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for zero radius, got %v", err)
	}
	if s.GetPrimitiveCount() != 0 {
		t.Errorf("Rejected sphere should not be added, got %d primitives", s.GetPrimitiveCount())
	}
}
