package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// sphereDef describes one sphere of a preset
type sphereDef struct {
	center core.Vec3
	radius float64
	mat    material.Material
}

func (s *Scene) addSpheres(spheres []sphereDef) error {
	for _, sp := range spheres {
		if err := s.AddSphere(sp.center, sp.radius, sp.mat); err != nil {
			return err
		}
	}
	return nil
}

// NewDefaultScene creates a ground sphere under a diffuse, a glass and a metal sphere
func NewDefaultScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	cameraConfig := renderer.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	s, err := New(cameraConfig, renderer.DefaultSamplingConfig())
	if err != nil {
		return nil, err
	}

	glass, err := material.NewDielectric(1.5)
	if err != nil {
		return nil, err
	}
	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	gold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	// The negative radius sphere flips the glass normals inward, making the left sphere a hollow bubble
	err = s.addSpheres([]sphereDef{
		{core.NewVec3(0, -100.5, -1), 100, ground},
		{core.NewVec3(0, 0, -1), 0.5, center},
		{core.NewVec3(-1, 0, -1), 0.5, glass},
		{core.NewVec3(-1, 0, -1), -0.4, glass},
		{core.NewVec3(1, 0, -1), 0.5, gold},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewDiffuseScene creates one gray sphere resting on a gray ground sphere.
// Its sampling config writes linear output with shallow paths.
func NewDiffuseScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	cameraConfig := renderer.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.Width = 1024
	samplingConfig.MaxDepth = 5
	samplingConfig.Gamma = 1.0

	s, err := New(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	gray := material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))
	err = s.addSpheres([]sphereDef{
		{core.NewVec3(0, 0, -1), 0.5, gray},
		{core.NewVec3(0, -100.5, -1), 100, gray},
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// NewEmptyScene creates a scene with nothing but sky
func NewEmptyScene(cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	cameraConfig := renderer.DefaultCameraConfig()
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}
	return New(cameraConfig, renderer.DefaultSamplingConfig())
}
