package scene

import (
	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/geometry"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera         *renderer.Camera
	World          *geometry.HittableList // Objects in the scene
	SkyTop         core.Vec3              // Background color straight up
	SkyBottom      core.Vec3              // Background color straight down
	SamplingConfig renderer.SamplingConfig
	CameraConfig   renderer.CameraConfig
}

// New creates an empty scene under the default sky
func New(cameraConfig renderer.CameraConfig, samplingConfig renderer.SamplingConfig) (*Scene, error) {
	if err := samplingConfig.Validate(); err != nil {
		return nil, err
	}
	camera, err := renderer.NewCamera(cameraConfig)
	if err != nil {
		return nil, err
	}

	return &Scene{
		Camera:         camera,
		World:          geometry.NewHittableList(),
		SkyTop:         integrator.DefaultSkyTop,
		SkyBottom:      integrator.DefaultSkyBottom,
		SamplingConfig: samplingConfig,
		CameraConfig:   cameraConfig,
	}, nil
}

// Add appends shapes to the world
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.World.Add(shapes...)
}

// AddSphere validates and adds a sphere to the world
func (s *Scene) AddSphere(center core.Vec3, radius float64, mat material.Material) error {
	sphere, err := geometry.NewSphere(center, radius, mat)
	if err != nil {
		return err
	}
	s.World.Add(sphere)
	return nil
}

// Hit finds the closest intersection in the world
func (s *Scene) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	return s.World.Hit(ray, tMin, tMax)
}

// BackgroundColors returns the sky gradient colors
func (s *Scene) BackgroundColors() (topColor, bottomColor core.Vec3) {
	return s.SkyTop, s.SkyBottom
}

// GetCamera returns the scene camera
func (s *Scene) GetCamera() *renderer.Camera {
	return s.Camera
}

// GetPrimitiveCount returns the total number of shapes in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}
