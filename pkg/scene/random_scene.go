package scene

import (
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// NewRandomScene creates a large ground sphere covered in small random spheres
// around three large feature spheres. The same seed always builds the same scene.
func NewRandomScene(seed int64, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	cameraConfig := renderer.CameraConfig{
		Center:        core.NewVec3(13, 2, 3),
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      0.1,
		FocusDistance: 10.0,
	}
	if len(cameraOverrides) > 0 {
		cameraConfig = renderer.MergeCameraConfig(cameraConfig, cameraOverrides[0])
	}

	samplingConfig := renderer.DefaultSamplingConfig()
	samplingConfig.Width = 600

	s, err := New(cameraConfig, samplingConfig)
	if err != nil {
		return nil, err
	}

	glass, err := material.NewDielectric(1.5)
	if err != nil {
		return nil, err
	}

	spheres := []sphereDef{
		{core.NewVec3(0, -1000, 0), 1000, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))},
	}

	random := rand.New(rand.NewSource(seed))
	keepClear := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := random.Float64()
			center := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if center.Subtract(keepClear).Length() <= 0.9 {
				continue
			}

			var mat material.Material
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(random).MultiplyVec(core.RandomVec3(random))
				mat = material.NewLambertian(albedo)
			case chooseMat < 0.95:
				albedo := core.RandomVec3InRange(random, 0.5, 1)
				fuzz := 0.5 * random.Float64()
				mat = material.NewMetal(albedo, fuzz)
			default:
				mat = glass
			}
			spheres = append(spheres, sphereDef{center, 0.2, mat})
		}
	}

	spheres = append(spheres,
		sphereDef{core.NewVec3(0, 1, 0), 1.0, glass},
		sphereDef{core.NewVec3(-4, 1, 0), 1.0, material.NewLambertian(core.NewVec3(0.4, 0.2, 0.1))},
		sphereDef{core.NewVec3(4, 1, 0), 1.0, material.NewMetal(core.NewVec3(0.7, 0.6, 0.5), 0.0)},
	)

	if err := s.addSpheres(spheres); err != nil {
		return nil, err
	}
	return s, nil
}
