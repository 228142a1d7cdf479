package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// NormalsIntegrator shades the first hit by its surface normal.
// Useful as a fast preview of scene geometry; it ignores materials and depth beyond 1.
type NormalsIntegrator struct{}

// NewNormalsIntegrator creates a normals preview integrator
func NewNormalsIntegrator() *NormalsIntegrator {
	return &NormalsIntegrator{}
}

// RayColor maps the unit normal from [-1,1]³ to an RGB color in [0,1]³
func (ni *NormalsIntegrator) RayColor(ray core.Ray, scene Scene, depth int, random *rand.Rand) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	hit, isHit := scene.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		topColor, bottomColor := scene.BackgroundColors()
		return BackgroundGradient(ray, topColor, bottomColor)
	}

	return hit.Normal.Add(core.NewVec3(1, 1, 1)).Multiply(0.5)
}
