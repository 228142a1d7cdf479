package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// PathTracingIntegrator implements unidirectional path tracing with material scattering only
type PathTracingIntegrator struct{}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator() *PathTracingIntegrator {
	return &PathTracingIntegrator{}
}

// RayColor computes the color for a single ray.
//
// depth bounds the number of scatter events on the path. A ray that escapes
// after its last permitted bounce still picks up the sky; a path that would
// need one more scatter is terminated black. depth <= 0 is always black.
//
// Each bounce multiplies the path throughput by the material attenuation, so
// the result equals attenuation₁ * attenuation₂ * ... * sky. The loop form
// gives the same estimate as the recursive definition without growing the
// stack, whatever the depth limit.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene Scene, depth int, random *rand.Rand) core.Vec3 {
	if depth <= 0 {
		return core.Vec3{}
	}

	throughput := core.NewVec3(1, 1, 1)

	for bounce := 0; ; bounce++ {
		hit, isHit := scene.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
		if !isHit {
			topColor, bottomColor := scene.BackgroundColors()
			return throughput.MultiplyVec(BackgroundGradient(ray, topColor, bottomColor))
		}

		// If we've exceeded the ray bounce limit, no more light is gathered
		if bounce == depth {
			return core.Vec3{}
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, random)
		if !didScatter {
			// Material absorbed the ray
			return core.Vec3{}
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		ray = scatter.Scattered
	}
}
