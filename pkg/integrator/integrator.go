package integrator

import (
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// ShadowAcneEpsilon is the minimum hit distance for every traced ray.
// Bounce rays start on a surface, and rounding can place their origin
// just below it; ignoring hits closer than this avoids self-intersection.
const ShadowAcneEpsilon = 0.001

// Scene is the read-only view of the world an integrator traces against
type Scene interface {
	Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool)
	BackgroundColors() (topColor, bottomColor core.Vec3)
}

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use with distinct generators.
type Integrator interface {
	// RayColor computes the radiance carried back along ray using at most depth bounces
	RayColor(ray core.Ray, scene Scene, depth int, random *rand.Rand) core.Vec3
}

// Default sky gradient colors
var (
	DefaultSkyTop    = core.NewVec3(0.5, 0.7, 1.0)
	DefaultSkyBottom = core.NewVec3(1.0, 1.0, 1.0)
)

// BackgroundGradient returns the sky color seen along r.
// The normalized direction's y component maps [-1,1] to a blend factor in [0,1].
func BackgroundGradient(r core.Ray, topColor, bottomColor core.Vec3) core.Vec3 {
	unitDirection := r.Direction.Normalize()
	t := 0.5 * (unitDirection.Y + 1.0)
	return bottomColor.Lerp(topColor, t)
}
