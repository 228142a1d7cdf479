package material

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// DiffuseMode selects how a Lambertian surface picks its scatter direction
type DiffuseMode int

const (
	// DiffuseUnitSphere offsets the normal by a point inside the unit sphere
	DiffuseUnitSphere DiffuseMode = iota
	// DiffuseUnitVector offsets the normal by a point on the unit sphere (true Lambertian)
	DiffuseUnitVector
	// DiffuseHemisphere scatters uniformly over the hemisphere around the normal
	DiffuseHemisphere
)

// String returns the name used for the mode in scene files
func (m DiffuseMode) String() string {
	switch m {
	case DiffuseUnitSphere:
		return "sphere"
	case DiffuseUnitVector:
		return "unit-vector"
	case DiffuseHemisphere:
		return "hemisphere"
	default:
		return fmt.Sprintf("DiffuseMode(%d)", int(m))
	}
}

// ParseDiffuseMode converts a scene-file name into a DiffuseMode
func ParseDiffuseMode(name string) (DiffuseMode, error) {
	switch name {
	case "", "sphere":
		return DiffuseUnitSphere, nil
	case "unit-vector":
		return DiffuseUnitVector, nil
	case "hemisphere":
		return DiffuseHemisphere, nil
	default:
		return 0, fmt.Errorf("unknown diffuse mode %q: %w", name, core.ErrInvalidConfig)
	}
}

// Lambertian represents a diffuse material
type Lambertian struct {
	Albedo core.Vec3   // Base color/reflectance
	Mode   DiffuseMode // Scatter direction strategy
}

// NewLambertian creates a new lambertian material using unit-sphere scattering
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: albedo, Mode: DiffuseUnitSphere}
}

// NewLambertianWithMode creates a lambertian material with an explicit scatter strategy
func NewLambertianWithMode(albedo core.Vec3, mode DiffuseMode) *Lambertian {
	return &Lambertian{Albedo: albedo, Mode: mode}
}

// Scatter implements the Material interface for lambertian scattering
func (l *Lambertian) Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool) {
	var scatterDirection core.Vec3
	switch l.Mode {
	case DiffuseUnitVector:
		scatterDirection = hit.Normal.Add(core.RandomUnitVector(random))
	case DiffuseHemisphere:
		scatterDirection = core.RandomInHemisphere(random, hit.Normal)
	default:
		scatterDirection = hit.Normal.Add(core.RandomInUnitSphere(random))
	}

	// Catch degenerate scatter direction
	if scatterDirection.NearZero() {
		scatterDirection = hit.Normal
	}

	return ScatterResult{
		Scattered:   core.NewRay(hit.Point, scatterDirection),
		Attenuation: l.Albedo,
	}, true
}
