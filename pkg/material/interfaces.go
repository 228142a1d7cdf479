package material

import (
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// Material interface for objects that can scatter rays.
// Implementations are immutable and shared by every shape that uses them,
// so Scatter must not modify the receiver.
type Material interface {
	// Scatter returns the outgoing ray and its attenuation, or false when the ray is absorbed
	Scatter(rayIn core.Ray, hit HitRecord, random *rand.Rand) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Per-channel color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, always opposing the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether ray hit the front face
	Material  Material  // Material of the hit object
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}
