package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Sphere represents a sphere shape.
// A negative radius flips the outward normal inward, which models the inside
// surface of a hollow glass shell.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) (*Sphere, error) {
	if radius == 0 || math.IsNaN(radius) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("sphere radius must be non-zero and finite, got %v: %w", radius, core.ErrInvalidConfig)
	}
	if !center.IsFinite() {
		return nil, fmt.Errorf("sphere center must be finite, got %v: %w", center, core.ErrInvalidConfig)
	}
	if mat == nil {
		return nil, fmt.Errorf("sphere at %v has no material: %w", center, core.ErrInvalidConfig)
	}
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: mat,
	}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + 2*halfB*t + c = 0
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return nil, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		// Try the farther intersection point
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return nil, false
		}
	}

	hitRecord := &material.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: s.Material,
	}

	// Calculate outward normal (from center to hit point)
	outwardNormal := hitRecord.Point.Subtract(s.Center).Divide(s.Radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)

	return hitRecord, true
}
