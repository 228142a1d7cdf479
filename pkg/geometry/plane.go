package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/material"
)

// Plane represents an infinite plane defined by a point and normal
type Plane struct {
	Point    core.Vec3         // A point on the plane
	Normal   core.Vec3         // Unit normal
	Material material.Material // Material of the plane
}

// NewPlane creates a new plane
func NewPlane(point, normal core.Vec3, mat material.Material) (*Plane, error) {
	if !point.IsFinite() || !normal.IsFinite() {
		return nil, fmt.Errorf("plane point and normal must be finite: %w", core.ErrInvalidConfig)
	}
	if normal.NearZero() {
		return nil, fmt.Errorf("plane normal must be non-zero: %w", core.ErrInvalidConfig)
	}
	if mat == nil {
		return nil, fmt.Errorf("plane through %v has no material: %w", point, core.ErrInvalidConfig)
	}
	return &Plane{
		Point:    point,
		Normal:   normal.Normalize(),
		Material: mat,
	}, nil
}

// Hit tests if a ray intersects with the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (*material.HitRecord, bool) {
	denominator := ray.Direction.Dot(p.Normal)

	// Parallel rays never meet the plane
	if math.Abs(denominator) < 1e-8 {
		return nil, false
	}

	// t = (point_on_plane - ray_origin) · normal / (ray_direction · normal)
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denominator
	if t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &material.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
	}
	hitRecord.SetFaceNormal(ray, p.Normal)

	return hitRecord, true
}
