package renderer

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// CameraConfig contains all parameters needed to create a camera
type CameraConfig struct {
	Center        core.Vec3 // Camera position (look-from)
	LookAt        core.Vec3 // Point the camera is looking at
	Up            core.Vec3 // World up direction
	AspectRatio   float64   // Width / height
	VFov          float64   // Vertical field of view in degrees
	Aperture      float64   // Lens diameter; 0 disables depth of field
	FocusDistance float64   // Distance to the plane in focus; 0 = auto-calculate from LookAt
}

// DefaultCameraConfig returns a pinhole camera at the origin looking down -z
// with a 2-unit-high viewport one unit away
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          90.0,
		Aperture:      0.0,
		FocusDistance: 0.0,
	}
}

// MergeCameraConfig overlays the non-zero fields of override onto base
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	if override.Center != (core.Vec3{}) {
		result.Center = override.Center
	}
	if override.LookAt != (core.Vec3{}) {
		result.LookAt = override.LookAt
	}
	if override.Up != (core.Vec3{}) {
		result.Up = override.Up
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Validate reports the first invalid camera parameter
func (c CameraConfig) Validate() error {
	switch {
	case !c.Center.IsFinite() || !c.LookAt.IsFinite() || !c.Up.IsFinite():
		return fmt.Errorf("camera vectors must be finite: %w", core.ErrInvalidConfig)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("camera vfov must be in (0, 180) degrees, got %v: %w", c.VFov, core.ErrInvalidConfig)
	case !(c.AspectRatio > 0) || math.IsInf(c.AspectRatio, 0):
		return fmt.Errorf("camera aspect ratio must be positive, got %v: %w", c.AspectRatio, core.ErrInvalidConfig)
	case !(c.Aperture >= 0) || math.IsInf(c.Aperture, 0):
		return fmt.Errorf("camera aperture must be non-negative, got %v: %w", c.Aperture, core.ErrInvalidConfig)
	case !(c.FocusDistance >= 0) || math.IsInf(c.FocusDistance, 0):
		return fmt.Errorf("camera focus distance must be non-negative, got %v: %w", c.FocusDistance, core.ErrInvalidConfig)
	}

	forward := c.Center.Subtract(c.LookAt)
	if forward.NearZero() {
		return fmt.Errorf("camera center and look-at must differ, both are %v: %w", c.Center, core.ErrInvalidConfig)
	}
	if c.Up.Cross(forward.Normalize()).NearZero() {
		return fmt.Errorf("camera up %v is parallel to the view direction: %w", c.Up, core.ErrInvalidConfig)
	}
	return nil
}

// Camera generates rays for rendering.
// It is immutable after construction and safe for concurrent use.
type Camera struct {
	config          CameraConfig
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3 // Orthonormal basis: right, up, backward
	lensRadius      float64
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = config.LookAt.Subtract(config.Center).Length()
	}

	theta := config.VFov * math.Pi / 180.0
	h := math.Tan(theta / 2)
	viewportHeight := 2.0 * h
	viewportWidth := config.AspectRatio * viewportHeight

	// w points backward, away from the look-at point
	w := config.Center.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	origin := config.Center
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		config:          config,
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// GetRay generates a ray for screen coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the lower-left corner of the viewport.
func (c *Camera) GetRay(s, t float64, random *rand.Rand) core.Ray {
	origin := c.origin
	if c.lensRadius > 0 {
		rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
		offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
		origin = origin.Add(offset)
	}

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// GetCameraForward returns the unit view direction
func (c *Camera) GetCameraForward() core.Vec3 {
	return c.w.Negate()
}

// AspectRatio returns the configured width / height ratio
func (c *Camera) AspectRatio() float64 {
	return c.config.AspectRatio
}

// Config returns the configuration the camera was built from
func (c *Camera) Config() CameraConfig {
	return c.config
}
