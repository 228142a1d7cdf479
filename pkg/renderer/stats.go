package renderer

import (
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels     int           // Total number of pixels rendered
	TotalSamples    int           // Total number of camera samples taken
	SamplesPerPixel int           // Samples taken for every pixel
	Scanlines       int           // Scanlines finished and delivered
	NumWorkers      int           // Workers the render ran on
	Duration        time.Duration // Wall time from start to the last delivered row
}

// AverageSamples returns the mean number of samples per rendered pixel
func (s RenderStats) AverageSamples() float64 {
	if s.TotalPixels == 0 {
		return 0
	}
	return float64(s.TotalSamples) / float64(s.TotalPixels)
}

// PixelStats accumulates samples for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for the final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
