package renderer

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int     // Image width in pixels; height follows from the camera aspect ratio
	SamplesPerPixel int     // Number of rays per pixel
	MaxDepth        int     // Maximum number of scatter events per path
	Gamma           float64 // Display gamma; 1.0 writes linear values
	NumWorkers      int     // Parallel workers; 0 = one per CPU
	Seed            int64   // Base seed for the per-row generators
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Gamma:           2.0,
		NumWorkers:      0,
		Seed:            42,
	}
}

// MergeSamplingConfig overlays the non-zero fields of override onto base
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	result := base
	if override.Width != 0 {
		result.Width = override.Width
	}
	if override.SamplesPerPixel != 0 {
		result.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		result.MaxDepth = override.MaxDepth
	}
	if override.Gamma != 0 {
		result.Gamma = override.Gamma
	}
	if override.NumWorkers != 0 {
		result.NumWorkers = override.NumWorkers
	}
	if override.Seed != 0 {
		result.Seed = override.Seed
	}
	return result
}

// Validate reports the first invalid sampling parameter
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width < 1:
		return fmt.Errorf("image width must be at least 1, got %d: %w", c.Width, core.ErrInvalidConfig)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("samples per pixel must be at least 1, got %d: %w", c.SamplesPerPixel, core.ErrInvalidConfig)
	case c.MaxDepth < 1:
		return fmt.Errorf("max depth must be at least 1, got %d: %w", c.MaxDepth, core.ErrInvalidConfig)
	case !(c.Gamma > 0) || math.IsInf(c.Gamma, 0):
		return fmt.Errorf("gamma must be positive, got %v: %w", c.Gamma, core.ErrInvalidConfig)
	case c.NumWorkers < 0:
		return fmt.Errorf("worker count must not be negative, got %d: %w", c.NumWorkers, core.ErrInvalidConfig)
	}
	return nil
}

// ImageSize returns the pixel dimensions for a width and aspect ratio
func ImageSize(width int, aspectRatio float64) (int, int) {
	return width, int(float64(width) / aspectRatio)
}

// Scene interface to avoid circular imports
type Scene interface {
	integrator.Scene
	GetCamera() *Camera
}

// RowFunc receives finished scanlines in order, top row first.
// The pixel slice is owned by the callee. A non-nil error stops the render.
type RowFunc func(row int, pixels []Color8) error

// Option configures a Raytracer
type Option func(*Raytracer)

// WithLogger sets the logger for render lifecycle messages
func WithLogger(logger *slog.Logger) Option {
	return func(rt *Raytracer) {
		rt.logger = core.LoggerOrNop(logger)
	}
}

// WithIntegrator replaces the default path tracing integrator
func WithIntegrator(i integrator.Integrator) Option {
	return func(rt *Raytracer) {
		if i != nil {
			rt.integrator = i
		}
	}
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	camera     *Camera
	integrator integrator.Integrator
	config     SamplingConfig
	width      int
	height     int
	logger     *slog.Logger

	scanlinesDone atomic.Int64
}

// NewRaytracer creates a new raytracer for scene
func NewRaytracer(scene Scene, config SamplingConfig, opts ...Option) (*Raytracer, error) {
	if scene == nil {
		return nil, fmt.Errorf("scene is required: %w", core.ErrInvalidConfig)
	}
	camera := scene.GetCamera()
	if camera == nil {
		return nil, fmt.Errorf("scene has no camera: %w", core.ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	width, height := ImageSize(config.Width, camera.AspectRatio())
	if height < 1 {
		return nil, fmt.Errorf("image height must be at least 1, width %d with aspect ratio %v gives %d: %w",
			width, camera.AspectRatio(), height, core.ErrInvalidConfig)
	}

	rt := &Raytracer{
		scene:      scene,
		camera:     camera,
		integrator: integrator.NewPathTracingIntegrator(),
		config:     config,
		width:      width,
		height:     height,
		logger:     core.NopLogger(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt, nil
}

// Width returns the image width in pixels
func (rt *Raytracer) Width() int { return rt.width }

// Height returns the image height in pixels
func (rt *Raytracer) Height() int { return rt.height }

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig { return rt.config }

// ScanlinesCompleted returns how many rows of the current render are finished
func (rt *Raytracer) ScanlinesCompleted() int {
	return int(rt.scanlinesDone.Load())
}

// TotalScanlines returns the number of rows in the image
func (rt *Raytracer) TotalScanlines() int {
	return rt.height
}

// rowSeed derives the generator seed for a row from the base seed
func rowSeed(seed int64, row int) int64 {
	return int64(uint64(seed) ^ (uint64(row)+1)*0x9E3779B97F4A7C15)
}

// renderScanline renders row j (0 is the top) and returns its quantized pixels
func (rt *Raytracer) renderScanline(j int, random *rand.Rand) ([]Color8, int) {
	pixels := make([]Color8, rt.width)
	spp := rt.config.SamplesPerPixel
	// Image rows count down from the top, viewport t counts up from the bottom
	rowFromBottom := float64(rt.height - 1 - j)

	for i := 0; i < rt.width; i++ {
		var ps PixelStats
		for sample := 0; sample < spp; sample++ {
			s := (float64(i) + random.Float64()) / float64(rt.width)
			t := (rowFromBottom + random.Float64()) / float64(rt.height)

			ray := rt.camera.GetRay(s, t, random)
			ps.AddSample(rt.integrator.RayColor(ray, rt.scene, rt.config.MaxDepth, random))
		}
		pixels[i] = ToColor8(ps.GetColor(), rt.config.Gamma)
	}

	rt.scanlinesDone.Add(1)
	return pixels, rt.width * spp
}

// RenderStream renders the image and hands each row to emit in top-to-bottom order.
// Rows are rendered in parallel; the output does not depend on the worker count.
func (rt *Raytracer) RenderStream(ctx context.Context, emit RowFunc) (RenderStats, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	rt.scanlinesDone.Store(0)

	pool := NewWorkerPool(rt, rt.config.NumWorkers, rt.height)
	stats := RenderStats{
		SamplesPerPixel: rt.config.SamplesPerPixel,
		NumWorkers:      pool.GetNumWorkers(),
	}

	rt.logger.Info("render started",
		"width", rt.width,
		"height", rt.height,
		"samples", rt.config.SamplesPerPixel,
		"depth", rt.config.MaxDepth,
		"workers", stats.NumWorkers)

	pool.Start(ctx)
	for row := 0; row < rt.height; row++ {
		pool.SubmitTask(ScanlineTask{Row: row, Seed: rowSeed(rt.config.Seed, row)})
	}

	var renderErr error
	pending := make(map[int]ScanlineResult)
	next := 0
	for received := 0; received < rt.height; received++ {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		pending[result.Row] = result

		for {
			r, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++

			if renderErr != nil {
				continue
			}
			if r.Error != nil {
				renderErr = r.Error
				cancel()
				continue
			}
			if err := emit(r.Row, r.Pixels); err != nil {
				renderErr = fmt.Errorf("emitting row %d: %w", r.Row, err)
				cancel()
				continue
			}
			stats.Scanlines++
			stats.TotalPixels += len(r.Pixels)
			stats.TotalSamples += r.Samples
		}
	}
	pool.Stop()
	stats.Duration = time.Since(start)

	if renderErr != nil {
		rt.logger.Warn("render stopped", "scanlines", stats.Scanlines, "error", renderErr)
		return stats, renderErr
	}

	rt.logger.Info("render complete",
		"duration", stats.Duration,
		"pixels", stats.TotalPixels,
		"samples", stats.TotalSamples)
	return stats, nil
}

// Render renders the whole image into a frame
func (rt *Raytracer) Render(ctx context.Context) (*Frame, RenderStats, error) {
	frame := NewFrame(rt.width, rt.height)
	stats, err := rt.RenderStream(ctx, func(row int, pixels []Color8) error {
		copy(frame.Row(row), pixels)
		return nil
	})
	if err != nil {
		return nil, stats, err
	}
	return frame, stats, nil
}
