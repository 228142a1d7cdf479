package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/integrator"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/progress"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// options holds the parsed command line
type options struct {
	sceneType  string
	output     string
	sceneDir   string
	list       bool
	verbose    bool
	progress   bool
	integrator string
	thumb      int
	sampling   renderer.SamplingConfig
	camera     renderer.CameraConfig
	set        map[string]bool // flags given on the command line
}

func parseOptions(args []string, stderr io.Writer) (*options, error) {
	opts := &options{set: make(map[string]bool)}
	fs := flag.NewFlagSet("raytracer", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.sceneType, "scene", "default", "Built-in scene name or path to a .json scene file")
	fs.StringVar(&opts.output, "o", "", "Output file (.ppm, .png, .bmp, .tiff) or - for PPM on stdout (default output/<scene>/render_<timestamp>.png)")
	fs.StringVar(&opts.sceneDir, "scenes", "scenes", "Directory searched for .json scenes by -list")
	fs.BoolVar(&opts.list, "list", false, "List available scenes and exit")
	fs.BoolVar(&opts.verbose, "v", false, "Enable debug logging")
	fs.BoolVar(&opts.progress, "progress", true, "Show a scanline progress line on stderr")
	fs.StringVar(&opts.integrator, "integrator", "path", "Integrator: 'path' or 'normals'")
	fs.IntVar(&opts.thumb, "thumb", 0, "Also write a thumbnail of this width (0 disables)")

	// Flags left unset keep the scene's own settings
	fs.IntVar(&opts.sampling.Width, "width", 0, "Image width in pixels")
	fs.IntVar(&opts.sampling.SamplesPerPixel, "spp", 0, "Samples per pixel")
	fs.IntVar(&opts.sampling.MaxDepth, "depth", 0, "Maximum scatter events per path")
	fs.Float64Var(&opts.sampling.Gamma, "gamma", 0, "Display gamma (1 writes linear values)")
	fs.IntVar(&opts.sampling.NumWorkers, "workers", 0, "Parallel workers (0 = one per CPU)")
	fs.Int64Var(&opts.sampling.Seed, "seed", 0, "Random seed for sampling and randomized scenes")
	fs.Float64Var(&opts.camera.AspectRatio, "aspect", 0, "Aspect ratio override")
	fs.Float64Var(&opts.camera.VFov, "vfov", 0, "Vertical field of view override in degrees")
	fs.Float64Var(&opts.camera.Aperture, "aperture", 0, "Lens aperture override")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		opts.set[f.Name] = true
	})
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return opts, nil
}

// createScene builds a built-in scene or loads a scene file
func createScene(sceneType string, seed int64) (*scene.Scene, error) {
	if sceneType == "" {
		return nil, fmt.Errorf("scene name is required: %w", core.ErrInvalidConfig)
	}
	if strings.EqualFold(filepath.Ext(sceneType), ".json") {
		return scene.LoadFile(sceneType)
	}
	return scene.NewPreset(sceneType, seed)
}

func createIntegrator(name string) (integrator.Integrator, error) {
	switch name {
	case "path":
		return integrator.NewPathTracingIntegrator(), nil
	case "normals":
		return integrator.NewNormalsIntegrator(), nil
	default:
		return nil, fmt.Errorf("unknown integrator %q: %w", name, core.ErrInvalidConfig)
	}
}

// samplingConfig overlays the sampling flags that were set onto base
func (o *options) samplingConfig(base renderer.SamplingConfig) renderer.SamplingConfig {
	if o.set["width"] {
		base.Width = o.sampling.Width
	}
	if o.set["spp"] {
		base.SamplesPerPixel = o.sampling.SamplesPerPixel
	}
	if o.set["depth"] {
		base.MaxDepth = o.sampling.MaxDepth
	}
	if o.set["gamma"] {
		base.Gamma = o.sampling.Gamma
	}
	if o.set["workers"] {
		base.NumWorkers = o.sampling.NumWorkers
	}
	if o.set["seed"] {
		base.Seed = o.sampling.Seed
	}
	return base
}

// cameraConfig overlays the camera flags that were set onto base
func (o *options) cameraConfig(base renderer.CameraConfig) renderer.CameraConfig {
	if o.set["aspect"] {
		base.AspectRatio = o.camera.AspectRatio
	}
	if o.set["vfov"] {
		base.VFov = o.camera.VFov
	}
	if o.set["aperture"] {
		base.Aperture = o.camera.Aperture
	}
	return base
}

// applyCameraOverrides rebuilds the scene camera when any camera flag was set
func applyCameraOverrides(s *scene.Scene, opts *options) error {
	if !opts.set["aspect"] && !opts.set["vfov"] && !opts.set["aperture"] {
		return nil
	}
	config := opts.cameraConfig(s.CameraConfig)
	camera, err := renderer.NewCamera(config)
	if err != nil {
		return err
	}
	s.Camera = camera
	s.CameraConfig = config
	return nil
}

func defaultOutputPath(sceneType string) string {
	name := strings.TrimSuffix(filepath.Base(sceneType), filepath.Ext(sceneType))
	timestamp := time.Now().Format("20060102_150405")
	return filepath.Join("output", name, fmt.Sprintf("render_%s.png", timestamp))
}

func listScenes(w io.Writer, dir string, logger *slog.Logger) error {
	scenes, err := scene.ListAllScenes(dir, logger)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Available scenes:")
	for _, info := range scenes {
		fmt.Fprintf(w, "  %-20s %s\n", info.ID, info.Description)
	}
	return nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.list {
		return listScenes(stdout, opts.sceneDir, logger)
	}

	seed := renderer.DefaultSamplingConfig().Seed
	if opts.set["seed"] {
		seed = opts.sampling.Seed
	}
	selectedScene, err := createScene(opts.sceneType, seed)
	if err != nil {
		return fmt.Errorf("failed to create scene: %w", err)
	}
	if err := applyCameraOverrides(selectedScene, opts); err != nil {
		return fmt.Errorf("failed to configure camera: %w", err)
	}
	integ, err := createIntegrator(opts.integrator)
	if err != nil {
		return err
	}

	outputPath := opts.output
	if outputPath == "" {
		outputPath = defaultOutputPath(opts.sceneType)
	}
	if _, err := output.FormatFromPath(outputPath); err != nil {
		return err
	}

	config := opts.samplingConfig(selectedScene.SamplingConfig)
	raytracer, err := renderer.NewRaytracer(selectedScene, config,
		renderer.WithLogger(logger),
		renderer.WithIntegrator(integ))
	if err != nil {
		return fmt.Errorf("failed to create raytracer: %w", err)
	}
	logger.Info("scene ready", "scene", opts.sceneType, "primitives", selectedScene.GetPrimitiveCount())

	var stream *output.PPMStreamWriter
	if outputPath == output.StdoutPath {
		if stream, err = output.NewPPMStreamWriter(stdout, raytracer.Width(), raytracer.Height()); err != nil {
			return err
		}
	}

	reporterOpts := []progress.Option{progress.WithLogger(logger)}
	if opts.progress {
		reporterOpts = append(reporterOpts, progress.WithWriter(stderr))
	}
	reporter := progress.NewReporter(raytracer, reporterOpts...)

	frame := renderer.NewFrame(raytracer.Width(), raytracer.Height())
	g, gctx := errgroup.WithContext(ctx)
	progressCtx, stopProgress := context.WithCancel(gctx)
	var stats renderer.RenderStats

	g.Go(func() error {
		return reporter.Run(progressCtx)
	})
	g.Go(func() error {
		defer stopProgress()
		var renderErr error
		stats, renderErr = raytracer.RenderStream(gctx, func(row int, pixels []renderer.Color8) error {
			copy(frame.Row(row), pixels)
			if stream != nil {
				return stream.WriteRow(row, pixels)
			}
			return nil
		})
		if renderErr != nil {
			return renderErr
		}
		if stream != nil {
			return stream.Close()
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if stream == nil {
		if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		if err := output.SaveFile(outputPath, frame); err != nil {
			return err
		}
		logger.Info("render saved", "path", outputPath)
	}

	if opts.thumb > 0 {
		thumbPath := output.ThumbnailPath(outputPath)
		thumb, err := output.Thumbnail(frame.ToImage(), opts.thumb)
		if err != nil {
			return err
		}
		if err := output.SaveImage(thumbPath, thumb); err != nil {
			return err
		}
		logger.Info("thumbnail saved", "path", thumbPath, "width", thumb.Bounds().Dx())
	}

	logger.Info("render stats",
		"duration", stats.Duration.Round(time.Millisecond),
		"samples_per_pixel", stats.AverageSamples(),
		"workers", stats.NumWorkers,
		"average_luminance", fmt.Sprintf("%.3f", renderer.CalculateAverageLuminance(frame.ToImage())))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}
