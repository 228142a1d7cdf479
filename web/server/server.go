package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/core"
	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
	"github.com/df07/go-weekend-raytracer/pkg/scene"
)

// Request limits
const (
	maxWidth   = 2000
	maxSamples = 10000
	maxDepth   = 1000
)

// Server handles web requests for the raytracer
type Server struct {
	port     int
	sceneDir string
	logger   *slog.Logger
}

// NewServer creates a new web server. Scene files are looked up in sceneDir.
func NewServer(port int, sceneDir string, logger *slog.Logger) *Server {
	return &Server{
		port:     port,
		sceneDir: sceneDir,
		logger:   core.LoggerOrNop(logger),
	}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene      string `json:"scene"`      // Built-in scene name or scene file ID
	Width      int    `json:"width"`      // Image width, 0 keeps the scene's width
	Samples    int    `json:"samples"`    // Samples per pixel, 0 keeps the scene's value
	MaxDepth   int    `json:"maxDepth"`   // Maximum scatter events, 0 keeps the scene's value
	Seed       int64  `json:"seed"`       // Sampling seed, 0 keeps the scene's seed
	NumWorkers int    `json:"numWorkers"` // Parallel workers, 0 = one per CPU
}

// Stats represents render statistics
type Stats struct {
	TotalPixels     int     `json:"totalPixels"`
	TotalSamples    int64   `json:"totalSamples"`
	AverageSamples  float64 `json:"averageSamples"`
	SamplesPerPixel int     `json:"samplesPerPixel"`
	Scanlines       int     `json:"scanlines"`
	NumWorkers      int     `json:"numWorkers"`
	ElapsedMs       int64   `json:"elapsedMs"`
}

func statsFromRender(s renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:     s.TotalPixels,
		TotalSamples:    int64(s.TotalSamples),
		AverageSamples:  s.AverageSamples(),
		SamplesPerPixel: s.SamplesPerPixel,
		Scanlines:       s.Scanlines,
		NumWorkers:      s.NumWorkers,
		ElapsedMs:       s.Duration.Milliseconds(),
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/image", s.handleImage)
	return mux
}

// Start serves until ctx is done, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "addr", "http://localhost"+srv.Addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errChan; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists built-in scenes and scene files
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	scenes, err := scene.ListAllScenes(s.sceneDir, s.logger)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: "default"}
	if name := query.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 1, maxWidth); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(query, "samples", 0, 1, maxSamples); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "maxDepth", 0, 1, maxDepth); err != nil {
		return nil, err
	}
	if req.NumWorkers, err = parseIntParam(query, "numWorkers", 0, 0, 1024); err != nil {
		return nil, err
	}
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}
	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene creates a scene from a built-in name or a scene file ID
func (s *Server) createScene(name string, seed int64) (*scene.Scene, error) {
	if !strings.HasSuffix(name, ".json") {
		if seed == 0 {
			seed = renderer.DefaultSamplingConfig().Seed
		}
		return scene.NewPreset(name, seed)
	}

	// Only files found by discovery may be loaded
	files, err := scene.ListJSONScenes(s.sceneDir, s.logger)
	if err != nil {
		return nil, err
	}
	for _, info := range files {
		if info.ID == name {
			return scene.LoadFile(info.FilePath)
		}
	}
	return nil, fmt.Errorf("unknown scene file %q: %w", name, core.ErrInvalidConfig)
}

// newRaytracer builds the scene and raytracer for a request
func (s *Server) newRaytracer(req *RenderRequest, logger *slog.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := s.createScene(req.Scene, req.Seed)
	if err != nil {
		return nil, err
	}

	config := renderer.MergeSamplingConfig(sceneObj.SamplingConfig, renderer.SamplingConfig{
		Width:           req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.MaxDepth,
		NumWorkers:      req.NumWorkers,
		Seed:            req.Seed,
	})
	return renderer.NewRaytracer(sceneObj, config, renderer.WithLogger(logger))
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := s.createScene(sceneName, 0)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	config := sceneObj.SamplingConfig
	writeJSON(w, http.StatusOK, map[string]any{
		"scene": sceneName,
		"defaults": map[string]any{
			"width":       config.Width,
			"samples":     config.SamplesPerPixel,
			"maxDepth":    config.MaxDepth,
			"gamma":       config.Gamma,
			"aspectRatio": sceneObj.Camera.AspectRatio(),
		},
		"limits": map[string]any{
			"width":    map[string]int{"min": 1, "max": maxWidth},
			"samples":  map[string]int{"min": 1, "max": maxSamples},
			"maxDepth": map[string]int{"min": 1, "max": maxDepth},
		},
	})
}

// handleImage renders the whole image and returns it in the requested format
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	format := output.FormatPNG
	if name := r.URL.Query().Get("format"); name != "" {
		format = output.Format(name)
	}
	contentType, ok := contentTypes[format]
	if !ok {
		writeJSONError(w, http.StatusBadRequest, fmt.Errorf("unsupported format %q", format))
		return
	}

	raytracer, err := s.newRaytracer(req, s.logger)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	frame, stats, err := raytracer.Render(r.Context())
	if err != nil {
		s.logger.Warn("image render failed", "scene", req.Scene, "error", err)
		writeJSONError(w, http.StatusServiceUnavailable, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Render-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	if err := output.Encode(w, frame, format); err != nil {
		s.logger.Warn("image encode failed", "format", format, "error", err)
	}
}

var contentTypes = map[output.Format]string{
	output.FormatPNG:  "image/png",
	output.FormatBMP:  "image/bmp",
	output.FormatTIFF: "image/tiff",
	output.FormatPPM:  "image/x-portable-pixmap",
}
