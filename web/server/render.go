package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/df07/go-weekend-raytracer/pkg/output"
	"github.com/df07/go-weekend-raytracer/pkg/renderer"
)

// RowUpdate represents a single finished scanline sent via SSE
type RowUpdate struct {
	Row       int    `json:"row"`       // Image row, 0 is the top
	TotalRows int    `json:"totalRows"` // Image height
	Width     int    `json:"width"`
	ImageData string `json:"imageData"` // Base64 encoded PNG of just this row
}

// CompleteUpdate is sent once the last row has been delivered
type CompleteUpdate struct {
	Stats Stats `json:"stats"`
}

// sseWriter serializes Server-Sent Events from several goroutines
type sseWriter struct {
	mu sync.Mutex
	w  http.ResponseWriter
}

// send writes one event and flushes it to the client
func (s *sseWriter) send(event string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if flusher, ok := s.w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}

func (s *sseWriter) sendJSON(event string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.send(event, data)
}

// setSSEHeaders sets the required headers for Server-Sent Events
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// rowToBase64PNG encodes one scanline as a 1-pixel-high PNG
func rowToBase64PNG(pixels []renderer.Color8) (string, error) {
	img := image.NewRGBA(image.Rect(0, 0, len(pixels), 1))
	for x, c := range pixels {
		img.SetRGBA(x, 0, color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
	}

	var buf bytes.Buffer
	if err := output.EncodeImage(&buf, img, output.FormatPNG); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// handleRender streams scanlines to the client with SSE as they finish
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	setSSEHeaders(w)
	sse := &sseWriter{w: w}
	ctx := r.Context()

	req, err := s.parseRenderRequest(r)
	if err != nil {
		_ = sse.send("error", []byte(fmt.Sprintf("Invalid request: %v", err)))
		return
	}

	// Render logs go to the server log and the client console
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	logger := slog.New(NewConsoleHandler(renderID, consoleChan, slog.LevelInfo))

	var consoleDone sync.WaitGroup
	consoleDone.Add(1)
	go func() {
		defer consoleDone.Done()
		s.streamConsoleMessages(ctx, consoleChan, sse)
	}()
	// Console records must reach the client before the final event
	var drainOnce sync.Once
	drainConsole := func() {
		drainOnce.Do(func() {
			close(consoleChan)
			consoleDone.Wait()
		})
	}
	defer drainConsole()

	raytracer, err := s.newRaytracer(req, logger)
	if err != nil {
		drainConsole()
		_ = sse.send("error", []byte(err.Error()))
		return
	}

	height := raytracer.Height()
	stats, err := raytracer.RenderStream(ctx, func(row int, pixels []renderer.Color8) error {
		imageData, err := rowToBase64PNG(pixels)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		return sse.sendJSON("row", RowUpdate{
			Row:       row,
			TotalRows: height,
			Width:     len(pixels),
			ImageData: imageData,
		})
	})
	drainConsole()
	if err != nil {
		s.logger.Warn("render stopped", "render", renderID, "error", err)
		if ctx.Err() == nil {
			_ = sse.send("error", []byte(fmt.Sprintf("Render error: %v", err)))
		}
		return
	}

	_ = sse.sendJSON("complete", CompleteUpdate{Stats: statsFromRender(stats)})
}

// streamConsoleMessages forwards console messages until the channel closes
func (s *Server) streamConsoleMessages(ctx context.Context, consoleChan <-chan ConsoleMessage, sse *sseWriter) {
	for msg := range consoleChan {
		s.logger.Info(msg.Message, "render", msg.RenderID, "level", msg.Level)
		if ctx.Err() != nil {
			// Client disconnected, keep draining
			continue
		}
		if err := sse.sendJSON("console", msg); err != nil {
			s.logger.Debug("console message lost", "error", err)
		}
	}
}
