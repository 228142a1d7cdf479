package renderer

import (
	"context"
	"errors"
	"runtime"
	"testing"
)

func TestWorkerPoolDefaultsToCPUCount(t *testing.T) {
	rt := mustRaytracer(t, newTestScene(t, 2.0), DefaultSamplingConfig())
	pool := NewWorkerPool(rt, 0, 1)

	if pool.GetNumWorkers() != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), pool.GetNumWorkers())
	}
}

func TestWorkerPoolRendersEveryTask(t *testing.T) {
	config := SamplingConfig{Width: 8, SamplesPerPixel: 2, MaxDepth: 2, Gamma: 2.0, Seed: 5}
	rt := mustRaytracer(t, newSpheresScene(t), config)
	pool := NewWorkerPool(rt, 3, rt.Height())

	pool.Start(context.Background())
	for row := 0; row < rt.Height(); row++ {
		pool.SubmitTask(ScanlineTask{Row: row, Seed: rowSeed(config.Seed, row)})
	}
	pool.Stop()

	seen := make(map[int]bool)
	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			t.Fatalf("Row %d failed: %v", result.Row, result.Error)
		}
		if len(result.Pixels) != rt.Width() || result.Samples != rt.Width()*2 {
			t.Errorf("Row %d: %d pixels and %d samples", result.Row, len(result.Pixels), result.Samples)
		}
		seen[result.Row] = true
	}

	if len(seen) != rt.Height() {
		t.Errorf("Expected %d distinct rows, got %d", rt.Height(), len(seen))
	}
}

func TestWorkerPoolSkipsTasksAfterCancel(t *testing.T) {
	rt := mustRaytracer(t, newSpheresScene(t), SamplingConfig{Width: 8, SamplesPerPixel: 1, MaxDepth: 2, Gamma: 2.0})
	pool := NewWorkerPool(rt, 2, 4)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pool.Start(ctx)
	for row := 0; row < 4; row++ {
		pool.SubmitTask(ScanlineTask{Row: row})
	}
	pool.Stop()

	for {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if !errors.Is(result.Error, context.Canceled) {
			t.Errorf("Row %d: expected context.Canceled, got %v", result.Row, result.Error)
		}
	}
	if rt.ScanlinesCompleted() != 0 {
		t.Errorf("Expected no rendered scanlines, got %d", rt.ScanlinesCompleted())
	}
}
