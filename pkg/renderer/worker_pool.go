package renderer

import (
	"context"
	"math/rand"
	"runtime"
	"sync"
)

// ScanlineTask represents a scanline rendering task for the worker pool
type ScanlineTask struct {
	Row  int   // Image row, 0 is the top
	Seed int64 // Generator seed for this row
}

// ScanlineResult contains the result from rendering a scanline
type ScanlineResult struct {
	Row     int
	Pixels  []Color8
	Samples int
	Error   error
}

// WorkerPool manages parallel scanline rendering
type WorkerPool struct {
	taskQueue   chan ScanlineTask
	resultQueue chan ScanlineResult
	workers     []*Worker
	numWorkers  int
	wg          sync.WaitGroup
}

// Worker renders scanlines with its own random generator
type Worker struct {
	ID          int
	raytracer   *Raytracer
	random      *rand.Rand
	taskQueue   chan ScanlineTask
	resultQueue chan ScanlineResult
}

// NewWorkerPool creates a worker pool with the specified number of workers.
// numWorkers <= 0 uses one worker per CPU. Both queues hold queueSize entries.
func NewWorkerPool(rt *Raytracer, numWorkers, queueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	wp := &WorkerPool{
		taskQueue:   make(chan ScanlineTask, queueSize),
		resultQueue: make(chan ScanlineResult, queueSize),
		numWorkers:  numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:          i,
			raytracer:   rt,
			random:      rand.New(rand.NewSource(int64(i))),
			taskQueue:   wp.taskQueue,
			resultQueue: wp.resultQueue,
		}
		wp.workers = append(wp.workers, worker)
	}

	return wp
}

// Start begins all workers. Tasks taken after ctx is done are answered
// with ctx's error instead of being rendered.
func (wp *WorkerPool) Start(ctx context.Context) {
	for _, worker := range wp.workers {
		wp.wg.Add(1)
		go worker.run(ctx, &wp.wg)
	}
}

// Stop gracefully shuts down all workers
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue) // No more tasks
	wp.wg.Wait()        // Wait for workers to finish
	close(wp.resultQueue)
}

// SubmitTask submits a scanline task to the worker pool
func (wp *WorkerPool) SubmitTask(task ScanlineTask) {
	wp.taskQueue <- task
}

// GetResult retrieves a completed scanline result
func (wp *WorkerPool) GetResult() (ScanlineResult, bool) {
	result, ok := <-wp.resultQueue
	return result, ok
}

// GetNumWorkers returns the number of workers in the pool
func (wp *WorkerPool) GetNumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		if err := ctx.Err(); err != nil {
			w.resultQueue <- ScanlineResult{Row: task.Row, Error: err}
			continue
		}

		// Reseeding per row makes the output independent of which worker got the row
		w.random.Seed(task.Seed)
		pixels, samples := w.raytracer.renderScanline(task.Row, w.random)

		w.resultQueue <- ScanlineResult{
			Row:     task.Row,
			Pixels:  pixels,
			Samples: samples,
		}
	}
}
