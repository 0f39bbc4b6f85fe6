// Package workerpool runs a fixed-size pool of OS threads that consume Jobs
// from a shared FIFO queue and hand each one to a Driver. Workers are
// pinned to their OS thread because the codec library underneath the
// transcoder keeps significant thread-local state across blocking calls.
package workerpool

import (
	"context"
	"runtime"
	"sync"

	"github.com/Neur0toxine/atranscoder-rpc/internal/job"
	"github.com/Neur0toxine/atranscoder-rpc/internal/logging"
	"github.com/asticode/go-astiav"
)

// Runner executes a single Job. *jobdriver.Driver satisfies this; tests
// substitute a fake to exercise pool mechanics without a real codec
// pipeline.
type Runner interface {
	Run(ctx context.Context, j job.Job) error
}

// queueDepth bounds the in-memory backlog between intake and the workers.
// FIFO ordering is preserved by Go's channel semantics; the bound exists
// only to apply backpressure to intake under sustained overload.
const queueDepth = 256

// Pool owns the shared job queue and the goroutines draining it.
type Pool struct {
	jobs chan job.Job
	wg   sync.WaitGroup
}

// New starts numWorkers workers, each invoking driver for every Job it
// dequeues.
func New(numWorkers int, runner Runner) *Pool {
	p := &Pool{jobs: make(chan job.Job, queueDepth)}
	for id := 0; id < numWorkers; id++ {
		p.wg.Add(1)
		go p.runWorker(id, runner)
	}
	return p
}

// Enqueue places a Job on the shared queue. It blocks once the queue is
// full, which is the pool's only form of backpressure.
func (p *Pool) Enqueue(j job.Job) {
	p.jobs <- j
}

// Shutdown closes the queue and waits for every in-flight Job to finish.
// Jobs already queued are drained before any worker exits.
func (p *Pool) Shutdown() {
	close(p.jobs)
	p.wg.Wait()
}

func (p *Pool) runWorker(id int, runner Runner) {
	defer p.wg.Done()

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logger := logging.WithComponent("workerpool").With().Int(logging.FieldWorkerID, id).Logger()

	initLibav.Do(func() {
		astiav.SetLogLevel(astiav.LogLevelError)
	})

	for j := range p.jobs {
		ctx := logger.WithContext(context.Background())
		ctx = logging.ContextWithJobID(ctx, j.ID.String())
		logger.Debug().Str(logging.FieldEvent, "worker.dequeue").Str(logging.FieldJobID, j.ID.String()).Msg("worker picked up job")
		if err := runner.Run(ctx, j); err != nil {
			logger.Error().Err(err).Str(logging.FieldJobID, j.ID.String()).Msg("job execution failed")
		}
	}
}

// initLibav guards the one-time, process-wide codec library log-level
// setup. Every worker calls the Do but only the first pays for it; this
// matches the intent of per-worker initialisation without repeating global
// library setup N times.
var initLibav sync.Once
