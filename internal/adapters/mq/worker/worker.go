// Package worker renders queued export jobs to files.
package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/adapters/mq/queue"
	"github.com/okian/lingprofile/internal/adapters/repository"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/plan"
	"github.com/okian/lingprofile/internal/radar"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

const (
	defaultExportDir      = "exports"
	workerShutdownTimeout = 5 * time.Second
	poolShutdownTimeout   = 30 * time.Second
)

// Job is what workers read off the queue.
type Job = queue.Job

// Loader fetches the records a job renders.
type Loader interface {
	LoadCase(ctx context.Context, id string) (*model.Case, error)
	// LoadPlan returns repository.ErrNotFound when the case has no plan.
	LoadPlan(ctx context.Context, caseID string) (*plan.Plan, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Result describes one finished job.
type Result struct {
	Job      Job
	Path     string
	Err      error
	Duration time.Duration
}

// ResultFunc is called after every job, successful or not.
type ResultFunc func(ctx context.Context, r Result)

// Worker consumes export jobs.
type Worker interface {
	// Run processes jobs until ctx is done, the queue drains after Close,
	// or Shutdown is called.
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker renders jobs from an in-process queue.
type InMemoryWorker struct {
	queue     Queue
	loader    Loader
	name      string
	dir       string
	chartOpts []radar.Option
	onResult  ResultFunc
	now       func() time.Time

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker writing into the export directory.
func NewInMemoryWorker(q Queue, loader Loader, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		loader:   loader,
		name:     "worker",
		dir:      defaultExportDir,
		now:      time.Now,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named("worker")
	}
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			res := w.process(ctx, j)
			if res.Err != nil {
				w.logger.Error(ctx, "export failed",
					logger.String("job_id", j.JobID),
					logger.String("case_id", j.CaseID),
					logger.Error(res.Err),
				)
			} else {
				w.logger.Debug(ctx, "export written",
					logger.String("job_id", j.JobID),
					logger.String("path", res.Path),
				)
			}
			if w.onResult != nil {
				w.onResult(ctx, res)
			}
		}
	}
}

func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.stop()
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker) stop() {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, j Job) (res Result) {
	start := time.Now()
	res.Job = j
	defer func() {
		res.Duration = time.Since(start)
		status := "ok"
		if res.Err != nil {
			status = "error"
			metrics.RecordErrorByComponent("worker", "export")
		}
		metrics.RecordExport(j.Format, status, float64(res.Duration.Microseconds())/1000)
	}()

	f, err := export.ParseFormat(j.Format)
	if err != nil {
		res.Err = err
		return res
	}
	c, err := w.loader.LoadCase(ctx, j.CaseID)
	if err != nil {
		res.Err = fmt.Errorf("load case %q: %w", j.CaseID, err)
		return res
	}
	p, err := w.loader.LoadPlan(ctx, j.CaseID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		res.Err = fmt.Errorf("load plan %q: %w", j.CaseID, err)
		return res
	}
	r, err := export.NewReport(c, p, w.now())
	if err != nil {
		res.Err = err
		return res
	}

	path := filepath.Join(w.dir, FileName(j.CaseID, j.JobID, f))
	if err := w.writeFile(path, f, r); err != nil {
		res.Err = err
		return res
	}
	res.Path = path
	return res
}

// writeFile renders into a temporary file and renames it into place so a
// reader never sees a partial document.
func (w *InMemoryWorker) writeFile(path string, f export.Format, r *export.Report) (err error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(w.dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = export.Write(tmp, f, r, w.chartOpts...); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename export: %w", err)
	}
	return nil
}

// FileName returns "<case>_<job>.<ext>" with path separators replaced.
func FileName(caseID, jobID string, f export.Format) string {
	return export.SafeName(caseID) + "_" + export.SafeName(jobID) + "." + f.Ext()
}

// Pool runs several workers against one queue.
type Pool struct {
	workers   []*InMemoryWorker
	queue     Queue
	processed atomic.Int64
	failed    atomic.Int64
	logger    logger.Logger
}

// NewPool creates workerCount workers sharing opts. A count below one
// uses the number of CPUs.
func NewPool(workerCount int, q Queue, loader Loader, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
	}

	for i := 0; i < workerCount; i++ {
		wopts := append(opts[:len(opts):len(opts)], WithName("worker-"+strconv.Itoa(i)))
		w := NewInMemoryWorker(q, loader, wopts...)
		w.onResult = p.count(w.onResult)
		p.workers[i] = w
	}
	p.logger = p.workers[0].logger
	return p
}

// count tallies outcomes before calling next.
func (p *Pool) count(next ResultFunc) ResultFunc {
	return func(ctx context.Context, r Result) {
		if r.Err != nil {
			p.failed.Add(1)
		} else {
			p.processed.Add(1)
		}
		if next != nil {
			next(ctx, r)
		}
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Processed returns how many jobs finished successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns how many jobs ended in error.
func (p *Pool) Failed() int64 { return p.failed.Load() }

func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stop signals every worker and waits for them without draining the queue.
func (p *Pool) Stop() {
	for _, w := range p.workers {
		w.stop()
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx or the pool timeout expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	var timedOut bool
	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			timedOut = true
			w.stop()
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	metrics.UpdateWorkerActiveCount(0)
	if timedOut {
		return fmt.Errorf("worker pool shutdown: %w", shutdownCtx.Err())
	}
	return nil
}
