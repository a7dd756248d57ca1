package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"
)

// ErrStopped is returned by Submit once the pool no longer accepts jobs
var ErrStopped = errors.New("worker pool stopped")

// Job is a unit of work, usually one frame to render
type Job interface {
	Process(ctx context.Context) error
	ID() string
}

// Sized is implemented by jobs that report the size of their output
type Sized interface {
	Size() int
}

// Result contains the outcome of processing a job
type Result struct {
	JobID string
	Error error
}

// Progress receives job lifecycle events
type Progress interface {
	Started(workerID int, job string)
	Done(workerID int, job string, size int, err error)
}

// Pool manages a pool of worker goroutines
type Pool struct {
	workerCount int
	jobs        chan Job
	results     chan Result
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	progress    Progress
	stopOnce    sync.Once

	// mu guards closed and the closing of jobs against concurrent Submit
	mu     sync.RWMutex
	closed bool
}

// NewPool creates a worker pool bound to ctx. A non-positive count uses one
// worker per CPU.
func NewPool(ctx context.Context, workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(ctx)
	return &Pool{
		workerCount: workerCount,
		jobs:        make(chan Job, workerCount*2),
		results:     make(chan Result, workerCount*2),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// NewPoolWithProgress creates a worker pool reporting to p
func NewPoolWithProgress(ctx context.Context, workerCount int, p Progress) *Pool {
	pool := NewPool(ctx, workerCount)
	pool.progress = p
	return pool
}

// Start begins processing jobs
func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop stops accepting jobs, waits for queued jobs to finish and closes the
// results channel. It is safe to call from several goroutines.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.jobs)
		p.mu.Unlock()

		p.wg.Wait()
		close(p.results)
		p.cancel()
	})
}

// ForceStop cancels running jobs, fails every queued job and then stops the
// pool like Stop.
func (p *Pool) ForceStop() {
	p.cancel()
	p.Stop()
}

// Submit adds a job to the queue. It blocks while the queue is full; when the
// pool is cancelled the job is reported as failed instead. Submitting to a
// stopped pool returns ErrStopped.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrStopped
	}

	select {
	case p.jobs <- job:
	case <-p.ctx.Done():
		p.results <- Result{JobID: job.ID(), Error: p.ctx.Err()}
	}
	return nil
}

// Run submits every job, waits for all of them and returns their results in
// completion order. Jobs refused because the pool was stopped meanwhile are
// reported with ErrStopped.
func (p *Pool) Run(jobs []Job) []Result {
	p.Start()

	collected := make(chan []Result, 1)
	go func() {
		var out []Result
		for r := range p.results {
			out = append(out, r)
		}
		collected <- out
	}()

	var refused []Result
	for _, job := range jobs {
		if err := p.Submit(job); err != nil {
			refused = append(refused, Result{JobID: job.ID(), Error: err})
		}
	}
	p.Stop()
	return append(<-collected, refused...)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.results <- p.process(id, job)

		case <-p.ctx.Done():
			// drain so Stop does not wait on a full queue
			for job := range p.jobs {
				p.results <- Result{JobID: job.ID(), Error: p.ctx.Err()}
			}
			return
		}
	}
}

func (p *Pool) process(id int, job Job) Result {
	if p.progress != nil {
		p.progress.Started(id, job.ID())
	}

	err := job.Process(p.ctx)

	if p.progress != nil {
		size := 0
		if s, ok := job.(Sized); ok && err == nil {
			size = s.Size()
		}
		p.progress.Done(id, job.ID(), size, err)
	}
	return Result{JobID: job.ID(), Error: err}
}

// WorkerCount returns the number of workers in the pool
func (p *Pool) WorkerCount() int {
	return p.workerCount
}
