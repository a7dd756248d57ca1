package worker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	id   string
	err  error
	size int
	runs *atomic.Int32
}

func (j fakeJob) Process(ctx context.Context) error {
	j.runs.Add(1)
	return j.err
}

func (j fakeJob) ID() string { return j.id }

func (j fakeJob) Size() int { return j.size }

type recorder struct {
	mu      sync.Mutex
	started []string
	sizes   map[string]int
	errs    int
}

func (r *recorder) Started(_ int, job string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = append(r.started, job)
}

func (r *recorder) Done(_ int, job string, size int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sizes[job] = size
	if err != nil {
		r.errs++
	}
}

func TestPoolRun(t *testing.T) {
	var runs atomic.Int32
	rec := &recorder{sizes: map[string]int{}}
	pool := NewPoolWithProgress(context.Background(), 3, rec)

	var jobs []Job
	for i := 0; i < 10; i++ {
		j := fakeJob{id: fmt.Sprintf("frame-%d", i), size: i * 100, runs: &runs}
		if i == 4 {
			j.err = errors.New("decode failed")
		}
		jobs = append(jobs, j)
	}

	results := pool.Run(jobs)
	require.Len(t, results, 10)
	assert.Equal(t, int32(10), runs.Load())

	var failed []string
	for _, r := range results {
		if r.Error != nil {
			failed = append(failed, r.JobID)
		}
	}
	assert.Equal(t, []string{"frame-4"}, failed)

	sort.Strings(rec.started)
	assert.Len(t, rec.started, 10)
	assert.Equal(t, 1, rec.errs)
	assert.Equal(t, 900, rec.sizes["frame-9"])
	assert.Equal(t, 0, rec.sizes["frame-4"])
}

func TestPoolDefaultsToCPUCount(t *testing.T) {
	pool := NewPool(context.Background(), 0)
	assert.Positive(t, pool.WorkerCount())
	pool.Stop()
	pool.Stop()
}

func TestPoolCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var runs atomic.Int32
	pool := NewPool(ctx, 2)
	results := pool.Run([]Job{
		fakeJob{id: "a", runs: &runs},
		fakeJob{id: "b", runs: &runs},
		fakeJob{id: "c", runs: &runs},
	})

	assert.Len(t, results, 3)
	for _, r := range results {
		if r.Error != nil {
			assert.ErrorIs(t, r.Error, context.Canceled)
		}
	}
}

type blockingJob struct {
	id      string
	started chan<- struct{}
}

func (j blockingJob) Process(ctx context.Context) error {
	select {
	case j.started <- struct{}{}:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}

func (j blockingJob) ID() string { return j.id }

func TestPoolForceStopDuringRun(t *testing.T) {
	started := make(chan struct{}, 1)
	pool := NewPool(context.Background(), 1)

	var jobs []Job
	for i := 0; i < 20; i++ {
		jobs = append(jobs, blockingJob{id: fmt.Sprintf("frame-%d", i), started: started})
	}

	done := make(chan []Result)
	go func() { done <- pool.Run(jobs) }()

	<-started
	pool.ForceStop()
	results := <-done

	require.Len(t, results, 20)
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) && !errors.Is(r.Error, ErrStopped) {
			t.Errorf("job %s: unexpected error %v", r.JobID, r.Error)
		}
	}
}

func TestPoolSubmitAfterStop(t *testing.T) {
	var runs atomic.Int32
	pool := NewPool(context.Background(), 1)
	pool.Start()
	pool.Stop()

	assert.ErrorIs(t, pool.Submit(fakeJob{id: "late", runs: &runs}), ErrStopped)
	assert.Zero(t, runs.Load())
}

func TestPoolRunAfterStop(t *testing.T) {
	var runs atomic.Int32
	pool := NewPool(context.Background(), 2)
	pool.Stop()

	results := pool.Run([]Job{fakeJob{id: "a", runs: &runs}, fakeJob{id: "b", runs: &runs}})
	require.Len(t, results, 2)
	for _, r := range results {
		assert.ErrorIs(t, r.Error, ErrStopped)
	}
	assert.Zero(t, runs.Load())
}
