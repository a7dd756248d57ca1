package progress

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
)

// WorkerProgress tracks what a single worker is rendering
type WorkerProgress struct {
	WorkerID        int
	FramesCompleted int
	CurrentFrame    string
	LastUpdate      time.Time
}

// Tracker reports batch render progress across workers
type Tracker struct {
	mu          sync.RWMutex
	out         io.Writer
	workers     map[int]*WorkerProgress
	totalFrames int
	completed   int
	failed      int
	bytes       uint64
	startTime   time.Time
	lastDisplay time.Time
	displayRate time.Duration
	lines       int
}

// NewTracker creates a tracker printing to stdout
func NewTracker(workerCount, totalFrames int) *Tracker {
	return NewTrackerTo(os.Stdout, workerCount, totalFrames)
}

// NewTrackerTo creates a tracker printing to w
func NewTrackerTo(w io.Writer, workerCount, totalFrames int) *Tracker {
	t := &Tracker{
		out:         w,
		workers:     make(map[int]*WorkerProgress),
		totalFrames: totalFrames,
		startTime:   time.Now(),
		displayRate: 500 * time.Millisecond,
	}
	for i := 0; i < workerCount; i++ {
		t.workers[i] = &WorkerProgress{WorkerID: i, LastUpdate: t.startTime}
	}
	return t
}

// Started records that a worker picked up a frame
func (t *Tracker) Started(workerID int, frame string) {
	t.update(workerID, frame, func(w *WorkerProgress) {})
}

// Done records a finished frame and the size of its encoded output
func (t *Tracker) Done(workerID int, frame string, size int, err error) {
	t.update(workerID, frame, func(w *WorkerProgress) {
		w.FramesCompleted++
		w.CurrentFrame = ""
		t.completed++
		if err != nil {
			t.failed++
			return
		}
		t.bytes += uint64(size)
	})
}

func (t *Tracker) update(workerID int, frame string, fn func(*WorkerProgress)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := t.workers[workerID]
	if w == nil {
		return
	}
	w.CurrentFrame = frame
	w.LastUpdate = time.Now()
	fn(w)

	if time.Since(t.lastDisplay) >= t.displayRate {
		t.display()
		t.lastDisplay = time.Now()
	}
}

// display redraws the progress block in place
func (t *Tracker) display() {
	if t.lines > 0 {
		fmt.Fprintf(t.out, "\033[%dA", t.lines)
	}

	elapsed := time.Since(t.startTime)
	var eta time.Duration
	if t.completed > 0 {
		eta = elapsed / time.Duration(t.completed) * time.Duration(t.totalFrames-t.completed)
	}
	fmt.Fprintf(t.out, "\033[2K\rFrames: %d/%d (%.1f%%) | %s | Elapsed: %v | ETA: %v\n",
		t.completed, t.totalFrames, t.percentage(), humanize.Bytes(t.bytes),
		elapsed.Round(time.Second), eta.Round(time.Second))

	t.lines = 1
	for _, id := range t.workerIDs() {
		w := t.workers[id]
		if w.CurrentFrame == "" {
			continue
		}
		name := w.CurrentFrame
		if len(name) > 30 {
			name = name[:27] + "..."
		}
		fmt.Fprintf(t.out, "\033[2K  Worker %d rendering %s\n", w.WorkerID, name)
		t.lines++
	}
}

// Finish prints the final summary
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	elapsed := time.Since(t.startTime)
	fmt.Fprintf(t.out, "Rendered %d frames (%d failed, %s) in %v\n",
		t.completed-t.failed, t.failed, humanize.Bytes(t.bytes), elapsed.Round(time.Millisecond))
	for _, id := range t.workerIDs() {
		fmt.Fprintf(t.out, "  Worker %d: %d frames\n", id, t.workers[id].FramesCompleted)
	}
}

// Stats returns a snapshot of the counters
func (t *Tracker) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return Stats{
		TotalFrames:     t.totalFrames,
		CompletedFrames: t.completed,
		FailedFrames:    t.failed,
		Bytes:           t.bytes,
		WorkerCount:     len(t.workers),
		Elapsed:         time.Since(t.startTime),
		Percentage:      t.percentage(),
	}
}

func (t *Tracker) percentage() float64 {
	if t.totalFrames == 0 {
		return 100
	}
	return float64(t.completed) / float64(t.totalFrames) * 100
}

func (t *Tracker) workerIDs() []int {
	ids := make([]int, 0, len(t.workers))
	for id := range t.workers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Stats contains progress statistics
type Stats struct {
	TotalFrames     int
	CompletedFrames int
	FailedFrames    int
	Bytes           uint64
	WorkerCount     int
	Elapsed         time.Duration
	Percentage      float64
}
