package progress

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackerCounts(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, 2, 3)

	tr.Started(0, "kitchen")
	tr.Done(0, "kitchen", 192000, nil)
	tr.Started(1, "hall")
	tr.Done(1, "hall", 0, errors.New("boom"))
	tr.Done(7, "unknown worker", 10, nil)

	s := tr.Stats()
	assert.Equal(t, 3, s.TotalFrames)
	assert.Equal(t, 2, s.CompletedFrames)
	assert.Equal(t, 1, s.FailedFrames)
	assert.Equal(t, uint64(192000), s.Bytes)
	assert.Equal(t, 2, s.WorkerCount)
	assert.InDelta(t, 66.7, s.Percentage, 0.1)

	tr.Finish()
	out := buf.String()
	assert.Contains(t, out, "Rendered 1 frames (1 failed, 192 kB)")
	assert.Contains(t, out, "Worker 0: 1 frames")
	assert.Contains(t, out, "Worker 1: 1 frames")
}

func TestTrackerDisplay(t *testing.T) {
	var buf bytes.Buffer
	tr := NewTrackerTo(&buf, 1, 2)
	tr.Started(0, "a-frame-with-a-rather-long-name-indeed")

	out := buf.String()
	assert.Contains(t, out, "Frames: 0/2")
	assert.Contains(t, out, "Worker 0 rendering a-frame-with-a-rather-long-...")
}

func TestTrackerEmpty(t *testing.T) {
	tr := NewTrackerTo(&bytes.Buffer{}, 1, 0)
	assert.Equal(t, 100.0, tr.Stats().Percentage)
}
