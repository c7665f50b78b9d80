package bulk

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgressTracker_Basic(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 4, 2)

	tracker.Start()
	assert.True(t, tracker.started, "should be started")

	tracker.Record(OutcomeSucceeded)
	tracker.Record(OutcomeDuplicate)
	tracker.Record(OutcomeFailed)
	tracker.Record(OutcomeSucceeded)

	output := buf.String()
	assert.Contains(t, output, "2/4 (50.0%)")
	assert.Contains(t, output, "4/4 (100.0%) ok=2 dup=1 failed=1")
}

func TestProgressTracker_ReportInterval(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 5)
	tracker.Start()

	for i := 0; i < 4; i++ {
		tracker.Record(OutcomeSucceeded)
	}
	assert.Empty(t, buf.String(), "no report before the interval")

	tracker.Record(OutcomeSucceeded)
	assert.Contains(t, buf.String(), "5/10")
}

func TestProgressTracker_Finish(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 3, 10)

	tracker.Start()
	tracker.Record(OutcomeFailed)
	tracker.Finish()

	output := buf.String()
	assert.Contains(t, output, "1/3")
	assert.True(t, strings.HasSuffix(output, "\n"), "finish should print newline")
}

func TestProgressTracker_ZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 0, 0)

	tracker.Start()
	tracker.Finish()

	assert.Contains(t, buf.String(), "0/0 (0.0%)")
}

func TestProgressTracker_NotStarted(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 10, 1)

	tracker.Record(OutcomeSucceeded)
	tracker.Finish()

	assert.Empty(t, buf.String())
	assert.Zero(t, tracker.Elapsed())
}

func TestProgressTracker_Elapsed(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	tracker := NewProgressTracker(&bytes.Buffer{}, 1, 1)
	tracker.now = func() time.Time { return current }

	tracker.Start()
	current = base.Add(3 * time.Second)
	assert.Equal(t, 3*time.Second, tracker.Elapsed())
}

func TestProgressTracker_Concurrent(t *testing.T) {
	var buf bytes.Buffer
	tracker := NewProgressTracker(&buf, 100, 50)
	tracker.Start()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Record(OutcomeSucceeded)
		}()
	}
	wg.Wait()
	tracker.Finish()

	assert.Contains(t, buf.String(), "100/100 (100.0%) ok=100")
}
