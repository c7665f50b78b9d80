package bulk

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Outcome classifies the result of ingesting one file.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeDuplicate
	OutcomeFailed
)

// ProgressTracker tracks and reports bulk ingestion progress.
// It is safe for concurrent use by pool workers.
type ProgressTracker struct {
	writer         io.Writer
	total          int
	reportInterval int
	lastReported   int
	counts         [3]int
	startTime      time.Time
	started        bool
	now            func() time.Time
	mu             sync.Mutex
}

// NewProgressTracker creates a tracker for total files that reports every
// reportInterval files.
func NewProgressTracker(writer io.Writer, total, reportInterval int) *ProgressTracker {
	if reportInterval <= 0 {
		reportInterval = 1
	}
	return &ProgressTracker{
		writer:         writer,
		total:          total,
		reportInterval: reportInterval,
		now:            time.Now,
	}
}

// Start begins tracking progress.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.startTime = p.now()
	p.started = true
	p.counts = [3]int{}
	p.lastReported = 0
}

// Record counts one finished file.
func (p *ProgressTracker) Record(o Outcome) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || o < OutcomeSucceeded || o > OutcomeFailed {
		return
	}
	p.counts[o]++

	if done := p.done(); done-p.lastReported >= p.reportInterval {
		p.report()
		p.lastReported = done
	}
}

// Finish prints the final progress line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns the time elapsed since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return p.now().Sub(p.startTime)
}

func (p *ProgressTracker) done() int {
	return p.counts[OutcomeSucceeded] + p.counts[OutcomeDuplicate] + p.counts[OutcomeFailed]
}

// report prints the current progress. Must be called with lock held.
func (p *ProgressTracker) report() {
	done := p.done()
	rate := 0.0
	if elapsed := p.now().Sub(p.startTime).Seconds(); elapsed > 0 {
		rate = float64(done) / elapsed
	}

	percentage := 0.0
	if p.total > 0 {
		percentage = float64(done) / float64(p.total) * 100.0
	}

	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) ok=%d dup=%d failed=%d - %.2f docs/s",
		done, p.total, percentage,
		p.counts[OutcomeSucceeded], p.counts[OutcomeDuplicate], p.counts[OutcomeFailed], rate)
}
