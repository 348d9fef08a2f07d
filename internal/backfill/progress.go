package backfill

import (
	"sync"
	"time"
)

// ProgressTracker tracks backfill progress across workers
type ProgressTracker struct {
	mu sync.RWMutex

	startedAt     time.Time
	totalListings int
	processed     int
	enriched      int
	epaMatched    int
	failed        int
	skipped       int
	currentVIN    string
	lastError     string
}

// NewProgressTracker creates a tracker for a run over totalListings
func NewProgressTracker(totalListings int) *ProgressTracker {
	return &ProgressTracker{
		startedAt:     time.Now(),
		totalListings: totalListings,
	}
}

// MarkEnriched records a successful enrichment; epaMatched notes whether the
// fuel economy registry contributed data.
func (p *ProgressTracker) MarkEnriched(epaMatched bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.enriched++
	if epaMatched {
		p.epaMatched++
	}
}

// MarkFailed records a failed enrichment
func (p *ProgressTracker) MarkFailed(err string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.failed++
	p.lastError = err
}

// MarkSkipped records a listing that needed no enrichment
func (p *ProgressTracker) MarkSkipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.skipped++
}

// SetCurrentVIN sets the VIN being processed
func (p *ProgressTracker) SetCurrentVIN(vin string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.currentVIN = vin
}

// ProgressSnapshot is a point-in-time view of a run
type ProgressSnapshot struct {
	StartedAt     time.Time
	Elapsed       time.Duration
	TotalListings int
	Processed     int
	Enriched      int
	EPAMatched    int
	Failed        int
	Skipped       int
	Percentage    float64
	CurrentVIN    string
	LastError     string
	Remaining     time.Duration
}

// Snapshot returns a snapshot of current progress with an ETA estimate
func (p *ProgressTracker) Snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	elapsed := time.Since(p.startedAt)

	percentage := 0.0
	if p.totalListings > 0 {
		percentage = float64(p.processed) / float64(p.totalListings) * 100
	}

	var remaining time.Duration
	if p.processed > 0 {
		avgPerListing := elapsed / time.Duration(p.processed)
		remaining = avgPerListing * time.Duration(p.totalListings-p.processed)
	}

	return ProgressSnapshot{
		StartedAt:     p.startedAt,
		Elapsed:       elapsed,
		TotalListings: p.totalListings,
		Processed:     p.processed,
		Enriched:      p.enriched,
		EPAMatched:    p.epaMatched,
		Failed:        p.failed,
		Skipped:       p.skipped,
		Percentage:    percentage,
		CurrentVIN:    p.currentVIN,
		LastError:     p.lastError,
		Remaining:     remaining,
	}
}
