// pkg/progress/progress.go - deployment progress values and reporting helpers.

package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
)

// Progress is a snapshot of one deployment run.
type Progress struct {
	Current int64
	Total   int64
}

// Fraction returns Current/Total in [0,1]. A zero total reads as complete.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 1
	}
	f := float64(p.Current) / float64(p.Total)
	if f > 1 {
		return 1
	}
	return f
}

// Percent renders the fraction as "42.00%".
func (p Progress) Percent() string {
	return fmt.Sprintf("%.2f%%", p.Fraction()*100)
}

// Done reports whether the run reached its total.
func (p Progress) Done() bool {
	return p.Current >= p.Total
}

// Sink receives progress snapshots, possibly from a background goroutine.
type Sink func(Progress)

// Tracker forwards snapshots to a sink while keeping them monotonic:
// Current never decreases and never exceeds Total.
type Tracker struct {
	mu      sync.Mutex
	total   int64
	current int64
	sink    Sink
}

// NewTracker creates a tracker for a run of total units.
func NewTracker(total int64, sink Sink) *Tracker {
	return &Tracker{total: total, sink: sink}
}

// Add advances the run by n units and reports the new snapshot.
func (t *Tracker) Add(n int64) {
	t.mu.Lock()
	t.update(t.current + n)
}

// Set moves the run to current. Values behind the last report are ignored.
func (t *Tracker) Set(current int64) {
	t.mu.Lock()
	t.update(current)
}

// update is entered with t.mu held and releases it before calling the sink.
func (t *Tracker) update(current int64) {
	if current > t.total {
		current = t.total
	}
	if current < t.current {
		t.mu.Unlock()
		return
	}
	t.current = current
	snap := Progress{Current: t.current, Total: t.total}
	t.mu.Unlock()

	if t.sink != nil {
		t.sink(snap)
	}
}

// Finish reports Current == Total.
func (t *Tracker) Finish() {
	t.Set(t.total)
}

// Snapshot returns the last reported state.
func (t *Tracker) Snapshot() Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Progress{Current: t.current, Total: t.total}
}

// Reader wraps an io.Reader and counts bytes read into a tracker.
type Reader struct {
	reader  io.Reader
	read    int64
	tracker *Tracker
}

// NewReader counts bytes read from r into tracker.
func NewReader(r io.Reader, tracker *Tracker) *Reader {
	return &Reader{reader: r, tracker: tracker}
}

// Read implements io.Reader.
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	if n > 0 {
		atomic.AddInt64(&r.read, int64(n))
		r.tracker.Add(int64(n))
	}
	return n, err
}

// Bar draws a fixed-width text progress bar for console output.
func Bar(p Progress, width int) string {
	filled := int(p.Fraction() * float64(width))
	return "[" + strings.Repeat("█", filled) + strings.Repeat("·", width-filled) + "] " + p.Percent()
}

// FormatBytes renders a byte count with a binary unit.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
