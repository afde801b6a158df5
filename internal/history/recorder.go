// Package history keeps a bounded, ordered log of recent gesture detections.
package history

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/logging"
)

// DefaultCapacity is the number of entries kept when no capacity is given.
const DefaultCapacity = 50

// Entry is one recorded detection. Entries are never modified after creation.
type Entry struct {
	Gesture   gesture.Gesture `json:"gesture"`
	Distance  float64         `json:"distance"`
	Timestamp time.Time       `json:"timestamp"`
}

// Sink receives every entry after it has been appended to the log, for
// example to archive it. Sink errors are logged and never affect the log.
type Sink interface {
	Append(ctx context.Context, e Entry) error
}

// Recorder owns the history log. All methods are safe for concurrent use;
// appends and evictions are serialized under a single lock.
type Recorder struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	total    int64
	now      func() time.Time
	sink     Sink
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithClock sets the time source used for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recorder) {
		r.now = now
	}
}

// WithSink sets a Sink that is called for every recorded entry.
func WithSink(s Sink) Option {
	return func(r *Recorder) {
		r.sink = s
	}
}

// NewRecorder creates a Recorder holding at most capacity entries.
// A capacity <= 0 uses DefaultCapacity.
func NewRecorder(capacity int, opts ...Option) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	r := &Recorder{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
		now:      nowUTC,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Capacity returns the maximum number of retained entries.
func (r *Recorder) Capacity() int {
	return r.capacity
}

// Record appends an entry for g stamped with the current UTC time. NoHand and
// Unrecognized results are not recorded; ok is false in that case.
func (r *Recorder) Record(ctx context.Context, g gesture.Gesture, distance float64) (Entry, bool) {
	if !g.Detected() {
		return Entry{}, false
	}

	r.mu.Lock()
	e := Entry{
		Gesture:   g,
		Distance:  distance,
		Timestamp: r.now(),
	}
	r.appendLocked(e)
	r.total++
	r.mu.Unlock()

	if r.sink != nil {
		if err := r.sink.Append(ctx, e); err != nil {
			logging.From(ctx).Warn("failed to archive history entry",
				"gesture", e.Gesture.String(),
				"error", err,
			)
		}
	}

	return e, true
}

// appendLocked adds e at the tail, evicting the head entry when the log is
// full. The caller must hold r.mu.
func (r *Recorder) appendLocked(e Entry) {
	if len(r.entries) >= r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:r.capacity-1]
	}
	r.entries = append(r.entries, e)
}

// Restore seeds the log with previously recorded entries, oldest first.
// Only the newest Capacity entries are kept. Restored entries are not passed
// to the Sink and do not count towards Stats().Total.
func (r *Recorder) Restore(entries []Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		r.appendLocked(e)
	}
}

// Entries returns a snapshot of the log, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of retained entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Stats summarizes the log.
type Stats struct {
	// Total counts every entry recorded since start, including evicted ones.
	Total int64 `json:"total_detections"`
	// Retained is the number of entries currently in the log.
	Retained int `json:"retained"`
	// AverageDistance is the mean distance over retained entries rounded to
	// one decimal, 0 if empty.
	AverageDistance float64                 `json:"average_distance"`
	Gestures        map[gesture.Gesture]int `json:"gestures"`
	Oldest          *time.Time              `json:"oldest,omitempty"`
	Newest          *time.Time              `json:"newest,omitempty"`
}

// Stats computes summary statistics from a consistent snapshot of the log.
func (r *Recorder) Stats() Stats {
	r.mu.Lock()
	total := r.total
	entries := make([]Entry, len(r.entries))
	copy(entries, r.entries)
	r.mu.Unlock()

	s := Stats{
		Total:    total,
		Retained: len(entries),
		Gestures: make(map[gesture.Gesture]int),
	}
	if len(entries) == 0 {
		return s
	}

	var sum float64
	for _, e := range entries {
		sum += e.Distance
		s.Gestures[e.Gesture]++
	}
	s.AverageDistance = math.Round(sum/float64(len(entries))*10) / 10

	oldest := entries[0].Timestamp
	newest := entries[len(entries)-1].Timestamp
	s.Oldest = &oldest
	s.Newest = &newest

	return s
}
