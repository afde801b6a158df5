package history

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/ayusman/mudra/internal/gesture"
)

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	n := 0
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		ts := start.Add(time.Duration(n) * time.Second)
		n++
		return ts
	}
}

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestRecorder_Record(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(10, WithClock(stepClock(epoch)))

	e, ok := r.Record(ctx, gesture.Peace, 42.5)
	gt.True(t, ok)
	gt.Equal(t, e.Gesture, gesture.Peace)
	gt.Equal(t, e.Distance, 42.5)
	gt.Equal(t, e.Timestamp, epoch)
	gt.Equal(t, r.Len(), 1)
}

func TestRecorder_SkipsSentinels(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(10)

	_, ok := r.Record(ctx, gesture.NoHand, 0)
	gt.False(t, ok)

	_, ok = r.Record(ctx, gesture.Unrecognized, 55)
	gt.False(t, ok)

	gt.Equal(t, r.Len(), 0)
	gt.Equal(t, r.Stats().Total, int64(0))
}

func TestRecorder_FIFOEviction(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(50, WithClock(stepClock(epoch)))

	for i := 0; i < 60; i++ {
		r.Record(ctx, gesture.Fist, float64(i))
	}

	entries := r.Entries()
	gt.A(t, entries).Length(50)
	for i, e := range entries {
		// Entries 0-9 were evicted.
		gt.Equal(t, e.Distance, float64(i+10))
		gt.Equal(t, e.Timestamp, epoch.Add(time.Duration(i+10)*time.Second))
	}

	stats := r.Stats()
	gt.Equal(t, stats.Total, int64(60))
	gt.Equal(t, stats.Retained, 50)
}

func TestRecorder_DefaultCapacity(t *testing.T) {
	gt.Equal(t, NewRecorder(0).Capacity(), DefaultCapacity)
	gt.Equal(t, NewRecorder(-3).Capacity(), DefaultCapacity)
	gt.Equal(t, NewRecorder(7).Capacity(), 7)
}

func TestRecorder_EntriesIsSnapshot(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(3)
	r.Record(ctx, gesture.Fist, 10)

	snap := r.Entries()
	snap[0].Gesture = gesture.Rock
	r.Record(ctx, gesture.Pointing, 20)

	got := r.Entries()
	gt.Equal(t, got[0].Gesture, gesture.Fist)
	gt.A(t, snap).Length(1)
}

func TestRecorder_Export(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(2, WithClock(stepClock(epoch)))

	r.Record(ctx, gesture.OpenHand, 30)
	r.Record(ctx, gesture.ThumbsUp, 45.3)
	r.Record(ctx, gesture.Peace, 100)

	want := "timestamp,gesture,distance\n" +
		"2024-05-01T12:00:01.000000Z,Thumbs Up,45.3\n" +
		"2024-05-01T12:00:02.000000Z,Peace Sign,100.0\n"
	gt.Equal(t, r.Export(), want)
}

func TestRecorder_ExportEmpty(t *testing.T) {
	gt.Equal(t, NewRecorder(5).Export(), "timestamp,gesture,distance\n")
}

func TestRecorder_Stats(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(10, WithClock(stepClock(epoch)))

	empty := r.Stats()
	gt.Equal(t, empty.Retained, 0)
	gt.Equal(t, empty.AverageDistance, 0.0)
	gt.True(t, empty.Oldest == nil)

	r.Record(ctx, gesture.Fist, 20)
	r.Record(ctx, gesture.Fist, 30)
	r.Record(ctx, gesture.Rock, 31)

	s := r.Stats()
	gt.Equal(t, s.Retained, 3)
	gt.Equal(t, s.AverageDistance, 27.0)
	gt.Equal(t, s.Gestures[gesture.Fist], 2)
	gt.Equal(t, s.Gestures[gesture.Rock], 1)
	gt.Equal(t, *s.Oldest, epoch)
	gt.Equal(t, *s.Newest, epoch.Add(2*time.Second))
}

func TestRecorder_Restore(t *testing.T) {
	r := NewRecorder(3)

	var seed []Entry
	for i := 0; i < 5; i++ {
		seed = append(seed, Entry{
			Gesture:   gesture.CallMe,
			Distance:  float64(i),
			Timestamp: epoch.Add(time.Duration(i) * time.Minute),
		})
	}
	r.Restore(seed)

	got := r.Entries()
	gt.A(t, got).Length(3)
	gt.Equal(t, got[0].Distance, 2.0)
	gt.Equal(t, got[2].Distance, 4.0)
	gt.Equal(t, r.Stats().Total, int64(0))
}

type memorySink struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

func (s *memorySink) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}

func TestRecorder_Sink(t *testing.T) {
	ctx := context.Background()

	t.Run("receives recorded entries", func(t *testing.T) {
		sink := &memorySink{}
		r := NewRecorder(1, WithSink(sink))

		r.Record(ctx, gesture.Fist, 10)
		r.Record(ctx, gesture.NoHand, 0)
		r.Record(ctx, gesture.Rock, 20)

		gt.A(t, sink.entries).Length(2)
		gt.Equal(t, sink.entries[1].Gesture, gesture.Rock)
		gt.Equal(t, r.Len(), 1)
	})

	t.Run("sink failure does not affect the log", func(t *testing.T) {
		sink := &memorySink{err: errors.New("disk full")}
		r := NewRecorder(5, WithSink(sink))

		_, ok := r.Record(ctx, gesture.Fist, 10)
		gt.True(t, ok)
		gt.Equal(t, r.Len(), 1)
	})
}

func TestRecorder_Concurrent(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(50)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				r.Record(ctx, gesture.OpenHand, 50)
				_ = r.Export()
			}
		}()
	}
	wg.Wait()

	gt.Equal(t, r.Len(), 50)
	gt.Equal(t, r.Stats().Total, int64(800))

	lines := strings.Split(strings.TrimSuffix(r.Export(), "\n"), "\n")
	gt.A(t, lines).Length(51)
}

func TestRecorder_TimestampsAreOrdered(t *testing.T) {
	ctx := context.Background()
	r := NewRecorder(20, WithClock(stepClock(epoch)))

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				r.Record(ctx, gesture.Pointing, 25)
			}
		}()
	}
	wg.Wait()

	entries := r.Entries()
	for i := 1; i < len(entries); i++ {
		gt.True(t, entries[i].Timestamp.After(entries[i-1].Timestamp))
	}
}
