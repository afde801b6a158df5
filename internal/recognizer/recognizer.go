// Package recognizer ties classification, distance estimation and history
// recording together for one frame of detected hands.
package recognizer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"

	"github.com/ayusman/mudra/internal/distance"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/history"
	"github.com/ayusman/mudra/internal/landmark"
	"github.com/ayusman/mudra/internal/logging"
)

// HandResult is the classification of a single detected hand.
type HandResult struct {
	Gesture    gesture.Gesture      `json:"gesture"`
	Rule       string               `json:"rule,omitempty"`
	Distance   float64              `json:"distance"`
	Handedness string               `json:"handedness,omitempty"`
	Score      float64              `json:"score,omitempty"`
	Fingers    gesture.FingerStates `json:"fingers"`
}

// Result is the outcome of processing one frame. The first hand drives
// Gesture, Distance and Landmarks; every hand is listed in Hands.
type Result struct {
	ID        string              `json:"id"`
	Gesture   gesture.Gesture     `json:"gesture"`
	Distance  float64             `json:"distance"`
	Landmarks []landmark.Landmark `json:"landmarks,omitempty"`
	Hands     []HandResult        `json:"hands,omitempty"`
	Timestamp time.Time           `json:"timestamp"`
}

// HandInput is an unvalidated hand as received from an external tracker.
type HandInput struct {
	Landmarks  []landmark.Landmark `json:"landmarks"`
	Handedness string              `json:"handedness,omitempty"`
	Score      float64             `json:"score,omitempty"`
}

// Publisher receives every processed result.
type Publisher interface {
	Publish(r Result)
}

// Publishers fans a result out to each publisher in order.
type Publishers []Publisher

// Publish implements Publisher.
func (ps Publishers) Publish(r Result) {
	for _, p := range ps {
		p.Publish(r)
	}
}

// Recognizer processes frames. It is safe for concurrent use.
type Recognizer struct {
	classifier *gesture.Classifier
	estimator  *distance.Estimator
	recorder   *history.Recorder
	publisher  Publisher
	now        func() time.Time
}

// Option configures a Recognizer.
type Option func(*Recognizer)

// WithPublisher sets the Publisher notified after each frame.
func WithPublisher(p Publisher) Option {
	return func(r *Recognizer) {
		r.publisher = p
	}
}

// WithClock sets the time source for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(r *Recognizer) {
		r.now = now
	}
}

// New creates a Recognizer. A nil classifier, estimator or recorder is
// replaced by one with default settings.
func New(c *gesture.Classifier, e *distance.Estimator, rec *history.Recorder, opts ...Option) *Recognizer {
	if c == nil {
		c = gesture.NewClassifier(gesture.DefaultThresholds())
	}
	if e == nil {
		e = distance.NewEstimator(distance.DefaultConfig())
	}
	if rec == nil {
		rec = history.NewRecorder(history.DefaultCapacity)
	}

	r := &Recognizer{
		classifier: c,
		estimator:  e,
		recorder:   rec,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Classifier returns the classifier in use.
func (r *Recognizer) Classifier() *gesture.Classifier {
	return r.classifier
}

// Recorder returns the history recorder results are written to.
func (r *Recognizer) Recorder() *history.Recorder {
	return r.recorder
}

// Process classifies the hands detected in a width x height frame. With no
// hands the result is NoHand at distance 0. The primary result is recorded
// in history unless it is NoHand or Unrecognized.
func (r *Recognizer) Process(ctx context.Context, hands []landmark.Hand, width, height int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, goerr.Wrap(err, "frame processing cancelled")
	}

	res := Result{
		ID:        uuid.NewString(),
		Gesture:   gesture.NoHand,
		Timestamp: r.now(),
	}

	for _, h := range hands {
		g, features := r.classifier.ClassifySet(h.Points)
		_, rule := r.classifier.Explain(features)
		res.Hands = append(res.Hands, HandResult{
			Gesture:    g,
			Rule:       rule,
			Distance:   r.estimator.Estimate(h.Points, width, height),
			Handedness: h.Handedness,
			Score:      h.Score,
			Fingers:    features.Fingers,
		})
	}

	if len(hands) > 0 {
		primary := res.Hands[0]
		res.Gesture = primary.Gesture
		res.Distance = primary.Distance
		res.Landmarks = hands[0].Points.Points()
	}

	logger := logging.From(ctx)
	logger.Debug("frame processed",
		"id", res.ID,
		"gesture", res.Gesture.String(),
		"distance", res.Distance,
		"hands", len(hands),
	)

	r.recorder.Record(ctx, res.Gesture, res.Distance)
	if r.publisher != nil {
		r.publisher.Publish(res)
	}

	return res, nil
}

// ProcessInput validates raw hands and then behaves like Process. Every hand
// must carry exactly 21 landmarks; otherwise nothing is recorded and the
// error wraps landmark.ErrInvalidLandmarkSet.
func (r *Recognizer) ProcessInput(ctx context.Context, inputs []HandInput, width, height int) (Result, error) {
	hands := make([]landmark.Hand, 0, len(inputs))
	for i, in := range inputs {
		set, err := landmark.NewSet(in.Landmarks)
		if err != nil {
			return Result{}, goerr.Wrap(err, "invalid hand", goerr.V("hand", i))
		}
		hands = append(hands, landmark.Hand{
			Points:     set,
			Handedness: in.Handedness,
			Score:      in.Score,
		})
	}
	return r.Process(ctx, hands, width, height)
}
