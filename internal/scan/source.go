// Package scan provides the signal sources that feed a survey: anything able to
// report the emitters currently visible, with their signal strength.
package scan

import (
	"context"
	"sync"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

// Source takes a snapshot of all currently visible emitters.
type Source interface {
	Sample(ctx context.Context) (survey.PointSample, error)
}

// ReplaySource serves previously recorded samples in order, one per call.
type ReplaySource struct {
	mu      sync.Mutex
	samples []survey.PointSample
	next    int
}

// NewReplaySource creates a source replaying samples.
func NewReplaySource(samples ...survey.PointSample) *ReplaySource {
	return &ReplaySource{samples: samples}
}

// Sample returns the next recorded sample, or ErrExhausted when none is left.
func (r *ReplaySource) Sample(ctx context.Context) (survey.PointSample, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.next >= len(r.samples) {
		return nil, ErrExhausted
	}

	src := r.samples[r.next]
	r.next++

	ps := make(survey.PointSample, len(src))
	for k, m := range src {
		ps[k] = m
	}
	return ps, nil
}
