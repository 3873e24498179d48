package survey

import (
	"sort"
)

// Store accumulates the samples of one survey session.
//
// A position holds at most one PointSample: adding a sample at a known position
// discards the previous one. Store is not safe for concurrent use; callers that
// share it must serialize access themselves.
type Store struct {
	samples map[Position]PointSample
	order   []Position // first-insertion order, keeps Positions stable
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		samples: make(map[Position]PointSample),
	}
}

// Add inserts ps at pos, replacing whatever was stored there before.
func (s *Store) Add(pos Position, ps PointSample) {
	if ps == nil {
		ps = PointSample{}
	}
	if _, ok := s.samples[pos]; !ok {
		s.order = append(s.order, pos)
	}
	s.samples[pos] = ps
}

// Len returns the number of sampled positions.
func (s *Store) Len() int {
	return len(s.order)
}

// Sample returns the sample stored at pos.
func (s *Store) Sample(pos Position) (PointSample, bool) {
	ps, ok := s.samples[pos]
	return ps, ok
}

// Positions returns all stored samples. The order is the order in which each
// position was first added and does not change between calls.
func (s *Store) Positions() []Entry {
	entries := make([]Entry, 0, len(s.order))
	for _, pos := range s.order {
		entries = append(entries, Entry{Position: pos, Sample: s.samples[pos]})
	}
	return entries
}

// Emitters returns every distinct emitter seen in the store, sorted by key.
// When an emitter was seen under several labels, the label at the position
// that comes last in Positions order is reported. Re-sampling a position does
// not move it, so that label is not necessarily the newest one.
func (s *Store) Emitters() []Emitter {
	seen := make(map[string]string)
	for _, pos := range s.order {
		for key, m := range s.samples[pos] {
			seen[key] = m.Label
		}
	}

	emitters := make([]Emitter, 0, len(seen))
	for key, label := range seen {
		emitters = append(emitters, Emitter{Key: key, Label: label})
	}
	sort.Slice(emitters, func(i, j int) bool {
		return emitters[i].Key < emitters[j].Key
	})
	return emitters
}

// EmittersByLabel returns Emitters ordered for a selection list: by label,
// then by key for emitters sharing a label.
func (s *Store) EmittersByLabel() []Emitter {
	emitters := s.Emitters()
	sort.SliceStable(emitters, func(i, j int) bool {
		return emitters[i].Label < emitters[j].Label
	})
	return emitters
}

// SamplesFor returns every position at which the emitter was observed, in
// Positions order. The result is empty for an unknown emitter.
func (s *Store) SamplesFor(key string) []Sample {
	var out []Sample
	for _, pos := range s.order {
		if m, ok := s.samples[pos][key]; ok {
			out = append(out, Sample{Position: pos, Strength: m.Strength})
		}
	}
	return out
}
