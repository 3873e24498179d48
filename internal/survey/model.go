package survey

import (
	"fmt"
	"sort"
	"strings"
)

// Emitter identifies a wireless access point. Key (the BSSID) is the identity,
// Label (the SSID) is for display only and may repeat across emitters.
type Emitter struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Measurement is a single signal strength reading of one emitter.
type Measurement struct {
	Key      string `json:"key"`      // Emitter key (BSSID)
	Label    string `json:"label"`    // Emitter label (SSID)
	Strength int    `json:"strength"` // Signal strength in dBm
}

// Position is a pixel coordinate on the reference floor plan.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// PointSample holds every emitter observed at one position, keyed by emitter key.
type PointSample map[string]Measurement

// NewPointSample creates a point sample from the given measurements.
// Later measurements of the same emitter overwrite earlier ones.
func NewPointSample(measurements ...Measurement) PointSample {
	ps := make(PointSample, len(measurements))
	for _, m := range measurements {
		ps.Add(m)
	}
	return ps
}

// Add records m, replacing any previous measurement of the same emitter.
func (ps PointSample) Add(m Measurement) {
	ps[m.Key] = m
}

// Keys returns the emitter keys in ascending order.
func (ps PointSample) Keys() []string {
	keys := make([]string, 0, len(ps))
	for k := range ps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Strengths returns the recorded strength of each requested emitter, in the
// order requested. A nil entry means the emitter was not observed here.
func (ps PointSample) Strengths(keys []string) []*int {
	out := make([]*int, len(keys))
	for i, k := range keys {
		if m, ok := ps[k]; ok {
			strength := m.Strength
			out[i] = &strength
		}
	}
	return out
}

// Text renders one "label key strength" line per emitter, sorted by key.
func (ps PointSample) Text() string {
	var sb strings.Builder
	for i, k := range ps.Keys() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		m := ps[k]
		fmt.Fprintf(&sb, "%s %s %d", m.Label, m.Key, m.Strength)
	}
	return sb.String()
}

// Entry pairs a position with the sample taken there.
type Entry struct {
	Position Position
	Sample   PointSample
}

// Sample is the strength of one emitter observed at one position.
type Sample struct {
	Position Position
	Strength int
}
