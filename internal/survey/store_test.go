package survey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AddOverwritesPosition(t *testing.T) {
	s := NewStore()
	pos := Position{X: 10, Y: 20}

	s.Add(pos, NewPointSample(
		Measurement{Key: "aa:aa:aa:aa:aa:01", Label: "First", Strength: -50},
		Measurement{Key: "aa:aa:aa:aa:aa:02", Label: "Second", Strength: -60},
	))
	s.Add(pos, NewPointSample(
		Measurement{Key: "aa:aa:aa:aa:aa:03", Label: "Third", Strength: -70},
	))

	require.Equal(t, 1, s.Len())

	ps, ok := s.Sample(pos)
	require.True(t, ok)
	assert.Len(t, ps, 1)
	assert.Equal(t, -70, ps["aa:aa:aa:aa:aa:03"].Strength)
	assert.NotContains(t, ps, "aa:aa:aa:aa:aa:01")

	emitters := s.Emitters()
	assert.Equal(t, []Emitter{{Key: "aa:aa:aa:aa:aa:03", Label: "Third"}}, emitters)
}

func TestStore_PositionsStableOrder(t *testing.T) {
	s := NewStore()
	positions := []Position{{5, 5}, {1, 1}, {3, 9}, {0, 0}}
	for i, pos := range positions {
		s.Add(pos, NewPointSample(Measurement{Key: "k", Label: "l", Strength: -i}))
	}
	// replacing keeps the original slot
	s.Add(Position{1, 1}, NewPointSample(Measurement{Key: "k", Label: "l", Strength: -99}))

	first := s.Positions()
	second := s.Positions()
	require.Equal(t, first, second)

	var got []Position
	for _, e := range first {
		got = append(got, e.Position)
	}
	assert.Equal(t, positions, got)
	assert.Equal(t, -99, first[1].Sample["k"].Strength)
}

func TestStore_EmittersSortedWithLastLabel(t *testing.T) {
	s := NewStore()
	s.Add(Position{0, 0}, NewPointSample(
		Measurement{Key: "cc", Label: "Gamma", Strength: -40},
		Measurement{Key: "aa", Label: "Old", Strength: -41},
	))
	s.Add(Position{1, 0}, NewPointSample(
		Measurement{Key: "bb", Label: "Alpha", Strength: -42},
		Measurement{Key: "aa", Label: "New", Strength: -43},
	))

	assert.Equal(t, []Emitter{
		{Key: "aa", Label: "New"},
		{Key: "bb", Label: "Alpha"},
		{Key: "cc", Label: "Gamma"},
	}, s.Emitters())

	assert.Equal(t, []Emitter{
		{Key: "bb", Label: "Alpha"},
		{Key: "cc", Label: "Gamma"},
		{Key: "aa", Label: "New"},
	}, s.EmittersByLabel())
}

func TestStore_EmittersLabelFollowsPositionOrder(t *testing.T) {
	s := NewStore()
	s.Add(Position{0, 0}, NewPointSample(Measurement{Key: "aa", Label: "Old", Strength: -40}))
	s.Add(Position{1, 0}, NewPointSample(Measurement{Key: "aa", Label: "Middle", Strength: -41}))
	// re-sampled position keeps its first slot, so its newer label loses
	s.Add(Position{0, 0}, NewPointSample(Measurement{Key: "aa", Label: "Newest", Strength: -42}))

	assert.Equal(t, []Emitter{{Key: "aa", Label: "Middle"}}, s.Emitters())
}

func TestPointSample_Strengths(t *testing.T) {
	ps := NewPointSample(
		Measurement{Key: "aa", Label: "A", Strength: -40},
		Measurement{Key: "bb", Label: "B", Strength: 0},
	)

	got := ps.Strengths([]string{"bb", "zz", "aa"})
	require.Len(t, got, 3)
	require.NotNil(t, got[0])
	assert.Equal(t, 0, *got[0])
	assert.Nil(t, got[1])
	require.NotNil(t, got[2])
	assert.Equal(t, -40, *got[2])
}

func TestPointSample_Text(t *testing.T) {
	ps := NewPointSample(
		Measurement{Key: "bb", Label: "Beta", Strength: -71},
		Measurement{Key: "aa", Label: "Alpha", Strength: -40},
	)
	assert.Equal(t, "Alpha aa -40\nBeta bb -71", ps.Text())
	assert.Equal(t, "", PointSample{}.Text())
}

func TestStore_SamplesFor(t *testing.T) {
	s := NewStore()
	s.Add(Position{0, 0}, NewPointSample(Measurement{Key: "aa", Strength: -40}))
	s.Add(Position{5, 0}, NewPointSample(Measurement{Key: "bb", Strength: -50}))
	s.Add(Position{9, 9}, NewPointSample(Measurement{Key: "aa", Strength: -60}))

	assert.Equal(t, []Sample{
		{Position: Position{0, 0}, Strength: -40},
		{Position: Position{9, 9}, Strength: -60},
	}, s.SamplesFor("aa"))
	assert.Empty(t, s.SamplesFor("missing"))
}
