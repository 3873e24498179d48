package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roman-kulish/wifi-survey/internal/survey"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()

	s := NewSqliteStore(filepath.Join(t.TempDir(), "survey.db"))
	t.Cleanup(func() {
		assert.NoError(t, s.Close())
	})
	return s
}

func measurement(key, label string, strength int) survey.Measurement {
	return survey.Measurement{Key: key, Label: label, Strength: strength}
}

func TestSqliteStore_Sessions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first, err := s.CreateSession(ctx, "ground floor", "plans/ground.png")
	require.NoError(t, err)
	second, err := s.CreateSession(ctx, "garden", "")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	sess, err := s.Session(ctx, first)
	require.NoError(t, err)
	assert.Equal(t, "ground floor", sess.Name)
	require.NotNil(t, sess.FloorPlan)
	assert.Equal(t, "plans/ground.png", *sess.FloorPlan)
	assert.False(t, sess.StartTime.IsZero())

	sessions, err := s.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, first, sessions[0].ID)
	assert.Equal(t, second, sessions[1].ID)
	assert.Nil(t, sessions[1].FloorPlan)

	_, err = s.Session(ctx, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = s.ReadSurvey(ctx, 42)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSqliteStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "office", "")
	require.NoError(t, err)

	want := survey.NewStore()
	want.Add(survey.Position{X: 120, Y: 40}, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -41),
		measurement("00:11:22:33:44:55", "Guest, 5G", -77),
	))
	want.Add(survey.Position{X: 0, Y: 0}, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -63),
	))
	want.Add(survey.Position{X: 300, Y: 210}, survey.PointSample{})

	require.NoError(t, s.StoreSurvey(ctx, id, want))

	got, err := s.ReadSurvey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, want.Positions(), got.Positions())
	assert.Equal(t, want.Emitters(), got.Emitters())
}

func TestSqliteStore_StoreSampleReplacesPosition(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "office", "")
	require.NoError(t, err)

	a := survey.Position{X: 10, Y: 10}
	b := survey.Position{X: 20, Y: 10}

	require.NoError(t, s.StoreSample(ctx, id, a, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -50),
		measurement("00:11:22:33:44:55", "Guest", -80),
	)))
	require.NoError(t, s.StoreSample(ctx, id, b, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -55),
	)))
	require.NoError(t, s.StoreSample(ctx, id, a, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -45),
	)))

	got, err := s.ReadSurvey(ctx, id)
	require.NoError(t, err)

	entries := got.Positions()
	require.Len(t, entries, 2)
	// replaced position keeps its slot
	assert.Equal(t, a, entries[0].Position)
	assert.Equal(t, survey.NewPointSample(measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -45)), entries[0].Sample)
	assert.Equal(t, b, entries[1].Position)
}

func TestSqliteStore_ReadSurveyOptions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "office", "")
	require.NoError(t, err)

	src := survey.NewStore()
	src.Add(survey.Position{X: 0, Y: 0}, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -40),
		measurement("00:11:22:33:44:55", "Guest", -70),
	))
	src.Add(survey.Position{X: 100, Y: 0}, survey.NewPointSample(
		measurement("00:11:22:33:44:55", "Guest", -60),
	))
	src.Add(survey.Position{X: 100, Y: 100}, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -80),
	))
	require.NoError(t, s.StoreSurvey(ctx, id, src))

	got, err := s.ReadSurvey(ctx, id, WithEmitters("AA:BB:CC:DD:EE:FF"))
	require.NoError(t, err)
	assert.Equal(t, 2, got.Len())
	assert.Equal(t, []survey.Emitter{{Key: "AA:BB:CC:DD:EE:FF", Label: "HomeNet"}}, got.Emitters())

	got, err = s.ReadSurvey(ctx, id, WithRegion(50, 0, 100, 50))
	require.NoError(t, err)
	require.Equal(t, 1, got.Len())
	ps, ok := got.Sample(survey.Position{X: 100, Y: 0})
	require.True(t, ok)
	assert.Equal(t, -60, ps["00:11:22:33:44:55"].Strength)

	got, err = s.ReadSurvey(ctx, id, WithEmitters("00:11:22:33:44:55"), WithRegion(0, 0, 100, 100))
	require.NoError(t, err)
	assert.Len(t, got.SamplesFor("00:11:22:33:44:55"), 2)
	assert.Empty(t, got.SamplesFor("AA:BB:CC:DD:EE:FF"))
}

func TestSqliteStore_UnknownSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	err := s.StoreSample(ctx, 7, survey.Position{X: 1, Y: 1}, survey.NewPointSample(
		measurement("AA:BB:CC:DD:EE:FF", "HomeNet", -50),
	))
	assert.Error(t, err)
}

func TestSqliteStore_EmptySession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.CreateSession(ctx, "empty", "")
	require.NoError(t, err)

	require.NoError(t, s.StoreSurvey(ctx, id, survey.NewStore()))

	got, err := s.ReadSurvey(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSqliteStore_CloseTwice(t *testing.T) {
	s := NewSqliteStore(filepath.Join(t.TempDir(), "survey.db"))
	_, err := s.CreateSession(context.Background(), "x", "")
	require.NoError(t, err)

	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
