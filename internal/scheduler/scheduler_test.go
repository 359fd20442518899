package scheduler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/metaweather-update/internal/store"
	"github.com/i474232898/metaweather-update/internal/weather"
)

type recordingProvider struct {
	dates []time.Time
}

func (r *recordingProvider) Name() string { return "recording" }

func (r *recordingProvider) FetchObservations(_ context.Context, date time.Time) ([]weather.Observation, error) {
	r.dates = append(r.dates, date)
	id := int64(len(r.dates))
	d := date.Format(weather.DateLayout)
	return []weather.Observation{{ID: &id, ApplicableDate: &d}}, nil
}

func newScheduler(t *testing.T, at string) (*Scheduler, *recordingProvider, *store.SQLiteStore) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "weather_info.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p := &recordingProvider{}
	return New(at, weather.NewService(st, p)), p, st
}

func TestRunUpdatesToday(t *testing.T) {
	s, p, st := newScheduler(t, "06:00")
	s.now = func() time.Time { return time.Date(2013, time.April, 27, 6, 0, 3, 0, time.UTC) }

	s.run()
	s.run()

	require.Len(t, p.dates, 2)
	assert.Equal(t, "2013-04-27", p.dates[0].Format(weather.DateLayout))

	rows, err := st.ByDate(context.Background(), "2013-04-27")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestStartSchedulesDailyRun(t *testing.T) {
	s, _, _ := newScheduler(t, "23:59")
	require.NoError(t, s.Start())
	defer s.Stop()

	next := s.NextRun().UTC()
	assert.Equal(t, 23, next.Hour())
	assert.Equal(t, 59, next.Minute())
	assert.True(t, next.After(time.Now()))
}

func TestStartRejectsBadTime(t *testing.T) {
	s, _, _ := newScheduler(t, "25:99")

	assert.Error(t, s.Start())
}
