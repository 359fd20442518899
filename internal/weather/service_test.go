package weather_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/metaweather-update/internal/store"
	"github.com/i474232898/metaweather-update/internal/weather"
)

type fakeProvider struct {
	observations []weather.Observation
	err          error
	calls        []time.Time
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchObservations(_ context.Context, date time.Time) ([]weather.Observation, error) {
	f.calls = append(f.calls, date)
	return f.observations, f.err
}

func ptr[T any](v T) *T { return &v }

func observation(id int64, date, state string, temp float64) weather.Observation {
	return weather.Observation{
		ID:                   ptr(id),
		ApplicableDate:       ptr(date),
		WeatherStateName:     ptr(state),
		WeatherStateAbbr:     ptr(strings.ToLower(state[:1])),
		WindSpeed:            ptr(4.2),
		WindDirection:        ptr(180.0),
		WindDirectionCompass: ptr("S"),
		MinTemp:              ptr(temp - 3),
		MaxTemp:              ptr(temp + 3),
		TheTemp:              ptr(temp),
		AirPressure:          ptr(1013.5),
		Humidity:             ptr(64.0),
		Visibility:           ptr(10.2),
		Predictability:       ptr(int64(70)),
		Created:              ptr(date + "T06:00:00.000000Z"),
	}
}

func newService(t *testing.T, p weather.Provider) (*weather.Service, *store.SQLiteStore) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "weather_info.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return weather.NewService(st, p), st
}

var day = time.Date(2013, time.April, 27, 0, 0, 0, 0, time.UTC)

func TestUpdateAndDisplayStoresEveryObservation(t *testing.T) {
	p := &fakeProvider{observations: []weather.Observation{
		observation(1, "2013-04-27", "Showers", 9.5),
		observation(2, "2013-04-27", "Light Cloud", 11.25),
		observation(3, "2013-04-27", "Clear", 12),
	}}
	svc, st := newService(t, p)
	ctx := context.Background()

	var out bytes.Buffer
	res, err := svc.UpdateAndDisplay(ctx, day, &out)
	require.NoError(t, err)

	assert.True(t, res.TableCreated)
	assert.Equal(t, 3, res.Fetched)
	assert.Equal(t, 3, res.TotalRows)
	assert.Equal(t, "2013-04-27", res.Date)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, p.calls, 1)
	assert.True(t, day.Equal(p.calls[0]))

	rows, err := st.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, p.observations, rows)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, weather.FormatRow(p.observations[0]), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2 | 2013-04-27 | Light Cloud | l | 4.2 |"), lines[1])
}

func TestUpdateTwiceDuplicatesRows(t *testing.T) {
	p := &fakeProvider{observations: []weather.Observation{
		observation(1, "2013-04-27", "Showers", 9.5),
		observation(2, "2013-04-27", "Clear", 12),
	}}
	svc, st := newService(t, p)
	ctx := context.Background()

	first, err := svc.UpdateAndDisplay(ctx, day, &bytes.Buffer{})
	require.NoError(t, err)
	second, err := svc.UpdateAndDisplay(ctx, day, &bytes.Buffer{})
	require.NoError(t, err)

	assert.True(t, first.TableCreated)
	assert.False(t, second.TableCreated)
	assert.Equal(t, 4, second.TotalRows)

	n, err := st.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestUpdateFetchErrorLeavesStoreUntouched(t *testing.T) {
	p := &fakeProvider{err: errors.New("connection refused")}
	svc, st := newService(t, p)
	ctx := context.Background()

	var out bytes.Buffer
	_, err := svc.UpdateAndDisplay(ctx, day, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Empty(t, out.String())

	exists, err := st.TableExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("stdout closed") }

func TestUpdateRollsBackWhenDisplayFails(t *testing.T) {
	p := &fakeProvider{observations: []weather.Observation{observation(1, "2013-04-27", "Showers", 9.5)}}
	svc, st := newService(t, p)
	ctx := context.Background()

	_, err := svc.UpdateAndDisplay(ctx, day, failingWriter{})
	require.Error(t, err)

	exists, err := st.TableExists(ctx)
	require.NoError(t, err)
	assert.False(t, exists, "uncommitted schema must be discarded")
}

func TestUpdateWithNullFields(t *testing.T) {
	obs := observation(7, "2013-04-27", "Hail", 1)
	obs.TheTemp = nil
	obs.WindDirectionCompass = nil
	p := &fakeProvider{observations: []weather.Observation{obs}}
	svc, st := newService(t, p)
	ctx := context.Background()

	var out bytes.Buffer
	_, err := svc.UpdateAndDisplay(ctx, day, &out)
	require.NoError(t, err)

	rows, err := st.All(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].TheTemp)
	assert.Nil(t, rows[0].WindDirectionCompass)
	assert.Contains(t, out.String(), "| NULL |")
}

func TestSummaryAndObservations(t *testing.T) {
	p := &fakeProvider{observations: []weather.Observation{
		observation(1, "2013-04-27", "Showers", 9),
		observation(2, "2013-04-28", "Clear", 12),
		observation(3, "2013-04-27", "Showers", 11),
	}}
	svc, _ := newService(t, p)
	ctx := context.Background()

	_, err := svc.UpdateAndDisplay(ctx, day, &bytes.Buffer{})
	require.NoError(t, err)

	rows, err := svc.Observations(ctx, "2013-04-27")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), *rows[0].ID)
	assert.Equal(t, int64(3), *rows[1].ID)

	all, err := svc.Observations(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sum, err := svc.Summary(ctx, "2013-04-27")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Observations)
	assert.Equal(t, "Showers", sum.WeatherState)
	assert.InDelta(t, 10.0, sum.AvgTemp, 1e-9)

	_, err = svc.Summary(ctx, "2001-01-01")
	assert.ErrorIs(t, err, weather.ErrNoObservations)
}

func TestDropTable(t *testing.T) {
	p := &fakeProvider{observations: []weather.Observation{observation(1, "2013-04-27", "Showers", 9)}}
	svc, _ := newService(t, p)
	ctx := context.Background()

	_, err := svc.UpdateAndDisplay(ctx, day, &bytes.Buffer{})
	require.NoError(t, err)

	require.NoError(t, svc.DropTable(ctx))

	err = svc.Display(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, store.ErrTableMissing)
}

func TestUpdateWithoutProvider(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.UpdateAndDisplay(context.Background(), day, &bytes.Buffer{})
	assert.Error(t, err)
}
