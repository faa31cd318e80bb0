package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurpe/depot-checkins/internal/model"
)

func TestRecordScan_UnknownDriver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C999", Kind: model.KindDeparture})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, MsgDriverNotFound, result.Message)
	assert.Nil(t, result.Driver)
}

func TestRecordScan_ReturnWithoutDeparture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki"})

	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindReturn})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, MsgNoDeparture, result.Message)
	require.NotNil(t, result.Driver)
	assert.Equal(t, "Karim Mekki", result.Driver.Name)
}

func TestRecordScan_StrictAlternation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki", Subcontractor: "BA", Tour: "9001"})

	// Departure accepted.
	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture, HasUniform: true})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, model.KindDeparture, result.Event.Kind)
	assert.True(t, result.Event.HasUniform)
	assert.Equal(t, "9001", result.Event.Tour)

	// Second departure rejected while out.
	f.clock.Advance(time.Minute)
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgAlreadyOut, result.Message)

	// Return accepted.
	f.clock.Advance(time.Minute)
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindReturn})
	require.NoError(t, err)
	require.True(t, result.Success)

	// Second return rejected.
	f.clock.Advance(time.Minute)
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindReturn})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgNoDeparture, result.Message)

	// The surviving sequence strictly alternates starting with a departure.
	events, err := f.checkins.EventsForDriverOnDate(ctx, "C001", f.clock.Now())
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, model.KindDeparture, events[0].Kind)
	for i := 1; i < len(events); i++ {
		assert.NotEqual(t, events[i-1].Kind, events[i].Kind, "events %d and %d share a kind", i-1, i)
	}
}

func TestRecordScan_RedepartureAfterReturn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "D2", Name: "Merakeb Merakeb"})

	f.clock.Set(time.Date(2026, 8, 28, 9, 0, 0, 0, time.Local))
	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "D2", Kind: model.KindDeparture})
	require.NoError(t, err)
	require.True(t, result.Success)

	f.clock.Set(time.Date(2026, 8, 28, 9, 30, 0, 0, time.Local))
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "D2", Kind: model.KindReturn})
	require.NoError(t, err)
	require.True(t, result.Success)

	// 09:31: out again after returning.
	f.clock.Set(time.Date(2026, 8, 28, 9, 31, 0, 0, time.Local))
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "D2", Kind: model.KindDeparture})
	require.NoError(t, err)
	assert.True(t, result.Success)

	// 09:32: still out, rejected.
	f.clock.Set(time.Date(2026, 8, 28, 9, 32, 0, 0, time.Local))
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "D2", Kind: model.KindDeparture})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgAlreadyOut, result.Message)
}

func TestRecordScan_NormalizedIdentifiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki"})

	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: " c001 ", Kind: model.KindDeparture})
	require.NoError(t, err)
	require.True(t, result.Success)
	// The event carries the stored roster ID, not the scanned form.
	assert.Equal(t, "C001", result.Event.DriverID)

	// The same driver resolved through another casing sees the same sequence.
	f.clock.Advance(time.Minute)
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgAlreadyOut, result.Message)
}

func TestRecordScan_YesterdayDoesNotCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki"})

	// Departure yesterday, never returned.
	f.clock.Set(time.Date(2026, 8, 27, 20, 0, 0, 0, time.Local))
	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture})
	require.NoError(t, err)
	require.True(t, result.Success)

	// A return the next morning finds no departure today.
	f.clock.Set(time.Date(2026, 8, 28, 8, 0, 0, 0, time.Local))
	result, err = f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindReturn})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, MsgNoDeparture, result.Message)
}

func TestRecordScan_InvalidKind(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RecordScan(context.Background(), ScanInput{DriverID: "C001", Kind: "LUNCH"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRecordScan_IncidentAlert(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki"})

	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Zero(t, f.notifier.count())

	f.clock.Advance(4 * time.Hour)
	result, err = f.service.RecordScan(ctx, ScanInput{
		DriverID:      "C001",
		Kind:          model.KindReturn,
		ReportedIssue: true,
		IssueDetails:  "locker bloqué",
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.True(t, result.Event.DriverReportedIssue)
	assert.Equal(t, "locker bloqué", result.Event.IssueDetails)

	require.Equal(t, 1, f.notifier.count())
	assert.Contains(t, f.notifier.bodies[0], "Karim Mekki")
	assert.Contains(t, f.notifier.bodies[0], "locker bloqué")
}

func TestRecordScan_IncidentAlertRespectsSettings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addDriver(t, model.Driver{ID: "C001", Name: "Karim Mekki"})

	settings, err := f.settings.GetOrCreate(ctx)
	require.NoError(t, err)
	settings.EnableIncidentAlerts = false
	require.NoError(t, f.settings.Update(ctx, settings))

	result, err := f.service.RecordScan(ctx, ScanInput{DriverID: "C001", Kind: model.KindDeparture})
	require.NoError(t, err)
	require.True(t, result.Success)

	f.clock.Advance(time.Hour)
	result, err = f.service.RecordScan(ctx, ScanInput{
		DriverID:      "C001",
		Kind:          model.KindReturn,
		ReportedIssue: true,
		IssueDetails:  "colis manquant",
	})
	require.NoError(t, err)
	require.True(t, result.Success)

	assert.Zero(t, f.notifier.count())
}

func TestAmend_NotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.AmendComment(ctx, "missing", "note"), ErrNotFound)
	assert.ErrorIs(t, f.service.AmendTour(ctx, "missing", "9001"), ErrNotFound)
}
