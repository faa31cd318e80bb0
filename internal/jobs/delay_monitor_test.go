package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/repository"
	"github.com/nurpe/depot-checkins/internal/service"
)

type capturingNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	tags   []string
}

func (n *capturingNotifier) Emit(title, body, tag string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	n.bodies = append(n.bodies, body)
	n.tags = append(n.tags, tag)
}

func (n *capturingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.titles)
}

type monitorFixture struct {
	checkins *service.CheckinService
	settings *repository.SettingsRepository
	notifier *capturingNotifier
	monitor  *DelayMonitor

	mu  sync.Mutex
	now time.Time
}

func (f *monitorFixture) clockNow() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *monitorFixture) setNow(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

func newMonitorFixture(t *testing.T) *monitorFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Driver{},
		&model.CheckinEvent{},
		&model.IncidentReport{},
		&model.NotificationSettings{},
	))

	f := &monitorFixture{
		notifier: &capturingNotifier{},
		settings: repository.NewSettingsRepository(db),
		now:      time.Date(2026, 8, 28, 8, 0, 0, 0, time.Local),
	}

	drivers := repository.NewDriverRepository(db, zerolog.Nop())
	require.NoError(t, drivers.Save(context.Background(), &model.Driver{ID: "C001", Name: "Karim Mekki"}))

	f.checkins = service.NewCheckinService(
		drivers,
		repository.NewCheckinRepository(db),
		f.settings,
		f.notifier,
		zerolog.Nop(),
	).WithClock(f.clockNow)

	f.monitor = NewDelayMonitor(f.checkins, f.settings, f.notifier, zerolog.Nop()).
		WithClock(f.clockNow)
	return f
}

func (f *monitorFixture) depart(t *testing.T, driverID string) {
	t.Helper()
	result, err := f.checkins.RecordScan(context.Background(), service.ScanInput{
		DriverID: driverID,
		Kind:     model.KindDeparture,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
}

func (f *monitorFixture) setThreshold(t *testing.T, hours int) {
	t.Helper()
	ctx := context.Background()
	settings, err := f.settings.GetOrCreate(ctx)
	require.NoError(t, err)
	settings.DelayThresholdHours = hours
	require.NoError(t, f.settings.Update(ctx, settings))
}

func TestSweep_ThresholdBoundary(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()
	f.setThreshold(t, 2)

	f.depart(t, "C001")
	departedAt := f.clockNow()

	// Exactly two hours out: not yet late.
	f.setNow(departedAt.Add(2 * time.Hour))
	emitted, err := f.monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Zero(t, f.notifier.count())

	// One minute past the threshold: late.
	f.setNow(departedAt.Add(2*time.Hour + time.Minute))
	emitted, err = f.monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)

	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, "⏳ Retard Important Détecté", f.notifier.titles[0])
	assert.Contains(t, f.notifier.bodies[0], "Karim Mekki")
	assert.Contains(t, f.notifier.bodies[0], "2 heures")
}

func TestSweep_OneAlertPerSession(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()
	f.setThreshold(t, 1)

	f.depart(t, "C001")
	f.setNow(f.clockNow().Add(90 * time.Minute))

	for i := 0; i < 5; i++ {
		_, err := f.monitor.Sweep(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.notifier.count())

	// A fresh monitor models a restarted kiosk and alerts again.
	restarted := NewDelayMonitor(f.checkins, f.settings, f.notifier, zerolog.Nop()).
		WithClock(f.clockNow)
	emitted, err := restarted.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, emitted)
	assert.Equal(t, 2, f.notifier.count())
}

func TestSweep_ReturnedDriverNotAlerted(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()
	f.setThreshold(t, 1)

	f.depart(t, "C001")
	f.setNow(f.clockNow().Add(30 * time.Minute))

	result, err := f.checkins.RecordScan(ctx, service.ScanInput{DriverID: "C001", Kind: model.KindReturn})
	require.NoError(t, err)
	require.True(t, result.Success)

	f.setNow(f.clockNow().Add(3 * time.Hour))
	emitted, err := f.monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Zero(t, f.notifier.count())
}

func TestSweep_DisabledSettings(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()
	f.setThreshold(t, 1)

	f.depart(t, "C001")
	f.setNow(f.clockNow().Add(2 * time.Hour))

	settings, err := f.settings.GetOrCreate(ctx)
	require.NoError(t, err)
	settings.EnableDelayAlerts = false
	require.NoError(t, f.settings.Update(ctx, settings))

	emitted, err := f.monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, emitted)

	// The master switch overrides an enabled delay toggle.
	settings.EnableDelayAlerts = true
	settings.MasterEnabled = false
	require.NoError(t, f.settings.Update(ctx, settings))

	emitted, err = f.monitor.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, emitted)
	assert.Zero(t, f.notifier.count())
}

func TestSweep_TagIdentifiesDeparture(t *testing.T) {
	f := newMonitorFixture(t)
	ctx := context.Background()
	f.setThreshold(t, 1)

	f.depart(t, "C001")
	f.setNow(f.clockNow().Add(2 * time.Hour))

	_, err := f.monitor.Sweep(ctx)
	require.NoError(t, err)

	require.Equal(t, 1, f.notifier.count())
	assert.Contains(t, f.notifier.tags[0], "delay-")
}
