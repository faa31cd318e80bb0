package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/repository"
)

func setupTestDB(t *testing.T) *gorm.DB {
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
	return db
}

type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
	bodies []string
	tags   []string
}

func (f *fakeNotifier) Emit(title, body, tag string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	f.tags = append(f.tags, tag)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.titles)
}

// testClock is a settable time source for the services under test.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(start time.Time) *testClock {
	return &testClock{now: start}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fixture struct {
	db       *gorm.DB
	drivers  *repository.DriverRepository
	checkins *repository.CheckinRepository
	reports  *repository.ReportRepository
	settings *repository.SettingsRepository
	notifier *fakeNotifier
	clock    *testClock
	service  *CheckinService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := setupTestDB(t)
	f := &fixture{
		db:       db,
		drivers:  repository.NewDriverRepository(db, zerolog.Nop()),
		checkins: repository.NewCheckinRepository(db),
		reports:  repository.NewReportRepository(db),
		settings: repository.NewSettingsRepository(db),
		notifier: &fakeNotifier{},
		clock:    newTestClock(time.Date(2026, 8, 28, 8, 0, 0, 0, time.Local)),
	}
	f.service = NewCheckinService(f.drivers, f.checkins, f.settings, f.notifier, zerolog.Nop()).
		WithClock(f.clock.Now)
	return f
}

func (f *fixture) addDriver(t *testing.T, driver model.Driver) {
	t.Helper()
	require.NoError(t, f.drivers.Save(context.Background(), &driver))
}
