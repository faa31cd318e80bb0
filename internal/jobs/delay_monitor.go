// Package jobs holds the timer-driven sweeps that run alongside the HTTP
// surface.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nurpe/depot-checkins/internal/notify"
	"github.com/nurpe/depot-checkins/internal/repository"
	"github.com/nurpe/depot-checkins/internal/service"
)

// DelayMonitor sweeps the pending-return set and alerts once per session
// for each departure that stays out past the configured threshold. The
// notified set is deliberately in-memory only: a restart clears it, so a
// long-running kiosk never suppresses alerts forever across days, while a
// single session never repeats an alert every tick.
type DelayMonitor struct {
	checkins *service.CheckinService
	settings *repository.SettingsRepository
	notifier notify.Notifier
	log      zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	notified map[string]struct{}
}

func NewDelayMonitor(
	checkins *service.CheckinService,
	settings *repository.SettingsRepository,
	notifier notify.Notifier,
	log zerolog.Logger,
) *DelayMonitor {
	return &DelayMonitor{
		checkins: checkins,
		settings: settings,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		notified: make(map[string]struct{}),
	}
}

// WithClock overrides the time source, for tests.
func (m *DelayMonitor) WithClock(now func() time.Time) *DelayMonitor {
	m.now = now
	return m
}

// Sweep runs one pass and returns the number of alerts emitted. The
// comparison is strict: exactly threshold hours out does not trigger, one
// minute past it does.
func (m *DelayMonitor) Sweep(ctx context.Context) (int, error) {
	settings, err := m.settings.GetOrCreate(ctx)
	if err != nil {
		return 0, err
	}
	if !settings.MasterEnabled || !settings.EnableDelayAlerts {
		return 0, nil
	}

	now := m.now()
	pending, err := m.checkins.PendingReturns(ctx, now)
	if err != nil {
		return 0, err
	}

	threshold := time.Duration(settings.DelayThresholdHours) * time.Hour

	emitted := 0
	for _, p := range pending {
		// Strictly greater: exactly threshold hours out is not yet late.
		if now.Sub(p.Event.Timestamp) <= threshold {
			continue
		}
		if !m.markNotified(p.Event.ID) {
			continue
		}

		m.notifier.Emit(
			"⏳ Retard Important Détecté",
			fmt.Sprintf("Le chauffeur %s est sorti depuis plus de %d heures.", p.Event.DriverName, p.Hours),
			"delay-"+p.Event.ID,
		)
		emitted++
	}
	return emitted, nil
}

// markNotified records the event id, returning false when it was already
// alerted on in this session.
func (m *DelayMonitor) markNotified(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, seen := m.notified[eventID]; seen {
		return false
	}
	m.notified[eventID] = struct{}{}
	return true
}

// Start runs an immediate sweep, then one per interval until stop closes.
func (m *DelayMonitor) Start(ctx context.Context, interval time.Duration, stop <-chan struct{}) {
	m.runOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runOnce(ctx)
		case <-stop:
			m.log.Info().Msg("delay monitor stopped")
			return
		}
	}
}

func (m *DelayMonitor) runOnce(ctx context.Context) {
	emitted, err := m.Sweep(ctx)
	if err != nil {
		m.log.Error().Err(err).Msg("delay sweep failed")
		return
	}
	if emitted > 0 {
		m.log.Info().Int("alerts", emitted).Msg("delay sweep emitted alerts")
	}
}
