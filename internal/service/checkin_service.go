package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/notify"
	"github.com/nurpe/depot-checkins/internal/repository"
)

// Operator-facing messages, surfaced verbatim on the kiosk screen.
const (
	MsgDriverNotFound = "Chauffeur non trouvé."
	MsgAlreadyOut     = "Le chauffeur est déjà en tournée."
	MsgNoDeparture    = "Aucun départ enregistré pour ce chauffeur aujourd'hui."
	MsgScanValid      = "Scan valide."
)

// CheckinService is the scan validator. Status is never stored: every
// decision is recomputed from the driver's event sequence for the day, so
// stored state can never drift from history.
type CheckinService struct {
	drivers  *repository.DriverRepository
	checkins *repository.CheckinRepository
	settings *repository.SettingsRepository
	notifier notify.Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewCheckinService(
	drivers *repository.DriverRepository,
	checkins *repository.CheckinRepository,
	settings *repository.SettingsRepository,
	notifier notify.Notifier,
	log zerolog.Logger,
) *CheckinService {
	return &CheckinService{
		drivers:  drivers,
		checkins: checkins,
		settings: settings,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *CheckinService) WithClock(now func() time.Time) *CheckinService {
	s.now = now
	return s
}

type ScanInput struct {
	DriverID         string
	Kind             model.EventKind
	HasUniform       bool
	ReportedIssue    bool
	IssueDetails     string
	DepartureComment string
}

// ScanResult is returned for every scan, accepted or not. Rejections are
// ordinary outcomes the operator can retry, never errors.
type ScanResult struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Driver  *model.Driver       `json:"driver,omitempty"`
	Event   *model.CheckinEvent `json:"event,omitempty"`
}

// RecordScan resolves the driver, validates the scan against today's
// event sequence and, on acceptance, appends a new event. The sequence
// invariant it enforces: kinds strictly alternate within a day, starting
// with a departure.
func (s *CheckinService) RecordScan(ctx context.Context, input ScanInput) (*ScanResult, error) {
	if input.Kind != model.KindDeparture && input.Kind != model.KindReturn {
		return nil, fmt.Errorf("%w: unknown scan kind %q", ErrInvalidInput, input.Kind)
	}

	driver, err := s.drivers.FindByScan(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}
	if driver == nil {
		return &ScanResult{Success: false, Message: MsgDriverNotFound}, nil
	}

	now := s.now()
	last, err := s.lastEventToday(ctx, driver.ID, now)
	if err != nil {
		return nil, err
	}

	switch input.Kind {
	case model.KindDeparture:
		if last != nil && last.Kind == model.KindDeparture {
			return &ScanResult{Success: false, Message: MsgAlreadyOut, Driver: driver}, nil
		}
	case model.KindReturn:
		if last == nil || last.Kind == model.KindReturn {
			return &ScanResult{Success: false, Message: MsgNoDeparture, Driver: driver}, nil
		}
	}

	event := &model.CheckinEvent{
		ID:            uuid.NewString(),
		DriverID:      driver.ID,
		DriverName:    driver.Name,
		Subcontractor: driver.Subcontractor,
		Tour:          driver.Tour,
		Timestamp:     now,
		Kind:          input.Kind,
	}
	switch input.Kind {
	case model.KindDeparture:
		event.HasUniform = input.HasUniform
		event.DepartureComment = input.DepartureComment
	case model.KindReturn:
		event.DriverReportedIssue = input.ReportedIssue
		if input.ReportedIssue {
			event.IssueDetails = input.IssueDetails
		}
	}

	if err := s.checkins.Append(ctx, event); err != nil {
		return nil, err
	}

	if input.Kind == model.KindReturn && input.ReportedIssue {
		s.emitIncidentAlert(ctx, driver, event)
	}

	s.log.Info().
		Str("driver_id", driver.ID).
		Str("kind", string(input.Kind)).
		Str("event_id", event.ID).
		Msg("scan accepted")

	return &ScanResult{Success: true, Message: MsgScanValid, Driver: driver, Event: event}, nil
}

// lastEventToday returns the maximum-timestamp event in the driver's
// sequence for the day containing now, or nil when the day is empty.
func (s *CheckinService) lastEventToday(ctx context.Context, driverID string, now time.Time) (*model.CheckinEvent, error) {
	events, err := s.checkins.EventsForDriverOnDate(ctx, driverID, now)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}

	last := events[0]
	for _, e := range events[1:] {
		if e.Timestamp.After(last.Timestamp) ||
			(e.Timestamp.Equal(last.Timestamp) && e.ID > last.ID) {
			last = e
		}
	}
	return &last, nil
}

func (s *CheckinService) emitIncidentAlert(ctx context.Context, driver *model.Driver, event *model.CheckinEvent) {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("could not load notification settings for incident alert")
		return
	}
	if !settings.MasterEnabled || !settings.EnableIncidentAlerts {
		return
	}

	details := event.IssueDetails
	if details == "" {
		details = "Pas de détails"
	}
	s.notifier.Emit(
		"⚠️ Incident Signalé",
		fmt.Sprintf("Le chauffeur %s a signalé: %q", driver.Name, details),
		"incident-"+event.ID,
	)
}

// AmendComment updates the departure comment on an event.
func (s *CheckinService) AmendComment(ctx context.Context, eventID, comment string) error {
	if err := s.checkins.AmendComment(ctx, eventID, comment); err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: checkin %s", ErrNotFound, eventID)
		}
		return err
	}
	return nil
}

// AmendTour updates the tour recorded on an event.
func (s *CheckinService) AmendTour(ctx context.Context, eventID, tour string) error {
	if err := s.checkins.AmendTour(ctx, eventID, tour); err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: checkin %s", ErrNotFound, eventID)
		}
		return err
	}
	return nil
}

// PruneToToday drops events from previous days along with orphaned
// incident reports.
func (s *CheckinService) PruneToToday(ctx context.Context) (int64, error) {
	return s.checkins.PruneToToday(ctx, s.now())
}

// ListOnDate exposes the day's log for the admin screens and exports.
func (s *CheckinService) ListOnDate(ctx context.Context, date time.Time) ([]model.CheckinEvent, error) {
	return s.checkins.ListOnDate(ctx, date)
}
