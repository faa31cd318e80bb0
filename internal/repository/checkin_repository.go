package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/model"
)

// CheckinRepository is the append-only event log. Validation of scan
// sequences is the caller's job; Append stores whatever it is given.
type CheckinRepository struct {
	db *gorm.DB
}

func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{db: db}
}

func (r *CheckinRepository) Append(ctx context.Context, event *model.CheckinEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *CheckinRepository) Get(ctx context.Context, id string) (*model.CheckinEvent, error) {
	var event model.CheckinEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// AmendComment updates the departure comment on an existing event.
// Returns gorm.ErrRecordNotFound when the event id is unknown.
func (r *CheckinRepository) AmendComment(ctx context.Context, id, comment string) error {
	return r.amend(ctx, id, "departure_comment", comment)
}

// AmendTour updates the tour on an existing event.
func (r *CheckinRepository) AmendTour(ctx context.Context, id, tour string) error {
	return r.amend(ctx, id, "tour", tour)
}

func (r *CheckinRepository) amend(ctx context.Context, id, column string, value string) error {
	result := r.db.WithContext(ctx).
		Model(&model.CheckinEvent{}).
		Where("id = ?", id).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// EventsForDriverOnDate returns the driver's events for the calendar day
// containing date, ordered by timestamp then id. This is the DailySequence
// the scan validator and status derivation work from.
func (r *CheckinRepository) EventsForDriverOnDate(ctx context.Context, driverID string, date time.Time) ([]model.CheckinEvent, error) {
	start, end := dayBounds(date)
	var events []model.CheckinEvent
	err := r.db.WithContext(ctx).
		Where("driver_id = ? AND timestamp >= ? AND timestamp < ?", driverID, start, end).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ListOnDate returns every event on the calendar day containing date.
func (r *CheckinRepository) ListOnDate(ctx context.Context, date time.Time) ([]model.CheckinEvent, error) {
	start, end := dayBounds(date)
	var events []model.CheckinEvent
	err := r.db.WithContext(ctx).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *CheckinRepository) ListAll(ctx context.Context) ([]model.CheckinEvent, error) {
	var events []model.CheckinEvent
	err := r.db.WithContext(ctx).
		Order("timestamp ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// PruneToToday drops every event not dated today (local time) and, in the
// same transaction, every incident report whose check-in no longer exists.
// Readers never observe the intermediate state with orphaned reports.
func (r *CheckinRepository) PruneToToday(ctx context.Context, now time.Time) (int64, error) {
	start, end := dayBounds(now)

	var removed int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.
			Where("timestamp < ? OR timestamp >= ?", start, end).
			Delete(&model.CheckinEvent{})
		if result.Error != nil {
			return result.Error
		}
		removed = result.RowsAffected

		return tx.
			Where("checkin_id NOT IN (?)", tx.Model(&model.CheckinEvent{}).Select("id")).
			Delete(&model.IncidentReport{}).Error
	})
	return removed, err
}

func dayBounds(t time.Time) (time.Time, time.Time) {
	local := t.Local()
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())
	return start, start.AddDate(0, 0, 1)
}
