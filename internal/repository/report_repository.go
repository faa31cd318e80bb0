package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Upsert stores the report, replacing any existing report for the same
// check-in. The unique index on checkin_id backs the at-most-one-report
// invariant; replacement keeps the existing row rather than appending.
func (r *ReportRepository) Upsert(ctx context.Context, report *model.IncidentReport) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.IncidentReport
		err := tx.First(&existing, "checkin_id = ?", report.CheckinID).Error
		switch {
		case err == nil:
			report.ID = existing.ID
			return tx.Save(report).Error
		case err == gorm.ErrRecordNotFound:
			return tx.Create(report).Error
		default:
			return err
		}
	})
}

// ForCheckin returns the report linked to a return event, or
// gorm.ErrRecordNotFound when none was filed.
func (r *ReportRepository) ForCheckin(ctx context.Context, checkinID string) (*model.IncidentReport, error) {
	var report model.IncidentReport
	if err := r.db.WithContext(ctx).First(&report, "checkin_id = ?", checkinID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context) ([]model.IncidentReport, error) {
	var reports []model.IncidentReport
	if err := r.db.WithContext(ctx).Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}
