package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nurpe/depot-checkins/internal/model"
	"github.com/nurpe/depot-checkins/internal/repository"
)

// ReportService links incident reports to return events and aggregates
// them for the dashboard and exports.
type ReportService struct {
	reports  *repository.ReportRepository
	checkins *repository.CheckinRepository
}

func NewReportService(reports *repository.ReportRepository, checkins *repository.CheckinRepository) *ReportService {
	return &ReportService{reports: reports, checkins: checkins}
}

// Upsert stores a report against a return event, replacing any previous
// report for the same check-in.
func (s *ReportService) Upsert(ctx context.Context, report *model.IncidentReport) error {
	if report.CheckinID == "" {
		return fmt.Errorf("%w: checkin_id is required", ErrInvalidInput)
	}

	event, err := s.checkins.Get(ctx, report.CheckinID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: checkin %s", ErrNotFound, report.CheckinID)
		}
		return err
	}
	if event.Kind != model.KindReturn {
		return fmt.Errorf("%w: reports attach to return events only", ErrInvalidInput)
	}

	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	return s.reports.Upsert(ctx, report)
}

// ForCheckin looks up the report linked to a return event.
func (s *ReportService) ForCheckin(ctx context.Context, checkinID string) (*model.IncidentReport, error) {
	report, err := s.reports.ForCheckin(ctx, checkinID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: no report for checkin %s", ErrNotFound, checkinID)
		}
		return nil, err
	}
	return report, nil
}

func (s *ReportService) List(ctx context.Context) ([]model.IncidentReport, error) {
	return s.reports.List(ctx)
}

// Summarize aggregates a day's returns and their reports. It feeds both
// the Excel export and the PDF summary, so every figure derives from the
// one IncidentCount definition.
func (s *ReportService) Summarize(ctx context.Context, date time.Time) (*model.ReportSummary, error) {
	events, err := s.checkins.ListOnDate(ctx, date)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx)
	if err != nil {
		return nil, err
	}

	byCheckin := make(map[string]*model.IncidentReport, len(reports))
	for i := range reports {
		byCheckin[reports[i].CheckinID] = &reports[i]
	}

	summary := &model.ReportSummary{Date: date}
	unique := make(map[string]struct{})
	stats := make(map[string]*model.SubcontractorStat)

	for _, e := range events {
		unique[e.DriverID] = struct{}{}
		if e.Kind == model.KindDeparture {
			summary.TotalTours++
			continue
		}

		summary.TotalReturns++
		sub := e.Subcontractor
		if sub == "" {
			sub = "Non assigné"
		}
		st, ok := stats[sub]
		if !ok {
			st = &model.SubcontractorStat{Subcontractor: sub}
			stats[sub] = st
		}
		st.Tours++

		report := byCheckin[e.ID]
		summary.Returns = append(summary.Returns, model.ReturnWithReport{Event: e, Report: report})
		if report == nil {
			continue
		}

		summary.TotalReports++
		st.Reports++
		st.Incidents += report.IncidentCount()
		st.Saturations += len(report.SaturationLockers)
		st.Missing += len(report.MissingDeliveries)
		st.Refusals += len(report.Refusals)
		st.Closed += len(report.ClosedPudos)

		summary.DivertedSacs += report.Diverted.Sacs
		summary.DivertedVracs += report.Diverted.Vracs
	}

	summary.UniqueDrivers = len(unique)
	if summary.TotalTours > 0 {
		summary.CompletionRate = int(math.Round(float64(summary.TotalReturns) / float64(summary.TotalTours) * 100))
	}

	summary.SubStats = make([]model.SubcontractorStat, 0, len(stats))
	for _, st := range stats {
		summary.SubStats = append(summary.SubStats, *st)
	}
	sort.Slice(summary.SubStats, func(i, j int) bool {
		return summary.SubStats[i].Subcontractor < summary.SubStats[j].Subcontractor
	})

	return summary, nil
}
