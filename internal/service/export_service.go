package service

import (
	"context"
	"fmt"
	"time"

	"github.com/nurpe/depot-checkins/internal/model"
)

type ExcelGenerator interface {
	CheckinLog(date time.Time, events []model.CheckinEvent) ([]byte, error)
	ReportSummary(summary *model.ReportSummary) ([]byte, error)
}

type PDFGenerator interface {
	DailySummary(summary *model.DailySummary) ([]byte, error)
}

// ExportService produces the downloadable artifacts. Generators only
// render; all figures are derived here and in ReportService so exports
// match the live dashboard.
type ExportService struct {
	checkins *CheckinService
	reports  *ReportService
	excel    ExcelGenerator
	pdf      PDFGenerator
	now      func() time.Time
}

func NewExportService(checkins *CheckinService, reports *ReportService, excel ExcelGenerator, pdf PDFGenerator) *ExportService {
	return &ExportService{
		checkins: checkins,
		reports:  reports,
		excel:    excel,
		pdf:      pdf,
		now:      time.Now,
	}
}

type ExportResult struct {
	FileName string
	Content  []byte
}

func (s *ExportService) ExportCheckins(ctx context.Context, date time.Time) (*ExportResult, error) {
	events, err := s.checkins.ListOnDate(ctx, date)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.CheckinLog(date, events)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("Pointages_%s.xlsx", date.Format("2006-01-02")),
		Content:  content,
	}, nil
}

func (s *ExportService) ExportReports(ctx context.Context, date time.Time) (*ExportResult, error) {
	summary, err := s.reports.Summarize(ctx, date)
	if err != nil {
		return nil, err
	}
	content, err := s.excel.ReportSummary(summary)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("Rapports_%s.xlsx", date.Format("2006-01-02")),
		Content:  content,
	}, nil
}

func (s *ExportService) ExportDailySummary(ctx context.Context) (*ExportResult, error) {
	now := s.now()

	stats, err := s.checkins.StatsToday(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.checkins.PendingReturns(ctx, now)
	if err != nil {
		return nil, err
	}
	reportSummary, err := s.reports.Summarize(ctx, now)
	if err != nil {
		return nil, err
	}

	content, err := s.pdf.DailySummary(&model.DailySummary{
		GeneratedAt: now,
		Stats:       *stats,
		Pending:     pending,
		SubStats:    reportSummary.SubStats,
	})
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName: fmt.Sprintf("Synthese_%s.pdf", now.Format("2006-01-02")),
		Content:  content,
	}, nil
}
