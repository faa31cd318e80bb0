package excel

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/depot-checkins/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// CheckinLog renders the raw scan log for one day, one row per event.
func (g *Generator) CheckinLog(date time.Time, events []model.CheckinEvent) ([]byte, error) {
	file := excelize.NewFile()

	sheet := "Pointages"
	file.SetSheetName("Sheet1", sheet)

	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Date", "Heure", "Type", "Chauffeur", "ID", "Sous-traitant", "Tournée", "Tenue", "Note"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, e := range events {
		row := i + 2
		local := e.Timestamp.Local()

		uniform := ""
		if e.Kind == model.KindDeparture {
			uniform = "Non"
			if e.HasUniform {
				uniform = "Oui"
			}
		}

		set(fmt.Sprintf("A%d", row), local.Format("02/01/2006"))
		set(fmt.Sprintf("B%d", row), local.Format("15:04:05"))
		set(fmt.Sprintf("C%d", row), kindLabel(e.Kind))
		set(fmt.Sprintf("D%d", row), e.DriverName)
		set(fmt.Sprintf("E%d", row), e.DriverID)
		set(fmt.Sprintf("F%d", row), e.Subcontractor)
		set(fmt.Sprintf("G%d", row), e.Tour)
		set(fmt.Sprintf("H%d", row), uniform)
		set(fmt.Sprintf("I%d", row), e.DepartureComment)
	}

	_ = file.SetColWidth(sheet, "A", "B", 12)
	_ = file.SetColWidth(sheet, "C", "D", 24)
	_ = file.SetColWidth(sheet, "E", "G", 14)
	_ = file.SetColWidth(sheet, "I", "I", 40)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportSummary renders the incident-report workbook: a dashboard sheet,
// a per-subcontractor sheet and a per-return detail sheet.
func (g *Generator) ReportSummary(summary *model.ReportSummary) ([]byte, error) {
	file := excelize.NewFile()

	dashboard := "Tableau de bord"
	file.SetSheetName("Sheet1", dashboard)
	if err := g.writeDashboard(file, dashboard, summary); err != nil {
		return nil, err
	}

	subs := "Sous-traitants"
	file.NewSheet(subs)
	if err := g.writeSubStats(file, subs, summary); err != nil {
		return nil, err
	}

	details := "Retours"
	file.NewSheet(details)
	if err := g.writeReturns(file, details, summary); err != nil {
		return nil, err
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeDashboard(file *excelize.File, sheet string, summary *model.ReportSummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Date")
	set("B1", summary.Date.Local().Format("02/01/2006"))
	set("A2", "Chauffeurs uniques")
	set("B2", summary.UniqueDrivers)
	set("A3", "Tournées (départs)")
	set("B3", summary.TotalTours)
	set("A4", "Retours")
	set("B4", summary.TotalReturns)
	set("A5", "Taux de complétion, %")
	set("B5", summary.CompletionRate)
	set("A6", "Rapports d'incidents")
	set("B6", summary.TotalReports)
	set("A7", "Dévoyés (sacs)")
	set("B7", summary.DivertedSacs)
	set("A8", "Dévoyés (vracs)")
	set("B8", summary.DivertedVracs)

	_ = file.SetColWidth(sheet, "A", "A", 28)
	_ = file.SetColWidth(sheet, "B", "B", 16)
	return nil
}

func (g *Generator) writeSubStats(file *excelize.File, sheet string, summary *model.ReportSummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Sous-traitant", "Retours", "Rapports", "Incidents", "Saturations", "Manquants", "Refus", "Fermés"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, st := range summary.SubStats {
		row := i + 2
		set(fmt.Sprintf("A%d", row), st.Subcontractor)
		set(fmt.Sprintf("B%d", row), st.Tours)
		set(fmt.Sprintf("C%d", row), st.Reports)
		set(fmt.Sprintf("D%d", row), st.Incidents)
		set(fmt.Sprintf("E%d", row), st.Saturations)
		set(fmt.Sprintf("F%d", row), st.Missing)
		set(fmt.Sprintf("G%d", row), st.Refusals)
		set(fmt.Sprintf("H%d", row), st.Closed)
	}

	_ = file.SetColWidth(sheet, "A", "A", 22)
	return nil
}

func (g *Generator) writeReturns(file *excelize.File, sheet string, summary *model.ReportSummary) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	headers := []string{"Heure", "Chauffeur", "Sous-traitant", "Tournée", "Incidents", "Notes"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		set(cell, header)
	}

	for i, ret := range summary.Returns {
		row := i + 2
		set(fmt.Sprintf("A%d", row), ret.Event.Timestamp.Local().Format("15:04"))
		set(fmt.Sprintf("B%d", row), ret.Event.DriverName)
		set(fmt.Sprintf("C%d", row), ret.Event.Subcontractor)
		set(fmt.Sprintf("D%d", row), ret.Event.Tour)
		if ret.Report != nil {
			set(fmt.Sprintf("E%d", row), ret.Report.IncidentCount())
			set(fmt.Sprintf("F%d", row), ret.Report.Notes)
		} else {
			set(fmt.Sprintf("E%d", row), "RAS")
		}
	}

	_ = file.SetColWidth(sheet, "B", "B", 24)
	_ = file.SetColWidth(sheet, "F", "F", 40)
	return nil
}

func kindLabel(kind model.EventKind) string {
	switch kind {
	case model.KindDeparture:
		return "Départ Chauffeur"
	case model.KindReturn:
		return "Retour Tournée"
	default:
		return string(kind)
	}
}
