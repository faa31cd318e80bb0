package pdf

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/depot-checkins/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// DailySummary renders the printable end-of-day sheet: headline counters,
// the drivers still out, and per-subcontractor incident totals.
func (g *Generator) DailySummary(summary *model.DailySummary) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	// Core fonts are cp1252; French labels need the translator.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, tr("Synthèse de la journée"), "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Générée le %s", summary.GeneratedAt.Local().Format("02/01/2006 à 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Activité"), "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Pointages: %d", summary.Stats.TotalPointages)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Chauffeurs uniques: %d", summary.Stats.UniqueDrivers)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("Retours en attente: %d", summary.Stats.PendingReturns)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Chauffeurs en tournée"), "", 1, "L", false, 0, "")
	if len(summary.Pending) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, tr("Aucun"), "", 1, "L", false, 0, "")
	} else {
		pendingHeaders := []string{"Chauffeur", "Sous-traitant", "Tournée", "Départ", "Durée"}
		pendingWidths := []float64{60, 30, 25, 30, 25}
		g.drawRow(pdf, tr, pendingHeaders, pendingWidths, true)
		for _, p := range summary.Pending {
			g.drawRow(pdf, tr, []string{
				p.Event.DriverName,
				p.Event.Subcontractor,
				p.Event.Tour,
				p.Event.Timestamp.Local().Format("15:04"),
				fmt.Sprintf("%dh %02dm", p.Hours, p.Minutes),
			}, pendingWidths, false)
		}
	}
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, tr("Incidents par sous-traitant"), "", 1, "L", false, 0, "")
	if len(summary.SubStats) == 0 {
		pdf.SetFont(g.fontName, "", 11)
		pdf.CellFormat(0, 6, tr("Aucun retour enregistré"), "", 1, "L", false, 0, "")
	} else {
		statHeaders := []string{"Sous-traitant", "Retours", "Rapports", "Incidents", "Saturations", "Manquants"}
		statWidths := []float64{50, 25, 25, 25, 28, 27}
		g.drawRow(pdf, tr, statHeaders, statWidths, true)
		for _, st := range summary.SubStats {
			g.drawRow(pdf, tr, []string{
				st.Subcontractor,
				fmt.Sprintf("%d", st.Tours),
				fmt.Sprintf("%d", st.Reports),
				fmt.Sprintf("%d", st.Incidents),
				fmt.Sprintf("%d", st.Saturations),
				fmt.Sprintf("%d", st.Missing),
			}, statWidths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) drawRow(pdf *gofpdf.Fpdf, tr func(string) string, cells []string, widths []float64, header bool) {
	if header {
		pdf.SetFont(g.fontName, "B", 10)
	} else {
		pdf.SetFont(g.fontName, "", 10)
	}
	for i, cell := range cells {
		pdf.CellFormat(widths[i], 7, tr(cell), "1", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)
}
