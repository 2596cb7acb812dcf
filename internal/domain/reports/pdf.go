package reports

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
)

const dateLayout = "2006-01-02"

func newDocument(title string) (*gofpdf.Fpdf, func(string) string) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(title), false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(title))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	return pdf, tr
}

func tableHeader(pdf *gofpdf.Fpdf, tr func(string) string, widths []float64, labels []string) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 8, tr(label), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Helvetica", "", 10)
}

// WriteMonthlyPDF renders one monthly evaluation.
func WriteMonthlyPDF(w io.Writer, ev evaluations.MonthlyEvaluation) error {
	pdf, tr := newDocument("Evaluación mensual de desempeño comercial")

	pdf.Cell(0, 7, tr(fmt.Sprintf("Empleado: %s", ev.Employee.FullName())))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Fecha: %s", ev.EvaluationDate.Format(dateLayout)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Trimestre: Q%d %d", ev.Quarter, ev.Year))
	pdf.Ln(10)

	widths := []float64{62, 30, 30, 22, 36}
	tableHeader(pdf, tr, widths, []string{"Criterio", "Objetivo", "Logrado", "Peso", "Puntaje"})
	for _, c := range ev.Criteria {
		pdf.CellFormat(widths[0], 7, tr(c.Label), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%.2f", c.Objective), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", c.Achieved), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.0f", c.Weight), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", scoring.Round2(c.PonderedScore)), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	pdf.Cell(0, 7, fmt.Sprintf("Subtotal: %.2f", scoring.Round2(ev.SubTotal)))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Puntos extra: %.2f", scoring.Round2(ev.ExtraPoints)))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Puntaje total: %.2f", scoring.Round2(ev.TotalScore)))
	pdf.Ln(8)
	pdf.Cell(0, 8, tr(fmt.Sprintf("Rúbrica: %s", ev.Rubrica)))

	return pdf.Output(w)
}

// WriteAccumulatedPDF renders the roll-up table for a period.
func WriteAccumulatedPDF(w io.Writer, report evaluations.AccumulatedReport) error {
	pdf, tr := newDocument("Reporte acumulado de evaluaciones semanales")

	pdf.Cell(0, 7, fmt.Sprintf("Periodo: %s a %s", report.From.Format(dateLayout), report.To.AddDate(0, 0, -1).Format(dateLayout)))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Año: %d  Trimestre: %d", report.Year, report.Trimestre)))
	pdf.Ln(10)

	widths := []float64{60, 26, 26, 26, 22, 30}
	tableHeader(pdf, tr, widths, []string{"Empleado", "Evaluaciones", "Puntaje", "Posibles", "%", "Rúbrica"})
	if len(report.Summaries) == 0 {
		pdf.CellFormat(190, 7, tr("Sin evaluaciones en el periodo"), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	for _, summary := range report.Summaries {
		pdf.CellFormat(widths[0], 7, tr(summary.Employee.FullName()), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", summary.TotalEvaluaciones), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", scoring.Round2(summary.TotalScore)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, fmt.Sprintf("%.2f", scoring.Round2(summary.TotalPosibles)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[4], 7, fmt.Sprintf("%.2f", scoring.Round2(summary.Porcentaje)), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, tr(summary.Rubrica), "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	return pdf.Output(w)
}

// SaveAccumulatedPDF writes the roll-up into dir and returns the file path.
func SaveAccumulatedPDF(dir string, report evaluations.AccumulatedReport, at time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("accumulated-%d-Q%d-%s.pdf", report.Year, report.Trimestre, at.UTC().Format("20060102T150405"))
	filePath := filepath.Join(dir, name)

	file, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	if err := WriteAccumulatedPDF(file, report); err != nil {
		_ = file.Close()
		_ = os.Remove(filePath)
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return filePath, nil
}
