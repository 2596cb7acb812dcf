package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"salesperf/internal/domain/scoring"
	"salesperf/internal/platform/ledger"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	rubricColors = map[string]lipgloss.Color{
		scoring.RubricaExcelente:          "10",
		scoring.RubricaBueno:              "10",
		scoring.RubricaAceptable:          "11",
		scoring.RubricaRegular:            "11",
		scoring.RubricaNecesitaMejorar:    "214",
		scoring.RubricaBajoDesempeno:      "9",
		scoring.RubricaBajoRendimiento:    "9",
		scoring.RubricaMedidasCorrectivas: "9",
	}
)

func rubric(label string) string {
	color, ok := rubricColors[label]
	if !ok {
		return label
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(label)
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func score(value float64) string {
	return strconv.FormatFloat(scoring.Round2(value), 'f', 2, 64)
}

type monthlyResult struct {
	Record monthlyRecord
	Score  scoring.MonthlyScore
}

func renderMonthly(w io.Writer, engine *scoring.Engine, results []monthlyResult) {
	headers := []string{"Employee", "Period"}
	for _, criterion := range engine.Criteria() {
		headers = append(headers, fmt.Sprintf("%s (%g)", criterion.ID, criterion.Weight))
	}
	headers = append(headers, "Extra", "Total", "Rubric")

	t := newTable(headers...)
	for _, result := range results {
		row := []string{result.Record.Employee, result.Record.Period}
		for _, criterion := range result.Score.Criteria {
			row = append(row, score(criterion.PonderedScore))
		}
		row = append(row, score(result.Score.ExtraPoints), score(result.Score.TotalScore), rubric(result.Score.Rubrica))
		t.Row(row...)
	}

	fmt.Fprintln(w, titleStyle.Render("Monthly scorecard"))
	fmt.Fprintln(w, t.String())
}

func renderAccumulated(w io.Writer, period scoring.DisplayPeriod, summaries []scoring.AccumulatedSummary) {
	t := newTable("Employee", "Evaluations", "Score", "Possible", "Percent", "Rubric")
	for _, summary := range summaries {
		summary = summary.Rounded()
		name := summary.Employee.FullName()
		if name == "" {
			name = summary.Employee.ID
		}
		t.Row(
			name,
			strconv.Itoa(summary.TotalEvaluaciones),
			score(summary.TotalScore),
			score(summary.TotalPosibles),
			score(summary.Porcentaje)+"%",
			rubric(summary.Rubrica),
		)
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Accumulated %d T%d", period.Year, period.Trimestre)))
	if len(summaries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no evaluations"))
		return
	}
	fmt.Fprintln(w, t.String())
}

func renderHistory(w io.Writer, entries []ledger.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no runs recorded"))
		return
	}
	t := newTable("Recorded", "Run", "Kind", "Employee", "Period", "Score", "Rubric")
	for _, entry := range entries {
		t.Row(
			entry.RecordedAt.Local().Format(time.DateTime),
			shortID(entry.RunID),
			entry.Kind,
			entry.Employee,
			entry.Period,
			score(entry.Score),
			rubric(entry.Rubrica),
		)
	}
	fmt.Fprintln(w, t.String())
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
