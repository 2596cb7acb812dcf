// Package cli implements the scorecard command, an offline front end to the
// scoring engine with an optional local run ledger.
package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"salesperf/internal/domain/evaluations"
	"salesperf/internal/domain/scoring"
	"salesperf/internal/platform/ledger"
)

type app struct {
	v          *viper.Viper
	configFile string
	settings   Settings
	now        func() time.Time
}

func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New(), now: time.Now}

	root := &cobra.Command{
		Use:          "scorecard",
		Short:        "Score sales performance files offline",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings(a.v, a.configFile)
			if err != nil {
				return err
			}
			a.settings = settings
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.configFile, "config", "", "config file (default ./.scorecard.yaml)")
	root.PersistentFlags().String("ledger", "", "SQLite ledger path")
	_ = a.v.BindPFlag("ledger", root.PersistentFlags().Lookup("ledger"))

	root.AddCommand(a.scoreCommand(), a.accumulateCommand(), a.historyCommand())
	return root
}

func (a *app) scoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "score <file>",
		Short: "Score monthly KPI submissions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.settings.Engine()
			if err != nil {
				return fmt.Errorf("weights: %w", err)
			}
			records, err := readMonthly(args[0])
			if err != nil {
				return err
			}

			results := make([]monthlyResult, 0, len(records))
			entries := make([]ledger.Entry, 0, len(records))
			for _, record := range records {
				scored := engine.ScoreMonthly(record.Submission.Input())
				results = append(results, monthlyResult{Record: record, Score: scored})
				entries = append(entries, ledger.Entry{
					Kind:     ledger.KindMonthly,
					Employee: record.Employee,
					Period:   record.Period,
					Score:    scored.TotalScore,
					Rubrica:  scored.Rubrica,
					Source:   args[0],
				})
			}

			renderMonthly(cmd.OutOrStdout(), engine, results)
			return a.record(cmd, entries)
		},
	}
}

func (a *app) accumulateCommand() *cobra.Command {
	var year, quarter int
	cmd := &cobra.Command{
		Use:   "accumulate <file>",
		Short: "Roll weekly opportunity evaluations up per employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if year != 0 && (year < evaluations.MinYear || year > evaluations.MaxYear) {
				return fmt.Errorf("year must be between %d and %d", evaluations.MinYear, evaluations.MaxYear)
			}
			if quarter < 0 || quarter > 4 {
				return fmt.Errorf("quarter must be between 1 and 4")
			}
			scores, err := readWeekly(args[0])
			if err != nil {
				return err
			}

			period := scoring.ResolveDisplayPeriod(year, quarter, a.now())
			summaries := scoring.SortedSummaries(scoring.Accumulate(scores, period))
			renderAccumulated(cmd.OutOrStdout(), period, summaries)

			label := fmt.Sprintf("%d-T%d", period.Year, period.Trimestre)
			entries := make([]ledger.Entry, 0, len(summaries))
			for _, summary := range summaries {
				entries = append(entries, ledger.Entry{
					Kind:     ledger.KindAccumulated,
					Employee: summary.Employee.ID,
					Period:   label,
					Score:    summary.Porcentaje,
					Rubrica:  summary.Rubrica,
					Source:   args[0],
				})
			}
			return a.record(cmd, entries)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "display year (default current)")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "display quarter 1-4 (default current)")
	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var filter ledger.Filter
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List runs stored in the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.settings.Ledger == "" {
				return fmt.Errorf("no ledger configured, pass --ledger or set ledger in the config file")
			}
			book, err := ledger.Open(a.settings.Ledger)
			if err != nil {
				return err
			}
			defer book.Close()

			entries, err := book.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			renderHistory(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().StringVar(&filter.Employee, "employee", "", "only runs for this employee")
	cmd.Flags().StringVar(&filter.Kind, "kind", "", "monthly or accumulated")
	cmd.Flags().IntVar(&filter.Limit, "limit", 50, "maximum rows")
	return cmd
}

// record appends entries to the ledger when one is configured.
func (a *app) record(cmd *cobra.Command, entries []ledger.Entry) error {
	if a.settings.Ledger == "" || len(entries) == 0 {
		return nil
	}
	book, err := ledger.Open(a.settings.Ledger)
	if err != nil {
		return err
	}
	defer book.Close()

	runID, err := book.Record(cmd.Context(), entries)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render(fmt.Sprintf("recorded run %s (%d rows) in %s", shortID(runID), len(entries), a.settings.Ledger)))
	return nil
}
