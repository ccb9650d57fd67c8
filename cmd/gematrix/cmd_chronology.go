package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"gematrix/cmd/gematrix/ui"
	"gematrix/internal/chronology"
	"gematrix/internal/logging"
)

var (
	referenceDate string
	matchesOnly   bool

	spanOpts = chronology.DefaultSpanOptions()
)

// chronologyCmd computes day counts for a set of entities
var chronologyCmd = &cobra.Command{
	Use:   "chronology [entities.yaml]",
	Short: "Count days between significant dates",
	Long: `Reads a YAML list of entities with dated events and counts the days
from each event to the reference date, from birth to death, to the next
eclipse and to the ritual calendar dates. Rows whose count matches a
control number are listed first.

Example entities file:
  - entity_name: Example
    entity_type: Person
    events:
      - date_type: Birth
        date_value: "1950-01-01"

Example:
  gematrix chronology entities.yaml --reference 2024-11-18 --matches-only`,
	Args: cobra.ExactArgs(1),
	RunE: runChronology,
}

// spanCmd measures the distance between two dates
var spanCmd = &cobra.Command{
	Use:   "span [start] [end]",
	Short: "Measure the span between two dates",
	Long: `Counts the days between two dates and breaks the span down into years,
months and days. The start date is counted and the end date is not unless
--include-start and --include-end say otherwise.

Example:
  gematrix span 2024-01-01 2024-11-18 --include-end`,
	Args: cobra.ExactArgs(2),
	RunE: runSpan,
}

// numerologyCmd reduces the digits of a date
var numerologyCmd = &cobra.Command{
	Use:   "numerology [date]",
	Short: "Reduce the digits of a date",
	Long: `Sums the digits of a date's month, day and year and reduces each sum,
keeping the master numbers 11, 22 and 33.

Example:
  gematrix numerology 2024-02-09
  gematrix numerology November 22, 2024`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNumerology,
}

func init() {
	chronologyCmd.Flags().StringVar(&referenceDate, "reference", "", "Reference date (defaults to the configured date, then today)")
	chronologyCmd.Flags().BoolVar(&matchesOnly, "matches-only", false, "Only show rows that match a control number")

	spanCmd.Flags().BoolVar(&spanOpts.IncludeStart, "include-start", spanOpts.IncludeStart, "Count the start date")
	spanCmd.Flags().BoolVar(&spanOpts.IncludeEnd, "include-end", spanOpts.IncludeEnd, "Count the end date")
}

func loadEntities(path string) ([]chronology.EntityChronology, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entities: %w", err)
	}
	var entities []chronology.EntityChronology
	if err := yaml.Unmarshal(data, &entities); err != nil {
		return nil, fmt.Errorf("failed to parse entities %s: %w", path, err)
	}
	return entities, nil
}

func resolveReference() string {
	if referenceDate != "" {
		return referenceDate
	}
	if cfg.Chronology.ReferenceDate != "" {
		return cfg.Chronology.ReferenceDate
	}
	return time.Now().UTC().Format("2006-01-02")
}

func runChronology(cmd *cobra.Command, args []string) error {
	entities, err := loadEntities(args[0])
	if err != nil {
		return err
	}
	ref := resolveReference()
	logger.Info("Analyzing chronology",
		zap.Int("entities", len(entities)),
		zap.String("reference", ref))

	ctx, cancel := commandContext(cmd)
	defer cancel()

	m := chronology.NewMatcher(
		chronology.WithWorkers(cfg.Chronology.Workers),
		chronology.WithChunkSize(cfg.Chronology.ChunkSize),
	)
	rows, err := m.AnalyzeContext(ctx, entities, ref)
	if err != nil {
		return err
	}
	logging.Chronology("%d rows for %d entities (reference %s)", len(rows), len(entities), ref)
	if matchesOnly {
		matched := rows[:0]
		for _, r := range rows {
			if r.IsControlMatch {
				matched = append(matched, r)
			}
		}
		rows = matched
	}

	return render(cmd.OutOrStdout(), rows, func(s ui.Styles) string {
		table := ui.NewTable("Day counts (reference "+ref+")",
			"Comparison", "Start", "End", "Days", "Mode", "Digit sum", "Zero drop", "Match")
		for _, r := range rows {
			mode := "exclusive"
			if r.IsInclusive {
				mode = "inclusive"
			}
			row := []string{
				r.Comparison, r.StartDate, r.EndDate,
				strconv.FormatInt(r.DayCount, 10), mode,
				strconv.FormatInt(r.DigitSum, 10),
				strconv.FormatInt(r.ZeroDropped, 10),
				r.ControlMatchValue,
			}
			if r.IsControlMatch {
				table.AddHighlightedRow(row...)
			} else {
				table.AddRow(row...)
			}
		}
		return table.View(s)
	})
}

func runSpan(cmd *cobra.Command, args []string) error {
	a, err := chronology.Span(args[0], args[1], spanOpts)
	if err != nil {
		return err
	}
	logger.Debug("Span computed", zap.Int64("days", a.TotalDays))

	return render(cmd.OutOrStdout(), a, func(s ui.Styles) string {
		match := "-"
		if a.IsControlMatch {
			match = s.Match.Render(optInt(a.ControlMatchValue))
		}
		view := ui.KeyValues(s, "Span "+a.Start.Format("2006-01-02")+" → "+a.End.Format("2006-01-02"), [][2]string{
			{"Total days", strconv.FormatInt(a.TotalDays, 10)},
			{"Calendar", fmt.Sprintf("%dy %dm %dd", a.Years, a.Months, a.Days)},
			{"Weeks", strconv.FormatInt(a.Weeks, 10)},
			{"Hours", strconv.FormatInt(a.Hours, 10)},
			{"Minutes", strconv.FormatInt(a.Minutes, 10)},
			{"Seconds", strconv.FormatInt(a.Seconds, 10)},
			{"Digit sum", strconv.FormatInt(a.DigitSum, 10)},
			{"Zero drop", strconv.FormatInt(a.ZeroDropped, 10)},
			{"Control match", match},
			{"Reversed", yesNo(a.Reversed)},
		})
		stats := ui.NewTable("Dates", "", "Weekday", "Moon", "Week", "Day", "Numerology")
		for _, st := range []struct {
			label string
			d     chronology.DateStats
		}{{"Start", a.StartStats}, {"End", a.EndStats}} {
			stats.AddRow(st.label, st.d.Weekday, st.d.MoonPhase,
				strconv.Itoa(st.d.WeekOfYear), strconv.Itoa(st.d.DayOfYear),
				strconv.FormatInt(st.d.Numerology, 10))
		}
		return view + "\n" + stats.View(s)
	})
}

func runNumerology(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)
	res, err := chronology.DateNumerology(text)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), res, func(s ui.Styles) string {
		table := ui.NewTable("Numerology for "+text, "Part", "Sum", "Reduced")
		for _, p := range []struct {
			label string
			r     chronology.Reduction
		}{{"Full date", res.FullDate}, {"Month + day", res.MonthDay}, {"Year", res.Year}} {
			table.AddRow(p.label, strconv.FormatInt(p.r.Sum, 10), strconv.FormatInt(p.r.Reduced, 10))
		}
		return table.View(s)
	})
}
