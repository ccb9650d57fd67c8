// Package chronology counts the days between dated events and flags counts
// that hit a fixed watchlist of control numbers.
//
// Every comparison pair produces two rows, an exclusive and an inclusive
// count. The pairs are the full Cartesian product of entities, events and
// targets (reference date, astronomical event, ritual dates per year) with
// no deduplication. Dates that fail to parse drop their pair silently.
package chronology

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gematrix/internal/logging"
)

const (
	// DefaultWorkers bounds the goroutines used by AnalyzeContext.
	DefaultWorkers = 4
	// DefaultChunkSize is the number of entities handed to one worker.
	DefaultChunkSize = 16
)

// Matcher builds day-count tables. It is safe for concurrent use.
type Matcher struct {
	workers   int
	chunkSize int
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithWorkers sets the parallelism of AnalyzeContext.
func WithWorkers(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithChunkSize sets how many entities each AnalyzeContext task handles.
func WithChunkSize(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.chunkSize = n
		}
	}
}

// NewMatcher returns a matcher with the given options applied.
func NewMatcher(opts ...Option) *Matcher {
	m := &Matcher{workers: DefaultWorkers, chunkSize: DefaultChunkSize}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Analyze compares every event against the reference date, the astronomical
// target and the ritual dates, returning control matches first.
func Analyze(entities []EntityChronology, referenceDate string) []DayCountRow {
	return NewMatcher().Analyze(entities, referenceDate)
}

// Analyze is the sequential form of AnalyzeContext.
func (m *Matcher) Analyze(entities []EntityChronology, referenceDate string) []DayCountRow {
	timer := logging.StartTimer(logging.CategoryChronology, "analyze")
	defer timer.Stop()

	plan := newPlan(entities, referenceDate)
	var rows []DayCountRow
	for i := range entities {
		rows = plan.entityRows(rows, i)
	}
	sortMatchesFirst(rows)
	logging.ChronologyDebug("analyzed %d entities into %d rows", len(entities), len(rows))
	return rows
}

// AnalyzeContext splits entities into chunks processed by a bounded errgroup.
// The rows are identical to Analyze's. It returns ctx.Err() if the context
// ends before every chunk has been processed.
func (m *Matcher) AnalyzeContext(ctx context.Context, entities []EntityChronology, referenceDate string) ([]DayCountRow, error) {
	timer := logging.StartTimer(logging.CategoryChronology, "analyze (parallel)")
	defer timer.Stop()

	plan := newPlan(entities, referenceDate)

	var chunks [][2]int
	for lo := 0; lo < len(entities); lo += m.chunkSize {
		hi := lo + m.chunkSize
		if hi > len(entities) {
			hi = len(entities)
		}
		chunks = append(chunks, [2]int{lo, hi})
	}
	results := make([][]DayCountRow, len(chunks))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(m.workers)
	for ci, bounds := range chunks {
		eg.Go(func() error {
			var part []DayCountRow
			for i := bounds[0]; i < bounds[1]; i++ {
				if err := egCtx.Err(); err != nil {
					return err
				}
				part = plan.entityRows(part, i)
			}
			results[ci] = part
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("analyze chronology: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analyze chronology: %w", err)
	}

	var rows []DayCountRow
	for _, part := range results {
		rows = append(rows, part...)
	}
	sortMatchesFirst(rows)
	logging.ChronologyDebug("analyzed %d entities in %d chunks into %d rows", len(entities), len(chunks), len(rows))
	return rows, nil
}

// plan holds the inputs shared by every entity of one analysis.
type plan struct {
	entities      []EntityChronology
	referenceDate string
	reference     time.Time
	hasReference  bool
	eclipseIndex  int // -1 when absent
	eclipseDate   string
}

func newPlan(entities []EntityChronology, referenceDate string) *plan {
	p := &plan{entities: entities, referenceDate: referenceDate, eclipseIndex: -1}
	if t, err := ParseDate(referenceDate); err == nil {
		p.reference, p.hasReference = t, true
	} else if referenceDate != "" {
		logging.ChronologyDebug("reference date skipped: %v", err)
	}
	for i, e := range entities {
		if isAstronomicalTarget(e) {
			p.eclipseIndex = i
			if len(e.Events) > 0 {
				p.eclipseDate = e.Events[0].DateValue
			}
			break
		}
	}
	return p
}

func isAstronomicalTarget(e EntityChronology) bool {
	return e.EntityType == "Astronomical" &&
		(strings.Contains(e.EntityName, "Eclipse") || strings.Contains(e.EntityName, "Moon"))
}

// entityRows appends the rows for entities[i] to rows.
func (p *plan) entityRows(rows []DayCountRow, i int) []DayCountRow {
	entity := p.entities[i]

	birth := findEvent(entity.Events, "birth", "founding")
	death := findEvent(entity.Events, "death")
	if birth != nil && death != nil {
		rows = comparisonRows(rows, birth.DateValue, death.DateValue,
			entity.EntityName+": Birth → Death")
	}

	for _, event := range entity.Events {
		if event.DateValue == "" {
			continue
		}

		if p.hasReference && event.DateValue != p.referenceDate {
			rows = comparisonRows(rows, event.DateValue, p.referenceDate,
				fmt.Sprintf("%s (%s) → Reference", entity.EntityName, event.DateType))
		}

		if p.eclipseDate != "" && i != p.eclipseIndex {
			rows = comparisonRows(rows, event.DateValue, p.eclipseDate,
				entity.EntityName+" → Next Eclipse")
		}

		for _, year := range p.yearsFor(event.DateValue) {
			for _, ritual := range ritualDates {
				target := ritual.In(year)
				rows = comparisonRowsAt(rows, event.DateValue, target.Format("2006-01-02"), target,
					fmt.Sprintf("%s → %s (%d)", entity.EntityName, ritual.Name, year))
			}
		}
	}
	return rows
}

// yearsFor is the event's year followed by the reference year, deduplicated.
func (p *plan) yearsFor(dateValue string) []int {
	var years []int
	if t, err := ParseDate(dateValue); err == nil {
		years = append(years, t.Year())
	}
	if p.hasReference && (len(years) == 0 || years[0] != p.reference.Year()) {
		years = append(years, p.reference.Year())
	}
	return years
}

// findEvent returns the first event whose type contains any keyword,
// ignoring case.
func findEvent(events []DatedEvent, keywords ...string) *DatedEvent {
	for i := range events {
		t := strings.ToLower(events[i].DateType)
		for _, kw := range keywords {
			if strings.Contains(t, kw) {
				return &events[i]
			}
		}
	}
	return nil
}

func comparisonRows(rows []DayCountRow, start, end, label string) []DayCountRow {
	t2, err := ParseDate(end)
	if err != nil {
		return rows
	}
	return comparisonRowsAt(rows, start, end, t2, label)
}

// comparisonRowsAt appends the exclusive then inclusive row for one pair.
// Unparseable starts and same-instant pairs produce nothing.
func comparisonRowsAt(rows []DayCountRow, start, end string, t2 time.Time, label string) []DayCountRow {
	t1, err := ParseDate(start)
	if err != nil || t1.Equal(t2) {
		return rows
	}
	exclusive := daysBetween(t1, t2)
	rows = append(rows, newRow(label, start, end, exclusive, false))
	return append(rows, newRow(label, start, end, exclusive+1, true))
}

func newRow(label, start, end string, count int64, inclusive bool) DayCountRow {
	sum := DigitSum(count)
	dropped := ZeroDropped(count)
	match, note := controlMatch(count, sum, dropped)
	row := DayCountRow{
		Comparison:        label,
		StartDate:         start,
		EndDate:           end,
		DayCount:          count,
		IsInclusive:       inclusive,
		DigitSum:          sum,
		ZeroDropped:       dropped,
		IsControlMatch:    match,
		ControlMatchValue: note,
	}
	if match {
		row.Notes = "Sync: " + note
	}
	return row
}

func sortMatchesFirst(rows []DayCountRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].IsControlMatch && !rows[j].IsControlMatch
	})
}
