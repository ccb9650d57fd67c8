package chronology

import (
	"fmt"
	"math"
	"time"
)

// SpanOptions selects which endpoints count toward a span.
// The zero value counts neither; DefaultSpanOptions counts the start only.
type SpanOptions struct {
	IncludeStart bool
	IncludeEnd   bool
}

// DefaultSpanOptions counts the start day and not the end day.
func DefaultSpanOptions() SpanOptions {
	return SpanOptions{IncludeStart: true}
}

// adjustment is +1 when both endpoints count, -1 when neither does.
func (o SpanOptions) adjustment() int64 {
	switch {
	case o.IncludeStart && o.IncludeEnd:
		return 1
	case !o.IncludeStart && !o.IncludeEnd:
		return -1
	}
	return 0
}

// SpanAnalysis describes the distance between two dates.
type SpanAnalysis struct {
	Start    time.Time `json:"start" yaml:"start"`
	End      time.Time `json:"end" yaml:"end"`
	Reversed bool      `json:"reversed" yaml:"reversed"`

	TotalDays int64 `json:"totalDays" yaml:"total_days"`
	Years     int   `json:"years" yaml:"years"`
	Months    int   `json:"months" yaml:"months"`
	Days      int   `json:"days" yaml:"days"`

	Weeks   int64 `json:"weeks" yaml:"weeks"`
	Hours   int64 `json:"hours" yaml:"hours"`
	Minutes int64 `json:"minutes" yaml:"minutes"`
	Seconds int64 `json:"seconds" yaml:"seconds"`

	DigitSum          int64  `json:"digitSum" yaml:"digit_sum"`
	ZeroDropped       int64  `json:"zeroDropped" yaml:"zero_dropped"`
	IsControlMatch    bool   `json:"isControlMatch" yaml:"is_control_match"`
	ControlMatchValue *int64 `json:"controlMatchValue,omitempty" yaml:"control_match_value,omitempty"`

	StartStats DateStats `json:"startStats" yaml:"start_stats"`
	EndStats   DateStats `json:"endStats" yaml:"end_stats"`
}

// Span measures the days from start to end. Reversed inputs are swapped
// for the calendar breakdown and flagged; the total never goes below zero.
func Span(start, end string, opts SpanOptions) (*SpanAnalysis, error) {
	t1, err := ParseDate(start)
	if err != nil {
		return nil, fmt.Errorf("span start: %w", err)
	}
	t2, err := ParseDate(end)
	if err != nil {
		return nil, fmt.Errorf("span end: %w", err)
	}
	return SpanTimes(t1, t2, opts), nil
}

// SpanTimes is Span for already parsed times.
func SpanTimes(t1, t2 time.Time, opts SpanOptions) *SpanAnalysis {
	a := &SpanAnalysis{
		Start:      t1,
		End:        t2,
		Reversed:   t1.After(t2),
		StartStats: StatsFor(t1),
		EndStats:   StatsFor(t2),
	}

	adj := opts.adjustment()
	a.TotalDays = daysBetween(t1, t2) + adj
	if a.TotalDays < 0 {
		a.TotalDays = 0
	}

	lo, hi := t1, t2
	if a.Reversed {
		lo, hi = t2, t1
	}
	if hi = hi.AddDate(0, 0, int(adj)); !hi.Before(lo) {
		a.Years, a.Months, a.Days = calendarDiff(lo, hi)
	}

	a.Weeks = a.TotalDays / 7
	a.Hours = a.TotalDays * 24
	a.Minutes = a.Hours * 60
	a.Seconds = a.Minutes * 60

	a.DigitSum = DigitSum(a.TotalDays)
	a.ZeroDropped = ZeroDropped(a.TotalDays)
	switch {
	case IsControlNumber(a.TotalDays):
		a.IsControlMatch, a.ControlMatchValue = true, ptr(a.TotalDays)
	case IsControlNumber(a.ZeroDropped):
		a.IsControlMatch, a.ControlMatchValue = true, ptr(a.ZeroDropped)
	case IsControlNumber(a.DigitSum):
		a.IsControlMatch, a.ControlMatchValue = true, ptr(a.DigitSum)
	}
	return a
}

// calendarDiff counts whole months from start, clamping the day to the
// length of the target month, then the days left over. start must not be
// after end.
func calendarDiff(start, end time.Time) (years, months, days int) {
	start, end = start.UTC(), end.UTC()
	total := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	anchor := addMonthsClamped(start, total)
	if anchor.After(end) {
		total--
		anchor = addMonthsClamped(start, total)
	}
	return total / 12, total % 12, int(daysBetween(anchor, end))
}

// addMonthsClamped adds n >= 0 months without overflowing into the next
// month, so Jan 31 plus one month is Feb 28 or 29.
func addMonthsClamped(t time.Time, n int) time.Time {
	m := int(t.Month()) - 1 + n
	year, month := t.Year()+m/12, time.Month(m%12+1)
	d := t.Day()
	if last := daysIn(year, month); d > last {
		d = last
	}
	return time.Date(year, month, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateStats are per-date facts shown next to a span.
type DateStats struct {
	Weekday    string `json:"weekday" yaml:"weekday"`
	MoonPhase  string `json:"moonPhase" yaml:"moon_phase"`
	WeekOfYear int    `json:"weekOfYear" yaml:"week_of_year"`
	DayOfYear  int    `json:"dayOfYear" yaml:"day_of_year"`
	Numerology int64  `json:"numerology" yaml:"numerology"`
}

// StatsFor computes DateStats in UTC. WeekOfYear is the ISO 8601 week.
func StatsFor(t time.Time) DateStats {
	t = t.UTC()
	_, week := t.ISOWeek()
	return DateStats{
		Weekday:    t.Weekday().String()[:3],
		MoonPhase:  MoonPhase(t),
		WeekOfYear: week,
		DayOfYear:  t.YearDay(),
		Numerology: DigitSum(sumDigits(fmt.Sprintf("%d%d%d", int(t.Month()), t.Day(), t.Year()))),
	}
}

const synodicMonth = 29.5305882

var moonPhases = [8]string{
	"New Moon",
	"Waxing Crescent",
	"First Quarter",
	"Waxing Gibbous",
	"Full Moon",
	"Waning Gibbous",
	"Last Quarter",
	"Waning Crescent",
}

// MoonPhase approximates the lunar phase of t's UTC calendar day, rounded
// to one of eight named phases.
func MoonPhase(t time.Time) string {
	t = t.UTC()
	year, month, dayOfMonth := t.Year(), int(t.Month()), t.Day()
	if month < 3 {
		year--
		month += 12
	}
	month++
	jd := 365.25*float64(year) + 30.6*float64(month) + float64(dayOfMonth) - 694039.09
	jd /= synodicMonth
	frac := jd - math.Floor(jd)
	phase := int(math.Floor(frac*8 + 0.5))
	if phase >= 8 {
		phase = 0
	}
	return moonPhases[phase]
}

func ptr(v int64) *int64 {
	return &v
}
