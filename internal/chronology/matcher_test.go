package chronology

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"gematrix/internal/numtheory"
)

func person(name string, events ...DatedEvent) EntityChronology {
	return EntityChronology{EntityName: name, EntityType: "Person", Events: events}
}

func event(dateType, value string) DatedEvent {
	return DatedEvent{DateType: dateType, DateValue: value, Confidence: ConfidenceVerified}
}

func rowsFor(rows []DayCountRow, label string) []DayCountRow {
	var out []DayCountRow
	for _, r := range rows {
		if r.Comparison == label {
			out = append(out, r)
		}
	}
	return out
}

func TestDigitSum(t *testing.T) {
	tests := []struct {
		in, want int64
	}{
		{0, 0},
		{7, 7},
		{2024, 8},
		{20605, 4},
		{11, 11},
		{22, 22},
		{33, 33},
		{6999, 33},
		{29, 11},
		{1999, 1},
		{-2024, 8},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DigitSum(tt.in), "DigitSum(%d)", tt.in)
	}
}

func TestDigitSum_DivergesFromDigitalRoot(t *testing.T) {
	assert.Equal(t, int64(33), DigitSum(33))

	r, err := numtheory.Classify(33)
	require.NoError(t, err)
	assert.Equal(t, 6, r.Identity.DigitalRoot)
}

func TestZeroDropped(t *testing.T) {
	assert.Equal(t, int64(224), ZeroDropped(2024))
	assert.Equal(t, int64(265), ZeroDropped(20605))
	assert.Equal(t, int64(1), ZeroDropped(1000))
	assert.Equal(t, int64(0), ZeroDropped(0))
	assert.Equal(t, int64(322), ZeroDropped(322))
}

func TestControlNumbers(t *testing.T) {
	assert.Equal(t, []int64{33, 56, 84, 113, 171, 201, 223, 322, 911}, ControlNumbers())
	for _, n := range ControlNumbers() {
		assert.True(t, IsControlNumber(n))
	}
	for _, n := range []int64{2024, 8, 224, 0, 34} {
		assert.False(t, IsControlNumber(n), "%d", n)
	}

	// callers get copies
	ControlNumbers()[0] = 1
	assert.True(t, IsControlNumber(33))
	assert.Equal(t, int64(33), ControlNumbers()[0])
}

func TestRitualDates(t *testing.T) {
	rd := RitualDates()
	require.Len(t, rd, 14)
	assert.Equal(t, RitualDate{"Skull & Bones (322)", 3, 22}, rd[0])
	assert.Equal(t, RitualDate{"Hiroshima", 8, 6}, rd[13])
	assert.Equal(t, "2024-03-22", rd[0].In(2024).Format("2006-01-02"))
}

func TestControlMatch_Priority(t *testing.T) {
	tests := []struct {
		count int64
		match bool
		note  string
	}{
		{322, true, "322"},
		{33, true, "33"}, // raw wins over the digit sum of 33
		{3022, true, "322 (Zero Drop)"},
		{1130, true, "113 (Zero Drop)"},
		{6999, true, "33 (Sum)"},
		{2024, false, ""},
		{34, false, ""},
	}
	for _, tt := range tests {
		match, note := controlMatch(tt.count, DigitSum(tt.count), ZeroDropped(tt.count))
		assert.Equal(t, tt.match, match, "count %d", tt.count)
		assert.Equal(t, tt.note, note, "count %d", tt.count)
	}
}

func TestAnalyze_ReferenceComparison(t *testing.T) {
	rows := Analyze([]EntityChronology{person("Alpha", event("Event", "2024-01-01"))}, "2024-02-03")

	// 1 reference pair plus 14 ritual dates in the single shared year.
	require.Len(t, rows, 30)

	ref := rowsFor(rows, "Alpha (Event) → Reference")
	require.Len(t, ref, 2)

	want := []DayCountRow{
		{
			Comparison:        "Alpha (Event) → Reference",
			StartDate:         "2024-01-01",
			EndDate:           "2024-02-03",
			DayCount:          33,
			IsInclusive:       false,
			DigitSum:          33,
			ZeroDropped:       33,
			IsControlMatch:    true,
			ControlMatchValue: "33",
			Notes:             "Sync: 33",
		},
		{
			Comparison:  "Alpha (Event) → Reference",
			StartDate:   "2024-01-01",
			EndDate:     "2024-02-03",
			DayCount:    34,
			IsInclusive: true,
			DigitSum:    7,
			ZeroDropped: 34,
		},
	}
	if diff := cmp.Diff(want, ref); diff != "" {
		t.Errorf("reference rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyze_InclusiveIsExclusivePlusOne(t *testing.T) {
	rows := Analyze([]EntityChronology{
		person("Alpha", event("Date of Birth", "1961-08-04"), event("Date of Death", "2019-05-17")),
	}, "2024-02-03")

	type pairKey struct{ label, start, end string }
	pairs := make(map[pairKey][]DayCountRow)
	for _, r := range rows {
		k := pairKey{r.Comparison, r.StartDate, r.EndDate}
		pairs[k] = append(pairs[k], r)
	}
	require.NotEmpty(t, pairs)
	for k, pair := range pairs {
		require.Len(t, pair, 2, k.label)
		var excl, incl DayCountRow
		for _, r := range pair {
			if r.IsInclusive {
				incl = r
			} else {
				excl = r
			}
		}
		assert.Equal(t, excl.DayCount+1, incl.DayCount, k.label)
	}
}

func TestAnalyze_ControlMatch322(t *testing.T) {
	rows := Analyze([]EntityChronology{person("Alpha", event("Event", "2024-01-01"))}, "2024-11-18")

	ref := rowsFor(rows, "Alpha (Event) → Reference")
	require.Len(t, ref, 2)
	assert.Equal(t, int64(322), ref[0].DayCount)
	assert.False(t, ref[0].IsInclusive)
	assert.True(t, ref[0].IsControlMatch)
	assert.Equal(t, "322", ref[0].ControlMatchValue)
	assert.Equal(t, "Sync: 322", ref[0].Notes)

	// 323: digit sum 8, zero-dropped 323
	assert.Equal(t, int64(323), ref[1].DayCount)
	assert.False(t, ref[1].IsControlMatch)
}

func TestAnalyze_BirthToDeath(t *testing.T) {
	rows := Analyze([]EntityChronology{
		person("Beta", event("Date of Birth", "1950-03-01"), event("Date of Death", "2000-01-01")),
	}, "")

	// No reference: birth→death plus 14 rituals in each event's own year.
	require.Len(t, rows, 2+28+28)

	bd := rowsFor(rows, "Beta: Birth → Death")
	require.Len(t, bd, 2)
	for _, r := range bd {
		if r.IsInclusive {
			assert.Equal(t, int64(18204), r.DayCount)
		} else {
			assert.Equal(t, int64(18203), r.DayCount)
			assert.Equal(t, int64(5), r.DigitSum)
			assert.Equal(t, int64(1823), r.ZeroDropped)
		}
	}

	assert.Len(t, rowsFor(rows, "Beta → Christmas (1950)"), 2)
	assert.Len(t, rowsFor(rows, "Beta → Christmas (2000)"), 2)
	assert.Empty(t, rowsFor(rows, "Beta → Christmas (2024)"))
}

func TestAnalyze_FoundingCountsAsBirth(t *testing.T) {
	rows := Analyze([]EntityChronology{{
		EntityName: "Order",
		EntityType: "Organization",
		Events:     []DatedEvent{event("FOUNDING date", "1540-09-27"), event("Death of founder", "1556-07-31")},
	}}, "")

	assert.Len(t, rowsFor(rows, "Order: Birth → Death"), 2)
}

func TestAnalyze_EclipseTarget(t *testing.T) {
	entities := []EntityChronology{
		person("Alpha", event("Event", "2024-01-01")),
		{
			EntityName: "Next Solar Eclipse",
			EntityType: "Astronomical",
			Events:     []DatedEvent{event("Eclipse", "2024-04-08")},
		},
	}
	rows := Analyze(entities, "")

	ecl := rowsFor(rows, "Alpha → Next Eclipse")
	require.Len(t, ecl, 2)
	assert.Equal(t, int64(98), ecl[0].DayCount)
	assert.Equal(t, "2024-04-08", ecl[0].EndDate)

	// the astronomical entity is not compared against itself
	assert.Empty(t, rowsFor(rows, "Next Solar Eclipse → Next Eclipse"))
	assert.Len(t, rows, 2+28+28)
}

func TestAnalyze_EclipseRequiresAstronomicalType(t *testing.T) {
	entities := []EntityChronology{
		person("Alpha", event("Event", "2024-01-01")),
		person("Blue Moon Cafe", event("Opening", "2024-04-08")),
	}
	rows := Analyze(entities, "")
	assert.Empty(t, rowsFor(rows, "Alpha → Next Eclipse"))
}

func TestAnalyze_UnparseableDatesSkipped(t *testing.T) {
	rows := Analyze([]EntityChronology{
		person("Gamma", event("Event", "not a date"), event("Empty", "")),
	}, "2024-02-03")
	assert.Empty(t, rows)

	rows = Analyze([]EntityChronology{person("Gamma", event("Event", "2024-01-01"))}, "someday")
	assert.Len(t, rows, 28)
	assert.Empty(t, rowsFor(rows, "Gamma (Event) → Reference"))
}

func TestAnalyze_SameDaySkipped(t *testing.T) {
	rows := Analyze([]EntityChronology{person("Delta", event("Event", "2024-03-22"))}, "2024-03-22")

	assert.Empty(t, rowsFor(rows, "Delta (Event) → Reference"))
	assert.Empty(t, rowsFor(rows, "Delta → Skull & Bones (322) (2024)"))
	assert.Len(t, rows, 13*2)

	// equal instants written differently are skipped by time, not by text
	rows = Analyze([]EntityChronology{person("Delta", event("Event", "2024-03-22"))}, "2024-03-22T00:00:00Z")
	assert.Empty(t, rowsFor(rows, "Delta (Event) → Reference"))
}

func TestAnalyze_RitualYears(t *testing.T) {
	rows := Analyze([]EntityChronology{person("Eps", event("Event", "1999-06-01"))}, "2024-02-03")

	assert.Len(t, rowsFor(rows, "Eps → Christmas (1999)"), 2)
	assert.Len(t, rowsFor(rows, "Eps → Christmas (2024)"), 2)
	assert.Len(t, rows, 2+28+28)
}

func TestAnalyze_MatchesFirstAndStable(t *testing.T) {
	entities := sampleEntities(12)
	rows := Analyze(entities, "2024-02-03")
	require.NotEmpty(t, rows)

	seenNonMatch := false
	var matches int
	for _, r := range rows {
		if r.IsControlMatch {
			require.False(t, seenNonMatch, "control match %q after a non-match", r.Comparison)
			matches++
		} else {
			seenNonMatch = true
		}
	}
	assert.Positive(t, matches)

	// within each group, generation order holds: the exclusive row of a
	// pair precedes its inclusive row when both land in the same group.
	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Comparison == b.Comparison && a.StartDate == b.StartDate && a.EndDate == b.EndDate &&
			a.IsControlMatch == b.IsControlMatch {
			assert.False(t, a.IsInclusive && !b.IsInclusive, "pair order flipped for %q", a.Comparison)
		}
	}
}

func sampleEntities(n int) []EntityChronology {
	out := make([]EntityChronology, 0, n+1)
	for i := 0; i < n; i++ {
		out = append(out, person(fmt.Sprintf("Entity %02d", i),
			event("Date of Birth", fmt.Sprintf("%d-%02d-%02d", 1900+i*7, 1+i%12, 1+i%28)),
			event("Date of Death", fmt.Sprintf("%d-%02d-%02d", 1960+i*3, 1+(i*5)%12, 1+(i*3)%28)),
		))
	}
	out = append(out, EntityChronology{
		EntityName: "Blood Moon",
		EntityType: "Astronomical",
		Events:     []DatedEvent{event("Lunar eclipse", "2025-03-14")},
	})
	return out
}

func TestAnalyzeContext_MatchesAnalyze(t *testing.T) {
	defer goleak.VerifyNone(t)

	entities := sampleEntities(40)
	want := Analyze(entities, "2024-02-03")

	m := NewMatcher(WithWorkers(3), WithChunkSize(4))
	got, err := m.AnalyzeContext(context.Background(), entities, "2024-02-03")
	require.NoError(t, err)

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AnalyzeContext mismatch (-want +got):\n%s", diff)
	}
}

func TestAnalyzeContext_Canceled(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, err := NewMatcher().AnalyzeContext(ctx, sampleEntities(40), "2024-02-03")
	assert.Nil(t, rows)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestAnalyzeContext_Empty(t *testing.T) {
	rows, err := NewMatcher().AnalyzeContext(context.Background(), nil, "2024-02-03")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNewMatcher_IgnoresNonPositive(t *testing.T) {
	m := NewMatcher(WithWorkers(0), WithChunkSize(-3))
	assert.Equal(t, DefaultWorkers, m.workers)
	assert.Equal(t, DefaultChunkSize, m.chunkSize)
}
