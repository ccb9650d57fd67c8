package chronology

import "time"

// RitualDate is a recurring month/day evaluated against any year.
type RitualDate struct {
	Name  string     `json:"name" yaml:"name"`
	Month time.Month `json:"month" yaml:"month"`
	Day   int        `json:"day" yaml:"day"`
}

// In returns the ritual date in the given year, midnight UTC.
func (r RitualDate) In(year int) time.Time {
	return time.Date(year, r.Month, r.Day, 0, 0, 0, 0, time.UTC)
}

var ritualDates = []RitualDate{
	{"Skull & Bones (322)", time.March, 22},
	{"Ignatius Loyola Birth", time.October, 23},
	{"Jesuit Founding", time.August, 15},
	{"Pope Francis Birth", time.December, 17},
	{"May Day (Illuminati)", time.May, 1},
	{"9/11 Ritual", time.September, 11},
	{"Halloween/Reformation", time.October, 31},
	{"Christmas", time.December, 25},
	{"Spring Equinox", time.March, 20},
	{"Summer Solstice", time.June, 21},
	{"Autumn Equinox", time.September, 22},
	{"Winter Solstice", time.December, 21},
	{"Balfour Declaration", time.November, 2},
	{"Hiroshima", time.August, 6},
}

var controlNumbers = []int64{33, 56, 84, 113, 171, 201, 223, 322, 911}

var controlSet = func() map[int64]struct{} {
	m := make(map[int64]struct{}, len(controlNumbers))
	for _, n := range controlNumbers {
		m[n] = struct{}{}
	}
	return m
}()

// RitualDates returns a copy of the ritual-date catalog in catalog order.
func RitualDates() []RitualDate {
	out := make([]RitualDate, len(ritualDates))
	copy(out, ritualDates)
	return out
}

// ControlNumbers returns a copy of the control-number watchlist, ascending.
func ControlNumbers() []int64 {
	out := make([]int64, len(controlNumbers))
	copy(out, controlNumbers)
	return out
}

// IsControlNumber reports whether v is on the watchlist.
func IsControlNumber(v int64) bool {
	_, ok := controlSet[v]
	return ok
}
