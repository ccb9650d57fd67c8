package chronology

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Reduction pairs a digit total with its master-number-preserving reduction.
type Reduction struct {
	Sum     int64 `json:"sum" yaml:"sum"`
	Reduced int64 `json:"reduced" yaml:"reduced"`
}

// NumerologyResult is the digit analysis of one calendar date.
type NumerologyResult struct {
	FullDate Reduction `json:"fullDate" yaml:"full_date"`
	MonthDay Reduction `json:"monthDay" yaml:"month_day"`
	Year     Reduction `json:"year" yaml:"year"`
}

// DateNumerology sums the digits of a date's month, day and year.
// Text without any digit is rejected before parsing.
func DateNumerology(text string) (*NumerologyResult, error) {
	if !strings.ContainsFunc(text, unicode.IsDigit) {
		return nil, fmt.Errorf("%w: %q has no digits", ErrInvalidDate, text)
	}
	t, err := ParseDate(text)
	if err != nil {
		return nil, err
	}

	month := sumDigits(strconv.Itoa(int(t.Month())))
	dayOfMonth := sumDigits(strconv.Itoa(t.Day()))
	year := sumDigits(strconv.Itoa(t.Year()))

	return &NumerologyResult{
		FullDate: reduction(month + dayOfMonth + year),
		MonthDay: reduction(month + dayOfMonth),
		Year:     reduction(year),
	}, nil
}

func reduction(sum int64) Reduction {
	return Reduction{Sum: sum, Reduced: DigitSum(sum)}
}
