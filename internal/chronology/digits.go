package chronology

import (
	"fmt"
	"strconv"
	"strings"
)

// DigitSum repeatedly sums the decimal digits of n until a single digit
// remains, stopping early at the master numbers 11, 22 and 33.
// Negative values are reduced by magnitude.
func DigitSum(n int64) int64 {
	if n < 0 {
		n = -n
	}
	for n > 9 && !isMasterNumber(n) {
		var sum int64
		for m := n; m > 0; m /= 10 {
			sum += m % 10
		}
		n = sum
	}
	return n
}

func isMasterNumber(n int64) bool {
	return n == 11 || n == 22 || n == 33
}

// ZeroDropped removes every '0' from the decimal form of n and reparses it.
// A result with no digits left is 0.
func ZeroDropped(n int64) int64 {
	if n < 0 {
		n = -n
	}
	s := strings.ReplaceAll(strconv.FormatInt(n, 10), "0", "")
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// controlMatch checks a day count against the watchlist. The raw count
// takes priority, then the zero-dropped value, then the digit sum.
func controlMatch(count, digitSum, zeroDropped int64) (bool, string) {
	switch {
	case IsControlNumber(count):
		return true, strconv.FormatInt(count, 10)
	case IsControlNumber(zeroDropped):
		return true, fmt.Sprintf("%d (Zero Drop)", zeroDropped)
	case IsControlNumber(digitSum):
		return true, fmt.Sprintf("%d (Sum)", digitSum)
	}
	return false, ""
}

// sumDigits adds every decimal digit appearing in s.
func sumDigits(s string) int64 {
	var sum int64
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sum += int64(r - '0')
		}
	}
	return sum
}
