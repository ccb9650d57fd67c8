// Package numtheory classifies a positive integer against a fixed set of
// number-theoretic properties.
//
// Neighbor searches (previous/next prime, triangular, Fibonacci and
// palindromic numbers) scan linearly outward from n and give up after a
// fixed number of steps, reporting nil instead of searching further.
// The prime index counts every prime up to n, so its cost grows linearly
// with n; above PrimeIndexCeiling it is reported as nil. The ceiling is
// always finite and never exceeds MaxPrimeIndexCeiling.
package numtheory

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gematrix/internal/logging"
)

const (
	// DefaultNeighborSearchLimit bounds prime, triangular and Fibonacci neighbor scans.
	DefaultNeighborSearchLimit = 1000
	// DefaultPalindromeSearchLimit bounds palindrome neighbor scans.
	DefaultPalindromeSearchLimit = 2000
	// DefaultPrimeIndexCeiling is the largest prime whose index is computed.
	DefaultPrimeIndexCeiling = 10_000_000
	// MaxPrimeIndexCeiling is the highest ceiling a classifier accepts.
	MaxPrimeIndexCeiling = 1_000_000_000

	// MagicOrderMin and MagicOrderMax bound the magic-square orders checked.
	MagicOrderMin = 3
	MagicOrderMax = 10

	// MaxValue is the largest accepted magnitude (2^53-1).
	MaxValue = 1<<53 - 1
)

// ErrInvalidInput is returned for zero, non-finite, or out-of-range input.
var ErrInvalidInput = errors.New("invalid input")

// Options bound the classifier's searches.
type Options struct {
	NeighborSearchLimit   int
	PalindromeSearchLimit int
	PrimeIndexCeiling     int64
}

// DefaultOptions returns the standard search limits.
func DefaultOptions() Options {
	return Options{
		NeighborSearchLimit:   DefaultNeighborSearchLimit,
		PalindromeSearchLimit: DefaultPalindromeSearchLimit,
		PrimeIndexCeiling:     DefaultPrimeIndexCeiling,
	}
}

// Classifier produces Reports. It holds no mutable state.
type Classifier struct {
	opts Options
}

// NewClassifier returns a classifier with the given options. Non-positive
// limits fall back to the defaults and the prime index ceiling is clamped
// to MaxPrimeIndexCeiling.
func NewClassifier(opts Options) *Classifier {
	if opts.NeighborSearchLimit <= 0 {
		opts.NeighborSearchLimit = DefaultNeighborSearchLimit
	}
	if opts.PalindromeSearchLimit <= 0 {
		opts.PalindromeSearchLimit = DefaultPalindromeSearchLimit
	}
	if opts.PrimeIndexCeiling <= 0 {
		opts.PrimeIndexCeiling = DefaultPrimeIndexCeiling
	}
	opts.PrimeIndexCeiling = min(opts.PrimeIndexCeiling, MaxPrimeIndexCeiling)
	return &Classifier{opts: opts}
}

var defaultClassifier = NewClassifier(DefaultOptions())

// Classify classifies n with the default options.
func Classify(n int64) (*Report, error) {
	return defaultClassifier.Classify(n)
}

// ClassifyFloat floors x, takes its magnitude and classifies the result.
func ClassifyFloat(x float64) (*Report, error) {
	n, err := Normalize(x)
	if err != nil {
		return nil, err
	}
	return defaultClassifier.Classify(n)
}

// Normalize floors x and returns its absolute value.
func Normalize(x float64) (int64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("%w: %v is not finite", ErrInvalidInput, x)
	}
	f := math.Abs(math.Floor(x))
	if f > MaxValue {
		return 0, fmt.Errorf("%w: %v exceeds %d", ErrInvalidInput, x, int64(MaxValue))
	}
	if f == 0 {
		return 0, fmt.Errorf("%w: number must be non-zero", ErrInvalidInput)
	}
	return int64(f), nil
}

// Classify normalizes the sign of n and builds its report.
func (c *Classifier) Classify(n int64) (*Report, error) {
	if n < -MaxValue || n > MaxValue {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrInvalidInput, n, int64(MaxValue))
	}
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: number must be non-zero", ErrInvalidInput)
	}

	timer := logging.StartTimer(logging.CategoryNumber, "classify "+strconv.FormatInt(n, 10))
	defer timer.Stop()

	divs := divisors(n)
	var sumDivs int64
	for _, d := range divs {
		sumDivs += d
	}
	prime := isPrime(n)

	limit := int64(c.opts.NeighborSearchLimit)
	palLimit := int64(c.opts.PalindromeSearchLimit)

	r := &Report{N: n}
	r.Basic = Basic{
		Divisors:    divs,
		SumDivisors: sumDivs,
		IsPrime:     prime,
	}
	r.Basic.PrevPrime, r.Basic.NextPrime = neighbors(n, limit, 2, isPrime)
	r.Basic.PrevTriangular, r.Basic.NextTriangular = neighbors(n, limit, 1, isTriangular)
	r.Basic.PrevFibonacci, r.Basic.NextFibonacci = neighbors(n, limit, 1, isFibonacci)
	r.Basic.PrevPalindrome, r.Basic.NextPalindrome = neighbors(n, palLimit, 1, isPalindrome)

	root := digitalRoot(n)
	r.Identity = Identity{
		DigitalRoot:     root,
		ReducedSum:      root,
		Binary:          strconv.FormatInt(n, 2),
		Octal:           strconv.FormatInt(n, 8),
		Decimal:         strconv.FormatInt(n, 10),
		Duodecimal:      strings.ToUpper(strconv.FormatInt(n, 12)),
		Hex:             strings.ToUpper(strconv.FormatInt(n, 16)),
		IsMagicConstant: isMagicConstant(n),
	}

	cls := Classification{
		IsSquare:      isSquare(n),
		IsCube:        isCube(n),
		IsHarshad:     isHarshad(n),
		IsHappy:       isHappy(n),
		IsPentagonal:  isPentagonal(n),
		IsTetrahedral: isTetrahedral(n),
	}
	if prime {
		if n <= c.opts.PrimeIndexCeiling {
			cls.PrimeIndex = ptr(primeCount(n))
		} else {
			logging.NumberDebug("prime index of %d skipped: above ceiling %d", n, c.opts.PrimeIndexCeiling)
		}
	}
	if isTriangular(n) {
		cls.IsTriangular = true
		cls.TriangularIndex = ptr(triangularIndex(n))
	}
	if isFibonacci(n) {
		if idx, ok := fibonacciIndex(n); ok {
			cls.IsFibonacci = true
			cls.FibonacciIndex = ptr(idx)
		}
	}
	r.Classification = cls

	return r, nil
}

// neighbors scans n-1 down to max(lower, n-limit) and n+1 up to n+limit.
func neighbors(n, limit, lower int64, pred func(int64) bool) (prev, next *int64) {
	for k := n - 1; k >= lower && k >= n-limit; k-- {
		if pred(k) {
			prev = ptr(k)
			break
		}
	}
	for k := n + 1; k <= n+limit; k++ {
		if pred(k) {
			next = ptr(k)
			break
		}
	}
	return prev, next
}

func ptr(v int64) *int64 {
	return &v
}
