// Package cipher converts text into integer values under a fixed set of
// letter-mapping schemes.
//
// Only letters that case-fold to the 26 ASCII letters carry value; the
// Kelvin sign counts as k and 'ñ' counts as nothing. ComputeAll folds case and drops
// everything else; Breakdown keeps the original characters and assigns 0
// to anything that is not a letter so callers can re-render the input.
//
// All functions are pure and safe for concurrent use.
package cipher

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// fold lower-cases r with the Unicode mapping, so letters such as the
// Kelvin sign land on their ASCII counterpart.
func fold(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r
	}
	return unicode.ToLower(r)
}

// Value maps one letter under the scheme. Letters are case-folded;
// anything that does not fold into a-z maps to 0.
func (s Scheme) Value(letter rune) int {
	letter = fold(letter)
	if letter < 'a' || letter > 'z' {
		return 0
	}
	i := int(letter - 'a')
	pos := i + 1

	switch s {
	case Chaldean:
		return chaldeanTable[i]
	case Septenary:
		return septenaryCycle[i%len(septenaryCycle)]
	case Ordinal:
		return pos
	case Reduction:
		return reduce(pos)
	case Sumerian:
		return pos * 6
	case Latin:
		return latinTable[i]
	case ReverseOrdinal:
		return 27 - pos
	case ReverseReduction:
		return reduce(27 - pos)
	case Fibonacci:
		return fibonacciTable[i]
	case Primes:
		return primesTable[i]
	case Pi:
		return piTable[i]
	case ThreeSixNine:
		switch pos % 3 {
		case 1:
			return 3
		case 2:
			return 6
		default:
			return 9
		}
	case Keypad:
		return keypadTable[i]
	case Satanic:
		return pos + 35
	case EnglishKabbalah:
		return englishKabbalahTable[i]
	case Trigrammaton:
		return trigrammatonTable[i]
	case Trigonal:
		return pos * (pos + 1) / 2
	case Standard:
		mult := 1
		for k := 0; k < i/9; k++ {
			mult *= 10
		}
		return (i%9 + 1) * mult
	case Squares:
		return pos * pos
	}
	return 0
}

// Result maps every scheme to the total for one text.
type Result map[Scheme]int

// Total is one (scheme, value) pair of a Result.
type Total struct {
	Scheme Scheme `json:"scheme" yaml:"scheme"`
	Value  int    `json:"value" yaml:"value"`
}

// Get returns the total for s, 0 if absent.
func (r Result) Get(s Scheme) int {
	return r[s]
}

// Totals returns the result ordered by scheme.
func (r Result) Totals() []Total {
	out := make([]Total, 0, len(r))
	for _, s := range Schemes() {
		if v, ok := r[s]; ok {
			out = append(out, Total{Scheme: s, Value: v})
		}
	}
	return out
}

// CharValue is one character of the original text and its scheme value.
type CharValue struct {
	Char  string `json:"char" yaml:"char"`
	Value int    `json:"value" yaml:"value"`
}

// Engine computes scheme totals. The zero value is ready to use.
type Engine struct{}

// New returns an Engine.
func New() Engine {
	return Engine{}
}

// Clean lowercases text and drops every character outside a-z.
func Clean(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r = fold(r); r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ComputeAll returns the total of text under every scheme.
// Empty or letterless input yields zero for every scheme.
func (Engine) ComputeAll(text string) Result {
	clean := Clean(text)
	res := make(Result, numSchemes)
	for _, s := range Schemes() {
		res[s] = sum(clean, s)
	}
	return res
}

// Compute returns the total of text under one scheme.
func (Engine) Compute(text string, s Scheme) int {
	return sum(Clean(text), s)
}

func sum(clean string, s Scheme) int {
	total := 0
	for i := 0; i < len(clean); i++ {
		total += s.Value(rune(clean[i]))
	}
	return total
}

// Breakdown returns one CharValue per rune of text, preserving case,
// spacing and punctuation. Non-letters carry 0. An invalid scheme yields nil.
func (Engine) Breakdown(text string, s Scheme) []CharValue {
	if !s.Valid() {
		return nil
	}
	out := make([]CharValue, 0, utf8.RuneCountInString(text))
	for _, r := range text {
		out = append(out, CharValue{Char: string(r), Value: s.Value(r)})
	}
	return out
}

// SchemeNames returns the display names in enumeration order.
func (Engine) SchemeNames() []string {
	return SchemeNames()
}
