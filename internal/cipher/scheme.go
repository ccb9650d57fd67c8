package cipher

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScheme is returned by ParseScheme for names outside the enumeration.
var ErrUnknownScheme = errors.New("unknown cipher scheme")

// Scheme identifies one letter-to-integer mapping.
type Scheme int

const (
	Chaldean Scheme = iota
	Septenary
	Ordinal
	Reduction
	Sumerian
	Latin
	ReverseOrdinal
	ReverseReduction
	Fibonacci
	Primes
	Pi
	ThreeSixNine
	Keypad
	Satanic
	EnglishKabbalah
	Trigrammaton
	Trigonal
	Standard
	Squares

	numSchemes
)

var schemeNames = [numSchemes]string{
	Chaldean:         "Chaldean",
	Septenary:        "Septenary",
	Ordinal:          "Ordinal",
	Reduction:        "Reduction",
	Sumerian:         "Sumerian",
	Latin:            "Latin",
	ReverseOrdinal:   "Reverse Ordinal",
	ReverseReduction: "Reverse Reduction",
	Fibonacci:        "Fibonacci",
	Primes:           "Primes",
	Pi:               "Pi",
	ThreeSixNine:     "Three-Six-Nine",
	Keypad:           "Keypad",
	Satanic:          "Satanic",
	EnglishKabbalah:  "English Kabbalah",
	Trigrammaton:     "Trigrammaton",
	Trigonal:         "Trigonal",
	Standard:         "Standard",
	Squares:          "Squares",
}

// String returns the display name of the scheme.
func (s Scheme) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Scheme(%d)", int(s))
	}
	return schemeNames[s]
}

// Valid reports whether s is one of the enumerated schemes.
func (s Scheme) Valid() bool {
	return s >= 0 && s < numSchemes
}

// MarshalText encodes the scheme by name so it can key JSON objects.
func (s Scheme) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScheme, int(s))
	}
	return []byte(schemeNames[s]), nil
}

// UnmarshalText accepts any spelling ParseScheme accepts.
func (s *Scheme) UnmarshalText(text []byte) error {
	parsed, err := ParseScheme(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Schemes returns every scheme in enumeration order.
func Schemes() []Scheme {
	out := make([]Scheme, numSchemes)
	for i := range out {
		out[i] = Scheme(i)
	}
	return out
}

// SchemeNames returns the display names in enumeration order.
func SchemeNames() []string {
	out := make([]string, numSchemes)
	copy(out, schemeNames[:])
	return out
}

// ParseScheme resolves a scheme name ignoring case, spaces, hyphens and
// underscores, so "three six nine", "Three-Six-Nine" and "threesixnine"
// all resolve to ThreeSixNine.
func ParseScheme(name string) (Scheme, error) {
	key := schemeKey(name)
	for i, n := range schemeNames {
		if schemeKey(n) == key {
			return Scheme(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
}

func schemeKey(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
}
