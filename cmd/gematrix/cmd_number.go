package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gematrix/cmd/gematrix/ui"
	"gematrix/internal/numtheory"
)

// numberCmd classifies a number
var numberCmd = &cobra.Command{
	Use:   "number [n]",
	Short: "Classify a number",
	Long: `Reports the number-theoretic properties of n: divisors, primality,
neighboring primes, triangular, Fibonacci and palindromic numbers, base
representations and figurate classifications.

Fractions are floored and the sign is dropped, so 28.9 and -28 both
classify 28. Zero is rejected.

Example:
  gematrix number 322`,
	Args: cobra.ExactArgs(1),
	RunE: runNumber,
}

func runNumber(cmd *cobra.Command, args []string) error {
	x, err := strconv.ParseFloat(strings.TrimSpace(args[0]), 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", numtheory.ErrInvalidInput, args[0])
	}
	n, err := numtheory.Normalize(x)
	if err != nil {
		return err
	}
	logger.Debug("Classifying number", zap.Int64("n", n))

	classifier := numtheory.NewClassifier(numtheory.Options{
		NeighborSearchLimit:   cfg.NumberTheory.NeighborSearchLimit,
		PalindromeSearchLimit: cfg.NumberTheory.PalindromeSearchLimit,
		PrimeIndexCeiling:     cfg.NumberTheory.PrimeIndexCeiling,
	})
	report, err := classifier.Classify(n)
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), report, func(s ui.Styles) string {
		return renderReport(s, report)
	})
}

func renderReport(s ui.Styles, r *numtheory.Report) string {
	divs := make([]string, len(r.Basic.Divisors))
	for i, d := range r.Basic.Divisors {
		divs[i] = strconv.FormatInt(d, 10)
	}
	b := r.Basic
	id := r.Identity
	c := r.Classification

	var sb strings.Builder
	sb.WriteString(ui.KeyValues(s, fmt.Sprintf("Number %d", r.N), [][2]string{
		{"Divisors", strings.Join(divs, ", ")},
		{"Sum of divisors", strconv.FormatInt(b.SumDivisors, 10)},
		{"Prime", yesNo(b.IsPrime)},
		{"Primes", optInt(b.PrevPrime) + " < n < " + optInt(b.NextPrime)},
		{"Triangular", optInt(b.PrevTriangular) + " < n < " + optInt(b.NextTriangular)},
		{"Fibonacci", optInt(b.PrevFibonacci) + " < n < " + optInt(b.NextFibonacci)},
		{"Palindromes", optInt(b.PrevPalindrome) + " < n < " + optInt(b.NextPalindrome)},
	}))
	sb.WriteString("\n")
	sb.WriteString(ui.KeyValues(s, "Identity", [][2]string{
		{"Digital root", strconv.Itoa(id.DigitalRoot)},
		{"Reduced sum", strconv.Itoa(id.ReducedSum)},
		{"Binary", id.Binary},
		{"Octal", id.Octal},
		{"Decimal", id.Decimal},
		{"Duodecimal", id.Duodecimal},
		{"Hex", id.Hex},
		{"Magic constant", yesNo(id.IsMagicConstant)},
	}))
	sb.WriteString("\n")
	sb.WriteString(ui.KeyValues(s, "Classification", [][2]string{
		{"Prime index", optInt(c.PrimeIndex)},
		{"Triangular", yesNo(c.IsTriangular) + " (index " + optInt(c.TriangularIndex) + ")"},
		{"Square", yesNo(c.IsSquare)},
		{"Cube", yesNo(c.IsCube)},
		{"Fibonacci", yesNo(c.IsFibonacci) + " (index " + optInt(c.FibonacciIndex) + ")"},
		{"Harshad", yesNo(c.IsHarshad)},
		{"Happy", yesNo(c.IsHappy)},
		{"Pentagonal", yesNo(c.IsPentagonal)},
		{"Tetrahedral", yesNo(c.IsTetrahedral)},
	}))
	return sb.String()
}
