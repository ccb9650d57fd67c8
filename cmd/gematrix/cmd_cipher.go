package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gematrix/cmd/gematrix/ui"
	"gematrix/internal/cipher"
	"gematrix/internal/logging"
	"gematrix/internal/matchdb"
)

var (
	breakdownScheme string
	dbSource        string
)

// cipherCmd computes every scheme total for a text
var cipherCmd = &cobra.Command{
	Use:   "cipher [text...]",
	Short: "Compute cipher totals for a text",
	Long: `Computes the total of the text under every cipher scheme.
Only the letters a-z carry value; case, digits and punctuation are ignored.

Example:
  gematrix cipher "hello world"
  gematrix cipher "hello world" --breakdown ordinal
  gematrix cipher "hello world" --db ./words.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCipher,
}

// schemesCmd lists the scheme names
var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List cipher schemes",
	Args:  cobra.NoArgs,
	RunE:  listSchemes,
}

func init() {
	cipherCmd.Flags().StringVar(&breakdownScheme, "breakdown", "", "Show the per-character values under this scheme")
	cipherCmd.Flags().StringVar(&dbSource, "db", "", "Match database (URL or CSV path) to look totals up in")
}

type cipherTotal struct {
	Scheme  cipher.Scheme   `json:"scheme" yaml:"scheme"`
	Value   int             `json:"value" yaml:"value"`
	Matches []matchdb.Entry `json:"matches,omitempty" yaml:"matches,omitempty"`
}

type cipherBreakdown struct {
	Scheme cipher.Scheme      `json:"scheme" yaml:"scheme"`
	Chars  []cipher.CharValue `json:"chars" yaml:"chars"`
}

type cipherOutput struct {
	Text      string           `json:"text" yaml:"text"`
	Totals    []cipherTotal    `json:"totals" yaml:"totals"`
	Breakdown *cipherBreakdown `json:"breakdown,omitempty" yaml:"breakdown,omitempty"`
}

func runCipher(cmd *cobra.Command, args []string) error {
	text := joinArgs(args)
	logger.Debug("Computing cipher totals", zap.String("text", text))

	engine := cipher.New()
	out := cipherOutput{Text: text}

	var db *matchdb.Database
	if dbSource != "" {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		var err error
		if db, err = loadDatabase(ctx, dbSource); err != nil {
			return err
		}
	}

	for _, t := range engine.ComputeAll(text).Totals() {
		row := cipherTotal{Scheme: t.Scheme, Value: t.Value}
		if db != nil {
			row.Matches = db.Lookup(int64(t.Value))
		}
		out.Totals = append(out.Totals, row)
	}

	if breakdownScheme != "" {
		s, err := cipher.ParseScheme(breakdownScheme)
		if err != nil {
			return err
		}
		out.Breakdown = &cipherBreakdown{Scheme: s, Chars: engine.Breakdown(text, s)}
	}
	logging.CipherDebug("computed %d totals for %q", len(out.Totals), text)

	return render(cmd.OutOrStdout(), out, func(s ui.Styles) string {
		headers := []string{"Scheme", "Value"}
		if db != nil {
			headers = append(headers, "Matches")
		}
		table := ui.NewTable(fmt.Sprintf("Cipher totals for %q", text), headers...)
		for _, t := range out.Totals {
			row := []string{t.Scheme.String(), strconv.Itoa(t.Value)}
			if db == nil {
				table.AddRow(row...)
				continue
			}
			row = append(row, formatEntries(t.Matches))
			if len(t.Matches) > 0 {
				table.AddHighlightedRow(row...)
			} else {
				table.AddRow(row...)
			}
		}
		view := table.View(s)
		if out.Breakdown != nil {
			view += "\n" + renderBreakdown(s, out.Breakdown)
		}
		return view
	})
}

func renderBreakdown(s ui.Styles, b *cipherBreakdown) string {
	table := ui.NewTable("Breakdown ("+b.Scheme.String()+")", "Char", "Value")
	total := 0
	for _, c := range b.Chars {
		if strings.TrimSpace(c.Char) == "" {
			continue
		}
		table.AddRow(c.Char, strconv.Itoa(c.Value))
		total += c.Value
	}
	table.AddHighlightedRow("=", strconv.Itoa(total))
	return table.View(s)
}

func formatEntries(entries []matchdb.Entry) string {
	if len(entries) == 0 {
		return "-"
	}
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.Word + " (" + e.Scheme + ")"
	}
	return strings.Join(parts, ", ")
}

func listSchemes(cmd *cobra.Command, args []string) error {
	names := cipher.SchemeNames()
	return render(cmd.OutOrStdout(), names, func(s ui.Styles) string {
		table := ui.NewTable("Schemes", "#", "Name")
		for i, n := range names {
			table.AddRow(strconv.Itoa(i+1), n)
		}
		return table.View(s)
	})
}

// loadDatabase loads the match database from source using the configured
// timeout and progress interval.
func loadDatabase(ctx context.Context, source string) (*matchdb.Database, error) {
	db := matchdb.New(
		matchdb.WithTimeout(cfg.MatchDBTimeout()),
		matchdb.WithProgressEvery(cfg.MatchDB.ProgressEvery),
	)
	src := matchdb.NewSource(source)
	logger.Info("Loading match database", zap.String("source", src.String()))

	last := -1
	n, err := db.Load(ctx, src, func(p int) {
		if p/10 != last/10 {
			logging.MatchDBDebug("load %s: %d%%", src, p)
		}
		last = p
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load match database: %w", err)
	}
	logger.Info("Match database loaded", zap.Int("records", n))
	return db, nil
}

func joinArgs(args []string) string {
	return strings.Join(args, " ")
}
