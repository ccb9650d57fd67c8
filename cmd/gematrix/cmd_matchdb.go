package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gematrix/cmd/gematrix/ui"
	"gematrix/internal/matchdb"
)

var watchSource string

// lookupCmd looks values up in the match database
var lookupCmd = &cobra.Command{
	Use:   "lookup [value...]",
	Short: "Look values up in the match database",
	Long: `Loads the word/value database and lists the words that produce each
value, with the scheme that produced it. Without --db the configured
source is used.

Example:
  gematrix lookup 33 322 --db ./words.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

// watchCmd keeps a local database loaded and answers lookups from stdin
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch a local database file and answer lookups from stdin",
	Long: `Loads a local CSV database, reloads it whenever the file changes and
answers one lookup per line read from standard input. A failed reload
keeps serving the previous contents.

Example:
  gematrix watch --db ./words.csv`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	lookupCmd.Flags().StringVar(&dbSource, "db", "", "Match database (URL or CSV path)")
	watchCmd.Flags().StringVar(&watchSource, "db", "", "Local CSV file to watch")
	_ = watchCmd.MarkFlagRequired("db")
}

type lookupResult struct {
	Value   int64           `json:"value" yaml:"value"`
	Entries []matchdb.Entry `json:"entries" yaml:"entries"`
}

func parseValues(args []string) ([]int64, error) {
	values := make([]int64, 0, len(args))
	for _, a := range args {
		v, err := strconv.ParseInt(strings.TrimSpace(a), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", a, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func runLookup(cmd *cobra.Command, args []string) error {
	values, err := parseValues(args)
	if err != nil {
		return err
	}
	source := dbSource
	if source == "" {
		source = cfg.MatchDB.Source
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	db, err := loadDatabase(ctx, source)
	if err != nil {
		return err
	}

	results := make([]lookupResult, 0, len(values))
	for _, v := range values {
		results = append(results, lookupResult{Value: v, Entries: db.Lookup(v)})
	}
	return render(cmd.OutOrStdout(), results, func(s ui.Styles) string {
		return renderLookups(s, results)
	})
}

func renderLookups(s ui.Styles, results []lookupResult) string {
	table := ui.NewTable("Matches", "Value", "Word", "Scheme")
	for _, r := range results {
		value := strconv.FormatInt(r.Value, 10)
		if len(r.Entries) == 0 {
			table.AddRow(value, "-", "-")
			continue
		}
		for _, e := range r.Entries {
			table.AddHighlightedRow(value, e.Word, e.Scheme)
		}
	}
	return table.View(s)
}

func runWatch(cmd *cobra.Command, args []string) error {
	src, ok := matchdb.NewSource(watchSource).(*matchdb.FileSource)
	if !ok {
		return fmt.Errorf("watch needs a local file, got %s", watchSource)
	}

	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	// No --timeout here; the command runs until stdin closes or a signal arrives.
	ctx, stop := signal.NotifyContext(baseCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	db := matchdb.New(
		matchdb.WithTimeout(cfg.MatchDBTimeout()),
		matchdb.WithProgressEvery(cfg.MatchDB.ProgressEvery),
	)
	n, err := db.Load(ctx, src, nil)
	if err != nil {
		return fmt.Errorf("failed to load match database: %w", err)
	}
	fmt.Fprintf(out, "Loaded %d records from %s\n", n, src)

	w, err := matchdb.NewWatcher(db, src,
		matchdb.WithDebounce(cfg.WatchDebounce()),
		matchdb.WithReloadHook(func(records int, err error) {
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "reload failed, keeping previous data: %v\n", err)
				return
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "reloaded %d records\n", records)
		}),
	)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()
	logger.Info("Watching match database", zap.String("path", src.Path))

	return answerLookups(ctx, cmd.InOrStdin(), out, db)
}

// answerLookups prints the matches for every value read from in, one per
// line, until in is exhausted or ctx ends. Blank lines are ignored.
func answerLookups(ctx context.Context, in io.Reader, out io.Writer, db *matchdb.Database) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			values, err := parseValues(strings.Fields(line))
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			results := make([]lookupResult, 0, len(values))
			for _, v := range values {
				results = append(results, lookupResult{Value: v, Entries: db.Lookup(v)})
			}
			if err := render(out, results, func(s ui.Styles) string {
				return renderLookups(s, results)
			}); err != nil {
				return err
			}
		}
	}
}
