package matchdb

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultProgressEvery is how many data rows pass between parse progress reports.
const DefaultProgressEvery = 50000

// Entry is one (word, scheme) pair that produced a value.
type Entry struct {
	Word   string `json:"word" yaml:"word"`
	Scheme string `json:"scheme" yaml:"scheme"`
}

// ProgressFunc receives a completion percentage between 0 and 100.
// Reports never decrease.
type ProgressFunc func(percent int)

// Index is an immutable inverted index from value to entries.
type Index struct {
	entries map[int64][]Entry
	rows    int
}

// Lookup returns the entries for v in first-seen order, or an empty slice.
// The returned slice is a copy.
func (ix *Index) Lookup(v int64) []Entry {
	if ix == nil {
		return []Entry{}
	}
	src := ix.entries[v]
	out := make([]Entry, len(src))
	copy(out, src)
	return out
}

// Has reports whether any entry has value v.
func (ix *Index) Has(v int64) bool {
	if ix == nil {
		return false
	}
	_, ok := ix.entries[v]
	return ok
}

// Len is the number of distinct values.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.entries)
}

// Rows is the number of data rows read, header excluded.
func (ix *Index) Rows() int {
	if ix == nil {
		return 0
	}
	return ix.rows
}

// Build parses CSV from r into an Index. total is the input size in bytes,
// used only for progress; pass 0 when unknown.
func Build(r io.Reader, total int64, progress ProgressFunc) (*Index, error) {
	return build(context.Background(), r, total, DefaultProgressEvery, progress)
}

// build reports parse progress from 50 to 100 by bytes consumed.
func build(ctx context.Context, r io.Reader, total int64, every int, progress ProgressFunc) (*Index, error) {
	if every <= 0 {
		every = DefaultProgressEvery
	}
	report := newReporter(progress)

	tail := &tailReader{r: r}
	cr := csv.NewReader(tail)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		report.to(100)
		return &Index{entries: map[int64][]Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	schemes := make([]string, len(header))
	for i, h := range header {
		schemes[i] = strings.Trim(strings.TrimSpace(h), `"`)
	}
	schemeName := func(col int) string {
		if col < len(schemes) && schemes[col] != "" {
			return schemes[col]
		}
		return fmt.Sprintf("Cipher %d", col)
	}

	ix := &Index{entries: make(map[int64][]Entry)}
	seen := make(map[int64]map[Entry]struct{})

	// openLine is the start line of a multi-line last field, 0 otherwise.
	// Lazy quoting lets an unclosed quote swallow the rest of the input into
	// that field, so it is checked once the input ends.
	openLine := multiLineField(cr, header)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			if openLine > 0 && !tail.closesQuote() {
				return nil, fmt.Errorf("read row %d: quoted field starting on line %d is never closed", ix.rows, openLine)
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", ix.rows+1, err)
		}
		ix.rows++

		openLine = multiLineField(cr, record)

		if ix.rows%every == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if total > 0 {
				report.to(50 + int(50*cr.InputOffset()/total))
			}
		}

		if len(record) < 2 {
			continue
		}
		word := strings.TrimSpace(strings.Trim(record[0], `"`))
		if word == "" {
			continue
		}

		for col := 1; col < len(record); col++ {
			v, ok := leadingInt(record[col])
			if !ok {
				continue
			}
			e := Entry{Word: word, Scheme: schemeName(col)}
			set := seen[v]
			if set == nil {
				set = make(map[Entry]struct{})
				seen[v] = set
			}
			if _, dup := set[e]; dup {
				continue
			}
			set[e] = struct{}{}
			ix.entries[v] = append(ix.entries[v], e)
		}
	}

	report.to(100)
	return ix, nil
}

// multiLineField returns the start line of record's last field when that
// field spans lines.
func multiLineField(cr *csv.Reader, record []string) int {
	last := len(record) - 1
	if last < 0 || !strings.Contains(record[last], "\n") {
		return 0
	}
	line, _ := cr.FieldPos(last)
	return line
}

// tailReader remembers the last bytes read through it.
type tailReader struct {
	r    io.Reader
	last []byte
}

const tailSize = 64

func (t *tailReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 {
		t.last = append(t.last, p[:n]...)
		if len(t.last) > tailSize {
			t.last = append(t.last[:0], t.last[len(t.last)-tailSize:]...)
		}
	}
	return n, err
}

// closesQuote reports whether the input ends with a quote, ignoring
// trailing line breaks.
func (t *tailReader) closesQuote() bool {
	b := bytes.TrimRight(t.last, "\r\n")
	return len(b) > 0 && b[len(b)-1] == '"'
}

// leadingInt parses an optional sign followed by decimal digits at the start
// of the trimmed cell, ignoring whatever follows ("74.5" is 74).
func leadingInt(cell string) (int64, bool) {
	s := strings.TrimSpace(cell)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// reporter forwards only increases, clamped to [0, 100].
type reporter struct {
	fn   ProgressFunc
	last int
}

func newReporter(fn ProgressFunc) *reporter {
	return &reporter{fn: fn, last: -1}
}

func (r *reporter) to(p int) {
	if r.fn == nil {
		return
	}
	if p > 100 {
		p = 100
	}
	if p < 0 {
		p = 0
	}
	if p <= r.last {
		return
	}
	r.last = p
	r.fn(p)
}
