// Package matchdb loads a CSV of words and their cipher values into an
// in-memory inverted index keyed by value.
//
// A Database owns one index. Load builds a fresh index off to the side and
// swaps it in only on success, so readers never see a partial index and a
// failed load leaves the previous one in place. A newer Load cancels any
// load still in flight; the older call returns ErrSuperseded.
package matchdb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"gematrix/internal/logging"
)

// EstimatedSize stands in for the content length when a source doesn't report one.
const EstimatedSize = 50_000_000

// maxPrealloc bounds how much of a reported size fetch reserves up front.
// Larger bodies still load; the buffer grows as bytes arrive.
const maxPrealloc = 64 << 20

// ErrSuperseded is returned by a Load that was replaced by a newer Load or
// by Clear before it could install its index.
var ErrSuperseded = errors.New("load superseded")

// Status is a snapshot of the database state.
type Status struct {
	Loaded      bool      `json:"loaded" yaml:"loaded"`
	Loading     bool      `json:"loading" yaml:"loading"`
	RecordCount int       `json:"recordCount" yaml:"record_count"`
	Error       string    `json:"error,omitempty" yaml:"error,omitempty"`
	LoadID      string    `json:"loadId,omitempty" yaml:"load_id,omitempty"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	LoadedAt    time.Time `json:"loadedAt,omitempty" yaml:"loaded_at,omitempty"`
}

// Database is a caller-owned, reloadable match index. Lookups are safe
// from any goroutine, including while a Load runs.
type Database struct {
	index atomic.Pointer[Index]

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	status     Status

	progressEvery int
	timeout       time.Duration
}

// Option configures a Database.
type Option func(*Database)

// WithProgressEvery sets how many rows pass between parse progress reports.
func WithProgressEvery(rows int) Option {
	return func(db *Database) { db.progressEvery = rows }
}

// WithTimeout bounds each Load. Zero means no limit beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(db *Database) { db.timeout = d }
}

// New returns an empty database.
func New(opts ...Option) *Database {
	db := &Database{progressEvery: DefaultProgressEvery}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Load reads src, builds a new index and installs it, returning the number
// of data rows read. Progress goes from 0 to 50 while downloading and from
// 50 to 100 while parsing.
func (db *Database) Load(ctx context.Context, src Source, onProgress ProgressFunc) (int, error) {
	loadCtx, cancel := context.WithCancel(ctx)
	if db.timeout > 0 {
		var cancelTimeout context.CancelFunc
		loadCtx, cancelTimeout = context.WithTimeout(loadCtx, db.timeout)
		defer cancelTimeout()
	}
	defer cancel()

	loadID := uuid.NewString()

	db.mu.Lock()
	if db.cancel != nil {
		db.cancel()
	}
	db.generation++
	gen := db.generation
	db.cancel = cancel
	db.status.Loading = true
	db.status.LoadID = loadID
	db.status.Source = src.String()
	db.status.Error = ""
	db.mu.Unlock()

	log := logging.Get(logging.CategoryMatchDB).With("load_id", loadID)
	log.Info("load started from %s", src)
	timer := logging.StartTimer(logging.CategoryMatchDB, "load "+loadID)

	ix, err := db.fetch(loadCtx, src, newReporter(onProgress).to)
	timer.Stop()

	db.mu.Lock()
	defer db.mu.Unlock()

	if gen != db.generation {
		log.Info("load superseded")
		return 0, fmt.Errorf("%w: load %s from %s", ErrSuperseded, loadID, src)
	}
	db.cancel = nil
	db.status.Loading = false

	if err != nil {
		db.status.Error = err.Error()
		log.Error("load failed: %v", err)
		return 0, fmt.Errorf("load %s: %w", src, err)
	}

	db.index.Store(ix)
	db.status.Loaded = true
	db.status.RecordCount = ix.Rows()
	db.status.LoadedAt = time.Now()
	log.Info("loaded %d rows, %d distinct values", ix.Rows(), ix.Len())
	return ix.Rows(), nil
}

// fetch downloads the whole body, then parses it.
func (db *Database) fetch(ctx context.Context, src Source, progress ProgressFunc) (*Index, error) {
	rc, size, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	estimate := size
	if estimate <= 0 {
		estimate = EstimatedSize
	}

	var buf bytes.Buffer
	if size > 0 && size <= maxPrealloc {
		buf.Grow(int(size))
	}
	chunk := make([]byte, 32*1024)
	var received int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := rc.Read(chunk)
		if n > 0 {
			buf.Write(chunk[:n])
			received += int64(n)
			progress(min(50, int(50*received/estimate)))
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
	}
	progress(50)
	logging.MatchDBDebug("downloaded %d bytes from %s", received, src)

	return build(ctx, bytes.NewReader(buf.Bytes()), int64(buf.Len()), db.progressEvery, progress)
}

// Lookup returns the entries for v, or an empty slice when v is absent or
// nothing is loaded.
func (db *Database) Lookup(v int64) []Entry {
	return db.index.Load().Lookup(v)
}

// Has reports whether v has any entries.
func (db *Database) Has(v int64) bool {
	return db.index.Load().Has(v)
}

// IsLoaded reports whether a load has ever succeeded since the last Clear.
func (db *Database) IsLoaded() bool {
	return db.index.Load() != nil
}

// Status returns a snapshot of the load state.
func (db *Database) Status() Status {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.status
}

// Clear drops the index and cancels any load in flight.
func (db *Database) Clear() {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.cancel != nil {
		db.cancel()
		db.cancel = nil
	}
	db.generation++
	db.index.Store(nil)
	db.status = Status{}
	logging.MatchDB("index cleared")
}
