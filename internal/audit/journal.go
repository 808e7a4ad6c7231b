// Package audit keeps an append-only history of phonebook mutations.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"rhystmorgan/phoneterm/internal/contactbook"
)

const (
	HistoryFile = "history.jsonl"

	defaultBatchSize     = 10
	defaultFlushInterval = time.Minute
)

// Option configures a Journal.
type Option func(*Journal)

// WithBatchSize sets how many entries are buffered before a write.
func WithBatchSize(n int) Option {
	return func(j *Journal) {
		if n > 0 {
			j.batchSize = n
		}
	}
}

// WithFlushInterval sets how long a partial batch may wait before it is written.
func WithFlushInterval(d time.Duration) Option {
	return func(j *Journal) {
		if d > 0 {
			j.flushInterval = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(j *Journal) {
		j.now = now
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(j *Journal) {
		j.logger = logger
	}
}

// Journal buffers entries in memory and appends them to a JSON-lines file
// when the batch fills, when the flush timer fires, and on Close.
type Journal struct {
	path          string
	batchSize     int
	flushInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger

	batchMu    sync.Mutex
	batch      []Entry
	flushTimer *time.Timer
	closed     bool

	// fileMu orders writes so flushed batches land in record order.
	fileMu sync.Mutex
}

var _ contactbook.Recorder = (*Journal)(nil)

// NewJournal returns a journal appending to HistoryFile inside dataDir.
func NewJournal(dataDir string, opts ...Option) (*Journal, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	j := &Journal{
		path:          filepath.Join(dataDir, HistoryFile),
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(j)
	}
	j.batch = make([]Entry, 0, j.batchSize)

	j.batchMu.Lock()
	j.flushTimer = time.AfterFunc(j.flushInterval, j.tick)
	j.batchMu.Unlock()
	return j, nil
}

func (j *Journal) Path() string {
	return j.path
}

// Record implements contactbook.Recorder.
func (j *Journal) Record(ctx context.Context, event contactbook.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry := Entry{
		ID:        uuid.NewString(),
		Action:    actionFor(event.Kind),
		ContactID: event.Contact.ID,
		Name:      event.Contact.Name,
		Number:    event.Contact.Number,
		Timestamp: j.now().UTC(),
	}

	j.batchMu.Lock()
	if j.closed {
		j.batchMu.Unlock()
		return fmt.Errorf("journal is closed")
	}
	j.batch = append(j.batch, entry)
	full := len(j.batch) >= j.batchSize
	j.batchMu.Unlock()

	if full {
		return j.Flush()
	}
	return nil
}

// Flush writes all pending entries to the journal file.
func (j *Journal) Flush() error {
	j.fileMu.Lock()
	defer j.fileMu.Unlock()

	j.batchMu.Lock()
	if len(j.batch) == 0 {
		j.batchMu.Unlock()
		return nil
	}
	pending := make([]Entry, len(j.batch))
	copy(pending, j.batch)
	j.batch = j.batch[:0]
	j.batchMu.Unlock()

	file, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, entry := range pending {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal history entry: %w", err)
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write history entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write history: %w", err)
	}

	j.logger.Debug("history flushed", zap.Int("entries", len(pending)))
	return nil
}

// History returns up to limit entries, newest first. A limit of zero or less
// returns everything.
func (j *Journal) History(ctx context.Context, limit int) ([]Entry, error) {
	if err := j.Flush(); err != nil {
		return nil, err
	}

	j.fileMu.Lock()
	defer j.fileMu.Unlock()

	file, err := os.Open(j.path)
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open history file: %w", err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var entry Entry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			j.logger.Warn("skipping malformed history line", zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	newest := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		newest = append(newest, entries[i])
		if limit > 0 && len(newest) == limit {
			break
		}
	}
	return newest, nil
}

// Close stops the flush timer and writes whatever is still buffered.
func (j *Journal) Close() error {
	j.batchMu.Lock()
	j.closed = true
	j.batchMu.Unlock()

	j.flushTimer.Stop()
	return j.Flush()
}

func (j *Journal) tick() {
	if err := j.Flush(); err != nil {
		j.logger.Warn("periodic history flush failed", zap.Error(err))
	}

	j.batchMu.Lock()
	defer j.batchMu.Unlock()
	if !j.closed {
		j.flushTimer.Reset(j.flushInterval)
	}
}
