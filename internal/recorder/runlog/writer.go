package runlog

import (
	"encoding/json"
	"fmt"
	"github.com/google/uuid"
	"github.com/reweave/reweave/internal/recorder/model"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const fileExt = ".jsonl"

// NewRunID generates a run identifier of the form
// 20060102_150405_deadbeef: sortable by creation time, unique without
// coordination thanks to the random suffix.
func NewRunID(now time.Time) string {
	return now.Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// Writer is the append-only trace log for one run. The underlying file is
// created lazily on the first append and only ever appended to; a single
// append writes one complete line, so a failure partway can at worst leave
// an incomplete trailing line behind.
//
// Writer is safe for concurrent use.
type Writer struct {
	dir   string
	runID string

	mu   sync.Mutex
	file *os.File
}

// NewWriter returns a Writer for a run logging under dir. Nothing is
// created on disk until the first Append.
func NewWriter(dir, runID string) *Writer {
	return &Writer{dir: dir, runID: runID}
}

// RunID returns the run identifier this writer logs for.
func (w *Writer) RunID() string {
	return w.runID
}

// Path returns the log file path the writer appends to.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, w.runID+fileExt)
}

// Append encodes the event and durably appends it as a single line.
func (w *Writer) Append(event model.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode trace event: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		if err := os.MkdirAll(w.dir, 0755); err != nil {
			return fmt.Errorf("create runs directory: %w", err)
		}
		f, err := os.OpenFile(w.Path(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open trace log: %w", err)
		}
		w.file = f
	}

	if _, err := w.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append trace event: %w", err)
	}
	return nil
}

// Close closes the log file if it was ever opened.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
