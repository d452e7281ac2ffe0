package runstore

import (
	"errors"
	"fmt"
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/reweave/reweave/pkg/cache"
	"go.uber.org/zap"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	logExt     = ".jsonl"
	archiveExt = ".jsonl.gz"
)

var (
	// ErrNotPermitted is returned for run identifiers that would resolve
	// outside the runs root.
	ErrNotPermitted = errors.New("run identifier not permitted")
	// ErrNotAllowed is returned for source files not referenced by the
	// requested run's events.
	ErrNotAllowed = errors.New("source file not allowed for run")
	// ErrSourceNotFound is returned for an allowed source file that no
	// longer exists on disk.
	ErrSourceNotFound = errors.New("source file not found")
)

// RunSummary identifies one recorded run.
type RunSummary struct {
	ID    string
	Label string
}

// SourceFile is one source file referenced by a run's events.
type SourceFile struct {
	Path  string
	Label string
}

// SourceLine is one line of a served source file, 1-based.
type SourceLine struct {
	LineNo int
	Text   string
}

// RunStore serves recorded runs from the runs directory.
type RunStore interface {
	ListRuns() ([]RunSummary, error)
	LoadEvents(runID string) ([]model.Event, error)
	ListSourceFiles(runID string) ([]SourceFile, error)
	ReadSource(runID string, path string) ([]SourceLine, error)
}

type StoreImpl struct {
	root   string
	events cache.ReadCache[model.Event]
	logger *zap.Logger
}

func NewStoreImpl(root string, events cache.ReadCache[model.Event], logger *zap.Logger) *StoreImpl {
	return &StoreImpl{
		root:   root,
		events: events,
		logger: logger,
	}
}

// ListRuns returns all recorded runs, most recent first. A missing runs
// directory is an empty listing, not an error.
func (s *StoreImpl) ListRuns() ([]RunSummary, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunSummary{}, nil
		}
		return nil, fmt.Errorf("read runs directory: %w", err)
	}

	seen := make(map[string]bool)
	runs := make([]RunSummary, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		id, ok := runIDFromFileName(entry.Name())
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		runs = append(runs, RunSummary{ID: id, Label: runLabel(id)})
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].ID > runs[j].ID
	})
	return runs, nil
}

// ListSourceFiles returns the distinct source files referenced by the
// run's events, in first-seen order.
func (s *StoreImpl) ListSourceFiles(runID string) ([]SourceFile, error) {
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	files := make([]SourceFile, 0)
	for _, event := range events {
		if event.SourceFile == nil || *event.SourceFile == "" {
			continue
		}
		path := *event.SourceFile
		if seen[path] {
			continue
		}
		seen[path] = true
		files = append(files, SourceFile{Path: path, Label: filepath.Base(path)})
	}
	return files, nil
}

// ReadSource serves one source file, line-numbered, but only if the file
// appears as a source_file in at least one of the run's events. The
// allow-list check happens before any filesystem access.
func (s *StoreImpl) ReadSource(runID string, path string) ([]SourceLine, error) {
	events, err := s.LoadEvents(runID)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, event := range events {
		if event.SourceFile != nil && *event.SourceFile == path {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, ErrNotAllowed
	}
	return readSourceLines(path)
}

// runPath resolves a run identifier to its log file path, rejecting any
// identifier that escapes the runs root.
func (s *StoreImpl) runPath(runID string, ext string) (string, error) {
	absRoot, err := filepath.Abs(s.root)
	if err != nil {
		return "", fmt.Errorf("resolve runs root: %w", err)
	}
	abs, err := filepath.Abs(filepath.Join(s.root, runID+ext))
	if err != nil {
		return "", ErrNotPermitted
	}
	rel, err := filepath.Rel(absRoot, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotPermitted
	}
	return abs, nil
}

func runIDFromFileName(name string) (string, bool) {
	switch {
	case strings.HasSuffix(name, archiveExt):
		return strings.TrimSuffix(name, archiveExt), true
	case strings.HasSuffix(name, logExt):
		return strings.TrimSuffix(name, logExt), true
	default:
		return "", false
	}
}

// runLabel derives a human-readable label from the timestamp portion of a
// run identifier, e.g. "20250218_143022_ab12cd34" becomes
// "2025-02-18 14:30:22". Identifiers in any other shape label as
// themselves.
func runLabel(id string) string {
	parts := strings.SplitN(id, "_", 3)
	if len(parts) < 2 || len(parts[0]) != 8 || len(parts[1]) != 6 {
		return id
	}
	date, clock := parts[0], parts[1]
	return fmt.Sprintf("%s-%s-%s %s:%s:%s",
		date[:4], date[4:6], date[6:],
		clock[:2], clock[2:4], clock[4:])
}
