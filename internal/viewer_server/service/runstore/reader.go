package runstore

import (
	"bufio"
	"encoding/json"
	"fmt"
	"github.com/klauspost/compress/gzip"
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/valyala/fastjson"
	"go.uber.org/zap"
	"io"
	"os"
	"sort"
	"strings"
)

// Writers can die mid-append, so a trailing line may be truncated; lines
// longer than this are treated the same way as corrupt ones.
const maxLineBytes = 16 * 1024 * 1024

// LoadEvents loads a run's events sorted ascending by start timestamp.
// A missing run or log yields an empty slice. Lines that fail to decode
// are skipped: a partial trailing write must not abort the whole read.
func (s *StoreImpl) LoadEvents(runID string) ([]model.Event, error) {
	if runID == "" {
		return []model.Event{}, nil
	}

	path, version, err := s.findRunLog(runID)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return []model.Event{}, nil
	}

	key := runID + "|" + version
	if cached, err := s.events.Get(key); err == nil {
		return cached, nil
	}

	reader, closeFn, err := openRunLog(path)
	if err != nil {
		// The log vanished or turned unreadable between stat and open;
		// treat it like a missing run.
		s.logger.Warn("failed to open trace log", zap.String("run_id", runID), zap.Error(err))
		return []model.Event{}, nil
	}
	defer closeFn()

	events := decodeEvents(reader)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].TimestampStart < events[j].TimestampStart
	})

	if err := s.events.Put(key, events); err != nil {
		s.logger.Warn("failed to cache decoded events", zap.String("run_id", runID), zap.Error(err))
	}
	return events, nil
}

// findRunLog locates the run's log file, preferring a live .jsonl over a
// gzip archive, and returns a version token (size + mtime) for caching.
func (s *StoreImpl) findRunLog(runID string) (path string, version string, err error) {
	for _, ext := range []string{logExt, archiveExt} {
		candidate, err := s.runPath(runID, ext)
		if err != nil {
			return "", "", err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			continue
		}
		return candidate, fmt.Sprintf("%d|%d", info.Size(), info.ModTime().UnixNano()), nil
	}
	return "", "", nil
}

func openRunLog(path string) (io.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		return gz, func() {
			gz.Close()
			f.Close()
		}, nil
	}
	return f, func() { f.Close() }, nil
}

func decodeEvents(r io.Reader) []model.Event {
	events := make([]model.Event, 0)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		// Cheap structural check first; a truncated trailing line never
		// reaches the strict decoder.
		if err := fastjson.ValidateBytes(line); err != nil {
			continue
		}
		var event model.Event
		if err := json.Unmarshal(line, &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events
}

func readSourceLines(path string) ([]SourceLine, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrSourceNotFound
		}
		return nil, fmt.Errorf("open source file: %w", err)
	}
	defer f.Close()

	lines := make([]SourceLine, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for i := 1; scanner.Scan(); i++ {
		lines = append(lines, SourceLine{LineNo: i, Text: scanner.Text()})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read source file: %w", err)
	}
	return lines, nil
}
