package handler

import (
	"context"
	"errors"
	"github.com/reweave/reweave/internal/viewer_server/service/runstore"
	"go.uber.org/zap"
	"net/http"
)

// RunsHandler creates a handler listing recorded runs, most recent first.
func RunsHandler(
	ctx context.Context,
	rs runstore.RunStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runs, err := rs.ListRuns()
		if err != nil {
			logger.Error("Error encountered when listing runs", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		writeJSON(w, mapRunsToDTO(runs), logger)
	}
}

// TracesHandler creates a handler returning one run's events ordered by
// start time.
func TracesHandler(
	ctx context.Context,
	rs runstore.RunStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		events, err := rs.LoadEvents(runID)
		if err != nil {
			if errors.Is(err, runstore.ErrNotPermitted) {
				HttpError(w, "not allowed", http.StatusForbidden, logger)
				return
			}
			logger.Error("Error encountered when loading traces",
				zap.String("run_id", runID), zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		writeJSON(w, TracesResponseDTO{Traces: events}, logger)
	}
}

// FilesHandler creates a handler listing the distinct source files
// referenced by one run's events.
func FilesHandler(
	ctx context.Context,
	rs runstore.RunStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		files, err := rs.ListSourceFiles(runID)
		if err != nil {
			if errors.Is(err, runstore.ErrNotPermitted) {
				HttpError(w, "not allowed", http.StatusForbidden, logger)
				return
			}
			logger.Error("Error encountered when listing source files",
				zap.String("run_id", runID), zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
		writeJSON(w, mapSourceFilesToDTO(files), logger)
	}
}

// SourceHandler creates a handler serving a line-numbered source file.
// Only files referenced by the run's own events are served; anything else
// is rejected before the filesystem is touched.
func SourceHandler(
	ctx context.Context,
	rs runstore.RunStore,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		runID := r.URL.Query().Get("run")
		file := r.URL.Query().Get("file")
		lines, err := rs.ReadSource(runID, file)
		if err != nil {
			switch {
			case errors.Is(err, runstore.ErrNotPermitted), errors.Is(err, runstore.ErrNotAllowed):
				HttpError(w, "not allowed", http.StatusForbidden, logger)
			case errors.Is(err, runstore.ErrSourceNotFound):
				HttpError(w, "file not found", http.StatusNotFound, logger)
			default:
				logger.Error("Error encountered when reading source file",
					zap.String("run_id", runID), zap.String("file", file), zap.Error(err))
				HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			}
			return
		}
		writeJSON(w, mapSourceLinesToDTO(lines), logger)
	}
}
