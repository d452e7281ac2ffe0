package handler

import (
	"github.com/reweave/reweave/internal/recorder/model"
	"github.com/reweave/reweave/internal/viewer_server/service/runstore"
)

// RunDTO identifies one recorded run in listings.
type RunDTO struct {
	// The run identifier, usable in run query parameters
	ID string `json:"id"`
	// Human-readable label derived from the identifier's timestamp
	Label string `json:"label"`
}

// TracesResponseDTO is the response to a trace listing request.
type TracesResponseDTO struct {
	// The run's events ordered by start time
	Traces []model.Event `json:"traces"`
}

// SourceFileDTO is one source file referenced by a run.
type SourceFileDTO struct {
	Path  string `json:"path"`
	Label string `json:"label"`
}

// SourceLineDTO is one line of a served source file.
type SourceLineDTO struct {
	LineNo int    `json:"line_no"`
	Text   string `json:"text"`
}

func mapRunsToDTO(runs []runstore.RunSummary) []RunDTO {
	dto := make([]RunDTO, len(runs))
	for i, run := range runs {
		dto[i] = RunDTO{
			ID:    run.ID,
			Label: run.Label,
		}
	}
	return dto
}

func mapSourceFilesToDTO(files []runstore.SourceFile) []SourceFileDTO {
	dto := make([]SourceFileDTO, len(files))
	for i, file := range files {
		dto[i] = SourceFileDTO{
			Path:  file.Path,
			Label: file.Label,
		}
	}
	return dto
}

func mapSourceLinesToDTO(lines []runstore.SourceLine) []SourceLineDTO {
	dto := make([]SourceLineDTO, len(lines))
	for i, line := range lines {
		dto[i] = SourceLineDTO{
			LineNo: line.LineNo,
			Text:   line.Text,
		}
	}
	return dto
}
