package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ExportJob asks for one case to be rendered to a file in the given format.
// Submitting the same JobID twice renders once.
type ExportJob struct {
	JobID       string    `json:"job_id"`
	CaseID      string    `json:"case_id"`
	Format      string    `json:"format"`
	RequestedAt time.Time `json:"requested_at"`
}

// NewExportJob fills in a random job id when none is given.
func NewExportJob(jobID, caseID, format string, now time.Time) ExportJob {
	if strings.TrimSpace(jobID) == "" {
		jobID = uuid.NewString()
	}
	return ExportJob{JobID: jobID, CaseID: caseID, Format: format, RequestedAt: now}
}

// Validate checks that the job names a case and a format.
func (j ExportJob) Validate() error {
	if strings.TrimSpace(j.CaseID) == "" {
		return ErrMissingID
	}
	if strings.TrimSpace(j.Format) == "" {
		return ErrMissingFormat
	}
	return nil
}

// ExportState is the lifecycle of a submitted export job.
type ExportState string

const (
	ExportQueued ExportState = "queued"
	ExportDone   ExportState = "done"
	ExportFailed ExportState = "failed"
)

// ExportStatus reports where a job stands. Path is set once the file is
// written; Error once it failed.
type ExportStatus struct {
	Job        ExportJob   `json:"job"`
	State      ExportState `json:"state"`
	Duplicate  bool        `json:"duplicate"`
	Path       string      `json:"path,omitempty"`
	Error      string      `json:"error,omitempty"`
	FinishedAt time.Time   `json:"finished_at,omitzero"`
}
