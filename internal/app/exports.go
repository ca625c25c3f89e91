package service

import (
	"context"
	"fmt"

	"github.com/okian/lingprofile/internal/adapters/export"
	"github.com/okian/lingprofile/internal/adapters/mq/queue"
	"github.com/okian/lingprofile/internal/adapters/mq/worker"
	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/pkg/logger"
	"github.com/okian/lingprofile/pkg/metrics"
)

// SubmitExport queues a job. A job id seen before is acknowledged with its
// current status and not run again. When the queue is full the id is
// forgotten so the caller may retry, and queue.ErrFull is returned.
func (s *Service) SubmitExport(ctx context.Context, job model.ExportJob) (model.ExportStatus, error) {
	if _, err := s.running(); err != nil {
		return model.ExportStatus{}, err
	}
	if err := job.Validate(); err != nil {
		return model.ExportStatus{}, err
	}
	f, err := export.ParseFormat(job.Format)
	if err != nil {
		return model.ExportStatus{}, err
	}
	job.Format = string(f)
	if job.RequestedAt.IsZero() {
		job.RequestedAt = s.now()
	}

	if s.deduper.SeenAndRecord(ctx, job.JobID) {
		metrics.RecordExportDuplicate()
		st, _ := s.ExportStatus(job.JobID)
		if st.Job.JobID == "" {
			st = model.ExportStatus{Job: job, State: model.ExportQueued}
		}
		st.Duplicate = true
		return st, nil
	}

	st := model.ExportStatus{Job: job, State: model.ExportQueued}
	s.jobsMu.Lock()
	s.pruneJobsLocked()
	s.jobs[job.JobID] = st
	s.jobsMu.Unlock()

	if !s.queue.Enqueue(ctx, job) {
		s.deduper.Unrecord(ctx, job.JobID)
		s.jobsMu.Lock()
		delete(s.jobs, job.JobID)
		s.jobsMu.Unlock()
		return model.ExportStatus{}, fmt.Errorf("%w: job %s", queue.ErrFull, job.JobID)
	}
	s.logger.Debug(ctx, "export queued",
		logger.String("job_id", job.JobID),
		logger.String("case_id", job.CaseID),
		logger.String("format", job.Format),
	)
	return st, nil
}

// ExportStatus returns what is known about a job.
func (s *Service) ExportStatus(jobID string) (model.ExportStatus, bool) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	st, ok := s.jobs[jobID]
	return st, ok
}

// pruneJobsLocked drops finished jobs once as many are tracked as the
// deduper remembers.
func (s *Service) pruneJobsLocked() {
	if len(s.jobs) < s.dedupeSize {
		return
	}
	for id, st := range s.jobs {
		if st.State != model.ExportQueued {
			delete(s.jobs, id)
		}
	}
}

// recordResult is called by export workers when a job ends.
func (s *Service) recordResult(_ context.Context, r worker.Result) {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	st := s.jobs[r.Job.JobID]
	st.Job = r.Job
	st.FinishedAt = s.now()
	if r.Err != nil {
		st.State = model.ExportFailed
		st.Error = r.Err.Error()
	} else {
		st.State = model.ExportDone
		st.Path = r.Path
	}
	s.jobs[r.Job.JobID] = st
}
