package smoke

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/lingprofile/internal/domain/model"
	"github.com/okian/lingprofile/internal/domain/scoring"
	"github.com/okian/lingprofile/pkg/logger"
)

// Export submission retry constants.
const (
	maxSubmitAttempts = 20
	submitBackoff     = 25 * time.Millisecond
)

type testRequest struct {
	TestID string  `json:"test_id"`
	Value  float64 `json:"value"`
	Scale  string  `json:"scale"`
}

type testResponse struct {
	Case    *model.Case       `json:"case"`
	Applied model.AppliedTest `json:"applied"`
}

type exportRequest struct {
	JobID  string `json:"job_id"`
	CaseID string `json:"case_id"`
	Format string `json:"format"`
}

type ackResponse struct {
	Status    string             `json:"status"`
	Duplicate bool               `json:"duplicate"`
	Job       model.ExportStatus `json:"job"`
}

type counters struct {
	saved, applied, submitted, duplicate, rejected, done, failed, mismatches atomic.Int64
}

// Run executes the complete smoke run and returns its statistics. A run with
// failed exports or verification mismatches returns ErrVerification.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	log := logger.Get().Named("smoke")
	stats := &Stats{StartTime: time.Now()}
	c := newClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("cases", cfg.Cases),
		logger.Int("workers", cfg.Workers),
		logger.String("format", cfg.Format))

	if _, err := c.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("%w: %w", ErrUnhealthy, err)
	}

	samples := generateCases(cfg.Cases)
	stats.CasesGenerated = len(samples)

	var cnt counters
	jobs := make(chan string, len(samples))
	work := make(chan sample, max(cfg.Workers, 1)*2)

	var wg sync.WaitGroup
	for i := 0; i < max(cfg.Workers, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for s := range work {
				jobID, err := processCase(ctx, c, cfg, s, &cnt)
				if err != nil {
					log.Warn(ctx, "case failed", logger.String("case", s.Case.ID), logger.Error(err))
					continue
				}
				if cfg.Verbose {
					log.Debug(ctx, "case processed", logger.String("case", s.Case.ID), logger.String("job", jobID))
				}
				jobs <- jobID
			}
		}()
	}

feed:
	for _, s := range samples {
		select {
		case <-ctx.Done():
			break feed
		case work <- s:
		}
	}
	close(work)
	wg.Wait()
	close(jobs)

	for jobID := range jobs {
		st, err := awaitExport(ctx, c, cfg.PollInterval, jobID)
		if err != nil {
			log.Warn(ctx, "export status unavailable", logger.String("job", jobID), logger.Error(err))
			cnt.failed.Add(1)
			continue
		}
		if st.State == model.ExportDone {
			cnt.done.Add(1)
		} else {
			log.Warn(ctx, "export failed", logger.String("job", jobID), logger.String("error", st.Error))
			cnt.failed.Add(1)
		}
	}

	stats.CasesSaved = int(cnt.saved.Load())
	stats.TestsApplied = int(cnt.applied.Load())
	stats.ExportsSubmitted = int(cnt.submitted.Load())
	stats.ExportsDuplicate = int(cnt.duplicate.Load())
	stats.ExportsRejected = int(cnt.rejected.Load())
	stats.ExportsDone = int(cnt.done.Load())
	stats.ExportsFailed = int(cnt.failed.Load())
	stats.Mismatches = int(cnt.mismatches.Load())
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	logStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Mismatches > 0 || stats.ExportsFailed > 0 || stats.ExportsDone < stats.CasesGenerated {
		return stats, fmt.Errorf("%w: %d mismatches, %d of %d exports done",
			ErrVerification, stats.Mismatches, stats.ExportsDone, stats.CasesGenerated)
	}
	return stats, nil
}

// processCase saves s, applies the percentile test, checks the analysis and
// submits an export twice, expecting the second submission to be a duplicate.
func processCase(ctx context.Context, c *client, cfg *Config, s sample, cnt *counters) (string, error) {
	id := url.PathEscape(s.Case.ID)

	if _, err := c.do(ctx, http.MethodPost, "/cases", s.Case, nil); err != nil {
		return "", err
	}
	cnt.saved.Add(1)

	var applied testResponse
	req := testRequest{TestID: appliedTestID, Value: s.Percentile, Scale: string(scoring.Percentile)}
	if _, err := c.do(ctx, http.MethodPost, "/cases/"+id+"/tests", req, &applied, http.StatusCreated); err != nil {
		return "", err
	}
	cnt.applied.Add(1)
	if err := verifyApplied(s, applied); err != nil {
		cnt.mismatches.Add(1)
		return "", err
	}

	var analysis struct {
		CaseID string `json:"case_id"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/cases/"+id+"/analysis", nil, &analysis); err != nil {
		return "", err
	}
	if analysis.CaseID != s.Case.ID {
		cnt.mismatches.Add(1)
		return "", fmt.Errorf("%w: analysis for %q returned case %q", ErrVerification, s.Case.ID, analysis.CaseID)
	}

	job := exportRequest{JobID: uuid.NewString(), CaseID: s.Case.ID, Format: cfg.Format}
	if err := submitExport(ctx, c, job, cnt); err != nil {
		return "", err
	}

	var ack ackResponse
	if _, err := c.do(ctx, http.MethodPost, "/exports", job, &ack, http.StatusOK); err != nil {
		return "", err
	}
	if !ack.Duplicate {
		cnt.mismatches.Add(1)
		return "", fmt.Errorf("%w: resubmitted job %s not reported as duplicate", ErrVerification, job.JobID)
	}
	cnt.duplicate.Add(1)
	return job.JobID, nil
}

// submitExport posts job, retrying with the same id while the queue is full.
func submitExport(ctx context.Context, c *client, job exportRequest, cnt *counters) error {
	for attempt := 1; ; attempt++ {
		code, err := c.do(ctx, http.MethodPost, "/exports", job, nil, http.StatusAccepted, http.StatusTooManyRequests)
		if err != nil {
			return err
		}
		if code == http.StatusAccepted {
			cnt.submitted.Add(1)
			return nil
		}
		cnt.rejected.Add(1)
		if attempt == maxSubmitAttempts {
			return fmt.Errorf("%w: job %s rejected %d times", ErrStatus, job.JobID, attempt)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * submitBackoff):
		}
	}
}

// awaitExport polls the job until it leaves the queued state.
func awaitExport(ctx context.Context, c *client, interval time.Duration, jobID string) (model.ExportStatus, error) {
	for {
		var st model.ExportStatus
		if _, err := c.do(ctx, http.MethodGet, "/exports/"+url.PathEscape(jobID), nil, &st); err != nil {
			return st, err
		}
		if st.State != model.ExportQueued {
			return st, nil
		}
		select {
		case <-ctx.Done():
			return st, ctx.Err()
		case <-time.After(interval):
		}
	}
}

func logStats(ctx context.Context, log logger.Logger, s *Stats) {
	var perSecond float64
	if s.Duration > 0 {
		perSecond = float64(s.CasesSaved) / s.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("casesGenerated", s.CasesGenerated),
		logger.Int("casesSaved", s.CasesSaved),
		logger.Int("testsApplied", s.TestsApplied),
		logger.Int("exportsSubmitted", s.ExportsSubmitted),
		logger.Int("exportsDuplicate", s.ExportsDuplicate),
		logger.Int("exportsRejected", s.ExportsRejected),
		logger.Int("exportsDone", s.ExportsDone),
		logger.Int("exportsFailed", s.ExportsFailed),
		logger.Int("mismatches", s.Mismatches),
		logger.Duration("duration", s.Duration),
		logger.Float64("casesPerSecond", perSecond))
}
