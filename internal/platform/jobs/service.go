package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"hrflow/internal/platform/db"
)

type Service struct {
	DB      db.Querier
	workers int
	queue   chan job
	wg      sync.WaitGroup
}

type job struct {
	Type string
	Run  func(context.Context) (any, error)
}

// New builds a queue drained by workers goroutines. DB may be nil, in which
// case runs are not recorded.
func New(q db.Querier, workers, size int) *Service {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = 128
	}
	return &Service{
		DB:      q,
		workers: workers,
		queue:   make(chan job, size),
	}
}

func (s *Service) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
}

// Wait blocks until every worker has returned after ctx is cancelled.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Enqueue never blocks; a full queue drops the job and reports false.
func (s *Service) Enqueue(jobType string, run func(context.Context) (any, error)) bool {
	select {
	case s.queue <- job{Type: jobType, Run: run}:
		return true
	default:
		slog.Warn("job queue full", "jobType", jobType)
		return false
	}
}

func (s *Service) RunNow(ctx context.Context, jobType string, run func(context.Context) (any, error)) (any, error) {
	return s.runJob(ctx, job{Type: jobType, Run: run})
}

func (s *Service) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case j := <-s.queue:
			if _, err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		}
	}
}

// drain runs whatever is already queued on shutdown with a fresh context so
// accepted notifications still go out.
func (s *Service) drain() {
	for {
		select {
		case j := <-s.queue:
			if _, err := s.runJob(context.Background(), j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "err", err)
			}
		default:
			return
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) (details any, err error) {
	runID := ""
	if s.DB != nil {
		if err := s.DB.QueryRow(ctx, `
    INSERT INTO job_runs (job_type, status)
    VALUES ($1,$2)
    RETURNING id
  `, j.Type, "running").Scan(&runID); err != nil {
			slog.Warn("job run insert failed", "err", err)
		}
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Error("job panicked", "jobType", j.Type, "panic", r)
			err = errPanicked
		}
		s.complete(ctx, runID, details, err)
	}()
	return j.Run(ctx)
}

func (s *Service) complete(ctx context.Context, runID string, details any, runErr error) {
	if runID == "" || s.DB == nil {
		return
	}
	status := "completed"
	if runErr != nil {
		status = "failed"
	}
	detailsJSON, marshalErr := json.Marshal(details)
	if marshalErr != nil {
		slog.Warn("job details marshal failed", "err", marshalErr)
		detailsJSON = []byte("{}")
	}
	if _, updErr := s.DB.Exec(ctx, `
      UPDATE job_runs
      SET status = $1, details_json = $2, completed_at = now()
      WHERE id = $3
    `, status, detailsJSON, runID); updErr != nil {
		slog.Warn("job run update failed", "err", updErr)
	}
}
