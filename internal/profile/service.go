package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arjunks/datahound/internal/cache"
	"github.com/arjunks/datahound/internal/store"
	"github.com/arjunks/datahound/pkg/models"
)

// JobTypeProfile is the job type recorded for async profile runs.
const JobTypeProfile = "profile"

// Service runs profile analyses over stored datasets, synchronously or as
// background jobs. Completed reports are kept only in the cache with a TTL;
// results are never written to the database.
type Service struct {
	engine    *Engine
	store     store.Store
	cache     cache.Cache
	logger    *slog.Logger
	resultTTL time.Duration
}

// NewService creates a Service.
func NewService(engine *Engine, st store.Store, ca cache.Cache, logger *slog.Logger, resultTTL time.Duration) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if resultTTL <= 0 {
		resultTTL = 30 * time.Minute
	}
	return &Service{
		engine:    engine,
		store:     st,
		cache:     ca,
		logger:    logger,
		resultTTL: resultTTL,
	}
}

// Run profiles a stored dataset synchronously.
func (s *Service) Run(ctx context.Context, tenantID, datasetID uuid.UUID, cfg models.ProfileConfig, method models.MethodConfig) (*models.Report, error) {
	ds, err := s.store.GetDataset(ctx, datasetID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}
	return s.engine.Analyze(ctx, ds.Rows, ds.Columns, cfg, method)
}

// Trigger creates a pending job and runs the analysis in a background
// goroutine. Returns the job immediately.
func (s *Service) Trigger(ctx context.Context, tenantID, datasetID uuid.UUID, cfg models.ProfileConfig, method models.MethodConfig) (*models.Job, error) {
	ds, err := s.store.GetDataset(ctx, datasetID, tenantID)
	if err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	job := &models.Job{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Type:      JobTypeProfile,
		Status:    models.JobStatusPending,
		DatasetID: &datasetID,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}
	_ = s.cache.SetJobStatus(ctx, job.ID, models.JobStatusPending, s.resultTTL)

	go s.runJob(ds, job.ID, cfg, method)

	return job, nil
}

// runJob performs the analysis in a goroutine. It recovers from panics and
// always marks the job as completed or failed.
func (s *Service) runJob(ds *models.Dataset, jobID uuid.UUID, cfg models.ProfileConfig, method models.MethodConfig) {
	ctx := context.Background()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic in profile job", "error", r, "job_id", jobID)
			_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
				store.WithErrorMessage(fmt.Sprintf("panic: %v", r)))
			_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, s.resultTTL)
		}
	}()

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusRunning)
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusRunning, s.resultTTL)

	report, err := s.engine.Analyze(ctx, ds.Rows, ds.Columns, cfg, method)
	if err != nil {
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
			store.WithErrorMessage(err.Error()))
		_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, s.resultTTL)
		return
	}

	payload, err := json.Marshal(report)
	if err != nil {
		_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusFailed,
			store.WithErrorMessage(fmt.Sprintf("encoding report: %v", err)))
		_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusFailed, s.resultTTL)
		return
	}
	if err := s.cache.Set(ctx, cache.ReportKey(jobID), payload, s.resultTTL); err != nil {
		s.logger.Error("caching report failed", "job_id", jobID, "error", err)
	}

	_ = s.store.UpdateJobStatus(ctx, jobID, models.JobStatusCompleted)
	_ = s.cache.SetJobStatus(ctx, jobID, models.JobStatusCompleted, s.resultTTL)
}

// Job looks up a job by id.
func (s *Service) Job(ctx context.Context, jobID, tenantID uuid.UUID) (*models.Job, error) {
	return s.store.GetJob(ctx, jobID, tenantID)
}

// Result fetches the cached report of a completed job. The second return
// is false when the report has expired or was never produced.
func (s *Service) Result(ctx context.Context, jobID uuid.UUID) (*models.Report, bool, error) {
	payload, ok, err := s.cache.Get(ctx, cache.ReportKey(jobID))
	if err != nil || !ok {
		return nil, false, err
	}
	var report models.Report
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decoding cached report: %w", err)
	}
	return &report, true, nil
}
