package services

import (
	"context"
	"sync"

	"nft-backend/internal/models"
	"nft-backend/internal/repository"
)

// BatchStore keeps finished batch reports
type BatchStore interface {
	Save(ctx context.Context, report *models.BatchReport) error
	// Get returns ErrBatchNotFound for unknown ids
	Get(ctx context.Context, batchID string) (*models.BatchReport, error)
}

// MemoryBatchStore process-local BatchStore
type MemoryBatchStore struct {
	mu      sync.RWMutex
	reports map[string]*models.BatchReport
}

func NewMemoryBatchStore() *MemoryBatchStore {
	return &MemoryBatchStore{reports: make(map[string]*models.BatchReport)}
}

func (s *MemoryBatchStore) Save(ctx context.Context, report *models.BatchReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[report.BatchID] = cloneReport(report)
	return nil
}

func (s *MemoryBatchStore) Get(ctx context.Context, batchID string) (*models.BatchReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[batchID]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return cloneReport(report), nil
}

// RepositoryBatchStore stores reports in mint_job_records
type RepositoryBatchStore struct {
	repo repository.MintJobRepository
}

func NewRepositoryBatchStore(repo repository.MintJobRepository) *RepositoryBatchStore {
	return &RepositoryBatchStore{repo: repo}
}

func (s *RepositoryBatchStore) Save(ctx context.Context, report *models.BatchReport) error {
	return s.repo.SaveBatch(ctx, report)
}

func (s *RepositoryBatchStore) Get(ctx context.Context, batchID string) (*models.BatchReport, error) {
	report, err := s.repo.FindBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, ErrBatchNotFound
	}
	return report, nil
}

func cloneReport(report *models.BatchReport) *models.BatchReport {
	out := *report
	out.Jobs = make([]models.MintJob, len(report.Jobs))
	for i, job := range report.Jobs {
		out.Jobs[i] = job.Clone()
	}
	if report.FinishedAt != nil {
		finished := *report.FinishedAt
		out.FinishedAt = &finished
	}
	return &out
}
