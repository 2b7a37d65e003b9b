package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// MintServiceOptions minting orchestrator settings
type MintServiceOptions struct {
	ExpectedChainID   *big.Int // nil = accept whatever chain the wallet is on
	UploadConcurrency int
}

// MintService turns a list of mint requests into confirmed records.
// Uploads fan out; submissions go one at a time through the shared SubmissionWorker.
type MintService struct {
	wallet    interfaces.Wallet
	publisher *ContentPublisher
	worker    *SubmissionWorker
	allocator RecordIDAllocator
	recorder  MappingRecorder
	store     BatchStore
	observers []JobObserver
	opts      MintServiceOptions

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	active map[string]*activeBatch
}

type activeBatch struct {
	queue     *MintJobQueue
	owner     common.Address
	chainID   *big.Int
	startedAt time.Time
}

func NewMintService(
	wallet interfaces.Wallet,
	publisher *ContentPublisher,
	worker *SubmissionWorker,
	allocator RecordIDAllocator,
	recorder MappingRecorder,
	store BatchStore,
	opts MintServiceOptions,
) *MintService {
	if opts.UploadConcurrency <= 0 {
		opts.UploadConcurrency = 4
	}
	if allocator == nil {
		allocator = LedgerAssigned{}
	}
	if recorder == nil {
		recorder = NewMemoryMappingRecorder()
	}
	if store == nil {
		store = NewMemoryBatchStore()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &MintService{
		wallet:    wallet,
		publisher: publisher,
		worker:    worker,
		allocator: allocator,
		recorder:  recorder,
		store:     store,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		active:    make(map[string]*activeBatch),
	}
}

// AddObserver registers an observer for batches started afterwards
func (s *MintService) AddObserver(o JobObserver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// SubmitBatch runs a whole batch and returns its report.
// Only preflight failures (empty batch, no signer, wrong network) return an error.
func (s *MintService) SubmitBatch(ctx context.Context, requests []models.MintRequest) (*models.BatchReport, error) {
	batch, normalized, err := s.prepare(ctx, requests)
	if err != nil {
		return nil, err
	}
	return s.run(ctx, batch, normalized), nil
}

// SubmitBatchAsync runs preflight synchronously and the batch in the background.
// Progress is available through GetBatch and job observers.
func (s *MintService) SubmitBatchAsync(ctx context.Context, requests []models.MintRequest) (string, error) {
	batch, normalized, err := s.prepare(ctx, requests)
	if err != nil {
		return "", err
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(s.ctx, batch, normalized)
	}()
	return batch.queue.BatchID(), nil
}

// GetBatch live report for running batches, stored report otherwise
func (s *MintService) GetBatch(ctx context.Context, batchID string) (*models.BatchReport, error) {
	s.mu.RLock()
	batch, ok := s.active[batchID]
	s.mu.RUnlock()
	if ok {
		return buildReport(batch, nil), nil
	}
	return s.store.Get(ctx, batchID)
}

// Close cancels background batches and waits for them to record their reports
func (s *MintService) Close() {
	s.cancel()
	s.wg.Wait()
}

func (s *MintService) prepare(ctx context.Context, requests []models.MintRequest) (*activeBatch, []models.MintRequest, error) {
	batch, err := s.preflight(ctx, requests)
	if err != nil {
		metrics.MintBatchesTotal.WithLabelValues("rejected").Inc()
		return nil, nil, err
	}

	normalized := make([]models.MintRequest, len(requests))
	for i, req := range requests {
		normalized[i] = normalizeRequest(req)
	}

	s.mu.Lock()
	observers := append([]JobObserver(nil), s.observers...)
	batch.queue = NewMintJobQueue(uuid.New().String(), normalized, observers...)
	s.active[batch.queue.BatchID()] = batch
	s.mu.Unlock()

	metrics.MintJobsInFlight.Add(float64(len(normalized)))
	return batch, normalized, nil
}

// preflight everything that must hold before any job starts
func (s *MintService) preflight(ctx context.Context, requests []models.MintRequest) (*activeBatch, error) {
	if len(requests) == 0 {
		return nil, ErrEmptyBatch
	}

	owner, err := s.wallet.RequestAccess(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSigningUnavailable, err)
	}

	chainID, err := s.wallet.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetworkMismatch, err)
	}
	if expected := s.opts.ExpectedChainID; expected != nil && chainID.Cmp(expected) != 0 {
		logrus.Warnf("⚠️ [Mint] Wallet on chain %s, expected %s; requesting switch", chainID, expected)
		if err := s.wallet.SwitchNetwork(ctx, expected); err != nil {
			return nil, fmt.Errorf("%w: on chain %s, expected %s: %v", ErrNetworkMismatch, chainID, expected, err)
		}
		chainID = new(big.Int).Set(expected)
	}

	return &activeBatch{owner: owner, chainID: chainID, startedAt: time.Now()}, nil
}

func (s *MintService) run(ctx context.Context, batch *activeBatch, requests []models.MintRequest) *models.BatchReport {
	queue := batch.queue
	log := logrus.WithFields(logrus.Fields{"component": "MintService", "batch": queue.BatchID()})
	log.Infof("🚀 [Mint] Batch started: %d requests, owner %s, chain %s", len(requests), batch.owner.Hex(), batch.chainID)

	s.publishAll(ctx, queue, requests)
	s.submitAll(ctx, queue, batch.owner)

	if err := ctx.Err(); err != nil {
		if n := queue.FailRemaining(err); n > 0 {
			log.Warnf("🛑 [Mint] Batch canceled, %d jobs not completed", n)
		}
	}

	finishedAt := time.Now()
	report := buildReport(batch, &finishedAt)

	// the batch context may be canceled; the report is still written
	saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Save(saveCtx, report); err != nil {
		log.Errorf("❌ [Mint] Failed to store batch report: %v", err)
	}

	s.mu.Lock()
	delete(s.active, queue.BatchID())
	s.mu.Unlock()

	metrics.MintJobsInFlight.Sub(float64(len(report.Jobs)))
	metrics.MintBatchesTotal.WithLabelValues("completed").Inc()
	for _, job := range report.Jobs {
		kind := ""
		if job.Error != nil {
			kind = string(job.Error.Kind)
		}
		metrics.MintJobsTotal.WithLabelValues(string(job.State), kind).Inc()
	}

	log.Infof("✅ [Mint] Batch finished: %d confirmed, %d failed in %v", report.Succeeded, report.Failed, finishedAt.Sub(batch.startedAt))
	return report
}

// publishAll uploads asset then metadata for every job, bounded by UploadConcurrency
func (s *MintService) publishAll(ctx context.Context, queue *MintJobQueue, requests []models.MintRequest) {
	var g errgroup.Group
	g.SetLimit(s.opts.UploadConcurrency)

	for i := range requests {
		i := i
		req := requests[i]
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			s.publishOne(ctx, queue, i, req)
			return nil
		})
	}
	_ = g.Wait()
}

func (s *MintService) publishOne(ctx context.Context, queue *MintJobQueue, index int, req models.MintRequest) {
	if err := queue.Advance(index, models.JobStateUploading, nil); err != nil {
		logrus.Errorf("❌ [Mint] Job %d: %v", index, err)
		return
	}

	asset, err := s.publisher.PublishAsset(ctx, req)
	if err != nil {
		logrus.Warnf("⚠️ [Mint] Job %d asset upload failed: %v", index, err)
		queue.Fail(index, err)
		return
	}

	record := ComposeMetadata(req.DisplayName, req.Description, asset.ContentID)
	metadataID, err := s.publisher.PublishMetadata(ctx, record)
	if err != nil {
		logrus.Warnf("⚠️ [Mint] Job %d metadata upload failed: %v", index, err)
		queue.Fail(index, err)
		return
	}

	_ = queue.Advance(index, models.JobStateMetadataReady, func(job *models.MintJob) {
		job.AssetContentID = asset.ContentID
		job.MetadataContentID = metadataID
		job.TokenURI = ContentURI(metadataID)
	})
}

// submitAll submits metadata-ready jobs in request order; a failed job never stops the next one
func (s *MintService) submitAll(ctx context.Context, queue *MintJobQueue, owner common.Address) {
	for i := 0; i < queue.Len(); i++ {
		if ctx.Err() != nil {
			return
		}
		job := queue.Job(i)
		if job.State != models.JobStateMetadataReady {
			continue
		}
		s.submitOne(ctx, queue, i, job, owner)
	}
}

func (s *MintService) submitOne(ctx context.Context, queue *MintJobQueue, index int, job models.MintJob, owner common.Address) {
	recordID, err := s.allocator.Allocate(ctx)
	if err != nil {
		queue.Fail(index, &SubmissionError{Reason: "record id allocation failed", Err: err})
		return
	}
	if queue.HasRecordID(recordID, index) {
		queue.Fail(index, &DuplicateRecordError{RecordID: recordID})
		return
	}
	if recordID != nil {
		queue.Update(index, func(j *models.MintJob) { j.RecordID = new(big.Int).Set(recordID) })
	}

	call := interfaces.MintCall{To: owner, RecordID: recordID, TokenURI: job.TokenURI}
	progress := func(state models.JobState, result SubmitResult) {
		err := queue.Advance(index, state, func(j *models.MintJob) {
			j.GasEstimate = result.GasEstimate
			j.GasLimit = result.GasLimit
			if result.TxHash != (common.Hash{}) {
				j.TxHash = result.TxHash.Hex()
			}
		})
		if err != nil {
			logrus.Errorf("❌ [Mint] Job %d: %v", index, err)
		}
	}

	result, err := s.worker.Submit(ctx, call, progress)
	if err != nil {
		logrus.Warnf("⚠️ [Mint] Job %d failed: %v", index, err)
		queue.Fail(index, err)
		return
	}

	_ = queue.Advance(index, models.JobStateConfirmed, func(j *models.MintJob) {
		if result.RecordID != nil {
			j.RecordID = new(big.Int).Set(result.RecordID)
		}
		j.TxHash = result.TxHash.Hex()
	})
	logrus.Infof("✅ [Mint] Job %d confirmed: record %v, tx %s", index, result.RecordID, result.TxHash.Hex())

	s.recordMapping(ctx, queue, index, owner)
}

func (s *MintService) recordMapping(ctx context.Context, queue *MintJobQueue, index int, owner common.Address) {
	job := queue.Job(index)
	var err error
	if job.RecordID == nil {
		err = errors.New("record id missing from receipt")
	} else {
		err = s.recorder.Record(ctx, TokenMapping{
			RecordID:   job.RecordID,
			ContentRef: job.TokenURI,
			TxHash:     job.TxHash,
			BatchID:    queue.BatchID(),
			Owner:      owner.Hex(),
		})
	}
	if err != nil {
		logrus.Warnf("⚠️ [Mint] Job %d mapping not recorded: %v", index, err)
		queue.Update(index, func(j *models.MintJob) { j.MappingError = err.Error() })
	}
}

func buildReport(batch *activeBatch, finishedAt *time.Time) *models.BatchReport {
	report := &models.BatchReport{
		BatchID:    batch.queue.BatchID(),
		Owner:      batch.owner.Hex(),
		ChainID:    batch.chainID.String(),
		StartedAt:  batch.startedAt,
		FinishedAt: finishedAt,
		Jobs:       batch.queue.Snapshot(),
	}
	for _, job := range report.Jobs {
		switch job.State {
		case models.JobStateConfirmed:
			report.Succeeded++
		case models.JobStateFailed:
			report.Failed++
		}
	}
	return report
}
