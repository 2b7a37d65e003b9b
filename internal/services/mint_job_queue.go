package services

import (
	"fmt"
	"math/big"
	"sync"
	"time"

	"nft-backend/internal/models"
)

// JobObserver receives every job state change
type JobObserver interface {
	OnJobUpdate(update models.JobUpdate)
}

// JobObserverFunc adapts a function to JobObserver
type JobObserverFunc func(update models.JobUpdate)

func (f JobObserverFunc) OnJobUpdate(update models.JobUpdate) { f(update) }

// MintJobQueue one MintJob per request of a batch; transitions only move forward
type MintJobQueue struct {
	batchID   string
	mu        sync.Mutex
	jobs      []models.MintJob
	observers []JobObserver
}

func NewMintJobQueue(batchID string, requests []models.MintRequest, observers ...JobObserver) *MintJobQueue {
	now := time.Now()
	jobs := make([]models.MintJob, len(requests))
	for i, req := range requests {
		jobs[i] = models.MintJob{
			RequestIndex: i,
			DisplayName:  req.DisplayName,
			State:        models.JobStateQueued,
			UpdatedAt:    now,
		}
	}
	return &MintJobQueue{batchID: batchID, jobs: jobs, observers: observers}
}

func (q *MintJobQueue) BatchID() string { return q.batchID }

func (q *MintJobQueue) Len() int { return len(q.jobs) }

// Advance moves job index to state and applies mutate under the queue lock.
// Backward, repeated and post-terminal transitions are rejected.
func (q *MintJobQueue) Advance(index int, state models.JobState, mutate func(job *models.MintJob)) error {
	if state == models.JobStateFailed {
		return fmt.Errorf("use Fail to move job %d to failed", index)
	}
	q.mu.Lock()
	job := &q.jobs[index]
	if job.State.IsTerminal() {
		q.mu.Unlock()
		return fmt.Errorf("job %d is already %s", index, job.State)
	}
	if state.Rank() <= job.State.Rank() {
		q.mu.Unlock()
		return fmt.Errorf("job %d cannot move from %s to %s", index, job.State, state)
	}
	job.State = state
	if mutate != nil {
		mutate(job)
	}
	job.UpdatedAt = time.Now()
	update := q.update(*job)
	q.mu.Unlock()

	q.notify(update)
	return nil
}

// Update changes fields without a state transition (e.g. a mapping error on a confirmed job)
func (q *MintJobQueue) Update(index int, mutate func(job *models.MintJob)) {
	q.mu.Lock()
	job := &q.jobs[index]
	mutate(job)
	job.UpdatedAt = time.Now()
	update := q.update(*job)
	q.mu.Unlock()

	q.notify(update)
}

// Fail moves a non-terminal job to failed; returns false if it was already terminal
func (q *MintJobQueue) Fail(index int, err error) bool {
	q.mu.Lock()
	job := &q.jobs[index]
	if job.State.IsTerminal() {
		q.mu.Unlock()
		return false
	}
	job.State = models.JobStateFailed
	job.Error = errorInfoFrom(err)
	job.UpdatedAt = time.Now()
	update := q.update(*job)
	q.mu.Unlock()

	q.notify(update)
	return true
}

// FailRemaining fails every non-terminal job, returns how many were failed
func (q *MintJobQueue) FailRemaining(err error) int {
	failed := 0
	for i := range q.jobs {
		if q.Fail(i, err) {
			failed++
		}
	}
	return failed
}

// Job snapshot of one job
func (q *MintJobQueue) Job(index int) models.MintJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.jobs[index].Clone()
}

// Snapshot copies of all jobs in request order
func (q *MintJobQueue) Snapshot() []models.MintJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]models.MintJob, len(q.jobs))
	for i, job := range q.jobs {
		out[i] = job.Clone()
	}
	return out
}

// HasRecordID reports whether another job of the batch already holds id
func (q *MintJobQueue) HasRecordID(id *big.Int, except int) bool {
	if id == nil {
		return false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, job := range q.jobs {
		if i != except && job.RecordID != nil && job.RecordID.Cmp(id) == 0 {
			return true
		}
	}
	return false
}

func (q *MintJobQueue) update(job models.MintJob) models.JobUpdate {
	return models.JobUpdate{BatchID: q.batchID, Job: job.Clone(), At: job.UpdatedAt}
}

func (q *MintJobQueue) notify(update models.JobUpdate) {
	for _, o := range q.observers {
		o.OnJobUpdate(update)
	}
}
