package services

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"nft-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintJobQueue_ForwardOnly(t *testing.T) {
	var updates []models.JobUpdate
	queue := NewMintJobQueue("batch-1", mintRequests("a.png"), JobObserverFunc(func(u models.JobUpdate) {
		updates = append(updates, u)
	}))

	require.NoError(t, queue.Advance(0, models.JobStateUploading, nil))
	require.NoError(t, queue.Advance(0, models.JobStateGasEstimated, func(j *models.MintJob) { j.GasEstimate = 21000 }))

	assert.Error(t, queue.Advance(0, models.JobStateMetadataReady, nil))
	assert.Error(t, queue.Advance(0, models.JobStateGasEstimated, nil))
	assert.Error(t, queue.Advance(0, models.JobStateFailed, nil))

	require.NoError(t, queue.Advance(0, models.JobStateConfirmed, nil))
	assert.Error(t, queue.Advance(0, models.JobStateSubmitted, nil))
	assert.False(t, queue.Fail(0, errors.New("late")))

	job := queue.Job(0)
	assert.Equal(t, models.JobStateConfirmed, job.State)
	assert.Equal(t, uint64(21000), job.GasEstimate)
	assert.Nil(t, job.Error)

	require.Len(t, updates, 3)
	assert.Equal(t, "batch-1", updates[0].BatchID)
	assert.Equal(t, models.JobStateConfirmed, updates[2].Job.State)
}

func TestMintJobQueue_FailRemaining(t *testing.T) {
	queue := NewMintJobQueue("batch-2", mintRequests("a.png", "b.png", "c.png"))
	require.NoError(t, queue.Advance(0, models.JobStateConfirmed, nil))
	require.True(t, queue.Fail(1, &UploadError{Stage: "asset", Err: errors.New("boom")}))

	assert.Equal(t, 1, queue.FailRemaining(context.Canceled))

	jobs := queue.Snapshot()
	assert.Equal(t, models.JobStateConfirmed, jobs[0].State)
	assert.Equal(t, models.ErrorKindUpload, jobs[1].Error.Kind)
	assert.Equal(t, models.ErrorKindCanceled, jobs[2].Error.Kind)
}

func TestMintJobQueue_SnapshotIsACopy(t *testing.T) {
	queue := NewMintJobQueue("batch-3", mintRequests("a.png"))
	queue.Update(0, func(j *models.MintJob) { j.RecordID = big.NewInt(5) })

	snapshot := queue.Snapshot()
	snapshot[0].RecordID.SetInt64(99)
	snapshot[0].State = models.JobStateFailed

	job := queue.Job(0)
	assert.Equal(t, "5", job.RecordID.String())
	assert.Equal(t, models.JobStateQueued, job.State)
}

func TestMintJobQueue_HasRecordID(t *testing.T) {
	queue := NewMintJobQueue("batch-4", mintRequests("a.png", "b.png"))
	queue.Update(0, func(j *models.MintJob) { j.RecordID = big.NewInt(5) })

	assert.True(t, queue.HasRecordID(big.NewInt(5), 1))
	assert.False(t, queue.HasRecordID(big.NewInt(5), 0))
	assert.False(t, queue.HasRecordID(big.NewInt(6), 1))
	assert.False(t, queue.HasRecordID(nil, 1))
}

func TestErrorInfoFrom(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind models.ErrorKind
	}{
		{"upload", &UploadError{Stage: "asset", Err: errors.New("x")}, models.ErrorKindUpload},
		{"estimation", &EstimationError{Err: errors.New("x")}, models.ErrorKindEstimation},
		{"rejected", &SubmissionError{Err: errors.New("nonce too low")}, models.ErrorKindSubmission},
		{"duplicate", &DuplicateRecordError{RecordID: big.NewInt(1)}, models.ErrorKindDuplicateRecord},
		{"canceled before send", &EstimationError{Err: context.Canceled}, models.ErrorKindCanceled},
		{"canceled after send", &SubmissionError{TxHash: "0xabc", Err: context.DeadlineExceeded}, models.ErrorKindSubmission},
		{"unclassified", errors.New("mystery"), models.ErrorKindSubmission},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := errorInfoFrom(tt.err)
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, tt.err.Error(), info.Message)
		})
	}
}
