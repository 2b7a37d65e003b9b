package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"
)

var (
	// ErrSigningUnavailable no signing identity could be obtained; fatal for the batch
	ErrSigningUnavailable = errors.New("signing identity unavailable")
	// ErrNetworkMismatch the signer is on the wrong chain and could not switch
	ErrNetworkMismatch = errors.New("network mismatch")
	// ErrEmptyBatch a batch needs at least one request
	ErrEmptyBatch = errors.New("no mint requests")
	// ErrBatchNotFound unknown batch id
	ErrBatchNotFound = errors.New("batch not found")
)

// UploadError asset or metadata publishing failed
type UploadError struct {
	Stage string // asset or metadata
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to publish %s: %v", e.Stage, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// EstimationError gas estimation failed; nothing was submitted
type EstimationError struct {
	Reason        string
	AlreadyExists bool
	Err           error
}

func (e *EstimationError) Error() string {
	if e.Reason != "" {
		return "gas estimation failed: " + e.Reason
	}
	return fmt.Sprintf("gas estimation failed: %v", e.Err)
}

func (e *EstimationError) Unwrap() error { return e.Err }

// SubmissionError the transaction was rejected, reverted or never confirmed
type SubmissionError struct {
	TxHash        string // empty when the node rejected the transaction
	Reason        string
	AlreadyExists bool
	Err           error
}

func (e *SubmissionError) Error() string {
	msg := "submission failed"
	if e.TxHash != "" {
		msg += " (tx " + e.TxHash + ")"
	}
	if e.Reason != "" {
		return msg + ": " + e.Reason
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// DuplicateRecordError the identifier was already used earlier in the batch
type DuplicateRecordError struct {
	RecordID *big.Int
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("record id %s already used in this batch", e.RecordID)
}

// TransientReadError a ledger read failed for a reason other than not-found
type TransientReadError struct {
	Op       string
	RecordID *big.Int
	Err      error
}

func (e *TransientReadError) Error() string {
	return fmt.Sprintf("%s(%s) failed: %v", e.Op, e.RecordID, e.Err)
}

func (e *TransientReadError) Unwrap() error { return e.Err }

// revertDetails pulls reason and already-exists out of a wrapped RevertError
func revertDetails(err error) (string, bool) {
	var revert *interfaces.RevertError
	if errors.As(err, &revert) {
		return revert.Reason, revert.AlreadyExists
	}
	return "", false
}

// errorInfoFrom maps a per-job error to the report entry
func errorInfoFrom(err error) *models.ErrorInfo {
	info := &models.ErrorInfo{Message: err.Error()}

	var uploadErr *UploadError
	var estimationErr *EstimationError
	var submissionErr *SubmissionError
	var duplicateErr *DuplicateRecordError

	sent := errors.As(err, &submissionErr) && submissionErr.TxHash != ""
	canceled := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)

	switch {
	case errors.As(err, &duplicateErr):
		info.Kind = models.ErrorKindDuplicateRecord
	case canceled && !sent:
		// a sent transaction may still be mined, so it stays a submission failure
		info.Kind = models.ErrorKindCanceled
	case errors.As(err, &uploadErr):
		info.Kind = models.ErrorKindUpload
	case errors.As(err, &estimationErr):
		info.Kind = models.ErrorKindEstimation
		info.Reason = estimationErr.Reason
		info.AlreadyExists = estimationErr.AlreadyExists
	case errors.As(err, &submissionErr):
		info.Kind = models.ErrorKindSubmission
		info.Reason = submissionErr.Reason
		info.AlreadyExists = submissionErr.AlreadyExists
	default:
		info.Kind = models.ErrorKindSubmission
	}
	return info
}
