package models

import (
	"math/big"
	"time"
)

// MintRequest one asset the caller wants minted
type MintRequest struct {
	Asset       []byte `json:"-"`
	FileName    string `json:"file_name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`
}

// PublishedAsset result of publishing raw asset bytes
type PublishedAsset struct {
	ContentID string `json:"content_id"`
}

// JobState mint job state
type JobState string

const (
	JobStateQueued        JobState = "queued"
	JobStateUploading     JobState = "uploading"
	JobStateMetadataReady JobState = "metadata_ready"
	JobStateGasEstimated  JobState = "gas_estimated"
	JobStateSubmitted     JobState = "submitted"
	JobStateConfirmed     JobState = "confirmed"
	JobStateFailed        JobState = "failed"
)

var jobStateRank = map[JobState]int{
	JobStateQueued:        0,
	JobStateUploading:     1,
	JobStateMetadataReady: 2,
	JobStateGasEstimated:  3,
	JobStateSubmitted:     4,
	JobStateConfirmed:     5,
}

// Rank position of the state on the happy path; -1 for failed or unknown states.
func (s JobState) Rank() int {
	if r, ok := jobStateRank[s]; ok {
		return r
	}
	return -1
}

// IsTerminal reports whether no further transition is allowed
func (s JobState) IsTerminal() bool {
	return s == JobStateConfirmed || s == JobStateFailed
}

// ErrorKind classifies a per-job failure
type ErrorKind string

const (
	ErrorKindUpload          ErrorKind = "upload"
	ErrorKindEstimation      ErrorKind = "estimation"
	ErrorKindSubmission      ErrorKind = "submission"
	ErrorKindDuplicateRecord ErrorKind = "duplicate_record"
	ErrorKindCanceled        ErrorKind = "canceled"
)

// ErrorInfo failure details attached to a job
type ErrorInfo struct {
	Kind          ErrorKind `json:"kind"`
	Message       string    `json:"message"`
	Reason        string    `json:"reason,omitempty"` // decoded revert reason
	AlreadyExists bool      `json:"already_exists,omitempty"`
}

// MintJob tracks one MintRequest through the minting pipeline
type MintJob struct {
	RequestIndex      int        `json:"request_index"`
	DisplayName       string     `json:"display_name"`
	RecordID          *big.Int   `json:"record_id,omitempty"`
	AssetContentID    string     `json:"asset_content_id,omitempty"`
	MetadataContentID string     `json:"metadata_content_id,omitempty"`
	TokenURI          string     `json:"token_uri,omitempty"`
	TxHash            string     `json:"tx_hash,omitempty"`
	GasEstimate       uint64     `json:"gas_estimate,omitempty"`
	GasLimit          uint64     `json:"gas_limit,omitempty"`
	State             JobState   `json:"state"`
	Error             *ErrorInfo `json:"error,omitempty"`
	MappingError      string     `json:"mapping_error,omitempty"` // confirmed on chain but the mapping write failed
	UpdatedAt         time.Time  `json:"updated_at"`
}

// Clone deep-copies the job so snapshots can leave the queue lock
func (j MintJob) Clone() MintJob {
	out := j
	if j.RecordID != nil {
		out.RecordID = new(big.Int).Set(j.RecordID)
	}
	if j.Error != nil {
		e := *j.Error
		out.Error = &e
	}
	return out
}

// BatchReport structured outcome of one SubmitBatch call
type BatchReport struct {
	BatchID    string     `json:"batch_id"`
	Owner      string     `json:"owner"`
	ChainID    string     `json:"chain_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Jobs       []MintJob  `json:"jobs"`
	Succeeded  int        `json:"succeeded"`
	Failed     int        `json:"failed"`
}

// Done reports whether every job reached a terminal state
func (r *BatchReport) Done() bool {
	for _, j := range r.Jobs {
		if !j.State.IsTerminal() {
			return false
		}
	}
	return true
}

// JobUpdate is emitted to observers on every job state change
type JobUpdate struct {
	BatchID string    `json:"batch_id"`
	Job     MintJob   `json:"job"`
	At      time.Time `json:"at"`
}
