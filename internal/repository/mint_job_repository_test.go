package repository

import (
	"math/big"
	"testing"
	"time"

	"nft-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintJobRecordRoundTrip(t *testing.T) {
	finished := time.Date(2024, 5, 1, 12, 0, 5, 0, time.UTC)
	report := &models.BatchReport{
		BatchID:    "batch-1",
		Owner:      "0x1111111111111111111111111111111111111111",
		ChainID:    "11155111",
		StartedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt: &finished,
		Jobs: []models.MintJob{
			{RequestIndex: 0, State: models.JobStateConfirmed, RecordID: big.NewInt(7), TxHash: "0xaa", TokenURI: "ipfs://m0"},
			{RequestIndex: 1, State: models.JobStateFailed, Error: &models.ErrorInfo{
				Kind: models.ErrorKindEstimation, Message: "gas estimation failed: boom", Reason: "boom",
			}},
		},
	}

	records := []*models.MintJobRecord{
		ToMintJobRecord(report, report.Jobs[0]),
		ToMintJobRecord(report, report.Jobs[1]),
	}
	assert.Equal(t, "7", records[0].RecordID)
	assert.Equal(t, "estimation", records[1].ErrorKind)
	assert.NotEqual(t, records[0].ID, records[1].ID)
	assert.Equal(t, records[0].ID, ToMintJobRecord(report, report.Jobs[0]).ID, "row id must be stable per batch and index")

	rebuilt := FromMintJobRecords(records)
	require.Len(t, rebuilt.Jobs, 2)
	assert.Equal(t, 1, rebuilt.Succeeded)
	assert.Equal(t, 1, rebuilt.Failed)
	assert.Equal(t, int64(7), rebuilt.Jobs[0].RecordID.Int64())
	assert.Nil(t, rebuilt.Jobs[1].RecordID)
	require.NotNil(t, rebuilt.Jobs[1].Error)
	assert.Equal(t, "boom", rebuilt.Jobs[1].Error.Reason)
	assert.Equal(t, finished, *rebuilt.FinishedAt)
}
