package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"testing"
	"time"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func metadataFor(ids ...int64) staticMetadata {
	m := staticMetadata{}
	for _, id := range ids {
		m[fmt.Sprintf("ipfs://meta-%d", id)] = &models.MetadataRecord{
			Name:  fmt.Sprintf("Record %d", id),
			Image: fmt.Sprintf("ipfs://asset-%d", id),
		}
	}
	return m
}

func recordIDs(records []models.TokenRecord) []int64 {
	ids := make([]int64, len(records))
	for i, r := range records {
		ids[i] = r.RecordID.Int64()
	}
	return ids
}

func TestScan_FastPathFetchesOneThroughCount(t *testing.T) {
	reader := &countableReader{probeReader: newProbeReader(1, 2, 3, 4, 5), supply: big.NewInt(5)}
	history := staticHistory{2: {{From: "0x0", To: "0xabc", Timestamp: time.Unix(100, 0)}}}
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, metadataFor(1, 2, 3, 4, 5), history, GalleryOptions{})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ScanPathFast, report.Path)
	assert.Equal(t, "5", report.Count.String())
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, recordIDs(report.Records))
	assert.Empty(t, report.Skipped)
	assert.Equal(t, 5, reader.probeCount())

	second := report.Records[1]
	require.NotNil(t, second.ContentRef)
	assert.Equal(t, "ipfs://meta-2", *second.ContentRef)
	require.NotNil(t, second.Metadata)
	assert.Equal(t, "Record 2", second.Metadata.Name)
	assert.Len(t, second.History, 1)
	assert.NotNil(t, report.Records[0].History)
	assert.Empty(t, report.Records[0].History)
}

func TestScan_FastPathSkipsFailedFetches(t *testing.T) {
	reader := &countableReader{probeReader: newProbeReader(1, 2, 3, 4, 5), supply: big.NewInt(5)}
	reader.transient[3] = true
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, metadataFor(1, 2, 3, 4, 5), nil, GalleryOptions{FastPathConcurrency: 2})

	records, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4, 5}, recordIDs(records))

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, report.Skipped)
}

func TestScan_FastPathEmptyLedger(t *testing.T) {
	reader := &countableReader{probeReader: newProbeReader(), supply: big.NewInt(0)}
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{})

	records, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
	assert.Equal(t, 0, reader.probeCount())
}

func TestScan_TotalSupplyFailureFallsBackToProbe(t *testing.T) {
	reader := &countableReader{probeReader: newProbeReader(1, 2), supplyErr: errors.New("execution reverted")}
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 3})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScanPathProbe, report.Path)
	assert.Equal(t, []int64{1, 2}, recordIDs(report.Records))
}

func TestScan_OversizedCountFallsBackToProbe(t *testing.T) {
	huge := new(big.Int).Add(new(big.Int).Lsh(big.NewInt(1), 64), big.NewInt(2))
	reader := &countableReader{probeReader: newProbeReader(1, 2, 3, 4, 5), supply: huge}
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 3})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScanPathProbe, report.Path)
	assert.Nil(t, report.Count)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, recordIDs(report.Records))
	assert.Equal(t, uint64(8), report.State.TotalAttempts)
}

func TestScan_CountAboveMaxAttemptsFallsBackToProbe(t *testing.T) {
	reader := &countableReader{probeReader: newProbeReader(1, 2), supply: big.NewInt(50)}
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxAttempts: 10, MaxConsecutiveFailures: 100})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.ScanPathProbe, report.Path)
	assert.Equal(t, []int64{1, 2}, recordIDs(report.Records))
	assert.Equal(t, uint64(10), report.State.TotalAttempts)
	assert.Equal(t, 10, reader.probeCount())
}

func TestScan_ProbeFindsSparseRecords(t *testing.T) {
	reader := newProbeReader(1, 2, 5)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, metadataFor(1, 2, 5), nil, GalleryOptions{})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.ScanPathProbe, report.Path)
	assert.Nil(t, report.Count)
	assert.Equal(t, []int64{1, 2, 5}, recordIDs(report.Records))
	// 5 ids up to the last record, then 100 misses
	assert.Equal(t, uint64(105), report.State.TotalAttempts)
	assert.Equal(t, uint64(100), report.State.ConsecutiveFailures)
	assert.Equal(t, uint64(106), report.State.Cursor)
}

func TestScan_ProbeFailureCounterResetsOnFind(t *testing.T) {
	reader := newProbeReader(1, 2, 4, 8)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 3})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)

	// 3 misses after id 4 stop the scan before 8
	assert.Equal(t, []int64{1, 2, 4}, recordIDs(report.Records))
	assert.Equal(t, uint64(7), report.State.TotalAttempts)
	assert.Equal(t, 7, reader.probeCount())
}

func TestScan_ProbeStopsAtMaxAttempts(t *testing.T) {
	ids := make([]int64, 50)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	reader := newProbeReader(ids...)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxAttempts: 10})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Records, 10)
	assert.Equal(t, uint64(10), report.State.TotalAttempts)
}

func TestScan_ProbeCountsTransientFailures(t *testing.T) {
	reader := newProbeReader(1, 4)
	reader.transient[2] = true
	reader.transient[3] = true
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 2})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, recordIDs(report.Records))
	assert.Equal(t, []string{"2", "3"}, report.Skipped)
	assert.Equal(t, uint64(3), report.State.TotalAttempts)
}

func TestScan_ProbeHonoursStartID(t *testing.T) {
	reader := newProbeReader(0, 1)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 2})

	records, err := scanner.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, recordIDs(records))
}

func TestScan_ProbeCanceled(t *testing.T) {
	reader := newProbeReader(1, 2, 3)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := scanner.ScanWithReport(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Empty(t, report.Records)
}

func TestScan_KnownIDsAddUUIDRecords(t *testing.T) {
	reader := newProbeReader(1)
	uuidID, ok := new(big.Int).SetString("215161996342946094468498211958232023125", 10)
	require.True(t, ok)
	reader.owners[999] = testOwner // stands in for a uuid record; probing never reaches it
	recorder := NewMemoryMappingRecorder()
	require.NoError(t, recorder.Record(context.Background(), TokenMapping{RecordID: big.NewInt(999), ContentRef: "ipfs://uuid"}))
	require.NoError(t, recorder.Record(context.Background(), TokenMapping{RecordID: uuidID, ContentRef: "ipfs://gone"}))
	require.NoError(t, recorder.Record(context.Background(), TokenMapping{RecordID: big.NewInt(1), ContentRef: "ipfs://meta-1"}))

	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{MaxConsecutiveFailures: 3}).
		WithMappings(recorder).
		WithKnownIDs(recorder)

	records, err := scanner.Scan(context.Background())
	require.NoError(t, err)

	// the uuid id has no owner on the ledger and is dropped
	assert.Equal(t, []int64{1, 999}, recordIDs(records))
	require.NotNil(t, records[1].ContentRef)
	assert.Equal(t, "ipfs://uuid", *records[1].ContentRef)
}

func TestFetchSingle(t *testing.T) {
	reader := newProbeReader(1, 2)
	reader.transient[3] = true
	delete(reader.uris, 2)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, staticMetadata{}, nil, GalleryOptions{})

	t.Run("missing record", func(t *testing.T) {
		record, err := scanner.FetchSingle(context.Background(), reader, big.NewInt(42))
		assert.NoError(t, err)
		assert.Nil(t, record)
	})

	t.Run("transient failure", func(t *testing.T) {
		record, err := scanner.FetchSingle(context.Background(), reader, big.NewInt(3))
		assert.Nil(t, record)
		var transient *TransientReadError
		require.ErrorAs(t, err, &transient)
		assert.Equal(t, "ownerOf", transient.Op)
	})

	t.Run("metadata unavailable keeps the record", func(t *testing.T) {
		record, err := scanner.FetchSingle(context.Background(), reader, big.NewInt(1))
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, reader.owners[1].Hex(), record.Owner)
		require.NotNil(t, record.ContentRef)
		assert.Nil(t, record.Metadata)
	})

	t.Run("no content reference", func(t *testing.T) {
		record, err := scanner.FetchSingle(context.Background(), reader, big.NewInt(2))
		require.NoError(t, err)
		require.NotNil(t, record)
		assert.Nil(t, record.ContentRef)
	})

	t.Run("mapping fallback", func(t *testing.T) {
		recorder := NewMemoryMappingRecorder()
		require.NoError(t, recorder.Record(context.Background(), TokenMapping{RecordID: big.NewInt(2), ContentRef: "ipfs://mapped"}))
		withMappings := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, nil, GalleryOptions{}).WithMappings(recorder)

		record, err := withMappings.FetchSingle(context.Background(), reader, big.NewInt(2))
		require.NoError(t, err)
		require.NotNil(t, record.ContentRef)
		assert.Equal(t, "ipfs://mapped", *record.ContentRef)
	})
}

func TestGet_ResolvesReader(t *testing.T) {
	reader := newProbeReader(3)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, metadataFor(3), nil, GalleryOptions{})

	record, err := scanner.Get(context.Background(), big.NewInt(3))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "Record 3", record.Metadata.Name)

	missing, err := scanner.Get(context.Background(), big.NewInt(4))
	require.NoError(t, err)
	assert.Nil(t, missing)
}
