package services

import (
	"context"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransferSource struct {
	mu    sync.Mutex
	logs  []models.TransferLog
	err   error
	calls int
}

func (s *fakeTransferSource) ListTransfers(ctx context.Context, contract common.Address) ([]models.TransferLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.logs, s.err
}

func transfer(id int64, from, to string, ts int64, block uint64) models.TransferLog {
	return models.TransferLog{From: from, To: to, RecordID: big.NewInt(id), Timestamp: time.Unix(ts, 0).UTC(), BlockNumber: block}
}

func TestHistoryFetcher_FiltersAndSortsOldestFirst(t *testing.T) {
	source := &fakeTransferSource{logs: []models.TransferLog{
		transfer(7, "0xb", "0xc", 300, 30),
		transfer(8, "0x0", "0xa", 50, 5),
		transfer(7, "0x0", "0xa", 100, 10),
		transfer(7, "0xa", "0xb", 200, 21),
		transfer(7, "0xa", "0xz", 200, 20),
	}}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), time.Minute)

	events := fetcher.Fetch(context.Background(), big.NewInt(7))
	require.Len(t, events, 4)
	assert.Equal(t, "0x0", events[0].From)
	assert.Equal(t, "0xz", events[1].To) // same timestamp, lower block first
	assert.Equal(t, "0xb", events[2].To)
	assert.Equal(t, "0xc", events[3].To)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.Before(events[i-1].Timestamp))
	}
}

func TestHistoryFetcher_UnknownRecordHasEmptyHistory(t *testing.T) {
	source := &fakeTransferSource{logs: []models.TransferLog{transfer(1, "0x0", "0xa", 1, 1)}}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), time.Minute)

	events := fetcher.Fetch(context.Background(), big.NewInt(2))
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestHistoryFetcher_SourceErrorYieldsEmpty(t *testing.T) {
	source := &fakeTransferSource{err: errors.New("rate limited")}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), time.Minute)

	events := fetcher.Fetch(context.Background(), big.NewInt(1))
	assert.NotNil(t, events)
	assert.Empty(t, events)

	// the failure is replayed during the backoff window
	fetcher.Fetch(context.Background(), big.NewInt(2))
	assert.Equal(t, 1, source.calls)

	fetcher.Invalidate()
	source.mu.Lock()
	source.err = nil
	source.logs = []models.TransferLog{transfer(1, "0x0", "0xa", 1, 1)}
	source.mu.Unlock()
	assert.Len(t, fetcher.Fetch(context.Background(), big.NewInt(1)), 1)
	assert.Equal(t, 2, source.calls)
}

func TestHistoryFetcher_ExpiredBackoffRetries(t *testing.T) {
	source := &fakeTransferSource{err: errors.New("rate limited")}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), time.Minute)

	fetcher.Fetch(context.Background(), big.NewInt(1))
	fetcher.mu.Lock()
	fetcher.failedAt = time.Now().Add(-failureBackoff - time.Second)
	fetcher.mu.Unlock()

	fetcher.Fetch(context.Background(), big.NewInt(1))
	assert.Equal(t, 2, source.calls)
}

func TestHistoryFetcher_FailingSourceQueriedOncePerScan(t *testing.T) {
	source := &fakeTransferSource{err: errors.New("rate limited")}
	history := NewHistoryFetcher(source, common.HexToAddress("0x42"), 30*time.Second)
	reader := newProbeReader(1, 2, 5)
	scanner := NewGalleryScanner(interfaces.StaticResolver{Reader: reader}, nil, history, GalleryOptions{})

	report, err := scanner.ScanWithReport(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Records, 3)
	assert.Equal(t, uint64(105), report.State.TotalAttempts)
	for _, r := range report.Records {
		assert.Empty(t, r.History)
	}
	assert.Equal(t, 1, source.calls)
}

func TestHistoryFetcher_CachesTransferList(t *testing.T) {
	source := &fakeTransferSource{logs: []models.TransferLog{transfer(1, "0x0", "0xa", 1, 1), transfer(2, "0x0", "0xb", 2, 2)}}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), time.Minute)

	assert.Len(t, fetcher.Fetch(context.Background(), big.NewInt(1)), 1)
	assert.Len(t, fetcher.Fetch(context.Background(), big.NewInt(2)), 1)
	assert.Equal(t, 1, source.calls)

	fetcher.Invalidate()
	fetcher.Fetch(context.Background(), big.NewInt(1))
	assert.Equal(t, 2, source.calls)
}

func TestHistoryFetcher_ZeroTTLAlwaysQueries(t *testing.T) {
	source := &fakeTransferSource{}
	fetcher := NewHistoryFetcher(source, common.HexToAddress("0x42"), 0)

	fetcher.Fetch(context.Background(), big.NewInt(1))
	fetcher.Fetch(context.Background(), big.NewInt(1))
	assert.Equal(t, 2, source.calls)
}
