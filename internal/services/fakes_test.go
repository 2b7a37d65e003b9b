package services

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"nft-backend/internal/clients"
	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

var testOwner = common.HexToAddress("0x1111111111111111111111111111111111111111")

type fakeWallet struct {
	chainID   *big.Int
	accessErr error
	switchErr error
	switched  *big.Int
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{chainID: big.NewInt(11155111)}
}

func (w *fakeWallet) RequestAccess(ctx context.Context) (common.Address, error) {
	if w.accessErr != nil {
		return common.Address{}, w.accessErr
	}
	return testOwner, nil
}

func (w *fakeWallet) ChainID(ctx context.Context) (*big.Int, error) {
	return w.chainID, nil
}

func (w *fakeWallet) SwitchNetwork(ctx context.Context, chainID *big.Int) error {
	if w.switchErr != nil {
		return w.switchErr
	}
	w.switched = chainID
	w.chainID = chainID
	return nil
}

type submittedCall struct {
	call     interfaces.MintCall
	gasLimit uint64
	at       time.Time
}

// fakeLedger confirms every submitted mint; ledger-assigned ids count up from 1
type fakeLedger struct {
	mu sync.Mutex

	estimateErr func(n int) error // n = 1-based estimate call number
	submitErr   func(n int) error
	awaitErr    func(n int) error
	afterAwait  func(n int)
	estimate    uint64
	delay       time.Duration

	estimates   int
	submits     []submittedCall
	awaits      int
	nextID      int64
	active      int
	maxActive   int
	submittedBy map[common.Hash]interfaces.MintCall
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{estimate: 100_000, submittedBy: map[common.Hash]interfaces.MintCall{}}
}

func (l *fakeLedger) enter() {
	l.active++
	if l.active > l.maxActive {
		l.maxActive = l.active
	}
}

func (l *fakeLedger) EstimateMint(ctx context.Context, call interfaces.MintCall) (uint64, error) {
	l.mu.Lock()
	l.estimates++
	n := l.estimates
	l.enter()
	l.mu.Unlock()

	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	if l.estimateErr != nil {
		if err := l.estimateErr(n); err != nil {
			l.mu.Lock()
			l.active--
			l.mu.Unlock()
			return 0, err
		}
	}
	return l.estimate, nil
}

func (l *fakeLedger) SubmitMint(ctx context.Context, call interfaces.MintCall, gasLimit uint64) (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.submitErr != nil {
		if err := l.submitErr(len(l.submits) + 1); err != nil {
			l.active--
			return common.Hash{}, err
		}
	}
	l.submits = append(l.submits, submittedCall{call: call, gasLimit: gasLimit, at: time.Now()})
	hash := common.BigToHash(big.NewInt(int64(len(l.submits))))
	l.submittedBy[hash] = call
	return hash, nil
}

func (l *fakeLedger) AwaitConfirmation(ctx context.Context, txHash common.Hash) (*interfaces.MintReceipt, error) {
	l.mu.Lock()
	l.awaits++
	n := l.awaits
	call := l.submittedBy[txHash]
	l.active--
	var err error
	if l.awaitErr != nil {
		err = l.awaitErr(n)
	}
	receipt := &interfaces.MintReceipt{TxHash: txHash, BlockNumber: uint64(100 + n), GasUsed: 90_000, Success: err == nil}
	if err == nil {
		if call.RecordID != nil {
			receipt.RecordID = new(big.Int).Set(call.RecordID)
		} else {
			l.nextID++
			receipt.RecordID = big.NewInt(l.nextID)
		}
	}
	hook := l.afterAwait
	l.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return receipt, err
	}
	return receipt, nil
}

func (l *fakeLedger) submitted() []submittedCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]submittedCall, len(l.submits))
	copy(out, l.submits)
	return out
}

// failingStore fails Publish for the listed names
type failingStore struct {
	*clients.MemoryContentStore
	failNames map[string]bool
}

func (s *failingStore) Publish(ctx context.Context, name string, data []byte) (string, error) {
	if s.failNames[name] {
		return "", errors.New("storage unreachable")
	}
	return s.MemoryContentStore.Publish(ctx, name, data)
}

func (s *failingStore) PublishJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	if s.failNames[name] {
		return "", errors.New("storage unreachable")
	}
	return s.MemoryContentStore.PublishJSON(ctx, name, doc)
}

// fixedAllocator hands out the listed ids in order
type fixedAllocator struct {
	mu  sync.Mutex
	ids []int64
}

func (a *fixedAllocator) Allocate(context.Context) (*big.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.ids) == 0 {
		return nil, errors.New("out of ids")
	}
	id := a.ids[0]
	a.ids = a.ids[1:]
	return big.NewInt(id), nil
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, TokenMapping) error {
	return errors.New("database down")
}

func (failingRecorder) Lookup(context.Context, *big.Int) (string, bool, error) {
	return "", false, nil
}

func mintRequests(names ...string) []models.MintRequest {
	reqs := make([]models.MintRequest, len(names))
	for i, name := range names {
		reqs[i] = models.MintRequest{
			Asset:    []byte(fmt.Sprintf("asset-%d-%s", i, name)),
			FileName: name,
		}
	}
	return reqs
}

// probeReader ledger without totalSupply
type probeReader struct {
	mu        sync.Mutex
	owners    map[int64]common.Address
	uris      map[int64]string
	transient map[int64]bool
	probed    []int64
}

func newProbeReader(ids ...int64) *probeReader {
	r := &probeReader{owners: map[int64]common.Address{}, uris: map[int64]string{}, transient: map[int64]bool{}}
	for _, id := range ids {
		r.owners[id] = common.BigToAddress(big.NewInt(1000 + id))
		r.uris[id] = fmt.Sprintf("ipfs://meta-%d", id)
	}
	return r
}

func (r *probeReader) OwnerOf(ctx context.Context, id *big.Int) (common.Address, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probed = append(r.probed, id.Int64())
	if r.transient[id.Int64()] {
		return common.Address{}, errors.New("rpc timeout")
	}
	owner, ok := r.owners[id.Int64()]
	if !ok {
		return common.Address{}, interfaces.ErrRecordNotFound
	}
	return owner, nil
}

func (r *probeReader) TokenURI(ctx context.Context, id *big.Int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	uri, ok := r.uris[id.Int64()]
	if !ok {
		return "", interfaces.ErrRecordNotFound
	}
	return uri, nil
}

func (r *probeReader) probeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.probed)
}

// countableReader adds totalSupply
type countableReader struct {
	*probeReader
	supply    *big.Int
	supplyErr error
}

func (r *countableReader) TotalSupply(ctx context.Context) (*big.Int, error) {
	if r.supplyErr != nil {
		return nil, r.supplyErr
	}
	return r.supply, nil
}

// staticMetadata resolves refs from a map
type staticMetadata map[string]*models.MetadataRecord

func (m staticMetadata) ResolveMetadata(ctx context.Context, ref string) (*models.MetadataRecord, error) {
	record, ok := m[ref]
	if !ok {
		return nil, errors.New("gateway timeout")
	}
	return record, nil
}

type staticHistory map[int64][]models.TransferEvent

func (h staticHistory) Fetch(ctx context.Context, id *big.Int) []models.TransferEvent {
	return h[id.Int64()]
}
