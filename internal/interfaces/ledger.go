package interfaces

import (
	"context"
	"errors"
	"math/big"

	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

// ErrRecordNotFound is returned by ledger reads when the identifier was never minted (or was burned).
// It is a signal, not a failure.
var ErrRecordNotFound = errors.New("record does not exist")

// RevertError carries a decoded contract revert
type RevertError struct {
	Reason        string // decoded Error(string) or custom error name
	Data          string // raw revert data, hex
	AlreadyExists bool   // the revert says the identifier is already minted
	Err           error
}

func (e *RevertError) Error() string {
	if e.Reason != "" {
		return "execution reverted: " + e.Reason
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "execution reverted"
}

func (e *RevertError) Unwrap() error {
	return e.Err
}

// MintCall the contract call a mint job wants executed.
// RecordID nil means the contract assigns the identifier.
type MintCall struct {
	To       common.Address
	RecordID *big.Int
	TokenURI string
}

// MintReceipt confirmation of a mint transaction
type MintReceipt struct {
	TxHash      common.Hash
	BlockNumber uint64
	GasUsed     uint64
	Success     bool
	RecordID    *big.Int // parsed from the Transfer(0x0 → to) log, nil if absent
}

// MintLedger the write side of the ledger collaborator
type MintLedger interface {
	EstimateMint(ctx context.Context, call MintCall) (uint64, error)
	SubmitMint(ctx context.Context, call MintCall, gasLimit uint64) (common.Hash, error)
	AwaitConfirmation(ctx context.Context, txHash common.Hash) (*MintReceipt, error)
}

// ProbeOnlyLedger answers per-record queries only
type ProbeOnlyLedger interface {
	// OwnerOf returns ErrRecordNotFound for identifiers that do not exist.
	OwnerOf(ctx context.Context, recordID *big.Int) (common.Address, error)
	TokenURI(ctx context.Context, recordID *big.Int) (string, error)
}

// CountableLedger additionally reports how many records exist
type CountableLedger interface {
	ProbeOnlyLedger
	TotalSupply(ctx context.Context) (*big.Int, error)
}

// LedgerResolver picks the ledger variant once per scan
type LedgerResolver interface {
	ResolveReader(ctx context.Context) (ProbeOnlyLedger, error)
}

// StaticResolver always returns the wrapped reader
type StaticResolver struct {
	Reader ProbeOnlyLedger
}

func (r StaticResolver) ResolveReader(context.Context) (ProbeOnlyLedger, error) {
	return r.Reader, nil
}

// Wallet the signing identity
type Wallet interface {
	RequestAccess(ctx context.Context) (common.Address, error)
	ChainID(ctx context.Context) (*big.Int, error)
	SwitchNetwork(ctx context.Context, chainID *big.Int) error
}

// TransferSource the ledger-history collaborator
type TransferSource interface {
	ListTransfers(ctx context.Context, contract common.Address) ([]models.TransferLog, error)
}
