package services

import (
	"context"
	"fmt"
	"math/big"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"
)

// DefaultGasMultiplierPercent safety margin applied to gas estimates
const DefaultGasMultiplierPercent = 120

// SubmitResult what is known about a mint transaction so far
type SubmitResult struct {
	TxHash      common.Hash
	RecordID    *big.Int
	GasEstimate uint64
	GasLimit    uint64
	BlockNumber uint64
	GasUsed     uint64
}

// SubmitProgress is told about gas_estimated and submitted as they happen
type SubmitProgress func(state models.JobState, result SubmitResult)

// TransactionSubmitter estimate → margin → submit → await confirmation
type TransactionSubmitter struct {
	ledger            interfaces.MintLedger
	multiplierPercent uint64
}

func NewTransactionSubmitter(ledger interfaces.MintLedger, multiplierPercent uint64) *TransactionSubmitter {
	if multiplierPercent < 100 {
		multiplierPercent = DefaultGasMultiplierPercent
	}
	return &TransactionSubmitter{ledger: ledger, multiplierPercent: multiplierPercent}
}

// ApplySafetyMargin estimate × percent / 100
func ApplySafetyMargin(estimate, percent uint64) uint64 {
	budget := new(big.Int).SetUint64(estimate)
	budget.Mul(budget, new(big.Int).SetUint64(percent))
	budget.Div(budget, big.NewInt(100))
	if !budget.IsUint64() {
		return ^uint64(0)
	}
	return budget.Uint64()
}

// Submit runs one mint call to confirmation.
// Estimation failures return *EstimationError and nothing is sent; everything after returns *SubmissionError.
func (s *TransactionSubmitter) Submit(ctx context.Context, call interfaces.MintCall, progress SubmitProgress) (*SubmitResult, error) {
	if progress == nil {
		progress = func(models.JobState, SubmitResult) {}
	}
	result := SubmitResult{RecordID: call.RecordID}

	estimate, err := s.ledger.EstimateMint(ctx, call)
	if err != nil {
		reason, exists := revertDetails(err)
		return nil, &EstimationError{Reason: reason, AlreadyExists: exists, Err: err}
	}
	result.GasEstimate = estimate
	result.GasLimit = ApplySafetyMargin(estimate, s.multiplierPercent)
	metrics.GasEstimate.Observe(float64(estimate))
	progress(models.JobStateGasEstimated, result)

	txHash, err := s.ledger.SubmitMint(ctx, call, result.GasLimit)
	if err != nil {
		reason, exists := revertDetails(err)
		return nil, &SubmissionError{Reason: reason, AlreadyExists: exists, Err: err}
	}
	result.TxHash = txHash
	progress(models.JobStateSubmitted, result)

	logrus.WithFields(logrus.Fields{
		"component": "TransactionSubmitter",
		"tx":        txHash.Hex(),
		"estimate":  estimate,
		"gasLimit":  result.GasLimit,
	}).Info("⏳ [Submitter] Waiting for confirmation")

	receipt, err := s.ledger.AwaitConfirmation(ctx, txHash)
	if err != nil {
		reason, exists := revertDetails(err)
		return &result, &SubmissionError{TxHash: txHash.Hex(), Reason: reason, AlreadyExists: exists, Err: err}
	}
	if !receipt.Success {
		return &result, &SubmissionError{TxHash: txHash.Hex(), Reason: "transaction reverted", Err: fmt.Errorf("receipt status 0")}
	}

	result.BlockNumber = receipt.BlockNumber
	result.GasUsed = receipt.GasUsed
	if result.RecordID == nil && receipt.RecordID != nil {
		result.RecordID = new(big.Int).Set(receipt.RecordID)
	}
	return &result, nil
}
