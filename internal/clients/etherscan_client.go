package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nft-backend/internal/config"
	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
)

// EtherscanClient block explorer API client, used as the transfer history source
type EtherscanClient struct {
	APIURL string
	APIKey string
	Client *http.Client
}

// etherscanResponse result is an array on success and a string on error
type etherscanResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

// etherscanNFTTransfer one row of action=tokennfttx
type etherscanNFTTransfer struct {
	BlockNumber     string `json:"blockNumber"`
	TimeStamp       string `json:"timeStamp"`
	Hash            string `json:"hash"`
	From            string `json:"from"`
	To              string `json:"to"`
	ContractAddress string `json:"contractAddress"`
	TokenID         string `json:"tokenID"`
}

func NewEtherscanClient(cfg config.EtherscanConfig) *EtherscanClient {
	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &EtherscanClient{
		APIURL: cfg.APIURL,
		APIKey: cfg.APIKey,
		Client: &http.Client{Timeout: timeout},
	}
}

var _ interfaces.TransferSource = (*EtherscanClient)(nil)

// ListTransfers all ERC-721 transfers of contract, oldest first
func (c *EtherscanClient) ListTransfers(ctx context.Context, contract common.Address) ([]models.TransferLog, error) {
	query := url.Values{}
	query.Set("module", "account")
	query.Set("action", "tokennfttx")
	query.Set("contractaddress", contract.Hex())
	query.Set("sort", "asc")
	if c.APIKey != "" {
		query.Set("apikey", c.APIKey)
	}

	body, err := FetchURL(ctx, c.Client, c.APIURL+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("etherscan request failed: %w", err)
	}

	var resp etherscanResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse etherscan response: %w", err)
	}
	if resp.Status != "1" {
		if strings.HasPrefix(resp.Message, "No transactions found") {
			return []models.TransferLog{}, nil
		}
		var detail string
		_ = json.Unmarshal(resp.Result, &detail)
		return nil, fmt.Errorf("etherscan error: %s %s", resp.Message, detail)
	}

	var rows []etherscanNFTTransfer
	if err := json.Unmarshal(resp.Result, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse etherscan result: %w", err)
	}

	transfers := make([]models.TransferLog, 0, len(rows))
	for _, row := range rows {
		id, ok := new(big.Int).SetString(row.TokenID, 10)
		if !ok {
			continue
		}
		ts, _ := strconv.ParseInt(row.TimeStamp, 10, 64)
		block, _ := strconv.ParseUint(row.BlockNumber, 10, 64)
		transfers = append(transfers, models.TransferLog{
			From:        common.HexToAddress(row.From).Hex(),
			To:          common.HexToAddress(row.To).Hex(),
			RecordID:    id,
			Timestamp:   time.Unix(ts, 0).UTC(),
			BlockNumber: block,
			TxHash:      row.Hash,
		})
	}
	return transfers, nil
}
