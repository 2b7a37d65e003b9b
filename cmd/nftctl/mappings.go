package main

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

type mappingRow struct {
	RecordID   string    `json:"record_id"`
	ChainID    string    `json:"chain_id"`
	Contract   string    `json:"contract"`
	ContentRef string    `json:"content_ref"`
	TxHash     string    `json:"tx_hash"`
	BatchID    string    `json:"batch_id"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
}

func newMappingsCmd(opts *rootOptions) *cobra.Command {
	var format, chainID string

	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Export recorded record id to content ref mappings",
		Long: `Exports token_uri_mappings in confirmation order. Requires database.dsn.
The gallery falls back to these mappings when a tokenURI read fails.`,
		Example: `  nftctl mappings --format csv > mappings.csv
  nftctl mappings --chain-id 11155111`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.cfg.Database.DSN == "" {
				return fmt.Errorf("database.dsn is not configured")
			}
			conn, err := sql.Open("postgres", opts.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer conn.Close()

			rows, err := loadMappings(cmd.Context(), conn, chainID)
			if err != nil {
				return err
			}
			opts.logger.Infof("📋 Exporting %d mappings", len(rows))

			switch format {
			case "csv":
				return writeMappingsCSV(cmd.OutOrStdout(), rows)
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			default:
				return fmt.Errorf("unknown format %q (want csv or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "json", "Output format: json or csv")
	cmd.Flags().StringVar(&chainID, "chain-id", "", "Only export mappings for this chain id")
	return cmd
}

func loadMappings(ctx context.Context, conn *sql.DB, chainID string) ([]mappingRow, error) {
	query := `SELECT record_id, chain_id, contract, content_ref, tx_hash, batch_id, owner, created_at
		FROM token_uri_mappings`
	var args []interface{}
	if chainID != "" {
		query += ` WHERE chain_id = $1`
		args = append(args, chainID)
	}
	query += ` ORDER BY id`

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var out []mappingRow
	for rows.Next() {
		var (
			r                                mappingRow
			contract, txHash, batchID, owner sql.NullString
		)
		if err := rows.Scan(&r.RecordID, &r.ChainID, &contract, &r.ContentRef, &txHash, &batchID, &owner, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		r.Contract, r.TxHash, r.BatchID, r.Owner = contract.String, txHash.String, batchID.String, owner.String
		out = append(out, r)
	}
	return out, rows.Err()
}

func writeMappingsCSV(w io.Writer, rows []mappingRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"record_id", "chain_id", "contract", "content_ref", "tx_hash", "batch_id", "owner", "created_at"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.RecordID, r.ChainID, r.Contract, r.ContentRef, r.TxHash, r.BatchID, r.Owner, r.CreatedAt.UTC().Format(time.RFC3339)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
