package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"nft-backend/internal/app"
	"nft-backend/internal/models"
	"nft-backend/internal/utils"

	"github.com/spf13/cobra"
)

func newGalleryCmd(opts *rootOptions) *cobra.Command {
	var owner string

	cmd := &cobra.Command{
		Use:   "gallery [record-id]",
		Short: "Rebuild the gallery from the ledger, or show one record",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := app.NewServiceContainer(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			if len(args) == 1 {
				recordID, err := utils.ParseRecordID(args[0])
				if err != nil {
					return err
				}
				record, err := container.Gallery.Get(cmd.Context(), recordID)
				if err != nil {
					return err
				}
				if record == nil {
					return fmt.Errorf("record %s not found", recordID)
				}
				return enc.Encode(record)
			}

			report, err := container.Gallery.ScanWithReport(cmd.Context())
			if err != nil {
				return err
			}
			if owner != "" {
				if !utils.IsEvmAddress(owner) {
					return fmt.Errorf("invalid owner address %q", owner)
				}
				report.Records = filterByOwner(report.Records, owner)
			}
			opts.logger.Infof("🖼️ %d records via %s path (%d attempts, %d skipped)",
				len(report.Records), report.Path, report.State.TotalAttempts, len(report.Skipped))
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringVar(&owner, "owner", "", "Only show records owned by this address")
	return cmd
}

func filterByOwner(records []models.TokenRecord, owner string) []models.TokenRecord {
	out := make([]models.TokenRecord, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.Owner, owner) {
			out = append(out, r)
		}
	}
	return out
}
