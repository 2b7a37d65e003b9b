package main

import (
	"fmt"

	"nft-backend/internal/app"
	"nft-backend/internal/config"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	cfg        *config.Config
	logger     *logrus.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "nftctl",
		Short: "NFT minting orchestrator and gallery service",
		Long: `nftctl publishes assets to content-addressed storage, mints them on an
ERC-721 contract one transaction at a time, and rebuilds the gallery of
minted records from the ledger.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			opts.cfg = cfg
			opts.logger = app.NewLogger(cfg.Log)
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to config yaml (default config.yaml)")

	cmd.AddCommand(
		newServeCmd(opts),
		newMintCmd(opts),
		newGalleryCmd(opts),
		newMappingsCmd(opts),
	)
	return cmd
}
