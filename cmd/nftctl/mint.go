package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"nft-backend/internal/app"
	"nft-backend/internal/models"
	"nft-backend/internal/services"

	"github.com/spf13/cobra"
)

func newMintCmd(opts *rootOptions) *cobra.Command {
	var names, descriptions []string

	cmd := &cobra.Command{
		Use:   "mint <file>...",
		Short: "Publish and mint a batch of asset files",
		Example: `  # Mint two images with default names and descriptions
  nftctl mint cat.png dog.png

  # Custom display names, matched to files by position
  nftctl mint cat.png dog.png --name "Cat" --name "Dog"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requests, err := buildMintRequests(args, names, descriptions)
			if err != nil {
				return err
			}

			container, err := app.NewServiceContainer(cmd.Context(), opts.cfg)
			if err != nil {
				return err
			}
			defer container.Close()

			container.MintService.AddObserver(services.JobObserverFunc(func(update models.JobUpdate) {
				job := update.Job
				if job.Error != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d] %s: %s (%s)\n", job.RequestIndex, job.DisplayName, job.State, job.Error.Message)
					return
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d] %s: %s\n", job.RequestIndex, job.DisplayName, job.State)
			}))

			report, err := container.MintService.SubmitBatch(cmd.Context(), requests)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d of %d jobs failed", report.Failed, len(report.Jobs))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&names, "name", nil, "Display name per file, in argument order")
	cmd.Flags().StringArrayVar(&descriptions, "description", nil, "Description per file, in argument order")
	return cmd
}

// buildMintRequests reads every file; names and descriptions are optional and positional
func buildMintRequests(paths, names, descriptions []string) ([]models.MintRequest, error) {
	requests := make([]models.MintRequest, 0, len(paths))
	for i, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		req := models.MintRequest{Asset: data, FileName: filepath.Base(path)}
		if i < len(names) {
			req.DisplayName = names[i]
		}
		if i < len(descriptions) {
			req.Description = descriptions[i]
		}
		requests = append(requests, req)
	}
	return requests, nil
}
