package services

import "nft-backend/internal/models"

// ComposeMetadata builds the metadata document for a published asset
func ComposeMetadata(name, description, assetContentID string) models.MetadataRecord {
	return models.MetadataRecord{
		Name:        name,
		Description: description,
		Image:       ContentURI(assetContentID),
	}
}

// normalizeRequest fills display name and description from the file name when absent
func normalizeRequest(req models.MintRequest) models.MintRequest {
	if req.DisplayName == "" {
		req.DisplayName = req.FileName
	}
	if req.Description == "" && req.FileName != "" {
		req.Description = "Description for " + req.FileName
	}
	return req
}
