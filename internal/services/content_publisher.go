package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"nft-backend/internal/clients"
	"nft-backend/internal/interfaces"
	"nft-backend/internal/metrics"
	"nft-backend/internal/models"
)

const ipfsScheme = "ipfs://"

// ContentURI reference stored on-chain and in metadata for a content id
func ContentURI(contentID string) string {
	return ipfsScheme + contentID
}

// ParseContentURI splits a content reference into a store content id or a plain URL.
// Accepts ipfs://<cid>, ipfs://ipfs/<cid>, bare ids and http(s) URLs.
func ParseContentURI(ref string) (contentID string, url string) {
	ref = strings.TrimSpace(ref)
	switch {
	case strings.HasPrefix(ref, ipfsScheme):
		return strings.TrimPrefix(strings.TrimPrefix(ref, ipfsScheme), "ipfs/"), ""
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return "", ref
	default:
		return ref, ""
	}
}

// ContentPublisher publishes assets and metadata documents to the content store and reads them back
type ContentPublisher struct {
	store      interfaces.ContentStore
	httpClient *http.Client
}

func NewContentPublisher(store interfaces.ContentStore) *ContentPublisher {
	return &ContentPublisher{
		store:      store,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// PublishAsset uploads the raw asset bytes
func (p *ContentPublisher) PublishAsset(ctx context.Context, req models.MintRequest) (models.PublishedAsset, error) {
	start := time.Now()
	name := req.FileName
	if name == "" {
		name = req.DisplayName
	}
	cid, err := p.store.Publish(ctx, name, req.Asset)
	if err != nil {
		return models.PublishedAsset{}, &UploadError{Stage: "asset", Err: err}
	}
	metrics.ContentPublishDuration.WithLabelValues("asset").Observe(time.Since(start).Seconds())
	return models.PublishedAsset{ContentID: cid}, nil
}

// PublishMetadata uploads the metadata document and returns its content id
func (p *ContentPublisher) PublishMetadata(ctx context.Context, record models.MetadataRecord) (string, error) {
	start := time.Now()
	cid, err := p.store.PublishJSON(ctx, record.Name+".json", record)
	if err != nil {
		return "", &UploadError{Stage: "metadata", Err: err}
	}
	metrics.ContentPublishDuration.WithLabelValues("metadata").Observe(time.Since(start).Seconds())
	return cid, nil
}

// ResolveMetadata fetches and decodes the metadata document behind a content reference
func (p *ContentPublisher) ResolveMetadata(ctx context.Context, contentRef string) (*models.MetadataRecord, error) {
	cid, url := ParseContentURI(contentRef)

	var data []byte
	var err error
	if url != "" {
		data, err = clients.FetchURL(ctx, p.httpClient, url)
	} else if cid != "" {
		data, err = p.store.Resolve(ctx, cid)
	} else {
		return nil, fmt.Errorf("empty content reference")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", contentRef, err)
	}

	var record models.MetadataRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("invalid metadata at %s: %w", contentRef, err)
	}
	return &record, nil
}
