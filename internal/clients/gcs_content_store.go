package clients

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"nft-backend/internal/interfaces"

	"cloud.google.com/go/storage"
	"github.com/sirupsen/logrus"
)

// GCSContentStore stores objects in a bucket under their BLAKE3 content id
type GCSContentStore struct {
	Client *storage.Client
	Bucket string
	Prefix string
}

// NewGCSContentStore uses application default credentials
func NewGCSContentStore(ctx context.Context, bucket, prefix string) (*GCSContentStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	logrus.Infof("🔧 [GCS] Content store on gs://%s/%s", bucket, prefix)
	return &GCSContentStore{Client: client, Bucket: bucket, Prefix: strings.Trim(prefix, "/")}, nil
}

var _ interfaces.ContentStore = (*GCSContentStore)(nil)

func (s *GCSContentStore) objectPath(contentID string) string {
	if s.Prefix == "" {
		return contentID
	}
	return path.Join(s.Prefix, contentID)
}

func (s *GCSContentStore) Publish(ctx context.Context, name string, data []byte) (string, error) {
	return s.put(ctx, name, data, http.DetectContentType(data))
}

func (s *GCSContentStore) PublishJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON document: %w", err)
	}
	return s.put(ctx, name, data, "application/json")
}

func (s *GCSContentStore) put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	id := Blake3ContentID(data)
	obj := s.Client.Bucket(s.Bucket).Object(s.objectPath(id))

	// same bytes, same id: nothing to write
	if _, err := obj.Attrs(ctx); err == nil {
		return id, nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return "", fmt.Errorf("failed to stat gs://%s/%s: %w", s.Bucket, s.objectPath(id), err)
	}

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{"name": name}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("failed to write gs://%s/%s: %w", s.Bucket, s.objectPath(id), err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize gs://%s/%s: %w", s.Bucket, s.objectPath(id), err)
	}
	return id, nil
}

func (s *GCSContentStore) Resolve(ctx context.Context, contentID string) ([]byte, error) {
	r, err := s.Client.Bucket(s.Bucket).Object(s.objectPath(contentID)).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, interfaces.ErrContentNotFound
		}
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.Bucket, s.objectPath(contentID), err)
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (s *GCSContentStore) Close() error {
	return s.Client.Close()
}
