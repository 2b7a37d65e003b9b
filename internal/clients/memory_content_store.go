package clients

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"nft-backend/internal/interfaces"

	"github.com/zeebo/blake3"
)

// Blake3ContentID content id for stores that address objects by their own hash
func Blake3ContentID(data []byte) string {
	sum := blake3.Sum256(data)
	return "b3" + hex.EncodeToString(sum[:])
}

// MemoryContentStore process-local content store, used by tests and the memory backend
type MemoryContentStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryContentStore() *MemoryContentStore {
	return &MemoryContentStore{objects: make(map[string][]byte)}
}

var _ interfaces.ContentStore = (*MemoryContentStore)(nil)

func (s *MemoryContentStore) Publish(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := Blake3ContentID(data)
	stored := make([]byte, len(data))
	copy(stored, data)

	s.mu.Lock()
	s.objects[id] = stored
	s.mu.Unlock()
	return id, nil
}

func (s *MemoryContentStore) PublishJSON(ctx context.Context, name string, doc interface{}) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON document: %w", err)
	}
	return s.Publish(ctx, name, data)
}

func (s *MemoryContentStore) Resolve(ctx context.Context, contentID string) ([]byte, error) {
	s.mu.RLock()
	data, ok := s.objects[contentID]
	s.mu.RUnlock()
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Len number of stored objects
func (s *MemoryContentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
