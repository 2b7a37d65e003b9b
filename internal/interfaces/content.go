package interfaces

import (
	"context"
	"errors"
)

// ErrContentNotFound the store has nothing under the content id
var ErrContentNotFound = errors.New("content not found")

// ContentStore the content-addressed storage collaborator
type ContentStore interface {
	// Publish stores raw bytes and returns their content id. name is a label only.
	Publish(ctx context.Context, name string, data []byte) (string, error)
	// PublishJSON stores doc as JSON.
	PublishJSON(ctx context.Context, name string, doc interface{}) (string, error)
	Resolve(ctx context.Context, contentID string) ([]byte, error)
}

// EventPublisher fire-and-forget event sink
type EventPublisher interface {
	Publish(subject string, payload interface{}) error
}
