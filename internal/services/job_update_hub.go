package services

import (
	"sync"

	"nft-backend/internal/interfaces"
	"nft-backend/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// JobUpdateHub fans job updates out to subscribers of a batch (websocket clients)
type JobUpdateHub struct {
	mu sync.RWMutex
	// batch id -> client id -> channel
	subscriptions map[string]map[string]chan models.JobUpdate
}

func NewJobUpdateHub() *JobUpdateHub {
	return &JobUpdateHub{subscriptions: make(map[string]map[string]chan models.JobUpdate)}
}

// Subscribe registers a client for one batch
func (h *JobUpdateHub) Subscribe(batchID string, buffer int) (string, <-chan models.JobUpdate) {
	if buffer <= 0 {
		buffer = 64
	}
	clientID := uuid.New().String()
	ch := make(chan models.JobUpdate, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subscriptions[batchID] == nil {
		h.subscriptions[batchID] = make(map[string]chan models.JobUpdate)
	}
	h.subscriptions[batchID][clientID] = ch
	return clientID, ch
}

// Unsubscribe removes the client and closes its channel
func (h *JobUpdateHub) Unsubscribe(batchID, clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	clients := h.subscriptions[batchID]
	if ch, ok := clients[clientID]; ok {
		delete(clients, clientID)
		close(ch)
	}
	if len(clients) == 0 {
		delete(h.subscriptions, batchID)
	}
}

// Subscribers number of clients on a batch
func (h *JobUpdateHub) Subscribers(batchID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscriptions[batchID])
}

// OnJobUpdate delivers without blocking; a full client channel drops the update
func (h *JobUpdateHub) OnJobUpdate(update models.JobUpdate) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for clientID, ch := range h.subscriptions[update.BatchID] {
		select {
		case ch <- update:
		default:
			logrus.Warnf("⚠️ [JobUpdateHub] Client %s is slow, dropping update for job %d", clientID, update.Job.RequestIndex)
		}
	}
}

// EventPublisherObserver forwards job updates to an event publisher as mint.<state>
type EventPublisherObserver struct {
	Publisher interfaces.EventPublisher
}

func (o EventPublisherObserver) OnJobUpdate(update models.JobUpdate) {
	if err := o.Publisher.Publish("mint."+string(update.Job.State), update); err != nil {
		logrus.Warnf("⚠️ [Events] Failed to publish job update for batch %s: %v", update.BatchID, err)
	}
}
