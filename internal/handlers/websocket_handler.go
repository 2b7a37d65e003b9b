package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"nft-backend/internal/models"
	"nft-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

// StreamMessage frame sent to websocket clients
type StreamMessage struct {
	Type   string              `json:"type"` // snapshot, job_update, batch_done
	Batch  *models.BatchReport `json:"batch,omitempty"`
	Update *models.JobUpdate   `json:"update,omitempty"`
}

// WebSocketHandler streams job updates of one batch
type WebSocketHandler struct {
	hub        *services.JobUpdateHub
	minter     BatchMinter
	upgrader   websocket.Upgrader
	pingPeriod time.Duration
}

func NewWebSocketHandler(hub *services.JobUpdateHub, minter BatchMinter) *WebSocketHandler {
	return &WebSocketHandler{
		hub:        hub,
		minter:     minter,
		pingPeriod: wsPingPeriod,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleBatchStream sends a snapshot, then every job update until all jobs are terminal.
// Each ping tick also re-reads the batch, so a dropped terminal update cannot keep the stream open.
// GET /ws/mint/:id
func (h *WebSocketHandler) HandleBatchStream(c *gin.Context) {
	batchID := c.Param("id")

	// subscribe before the snapshot so no transition falls in between
	clientID, updates := h.hub.Subscribe(batchID, 256)
	defer h.hub.Unsubscribe(batchID, clientID)

	report, err := h.minter.GetBatch(c.Request.Context(), batchID)
	if err != nil {
		if errors.Is(err, services.ErrBatchNotFound) {
			respondWithError(c, http.StatusNotFound, "Batch not found", batchID, "BATCH_NOT_FOUND")
			return
		}
		respondWithError(c, http.StatusInternalServerError, "Failed to load batch", err.Error(), "BATCH_LOAD_FAILED")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.Errorf("❌ [WebSocket] Upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	log := logrus.WithFields(logrus.Fields{"component": "WebSocketHandler", "batch": batchID, "client": clientID})
	log.Info("📡 [WebSocket] Client connected")

	if err := h.write(conn, StreamMessage{Type: "snapshot", Batch: report}); err != nil {
		return
	}

	states := make(map[int]models.JobState, len(report.Jobs))
	for _, job := range report.Jobs {
		states[job.RequestIndex] = job.State
	}
	if report.FinishedAt != nil || allTerminal(states) {
		h.finish(conn, batchID)
		return
	}

	readDone := make(chan struct{})
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Errorf("❌ [WebSocket] PANIC recovered in read goroutine: %v", r)
			}
			close(readDone)
		}()
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(wsPongWait))
			return nil
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warnf("⚠️ [WebSocket] Read error: %v", err)
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-readDone:
			log.Info("🔌 [WebSocket] Client disconnected")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if err := h.write(conn, StreamMessage{Type: "job_update", Update: &update}); err != nil {
				log.Warnf("⚠️ [WebSocket] Write failed: %v", err)
				return
			}
			states[update.Job.RequestIndex] = update.Job.State
			if allTerminal(states) {
				h.finish(conn, batchID)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				log.Warnf("⚠️ [WebSocket] Ping failed: %v", err)
				return
			}
			if h.batchDone(batchID) {
				log.Info("📡 [WebSocket] Batch finished without a final update, closing")
				h.finish(conn, batchID)
				return
			}
		}
	}
}

func (h *WebSocketHandler) batchDone(batchID string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteWait)
	defer cancel()
	report, err := h.minter.GetBatch(ctx, batchID)
	if err != nil {
		return false
	}
	return report.FinishedAt != nil || report.Done()
}

// finish sends the final report and closes the stream normally
func (h *WebSocketHandler) finish(conn *websocket.Conn, batchID string) {
	msg := StreamMessage{Type: "batch_done"}
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteWait)
	defer cancel()
	if report, err := h.minter.GetBatch(ctx, batchID); err == nil {
		msg.Batch = report
	}
	if err := h.write(conn, msg); err != nil {
		return
	}
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "batch done"),
		time.Now().Add(wsWriteWait))
}

func (h *WebSocketHandler) write(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return conn.WriteJSON(msg)
}

func allTerminal(states map[int]models.JobState) bool {
	for _, s := range states {
		if !s.IsTerminal() {
			return false
		}
	}
	return true
}
