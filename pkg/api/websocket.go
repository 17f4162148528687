package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"patchwork-transcriber/pkg/models"
	"patchwork-transcriber/pkg/storage"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketMessage struct {
	Type   string          `json:"type"`
	JobID  string          `json:"job_id,omitempty"`
	Status string          `json:"status,omitempty"`
	Error  string          `json:"error,omitempty"`
	Data   json.RawMessage `json:"data,omitempty"`
}

func (h *Handlers) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var msg WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "watch":
			if msg.JobID == "" {
				h.sendMessage(conn, WebSocketMessage{
					Type:  "error",
					Error: "job_id is required",
				})
				continue
			}
			go h.monitorJob(ctx, conn, msg.JobID)
		case "ping":
			h.sendMessage(conn, WebSocketMessage{
				Type: "pong",
			})
		default:
			h.sendMessage(conn, WebSocketMessage{
				Type:  "error",
				Error: "Unknown message type",
			})
		}
	}
}

func (h *Handlers) monitorJob(ctx context.Context, conn *websocket.Conn, jobID string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := h.store.GetJob(jobID)
			if err != nil {
				if err == storage.ErrJobNotFound {
					h.sendMessage(conn, WebSocketMessage{
						Type:  "error",
						JobID: jobID,
						Error: "job not found",
					})
				}
				return
			}

			h.sendMessage(conn, WebSocketMessage{
				Type:   "status_update",
				JobID:  jobID,
				Status: string(job.Status),
			})

			if job.Status == models.StatusCompleted {
				h.sendMessage(conn, WebSocketMessage{
					Type:  "job_complete",
					JobID: jobID,
					Data:  mustMarshal(job),
				})
				return
			}

			if job.Status == models.StatusFailed {
				h.sendMessage(conn, WebSocketMessage{
					Type:  "job_failed",
					JobID: jobID,
					Error: job.Error,
				})
				return
			}
		}
	}
}

func (h *Handlers) sendMessage(conn *websocket.Conn, msg WebSocketMessage) {
	if err := conn.WriteJSON(msg); err != nil {
		h.log.Debug("websocket write failed", "err", err)
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
