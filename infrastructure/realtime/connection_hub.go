package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"social-connect/domain/model"

	"github.com/gin-gonic/gin"
)

// Hub fans settled connection attempts out to the dashboards of their seller.
type Hub struct {
	mu        sync.RWMutex
	users     map[string]map[chan model.AttemptEvent]struct{}
	heartbeat time.Duration
}

func NewConnectionHub(heartbeat time.Duration) *Hub {
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	return &Hub{users: make(map[string]map[chan model.AttemptEvent]struct{}), heartbeat: heartbeat}
}

// Serve registers an SSE stream for the seller resolved by middleware (user_id).
func (h *Hub) Serve(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.Status(http.StatusUnauthorized)
		return
	}
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // disable nginx buffering

	ch := make(chan model.AttemptEvent, 8)
	h.addSubscriber(userID, ch)
	defer h.removeSubscriber(userID, ch)

	_, _ = c.Writer.Write([]byte(":ok\n\n"))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		select {
		case <-c.Request.Context().Done():
			return
		case <-ticker.C:
			_, _ = c.Writer.Write([]byte(":ping\n\n"))
			c.Writer.Flush()
		case evt := <-ch:
			data, _ := json.Marshal(evt)
			_, _ = fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", evt.Type, data)
			c.Writer.Flush()
		}
	}
}

func (h *Hub) addSubscriber(userID string, ch chan model.AttemptEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.users[userID] == nil {
		h.users[userID] = make(map[chan model.AttemptEvent]struct{})
	}
	h.users[userID][ch] = struct{}{}
}

func (h *Hub) removeSubscriber(userID string, ch chan model.AttemptEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if subs := h.users[userID]; subs != nil {
		delete(subs, ch)
		if len(subs) == 0 {
			delete(h.users, userID)
		}
	}
}

// Subscribers reports how many streams are open for a seller.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// BroadcastAttempt delivers evt to every stream of its seller. Slow streams drop events.
func (h *Hub) BroadcastAttempt(evt model.AttemptEvent) {
	if evt.UserID == "" {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.users[evt.UserID] {
		select {
		case ch <- evt:
		default:
		}
	}
}
