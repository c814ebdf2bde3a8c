package ws

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"go.uber.org/zap"

	"sensorpanel/backend/services/panel-service/internal/display"
	"sensorpanel/backend/services/panel-service/internal/metrics"
)

// SlotMessage is the frame pushed to panels for every slot write.
type SlotMessage struct {
	Slot string `json:"slot"`
	Text string `json:"text"`
}

// Hub tracks panel connections and broadcasts slot writes to them.
// It implements display.Display.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]*Connection
	snapshot    display.Snapshotter
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewHub builds hub. snapshot, when set, seeds new connections with the
// current slot text.
func NewHub(snapshot display.Snapshotter, m *metrics.Metrics, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		connections: make(map[string]*Connection),
		snapshot:    snapshot,
		metrics:     m,
		logger:      logger,
	}
}

// Add registers new connection and queues the current snapshot for it.
func (h *Hub) Add(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.connections[conn.ID()] = conn
	h.metrics.ClientConnected(1)

	if h.snapshot == nil {
		return
	}
	for _, msg := range snapshotMessages(h.snapshot.Snapshot()) {
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		conn.Send(data)
	}
}

// Remove removes connection.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[id]; ok {
		delete(h.connections, id)
		h.metrics.ClientConnected(-1)
	}
}

// Count returns the number of connected panels.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

// SetSlot broadcasts the write to every connected panel.
func (h *Hub) SetSlot(_ context.Context, slot, text string) error {
	data, err := json.Marshal(SlotMessage{Slot: slot, Text: text})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conn := range h.connections {
		conn.Send(data)
	}
	return nil
}

// snapshotMessages orders known slots first, then any others by name.
func snapshotMessages(snap map[string]string) []SlotMessage {
	msgs := make([]SlotMessage, 0, len(snap))
	seen := make(map[string]bool, len(display.Slots))
	for _, slot := range display.Slots {
		seen[slot] = true
		if text, ok := snap[slot]; ok {
			msgs = append(msgs, SlotMessage{Slot: slot, Text: text})
		}
	}

	var rest []string
	for slot := range snap {
		if !seen[slot] {
			rest = append(rest, slot)
		}
	}
	sort.Strings(rest)
	for _, slot := range rest {
		msgs = append(msgs, SlotMessage{Slot: slot, Text: snap[slot]})
	}
	return msgs
}
