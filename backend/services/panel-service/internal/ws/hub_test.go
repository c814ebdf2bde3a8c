package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sensorpanel/backend/services/panel-service/internal/display"
	"sensorpanel/backend/services/panel-service/internal/metrics"
)

func dialPanel(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSlot(t *testing.T, conn *websocket.Conn) SlotMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg SlotMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func httpHandler(s *Server) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	return mux
}

func newTestServer(t *testing.T, snap display.Snapshotter) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(snap, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	server := NewServer(ctx, hub, time.Second, time.Minute, zap.NewNop())
	srv := httptest.NewServer(httpHandler(server))
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestHubSeedsNewPanelsWithSnapshot(t *testing.T) {
	mem := display.NewMemory()
	require.NoError(t, mem.SetSlot(context.Background(), display.SlotOzone, "0.04 ppm"))
	require.NoError(t, mem.SetSlot(context.Background(), display.SlotTemperature, "20 °C"))
	require.NoError(t, mem.SetSlot(context.Background(), "extra", "x"))

	_, srv := newTestServer(t, mem)
	conn := dialPanel(t, srv)

	assert.Equal(t, SlotMessage{Slot: display.SlotTemperature, Text: "20 °C"}, readSlot(t, conn))
	assert.Equal(t, SlotMessage{Slot: display.SlotOzone, Text: "0.04 ppm"}, readSlot(t, conn))
	assert.Equal(t, SlotMessage{Slot: "extra", Text: "x"}, readSlot(t, conn))
}

func TestHubBroadcastsSlotWrites(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	first := dialPanel(t, srv)
	second := dialPanel(t, srv)

	require.Eventually(t, func() bool { return hub.Count() == 2 }, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, hub.SetSlot(context.Background(), display.SlotTemperature, "Error al cargar"))

	want := SlotMessage{Slot: display.SlotTemperature, Text: "Error al cargar"}
	assert.Equal(t, want, readSlot(t, first))
	assert.Equal(t, want, readSlot(t, second))
}

func TestHubForgetsClosedPanels(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	conn := dialPanel(t, srv)
	require.Eventually(t, func() bool { return hub.Count() == 1 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Count() == 0 }, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, hub.SetSlot(context.Background(), display.SlotOzone, "1 ppm"))
}

func TestSnapshotMessagesOrder(t *testing.T) {
	msgs := snapshotMessages(map[string]string{
		"b":                     "2",
		display.SlotOzone:       "o",
		"a":                     "1",
		display.SlotTemperature: "t",
	})
	var slots []string
	for _, m := range msgs {
		slots = append(slots, m.Slot)
	}
	assert.Equal(t, []string{display.SlotTemperature, display.SlotOzone, "a", "b"}, slots)
}
