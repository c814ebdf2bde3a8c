package app

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sensorpanel/backend/services/panel-service/internal/config"
	"sensorpanel/backend/services/panel-service/internal/service"
)

const measurementsBody = `[
	{"id_medicion": 1, "nombre_tipo": "Temperatura", "dato": 20},
	{"id_medicion": 2, "nombre_tipo": "Ozono", "dato": 0.04},
	{"id_medicion": 3, "nombre_tipo": "Temperatura", "dato": 21.5}
]`

func newSource(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newApp(t *testing.T, sourceURL string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Source.URL = sourceURL
	cfg.Poll.IntervalMillis = 20

	application, err := New(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(application.Close)
	return application
}

func TestRefreshOnce(t *testing.T) {
	source := newSource(t, measurementsBody)
	application := newApp(t, source.URL)

	outcome, snap := application.RefreshOnce(context.Background())
	assert.Equal(t, service.OutcomeUpdated, outcome)
	assert.Equal(t, map[string]string{"temperatura": "21.5 °C", "co2": "0.04 ppm"}, snap)
}

func TestRefreshOnceUnreachableSource(t *testing.T) {
	application := newApp(t, "http://127.0.0.1:1/mediciones")

	outcome, snap := application.RefreshOnce(context.Background())
	assert.Equal(t, service.OutcomeFailed, outcome)
	assert.Equal(t, map[string]string{"temperatura": "Error al cargar", "co2": "Error al cargar"}, snap)
}

func TestServeEndToEnd(t *testing.T) {
	source := newSource(t, measurementsBody)
	application := newApp(t, source.URL)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	base := "http://" + ln.Addr().String()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- application.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/api/display")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		var snap map[string]string
		if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
			return false
		}
		return snap["temperatura"] == "21.5 °C" && snap["co2"] == "0.04 ppm"
	}, 5*time.Second, 20*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(base, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Slot string `json:"slot"`
		Text string `json:"text"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "temperatura", msg.Slot)
	assert.Equal(t, "21.5 °C", msg.Text)

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
}
