package cli

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PANEL_REDIS_ADDR", "")
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand("1.2.3")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "Version: 1.2.3\n", out)
}

func TestOnceCommandPrintsSlots(t *testing.T) {
	isolate(t)
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id_medicion":7,"nombre_tipo":"Temperatura","dato":19}]`))
	}))
	defer source.Close()
	t.Setenv("PANEL_SOURCE_URL", source.URL)

	out, err := execute(t, "once")
	require.NoError(t, err)
	assert.Equal(t, "temperatura: 19 °C\nco2: Dato no disponible\n", out)
}

func TestOnceCommandReportsFailure(t *testing.T) {
	isolate(t)
	source := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer source.Close()
	t.Setenv("PANEL_SOURCE_URL", source.URL)

	out, err := execute(t, "once")
	require.EqualError(t, err, "refresh failed")
	assert.Equal(t, "temperatura: Error al cargar\nco2: Error al cargar\n", out)
}

func TestInvalidConfigFails(t *testing.T) {
	isolate(t)
	t.Setenv("PANEL_SOURCE_URL", "ftp://nowhere")

	_, err := execute(t, "once")
	assert.Error(t, err)
}
