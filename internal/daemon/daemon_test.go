package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SandraS2611/agrimensores-sde/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	cfg := config.Default()
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Storage.Directory = filepath.Join(dir, "memorias")
	cfg.Storage.RetentionDays = 0
	cfg.Database.PlansPath = filepath.Join(dir, "planos.db")
	cfg.Database.EventsPath = filepath.Join(dir, "events.db")
	cfg.Inbox.Enabled = false
	cfg.NATS.Enabled = false
	cfg.Metrics.Enabled = false
	return cfg
}

// freePort grabs an ephemeral port for the daemon to bind.
func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestNewDaemon_RequiresConfig(t *testing.T) {
	_, err := NewDaemon(nil, "test")

	assert.Error(t, err)
}

func TestNewDaemon_WiresComponents(t *testing.T) {
	cfg := testConfig(t)

	d, err := NewDaemon(cfg, "1.0.0-test")
	require.NoError(t, err)
	defer d.Stop(context.Background())

	assert.Equal(t, string(StatusStopped), d.GetStatus())
	assert.NotEmpty(t, d.TemplateVersion())
	assert.Equal(t, cfg.Storage.Directory, d.StorageDirectory())
	assert.Zero(t, d.GetActiveGenerations())
	assert.Zero(t, d.PlansTotal())
	assert.Nil(t, d.sweeper, "retention disabled leaves no sweeper")
	assert.Nil(t, d.inbox)
	assert.Nil(t, d.natsMirror)
}

func TestNewDaemon_RetentionEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Storage.RetentionDays = 30

	d, err := NewDaemon(cfg, "test")
	require.NoError(t, err)
	defer d.Stop(context.Background())

	assert.NotNil(t, d.sweeper)
}

func TestNewDaemon_MetricsEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Metrics.Enabled = true

	d, err := NewDaemon(cfg, "test")
	require.NoError(t, err)
	defer d.Stop(context.Background())

	assert.NotNil(t, d.promRecorder)
}

func TestDaemon_StartStop(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)

	d, err := NewDaemon(cfg, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	startErr := make(chan error, 1)
	go func() { startErr <- d.Start(ctx) }()

	require.Eventually(t, func() bool {
		return d.GetStatus() == string(StatusRunning)
	}, 5*time.Second, 10*time.Millisecond)

	// The HTTP API answers while running.
	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", cfg.Server.Addr()))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)

	require.NoError(t, d.Stop(context.Background()))

	select {
	case err := <-startErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	assert.Equal(t, string(StatusStopped), d.GetStatus())
}

func TestDaemon_StartTwice(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Port = freePort(t)

	d, err := NewDaemon(cfg, "test")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go d.Start(ctx)
	require.Eventually(t, func() bool {
		return d.GetStatus() == string(StatusRunning)
	}, 5*time.Second, 10*time.Millisecond)
	defer d.Stop(context.Background())

	err = d.Start(ctx)
	assert.Error(t, err, "a running daemon rejects a second Start")
}

func TestDaemon_StopIdempotent(t *testing.T) {
	cfg := testConfig(t)

	d, err := NewDaemon(cfg, "test")
	require.NoError(t, err)

	require.NoError(t, d.Stop(context.Background()))
	assert.NoError(t, d.Stop(context.Background()))
}
