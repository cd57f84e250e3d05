package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/productionplan/config"
	"github.com/kilianp07/productionplan/core/factory"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.SetDefaults()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "nop"}}
	return cfg
}

func TestService_ServeAndShutdown(t *testing.T) {
	svc, err := New(testConfig())
	require.NoError(t, err)
	defer func() { _ = svc.Close() }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx, ln) }()

	base := "http://" + ln.Addr().String()
	body := `{"load":50,"fuels":{"gas(euro/MWh)":13.4,"kerosine(euro/MWh)":50.8,"co2(euro/ton)":20,"wind(%)":50},
	"powerplants":[{"name":"wind1","type":"windturbine","efficiency":1,"pmin":0,"pmax":100},
	               {"name":"gas1","type":"gasfired","efficiency":0.53,"pmin":0,"pmax":100}]}`
	resp, err := http.Post(base+"/productionplan", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	out, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `[{"name":"wind1","p":50},{"name":"gas1","p":0}]`, string(out))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not stop")
	}
}

func TestNew_UnknownSink(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{Type: "missing"}}
	_, err := New(cfg)
	assert.Error(t, err)
}
