package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

//nolint:gocyclo
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `server:
  addr: ":9000"
  read_timeout: 3s
  cors_origins: ["https://ops.example"]
mqtt:
  broker: "tcp://localhost:1883"
  client_id: "planner"
  username: "user"
  password: "pass"
  topic_prefix: "site1"
  retain: true
  qos:
    setpoint: 1
metrics:
  listen_addr: ":9100"
  sinks:
    - type: "nop"
sentry:
  environment: "test"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	checks := []struct {
		name string
		got  any
		want any
	}{
		{"server.addr", cfg.Server.Addr, ":9000"},
		{"server.read_timeout", cfg.Server.ReadTimeout, 3 * time.Second},
		{"server.write_timeout default", cfg.Server.WriteTimeout, 15 * time.Second},
		{"server.cors_origins", len(cfg.Server.CORSOrigins) == 1 && cfg.Server.CORSOrigins[0] == "https://ops.example", true},
		{"broker", cfg.MQTT.Broker, "tcp://localhost:1883"},
		{"client_id", cfg.MQTT.ClientID, "planner"},
		{"username", cfg.MQTT.Username, "user"},
		{"password", cfg.MQTT.Password, "pass"},
		{"topic_prefix", cfg.MQTT.TopicPrefix, "site1"},
		{"retain", cfg.MQTT.Retain, true},
		{"qos", cfg.MQTT.QoS["setpoint"], byte(1)},
		{"metrics.listen_addr", cfg.Metrics.ListenAddr, ":9100"},
		{"metrics_sink", len(cfg.Metrics.Sinks) == 1 && cfg.Metrics.Sinks[0].Type == "nop", true},
		{"sentry.environment", cfg.Sentry.Environment, "test"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s mismatch: %v", c.name, c.got)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Fatalf("addr %q", cfg.Server.Addr)
	}
	if cfg.MQTT.Enabled() {
		t.Fatalf("mqtt must be disabled without a broker")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"server":{"addr":":9000"}}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("K_SERVER__ADDR", ":7000")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if cfg.Server.Addr != ":7000" {
		t.Fatalf("env override not applied: %q", cfg.Server.Addr)
	}
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"config.toml": "",
		"config.yaml": "mqtt:\n  broker: tcp://localhost:1883\n",
		"bad.yaml":    "mqtt:\n  broker: tcp://localhost:1883\n  client_id: x\n  qos:\n    setpoint: 3\n",
		"slow.yaml":   "mqtt:\n  broker: tcp://localhost:1883\n  client_id: x\n  publish_timeout_ms: -1\n",
	}
	for name, data := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
