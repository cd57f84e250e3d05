package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/monitoring"
	"github.com/kilianp07/productionplan/infra/mqtt"
)

type Config struct {
	Server  ServerConfig      `json:"server"`
	MQTT    mqtt.Config       `json:"mqtt"`
	Metrics metrics.Config    `json:"metrics"`
	Sentry  monitoring.Config `json:"sentry"`
}

// Load reads the configuration file at path, then applies K_ prefixed
// environment overrides (K_SERVER__ADDR sets server.addr). A .env file in the
// working directory is loaded first when present. An empty path skips the
// file and relies on defaults and environment only.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Server.SetDefaults()
	if err := cfg.Server.Validate(); err != nil {
		return nil, err
	}
	if err := validateMQTT(cfg.MQTT); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validateMQTT(c mqtt.Config) error {
	if !c.Enabled() {
		return nil
	}
	if c.ClientID == "" {
		return fmt.Errorf("mqtt.client_id is required when mqtt.broker is set")
	}
	for k, q := range c.QoS {
		if q > 2 {
			return fmt.Errorf("mqtt.qos.%s must be 0, 1 or 2", k)
		}
	}
	if c.MaxRetries < 0 || c.BackoffMS < 0 || c.PublishTimeoutMS < 0 {
		return fmt.Errorf("mqtt retries, backoff and publish timeout must not be negative")
	}
	return nil
}
