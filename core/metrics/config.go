package metrics

import "github.com/kilianp07/productionplan/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// ListenAddr exposes /metrics on a dedicated listener when set.
	ListenAddr string `json:"listen_addr"`
}
