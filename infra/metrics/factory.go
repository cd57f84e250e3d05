package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/productionplan/core/factory"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

// init registers built-in metrics sinks.
func init() {
	_ = coremetrics.RegisterMetricsSink("nop", func(map[string]any) (coremetrics.MetricsSink, error) {
		return coremetrics.NopSink{}, nil
	})

	_ = coremetrics.RegisterMetricsSink("prometheus", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c struct {
			Buckets []float64 `json:"buckets"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if len(c.Buckets) == 0 {
			return NewPromSink()
		}
		return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, c.Buckets)
	})

	_ = coremetrics.RegisterMetricsSink("influx", func(conf map[string]any) (coremetrics.MetricsSink, error) {
		var c InfluxConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c), nil
	})
}
