// Package metrics defines the sink interface used to observe production plan
// computations. Sinks like the Prometheus and InfluxDB ones in infra/metrics
// record PlanEvents and can be combined with NewMultiSink. The factory helpers
// return a MultiSink automatically when multiple sinks are configured.
package metrics
