package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

// PromSink records plan computations in Prometheus metrics.
type PromSink struct {
	requests  *prometheus.CounterVec
	duration  prometheus.Histogram
	output    *prometheus.GaugeVec
	cost      prometheus.Gauge
	setpoints *prometheus.CounterVec
}

// NewPromSink registers plan metrics on the default Prometheus registerer.
// The /metrics endpoint is served separately, see StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer, nil)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer and nil
// buckets to prometheus.DefBuckets.
func NewPromSinkWithRegistry(reg prometheus.Registerer, buckets []float64) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}
	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productionplan_requests_total",
		Help: "Total number of production plan computations by outcome",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "productionplan_duration_seconds",
		Help:    "Time spent computing a production plan",
		Buckets: buckets,
	}))
	if err != nil {
		return nil, err
	}
	output, err := register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "productionplan_plant_output_mw",
		Help: "Output assigned to each plant by the last successful plan",
	}, []string{"plant"}))
	if err != nil {
		return nil, err
	}
	cost, err := register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "productionplan_cost_euro_per_hour",
		Help: "Running cost of the last successful plan",
	}))
	if err != nil {
		return nil, err
	}
	setpoints, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "productionplan_setpoint_publications_total",
		Help: "Setpoint publications by result",
	}, []string{"rejected"}))
	if err != nil {
		return nil, err
	}
	return &PromSink{requests: requests, duration: duration, output: output, cost: cost, setpoints: setpoints}, nil
}

// register returns the collector already registered under the same
// descriptor when there is one, so sinks can be rebuilt in one process.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// RecordPlan counts the computation and, on success, exposes the plan.
func (s *PromSink) RecordPlan(ev coremetrics.PlanEvent) error {
	s.requests.WithLabelValues(string(ev.Outcome)).Inc()
	s.duration.Observe(ev.Duration.Seconds())
	if ev.Outcome != coremetrics.OutcomeOK {
		return nil
	}
	s.output.Reset()
	for _, p := range ev.Plants {
		s.output.WithLabelValues(p.Name).Set(p.PowerMW)
	}
	s.cost.Set(ev.CostPerHour)
	return nil
}

// RecordSetpoints counts setpoint publications.
func (s *PromSink) RecordSetpoints(ev coremetrics.SetpointEvent) error {
	s.setpoints.WithLabelValues(strconv.FormatBool(ev.Rejected)).Inc()
	return nil
}
