package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kilianp07/productionplan/core/factory"
	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/model"
)

func okEvent() coremetrics.PlanEvent {
	return coremetrics.PlanEvent{
		PlanID:      "p1",
		Load:        150,
		Produced:    150,
		CostPerHour: 3000,
		Outcome:     coremetrics.OutcomeOK,
		Plants: []coremetrics.PlantOutput{
			{Name: "wind1", Type: model.PlantWindTurbine, PowerMW: 50},
			{Name: "gas1", Type: model.PlantGasFired, PowerMW: 100, CostPerMWh: 30, MeritRank: 1},
		},
		Duration: 2 * time.Millisecond,
		Time:     time.Now(),
	}
}

func TestPromSink_RecordPlan(t *testing.T) {
	reg := prometheus.NewRegistry()
	sinkIf, err := NewPromSinkWithRegistry(reg, nil)
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	sink, ok := sinkIf.(*PromSink)
	if !ok {
		t.Fatalf("expected PromSink")
	}
	if err := sink.RecordPlan(okEvent()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := sink.RecordPlan(coremetrics.PlanEvent{Outcome: coremetrics.OutcomeLoadNotMet}); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	expected := `
# HELP productionplan_requests_total Total number of production plan computations by outcome
# TYPE productionplan_requests_total counter
productionplan_requests_total{outcome="load_not_met"} 1
productionplan_requests_total{outcome="ok"} 1
`
	if err := testutil.CollectAndCompare(sink.requests, strings.NewReader(expected)); err != nil {
		t.Errorf("unexpected metrics: %v", err)
	}
	expectedOutput := `
# HELP productionplan_plant_output_mw Output assigned to each plant by the last successful plan
# TYPE productionplan_plant_output_mw gauge
productionplan_plant_output_mw{plant="gas1"} 100
productionplan_plant_output_mw{plant="wind1"} 50
`
	if err := testutil.CollectAndCompare(sink.output, strings.NewReader(expectedOutput)); err != nil {
		t.Errorf("unexpected output metric: %v", err)
	}
	if v := testutil.ToFloat64(sink.cost); v != 3000 {
		t.Errorf("cost gauge %v", v)
	}
	if c := testutil.CollectAndCount(sink.duration); c != 1 {
		t.Errorf("duration not recorded")
	}

	if err := sink.RecordSetpoints(coremetrics.SetpointEvent{Rejected: true}); err != nil {
		t.Fatalf("record setpoints: %v", err)
	}
	if v := testutil.ToFloat64(sink.setpoints.WithLabelValues("true")); v != 1 {
		t.Errorf("setpoint counter %v", v)
	}
}

func TestPromSink_ReRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg, nil)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := NewPromSinkWithRegistry(reg, nil)
	if err != nil {
		t.Fatalf("second registration must reuse collectors: %v", err)
	}
	_ = first.RecordPlan(okEvent())
	_ = second.RecordPlan(okEvent())
	if v := testutil.ToFloat64(first.(*PromSink).requests.WithLabelValues("ok")); v != 2 {
		t.Fatalf("expected shared counter at 2, got %v", v)
	}
}

func TestPromSinkFactory_DefaultRegisterer(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}})
	if err != nil {
		t.Fatalf("create sink: %v", err)
	}
	direct, err := NewPromSink()
	if err != nil {
		t.Fatalf("second sink on the default registerer: %v", err)
	}
	if err := s.RecordPlan(okEvent()); err != nil {
		t.Fatalf("record: %v", err)
	}
	if v := testutil.ToFloat64(direct.(*PromSink).requests.WithLabelValues("ok")); v != 1 {
		t.Fatalf("factory sink must share the default collectors, got %v", v)
	}
	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer, "productionplan_requests_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one series on the default registry, got %d", n)
	}
}
