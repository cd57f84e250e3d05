package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
)

type captureServer struct {
	mu     sync.Mutex
	bodies []string
}

func (c *captureServer) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
}

func lines(points ...*write.Point) string {
	var sb strings.Builder
	for _, p := range points {
		sb.WriteString(write.PointToLineProtocol(p, time.Nanosecond))
	}
	return strings.TrimSpace(sb.String())
}

func TestInfluxSink_RecordPlan(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	ev := okEvent()
	if err := sink.RecordPlan(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}

	plan := write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", "p1").
		AddTag("outcome", "ok").
		AddTag("adjusted", "false").
		AddField("load_mw", 150.0).
		AddField("produced_mw", 150.0).
		AddField("cost_eur_per_hour", 3000.0).
		AddField("duration_ms", 2.0).
		SetTime(ev.Time)
	wind := write.NewPointWithMeasurement("plant_output").
		AddTag("plan_id", "p1").
		AddTag("plant", "wind1").
		AddTag("type", "windturbine").
		AddField("power_mw", 50.0).
		AddField("cost_eur_per_mwh", 0.0).
		AddField("merit_rank", 0).
		SetTime(ev.Time)
	gas := write.NewPointWithMeasurement("plant_output").
		AddTag("plan_id", "p1").
		AddTag("plant", "gas1").
		AddTag("type", "gasfired").
		AddField("power_mw", 100.0).
		AddField("cost_eur_per_mwh", 30.0).
		AddField("merit_rank", 1).
		SetTime(ev.Time)

	if len(cs.bodies) != 1 {
		t.Fatalf("expected a single write, got %d", len(cs.bodies))
	}
	if exp := lines(plan, wind, gas); cs.bodies[0] != exp {
		t.Errorf("unexpected body:\n%s\nwant:\n%s", cs.bodies[0], exp)
	}
}

func TestInfluxSink_RecordSetpoints(t *testing.T) {
	cs := &captureServer{}
	srv := httptest.NewServer(cs.handler())
	defer srv.Close()

	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.SetpointEvent{PlanID: "p1", Count: 3, Latency: 1500 * time.Microsecond, Error: "timeout", Rejected: true, Time: now}
	if err := sink.RecordSetpoints(ev); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("setpoint_publication").
		AddTag("plan_id", "p1").
		AddTag("rejected", "true").
		AddField("count", 3).
		AddField("latency_ms", 1.5).
		AddField("error", "timeout").
		SetTime(now)
	if len(cs.bodies) != 1 || cs.bodies[0] != lines(p) {
		t.Errorf("bodies: %#v", cs.bodies)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}

func TestRound3(t *testing.T) {
	cases := map[float64]float64{
		21.6004:  21.6,
		0.0005:   0.001,
		-1.23456: -1.235,
		9106.4:   9106.4,
	}
	for in, want := range cases {
		if got := round3(in); got != want {
			t.Fatalf("round3(%v) = %v, want %v", in, got, want)
		}
	}
}
