package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"gonum.org/v1/gonum/floats/scalar"

	coremetrics "github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/infra/logger"
)

const defaultInfluxTimeout = 5 * time.Second

// InfluxConfig locates the InfluxDB bucket receiving plan events.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes plan events to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultInfluxTimeout
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPlan writes one production_plan point and, for successful plans, one
// plant_output point per plant. All points go out in a single write.
func (s *InfluxSink) RecordPlan(ev coremetrics.PlanEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	points := make([]*write.Point, 0, 1+len(ev.Plants))
	points = append(points, write.NewPointWithMeasurement("production_plan").
		AddTag("plan_id", ev.PlanID).
		AddTag("outcome", string(ev.Outcome)).
		AddTag("adjusted", strconv.FormatBool(ev.Adjusted)).
		AddField("load_mw", round3(ev.Load)).
		AddField("produced_mw", round3(ev.Produced)).
		AddField("cost_eur_per_hour", round3(ev.CostPerHour)).
		AddField("duration_ms", round3(float64(ev.Duration)/float64(time.Millisecond))).
		SetTime(ev.Time))
	for _, p := range ev.Plants {
		points = append(points, write.NewPointWithMeasurement("plant_output").
			AddTag("plan_id", ev.PlanID).
			AddTag("plant", p.Name).
			AddTag("type", p.Type.String()).
			AddField("power_mw", round3(p.PowerMW)).
			AddField("cost_eur_per_mwh", round3(p.CostPerMWh)).
			AddField("merit_rank", p.MeritRank).
			SetTime(ev.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordSetpoints records a setpoint publication.
func (s *InfluxSink) RecordSetpoints(ev coremetrics.SetpointEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("setpoint_publication").
		AddTag("plan_id", ev.PlanID).
		AddTag("rejected", strconv.FormatBool(ev.Rejected)).
		AddField("count", ev.Count).
		AddField("latency_ms", round3(float64(ev.Latency)/float64(time.Millisecond)))
	if ev.Error != "" {
		p = p.AddField("error", ev.Error)
	}
	p = p.SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func round3(f float64) float64 {
	return scalar.Round(f, 3)
}
