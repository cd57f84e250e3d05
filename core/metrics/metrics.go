package metrics

import (
	"errors"
	"time"

	"github.com/kilianp07/productionplan/core/model"
)

// Outcome classifies the result of a plan computation.
type Outcome string

const (
	OutcomeOK               Outcome = "ok"
	OutcomeInvalidInput     Outcome = "invalid_input"
	OutcomeUnknownPlantType Outcome = "unknown_plant_type"
	OutcomeLoadNotMet       Outcome = "load_not_met"
	OutcomeError            Outcome = "error"
)

// OutcomeOf maps a computation error to its Outcome.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, model.ErrInvalidInput):
		return OutcomeInvalidInput
	case errors.Is(err, model.ErrUnknownPlantType):
		return OutcomeUnknownPlantType
	case errors.Is(err, model.ErrLoadNotMet):
		return OutcomeLoadNotMet
	default:
		return OutcomeError
	}
}

// PlantOutput is the dispatch decision for one plant.
type PlantOutput struct {
	Name       string
	Type       model.PlantType
	PowerMW    float64
	CostPerMWh float64
	MeritRank  int
}

// PlanEvent describes one plan computation, successful or not.
type PlanEvent struct {
	PlanID   string
	Load     float64
	Produced float64
	// CostPerHour is the running cost of the plan in EUR/h.
	CostPerHour float64
	Adjusted    bool
	Outcome     Outcome
	Plants      []PlantOutput
	Duration    time.Duration
	Time        time.Time
}

// MetricsSink records plan computations for observability purposes.
type MetricsSink interface {
	RecordPlan(ev PlanEvent) error
}

// SetpointEvent captures the publication of a plan to the plants.
type SetpointEvent struct {
	PlanID   string
	Count    int
	Latency  time.Duration
	Error    string
	Time     time.Time
	Rejected bool
}

// SetpointRecorder is implemented by sinks able to record setpoint publications.
type SetpointRecorder interface {
	RecordSetpoints(ev SetpointEvent) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanEvent) error          { return nil }
func (NopSink) RecordSetpoints(SetpointEvent) error { return nil }

// MultiSink fans out events to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPlan forwards the event to all sinks and joins their errors.
func (m *MultiSink) RecordPlan(ev PlanEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if err := s.RecordPlan(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordSetpoints forwards setpoint events when supported by the sink.
func (m *MultiSink) RecordSetpoints(ev SetpointEvent) error {
	var errs []error
	for _, s := range m.Sinks {
		if rec, ok := s.(SetpointRecorder); ok {
			if err := rec.RecordSetpoints(ev); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
