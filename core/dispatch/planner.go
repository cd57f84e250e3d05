package dispatch

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/productionplan/core/logger"
	"github.com/kilianp07/productionplan/core/metrics"
	"github.com/kilianp07/productionplan/core/model"
	"github.com/kilianp07/productionplan/core/mqtt"
)

// DefaultPublishTimeout bounds setpoint publication after a plan is computed.
const DefaultPublishTimeout = 10 * time.Second

// result is the outcome of one computation, kept for observability.
type result struct {
	plan     model.Plan
	ranked   []CostedPlant
	alloc    Allocation
	adjusted bool
}

// solve runs validation, merit ordering, both allocation passes and the final
// check. It has no side effect besides logging.
func solve(req model.ProductionPlanRequest, log logger.Logger) (result, error) {
	var res result
	if err := req.Validate(); err != nil {
		return res, err
	}
	ranked, err := RankPlants(req.PowerPlants, req.Fuels)
	if err != nil {
		return res, err
	}
	res.ranked = ranked
	log.Debugf("merit order established")
	for i, cp := range ranked {
		log.Debugw("merit order", map[string]any{
			"rank":          i,
			"plant":         cp.Plant.Name,
			"cost_per_mwh":  cp.CostPerMWh,
			"pmin":          cp.Plant.PMin,
			"effective_max": cp.EffectiveMax,
		})
	}

	alloc, remaining := allocateGreedy(ranked, req.Load)
	if math.Abs(remaining) > Tolerance {
		log.Warnf("remaining load after first pass: %.3f MW", remaining)
		remaining = adjustShortfall(ranked, alloc, remaining)
		res.adjusted = true
	}
	res.alloc = alloc
	log.Debugf("final allocation: %.1f MW (target: %.1f MW, unserved %.3f MW)", alloc.total(), req.Load, remaining)

	plan, err := buildPlan(req.PowerPlants, alloc, req.Load)
	if err != nil {
		return res, err
	}
	res.plan = plan
	return res, nil
}

// ComputePlan returns the production plan of the request. It is a pure
// function: identical requests yield identical plans.
func ComputePlan(req model.ProductionPlanRequest) (model.Plan, error) {
	res, err := solve(req, logger.NopLogger{})
	if err != nil {
		return nil, err
	}
	return res.plan, nil
}

// Planner computes production plans and reports them to the configured
// collaborators. It holds no per-request state and is safe for concurrent use
// as long as its collaborators are.
type Planner struct {
	log            logger.Logger
	sink           metrics.MetricsSink
	publisher      mqtt.SetpointPublisher
	// publishTimeout applies to publication, which outlives the caller's
	// context.
	publishTimeout time.Duration
	now            func() time.Time
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger used by the planner.
func WithLogger(l logger.Logger) Option {
	return func(p *Planner) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics sets the sink receiving plan events.
func WithMetrics(s metrics.MetricsSink) Option {
	return func(p *Planner) {
		if s != nil {
			p.sink = s
		}
	}
}

// WithPublisher enables setpoint publication after each successful plan.
func WithPublisher(pub mqtt.SetpointPublisher) Option {
	return func(p *Planner) { p.publisher = pub }
}

// WithPublishTimeout bounds each setpoint publication. Non-positive values
// keep DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Planner) {
		if d > 0 {
			p.publishTimeout = d
		}
	}
}

// NewPlanner returns a Planner with no-op collaborators unless overridden.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{
		log:            logger.NopLogger{},
		sink:           metrics.NopSink{},
		publishTimeout: DefaultPublishTimeout,
		now:            time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Plan computes the production plan of the request. Either a plan whose total
// matches the load within Tolerance is returned, or an error matching one of
// model.ErrInvalidInput, model.ErrUnknownPlantType or model.ErrLoadNotMet.
func (p *Planner) Plan(ctx context.Context, req model.ProductionPlanRequest) (model.Plan, error) {
	start := p.now()
	planID := uuid.NewString()
	p.log.Infof("calculating production plan %s for load=%.1f MW", planID, req.Load)

	res, err := solve(req, p.log)
	p.record(planID, req, res, err, start)
	if err != nil {
		p.log.Warnf("production plan %s failed: %v", planID, err)
		return nil, err
	}
	p.log.Infof("production plan %s calculated: %.1f MW", planID, res.plan.Total())

	if p.publisher != nil {
		// A valid plan is published even if the caller goes away meanwhile.
		pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.publishTimeout)
		p.publish(pubCtx, planID, res.plan)
		cancel()
	}
	return res.plan, nil
}

func (p *Planner) record(planID string, req model.ProductionPlanRequest, res result, err error, start time.Time) {
	ev := metrics.PlanEvent{
		PlanID:   planID,
		Load:     req.Load,
		Adjusted: res.adjusted,
		Outcome:  metrics.OutcomeOf(err),
		Duration: p.now().Sub(start),
		Time:     start,
	}
	if err == nil {
		ev.Plants = make([]metrics.PlantOutput, 0, len(res.ranked))
		power := make(map[string]float64, len(res.plan))
		for _, e := range res.plan {
			power[e.Name] = e.Power
		}
		for rank, cp := range res.ranked {
			mw := power[cp.Plant.Name]
			ev.Plants = append(ev.Plants, metrics.PlantOutput{
				Name:       cp.Plant.Name,
				Type:       cp.Plant.Type,
				PowerMW:    mw,
				CostPerMWh: cp.CostPerMWh,
				MeritRank:  rank,
			})
			ev.Produced += mw
			ev.CostPerHour += mw * cp.CostPerMWh
		}
	} else if res.alloc != nil {
		ev.Produced = res.alloc.total()
	}
	if rerr := p.sink.RecordPlan(ev); rerr != nil {
		p.log.Errorf("record plan %s: %v", planID, rerr)
	}
}

func (p *Planner) publish(ctx context.Context, planID string, plan model.Plan) {
	now := p.now()
	sps := make([]mqtt.Setpoint, len(plan))
	for i, e := range plan {
		sps[i] = mqtt.Setpoint{PlanID: planID, Plant: e.Name, PowerMW: e.Power, Time: now}
	}
	err := p.publisher.PublishSetpoints(ctx, sps)
	ev := metrics.SetpointEvent{PlanID: planID, Count: len(sps), Latency: p.now().Sub(now), Time: now}
	if err != nil {
		ev.Error = err.Error()
		ev.Rejected = true
		p.log.Errorf("publish setpoints for plan %s: %v", planID, err)
	}
	if rec, ok := p.sink.(metrics.SetpointRecorder); ok {
		if rerr := rec.RecordSetpoints(ev); rerr != nil {
			p.log.Errorf("record setpoints %s: %v", planID, rerr)
		}
	}
}
