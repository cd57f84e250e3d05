package model

import "fmt"

// Fuels holds the market prices and weather conditions of a request.
type Fuels struct {
	GasEuroPerMWh      float64 `json:"gas(euro/MWh)" msgpack:"gas(euro/MWh)"`
	KerosineEuroPerMWh float64 `json:"kerosine(euro/MWh)" msgpack:"kerosine(euro/MWh)"`
	CO2EuroPerTon      float64 `json:"co2(euro/ton)" msgpack:"co2(euro/ton)"`
	WindPercentage     float64 `json:"wind(%)" msgpack:"wind(%)"`
}

// Validate checks the wind percentage range.
func (f Fuels) Validate() error {
	if !(f.WindPercentage >= 0 && f.WindPercentage <= 100) {
		return fmt.Errorf("%w: wind percentage must be in [0,100], got %v", ErrInvalidInput, f.WindPercentage)
	}
	return nil
}

// ProductionPlanRequest is the input of a plan computation.
type ProductionPlanRequest struct {
	Load        float64      `json:"load" msgpack:"load"` // MW
	Fuels       Fuels        `json:"fuels" msgpack:"fuels"`
	PowerPlants []PowerPlant `json:"powerplants" msgpack:"powerplants"`
}

// Validate rejects malformed requests before any allocation is attempted.
// Plant types are not checked here; pricing an unknown type is the cost
// model's failure.
func (r ProductionPlanRequest) Validate() error {
	if !(r.Load > 0) {
		return fmt.Errorf("%w: load must be > 0, got %v", ErrInvalidInput, r.Load)
	}
	if err := r.Fuels.Validate(); err != nil {
		return err
	}
	if len(r.PowerPlants) == 0 {
		return fmt.Errorf("%w: at least one power plant is required", ErrInvalidInput)
	}
	seen := make(map[string]struct{}, len(r.PowerPlants))
	for _, p := range r.PowerPlants {
		if err := p.Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: duplicate plant name %s", ErrInvalidInput, p.Name)
		}
		seen[p.Name] = struct{}{}
	}
	return nil
}

// PlanEntry is the output assigned to one plant.
type PlanEntry struct {
	Name  string  `json:"name" msgpack:"name"`
	Power float64 `json:"p" msgpack:"p"` // MW, multiple of 0.1
}

// Plan lists one entry per requested plant, in request order.
type Plan []PlanEntry

// Total returns the summed output of the plan.
func (p Plan) Total() float64 {
	var sum float64
	for _, e := range p {
		sum += e.Power
	}
	return sum
}
