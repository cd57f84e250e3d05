package dispatch

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/floats/scalar"

	"github.com/kilianp07/productionplan/core/model"
)

// total sums the allocation.
func (a Allocation) total() float64 {
	var sum float64
	for _, v := range a {
		sum += v
	}
	return sum
}

// buildPlan renders the allocation in request order with every value rounded
// to 0.1 MW and checks the rounded total against the load. No plan is returned
// when the total is off by more than Tolerance.
func buildPlan(plants []model.PowerPlant, alloc Allocation, load float64) (model.Plan, error) {
	powers := make([]float64, len(plants))
	for i, p := range plants {
		powers[i] = scalar.Round(alloc[p.Name], 1)
		if powers[i] < 0 {
			powers[i] = 0
		}
	}
	achieved := floats.Sum(powers)
	if !scalar.EqualWithinAbs(achieved, load, Tolerance) {
		return nil, &model.LoadNotMetError{Required: load, Achieved: achieved}
	}
	plan := make(model.Plan, len(plants))
	for i, p := range plants {
		plan[i] = model.PlanEntry{Name: p.Name, Power: powers[i]}
	}
	return plan, nil
}
