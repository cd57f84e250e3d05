package dispatch

import (
	"cmp"
	"slices"

	"github.com/kilianp07/productionplan/core/model"
)

// CostedPlant is a plant priced for one request.
type CostedPlant struct {
	Plant        model.PowerPlant
	CostPerMWh   float64
	EffectiveMax float64
	// Index is the position of the plant in the request.
	Index int
}

// RankPlants prices every plant and returns them in merit order: cheapest
// first, larger effective capacity first among equal costs, request order
// last.
func RankPlants(plants []model.PowerPlant, fuels model.Fuels) ([]CostedPlant, error) {
	ranked := make([]CostedPlant, 0, len(plants))
	for i, p := range plants {
		cost, err := CostPerMWh(p, fuels)
		if err != nil {
			return nil, err
		}
		ranked = append(ranked, CostedPlant{
			Plant:        p,
			CostPerMWh:   cost,
			EffectiveMax: EffectiveMax(p, fuels),
			Index:        i,
		})
	}
	slices.SortStableFunc(ranked, func(a, b CostedPlant) int {
		if c := cmp.Compare(a.CostPerMWh, b.CostPerMWh); c != 0 {
			return c
		}
		if c := cmp.Compare(b.EffectiveMax, a.EffectiveMax); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	return ranked, nil
}
