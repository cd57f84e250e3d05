package dispatch

import (
	"github.com/kilianp07/productionplan/core/model"
)

// CO2TonPerMWh is the emission factor of thermal plants, in tons of CO2 per
// MWh of fuel burnt.
const CO2TonPerMWh = 0.3

// CostPerMWh returns the marginal cost of one MWh of electricity produced by
// the plant: fuel and CO2 allowances, both scaled by the plant efficiency.
// Wind is free.
func CostPerMWh(p model.PowerPlant, fuels model.Fuels) (float64, error) {
	var fuel float64
	switch p.Type {
	case model.PlantWindTurbine:
		return 0, nil
	case model.PlantGasFired:
		fuel = fuels.GasEuroPerMWh
	case model.PlantTurbojet:
		fuel = fuels.KerosineEuroPerMWh
	default:
		return 0, &model.UnknownPlantTypeError{Plant: p.Name, Type: p.Type.String()}
	}
	return fuel/p.Efficiency + fuels.CO2EuroPerTon*CO2TonPerMWh/p.Efficiency, nil
}

// EffectiveMax returns the output the plant can actually deliver. Wind
// turbines are derated by the wind percentage.
func EffectiveMax(p model.PowerPlant, fuels model.Fuels) float64 {
	if p.Type == model.PlantWindTurbine {
		return p.PMax * (fuels.WindPercentage / 100.0)
	}
	return p.PMax
}
