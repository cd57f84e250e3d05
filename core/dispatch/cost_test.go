package dispatch

import (
	"errors"
	"math"
	"testing"

	"github.com/kilianp07/productionplan/core/model"
)

var marketFuels = model.Fuels{GasEuroPerMWh: 13.4, KerosineEuroPerMWh: 50.8, CO2EuroPerTon: 20, WindPercentage: 60}

func TestCostPerMWh(t *testing.T) {
	cases := []struct {
		name  string
		plant model.PowerPlant
		want  float64
	}{
		{"gas", model.PowerPlant{Name: "g", Type: model.PlantGasFired, Efficiency: 0.53, PMax: 460}, (13.4 + 20*0.3) / 0.53},
		{"turbojet", model.PowerPlant{Name: "t", Type: model.PlantTurbojet, Efficiency: 0.3, PMax: 16}, (50.8 + 20*0.3) / 0.3},
		{"wind", model.PowerPlant{Name: "w", Type: model.PlantWindTurbine, Efficiency: 1, PMax: 150}, 0},
	}
	for _, c := range cases {
		got, err := CostPerMWh(c.plant, marketFuels)
		if err != nil {
			t.Fatalf("%s: unexpected error %v", c.name, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s: cost %v want %v", c.name, got, c.want)
		}
	}
}

func TestCostPerMWh_UnknownType(t *testing.T) {
	_, err := CostPerMWh(model.PowerPlant{Name: "n1", Type: model.PlantType(42), Efficiency: 0.3, PMax: 10}, marketFuels)
	if !errors.Is(err, model.ErrUnknownPlantType) {
		t.Fatalf("expected unknown plant type, got %v", err)
	}
	var upt *model.UnknownPlantTypeError
	if !errors.As(err, &upt) || upt.Plant != "n1" {
		t.Fatalf("error does not name the plant: %v", err)
	}
}

func TestEffectiveMax(t *testing.T) {
	wind := model.PowerPlant{Name: "w", Type: model.PlantWindTurbine, Efficiency: 1, PMax: 36}
	if got := EffectiveMax(wind, marketFuels); math.Abs(got-21.6) > 1e-9 {
		t.Fatalf("wind effective max %v", got)
	}
	calm := marketFuels
	calm.WindPercentage = 0
	if got := EffectiveMax(wind, calm); got != 0 {
		t.Fatalf("calm wind effective max %v", got)
	}
	gas := model.PowerPlant{Name: "g", Type: model.PlantGasFired, Efficiency: 0.5, PMax: 200}
	if got := EffectiveMax(gas, calm); got != 200 {
		t.Fatalf("gas effective max %v", got)
	}
}
