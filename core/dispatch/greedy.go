package dispatch

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"
)

// Tolerance is the accepted gap, in MW, between the plan total and the load.
const Tolerance = 0.1

// gridEps absorbs binary noise before snapping to the 0.1 MW grid
// (36*0.6 is 21.599999999999998).
const gridEps = 1e-9

// Allocation maps plant names to their assigned output in MW.
type Allocation map[string]float64

// gridBounds returns the operating range of the plant restricted to the
// 0.1 MW grid: pmin rounded up and effective max rounded down. lo > hi means
// the plant cannot run at a grid value.
func (cp CostedPlant) gridBounds() (lo, hi float64) {
	lo = math.Ceil(cp.Plant.PMin*10-gridEps) / 10
	hi = math.Floor(cp.EffectiveMax*10+gridEps) / 10
	return lo, hi
}

// quantize rounds power to 0.1 MW and keeps it inside [lo, hi]. Both bounds
// must be on the grid so the result is what the final plan will show.
func quantize(power, lo, hi float64) float64 {
	r := scalar.Round(power, 1)
	return math.Max(lo, math.Min(r, hi))
}

// allocateGreedy walks the plants in merit order and gives each one as much of
// the remaining load as it can take. A plant whose pmin exceeds what is still
// needed stays idle. Every plant gets an entry. It returns the allocation and
// the load left unserved.
func allocateGreedy(ranked []CostedPlant, load float64) (Allocation, float64) {
	alloc := make(Allocation, len(ranked))
	remaining := load
	for _, cp := range ranked {
		lo, hi := cp.gridBounds()
		if remaining <= Tolerance || lo > hi {
			alloc[cp.Plant.Name] = 0
			continue
		}
		available := math.Min(hi, remaining)
		if available < cp.Plant.PMin {
			alloc[cp.Plant.Name] = 0
			continue
		}
		assigned := quantize(available, lo, hi)
		alloc[cp.Plant.Name] = assigned
		remaining -= assigned
	}
	return alloc, remaining
}
