package dispatch

import "math"

// adjustShortfall tries to serve the load left over by the greedy pass. It
// walks the plants in reverse merit order, so the cheapest plants are the last
// ones touched, and only ever adds output: running plants are pushed toward
// their effective max and idle plants are started when the shortfall clears
// their pmin. alloc is modified in place. It returns the load still unserved.
//
// The pass never lowers a running plant to make room for an idle one blocked
// by its pmin. With two 20/100 MW plants and a 110 MW load the greedy pass
// gives 100 + 0 and nothing here can recover 90 + 20, so the plan fails.
func adjustShortfall(ranked []CostedPlant, alloc Allocation, remaining float64) float64 {
	for i := len(ranked) - 1; i >= 0; i-- {
		if remaining <= Tolerance {
			break
		}
		cp := ranked[i]
		name := cp.Plant.Name
		lo, hi := cp.gridBounds()
		current := alloc[name]
		switch {
		case current > 0 && current < hi:
			increase := math.Min(hi-current, remaining)
			next := quantize(current+increase, current, hi)
			alloc[name] = next
			remaining -= next - current
		case current == 0 && remaining >= cp.Plant.PMin && lo <= hi && hi > 0:
			next := quantize(math.Min(remaining, hi), lo, hi)
			alloc[name] = next
			remaining -= next
		}
	}
	return remaining
}
