package grow

import (
	"math/rand"
	"snapmap/internal/moduledb"
)

// candidateWeight blends uniform choice with a preference for the fewest
// doors: w = SelectionWeight * ((1-prefer) + prefer*[doors == minDoors]).
func candidateWeight(m *moduledb.ModuleRecord, minDoors int, prefer float64) float64 {
	w := 1 - prefer
	if m.DoorCount() == minDoors {
		w += prefer
	}
	return w * m.SelectionWeight()
}

// orderCandidates returns cands in the order they should be tried:
// weighted sampling without replacement, then any zero-weight records in
// shuffled order.
func orderCandidates(rng *rand.Rand, cands []*moduledb.ModuleRecord, prefer float64) []*moduledb.ModuleRecord {
	if len(cands) == 0 {
		return nil
	}
	minDoors := moduledb.MinDoorCount(cands)
	remaining := make([]*moduledb.ModuleRecord, len(cands))
	copy(remaining, cands)
	weights := make([]float64, len(cands))
	for i, c := range remaining {
		weights[i] = candidateWeight(c, minDoors, prefer)
	}

	out := make([]*moduledb.ModuleRecord, 0, len(cands))
	for len(remaining) > 0 {
		total := 0.0
		for _, w := range weights {
			total += w
		}
		if total <= 0 {
			rng.Shuffle(len(remaining), func(i, j int) {
				remaining[i], remaining[j] = remaining[j], remaining[i]
			})
			return append(out, remaining...)
		}
		r := rng.Float64() * total
		pick := -1
		for i, w := range weights {
			if w <= 0 {
				continue
			}
			pick = i
			if r < w {
				break
			}
			r -= w
		}
		out = append(out, remaining[pick])
		remaining = append(remaining[:pick], remaining[pick+1:]...)
		weights = append(weights[:pick], weights[pick+1:]...)
	}
	return out
}

// shuffledDoors returns the indices of doors in a random order.
func shuffledDoors(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}
