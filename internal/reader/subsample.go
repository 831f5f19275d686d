package reader

import (
	"math"
	"math/rand"
	"sort"

	"fluxcli/pkg/contracts/domain"
)

// Subsample draws floor(n*f) readings uniformly without replacement,
// preserving the original row order of the survivors. f >= 1 returns
// the input untouched.
func Subsample(readings []domain.Reading, f float64, rng *rand.Rand) []domain.Reading {
	n := len(readings)
	if f >= 1 || n == 0 {
		return readings
	}

	k := int(math.Floor(float64(n) * f))
	if k >= n {
		return readings
	}
	if k == 0 {
		return nil
	}

	indices := rng.Perm(n)[:k]
	sort.Ints(indices)

	sample := make([]domain.Reading, 0, k)
	for _, idx := range indices {
		sample = append(sample, readings[idx])
	}
	return sample
}
