package flux

import "math"

// fitLine fits y = intercept + slope*x by closed-form ordinary least
// squares. ok is false when fewer than two distinct x values remain
// after NaN pairs are excluded, i.e. the regression is undefined.
func fitLine(xs, ys []float64) (slope, intercept float64, ok bool) {
	if len(xs) != len(ys) {
		return 0, 0, false
	}

	var (
		n            float64
		meanX, meanY float64
	)
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		n++
		meanX += xs[i]
		meanY += ys[i]
	}
	if distinctValues(xs, ys) < 2 {
		return 0, 0, false
	}
	meanX /= n
	meanY /= n

	var sxx, sxy float64
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return 0, 0, false
	}

	slope = sxy / sxx
	intercept = meanY - slope*meanX
	return slope, intercept, true
}

// distinctValues counts distinct x values among usable (non-NaN) pairs.
func distinctValues(xs, ys []float64) int {
	seen := make(map[float64]struct{}, len(xs))
	for i := range xs {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		seen[xs[i]] = struct{}{}
	}
	return len(seen)
}
