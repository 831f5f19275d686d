package reader

import (
	"time"

	"fluxcli/pkg/contracts/domain"
)

// CadenceGaps counts consecutive timestamp gaps that deviate from the
// nominal measurement interval by more than half the interval. A
// non-zero count means the analyzer dropped rows or stalled mid-run;
// callers log it as a data-quality signal, it never drops rows.
func CadenceGaps(readings []domain.Reading, interval time.Duration) int {
	if interval <= 0 || len(readings) < 2 {
		return 0
	}

	half := interval / 2
	var gaps int
	for i := 1; i < len(readings); i++ {
		gap := readings[i].Timestamp.Sub(readings[i-1].Timestamp)
		if gap < interval-half || gap > interval+half {
			gaps++
		}
	}
	return gaps
}
