package flux

import (
	"sort"

	"fluxcli/pkg/contracts/domain"
)

// Normalize computes elapsed time within each treatment/replicate
// group: rows are stable-sorted by timestamp (ties keep original row
// order) and stamped with minutes since the group's earliest reading.
//
// The baseline is always the first row of the *current* group, so this
// must be re-run whenever upstream filtering changes group membership.
// The output is a new table ordered by group key, then timestamp.
func Normalize(readings []domain.Reading) []domain.Reading {
	if len(readings) == 0 {
		return nil
	}

	groups := make(map[domain.GroupKey][]domain.Reading)
	var order []domain.GroupKey
	for _, r := range readings {
		key := r.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	sort.Slice(order, func(i, j int) bool {
		return order[i].String() < order[j].String()
	})

	out := make([]domain.Reading, 0, len(readings))
	for _, key := range order {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Timestamp.Before(group[j].Timestamp)
		})

		start := group[0].Timestamp
		for _, r := range group {
			r.ElapsedMin = r.Timestamp.Sub(start).Minutes()
			out = append(out, r)
		}
	}
	return out
}
