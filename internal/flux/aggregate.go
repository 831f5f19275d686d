package flux

import (
	"context"
	"log/slog"

	"fluxcli/pkg/contracts/domain"
)

// Aggregate concatenates flux result batches into one summary table,
// preserving the order the estimator produced. Group keys are unique by
// construction of the upstream join keys; a duplicate is a data-quality
// condition to surface, never to merge silently.
func Aggregate(ctx context.Context, logger *slog.Logger, batches ...[]domain.FluxResult) []domain.FluxResult {
	if logger == nil {
		logger = slog.Default()
	}

	var combined []domain.FluxResult
	seen := make(map[domain.FluxGroupKey]struct{})
	var duplicates []string

	for _, batch := range batches {
		for _, result := range batch {
			key := result.Key()
			if _, dup := seen[key]; dup {
				duplicates = append(duplicates, key.String())
			}
			seen[key] = struct{}{}
			combined = append(combined, result)
		}
	}

	if len(duplicates) > 0 {
		logger.WarnContext(ctx, "duplicate group keys in flux summary",
			"duplicates", duplicates,
		)
	}
	return combined
}
