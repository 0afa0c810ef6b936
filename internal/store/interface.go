package store

import (
	"context"

	"codeberg.org/mutker/energyctl/internal/energymodel"
)

// Repository persists registered performance domains so operators can inspect
// them after the fact. Saved rows mirror the published tables exactly; the
// repository never feeds anything back into the registry.
type Repository interface {
	SaveDomain(ctx context.Context, pd *energymodel.PerformanceDomain) error
	Close() error
}
