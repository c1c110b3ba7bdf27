package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document numbers.
// Implementations live in the infrastructure layer.
type Generator interface {
	// GetNextNumber generates the next document number for the period.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the sequence value (for migrations from another system).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}
