package trade

import (
	"context"
	"fmt"
)

// SequenceName identifies a human-readable numbering series
type SequenceName string

const (
	SequenceBudget       SequenceName = "budget"
	SequenceServiceOrder SequenceName = "service_order"
	SequenceSale         SequenceName = "sale"
)

// SequenceGenerator hands out monotonically increasing numbers.
// Implementations must be atomic: two concurrent callers never receive the same value.
type SequenceGenerator interface {
	Next(ctx context.Context, name SequenceName) (int64, error)
}

// NumberFormat renders a sequence value as a document number
type NumberFormat struct {
	Prefix string
	Width  int
}

// Format renders n with the configured prefix and zero padding
func (f NumberFormat) Format(n int64) string {
	if f.Width <= 0 {
		return f.Prefix + fmt.Sprintf("%d", n)
	}
	return f.Prefix + fmt.Sprintf("%0*d", f.Width, n)
}
