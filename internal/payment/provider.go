package payment

import (
	"context"

	domain "github.com/HorizonteApps/clinic-scheduler/internal/domain/schedule"
)

// Result is the provider's answer for one payment: the coarse status this
// system acts on plus the provider's own detail code, kept verbatim for
// operators.
type Result struct {
	Status     domain.PaymentStatus
	DetailCode string
}

// Provider abstracts the upstream payment processor. Implementations must be
// safe for concurrent use; the reconciler polls from many goroutines.
type Provider interface {
	Status(ctx context.Context, providerRef string) (Result, error)
}
