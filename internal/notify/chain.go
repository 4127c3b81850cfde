package notify

import (
	"context"
	"errors"

	"github.com/terrasite/leadform/internal/leads"
)

// Chain calls every notifier in order. All of them run even when an
// earlier one fails; the failures are joined.
type Chain []leads.Notifier

// Notify implements leads.Notifier.
func (c Chain) Notify(ctx context.Context, lead leads.Lead) error {
	var errs []error
	for _, n := range c {
		if err := n.Notify(ctx, lead); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
