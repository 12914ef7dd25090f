package notify

import (
	"context"
	"errors"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// MultiNotifier sends every announcement to each of its notifiers. One
// failing backend does not stop the others.
type MultiNotifier []Notifier

// NotifyChanges delivers to all backends and joins their errors.
func (m MultiNotifier) NotifyChanges(ctx context.Context, summary domain.ChangeSummary) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyChanges(ctx, summary); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
