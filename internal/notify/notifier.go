// Package notify defines the notification interface and implementations
// for change announcements.
package notify

import (
	"context"
	"fmt"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// Notifier announces that a batch run detected changes. Delivery is
// best-effort: callers log and count failures but never fail a run on them.
type Notifier interface {
	NotifyChanges(ctx context.Context, summary domain.ChangeSummary) error
}

// Headline returns the one-line change announcement.
func Headline(s *domain.ChangeSummary) string {
	noun := "changes"
	if s.Changes == 1 {
		noun = "change"
	}
	return fmt.Sprintf("%d competitor price %s detected", s.Changes, noun)
}
