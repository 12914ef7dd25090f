package notify

import (
	"context"
	"log/slog"

	domain "github.com/donaldgifford/competitor-price-matcher/pkg/types"
)

// NoOpNotifier implements Notifier by logging discarded announcements. It is
// used when no webhook is configured.
type NoOpNotifier struct {
	log *slog.Logger
}

// NewNoOpNotifier creates a notifier that discards announcements with a log
// message.
func NewNoOpNotifier(log *slog.Logger) *NoOpNotifier {
	return &NoOpNotifier{log: log}
}

// NotifyChanges logs and discards the summary.
func (n *NoOpNotifier) NotifyChanges(_ context.Context, summary domain.ChangeSummary) error {
	n.log.Debug("notification discarded (no backend configured)",
		"run", summary.RunID,
		"changes", summary.Changes,
	)
	return nil
}
