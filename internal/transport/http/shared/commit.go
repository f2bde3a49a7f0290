package shared

import (
	"log/slog"
	"net/http"

	"hrflow/internal/domain/audit"
	"hrflow/internal/domain/notifications"
	"hrflow/internal/platform/metrics"
	"hrflow/internal/transport/http/middleware"
)

// Outcome is what a handler publishes once a transition has committed.
type Outcome struct {
	Entry   audit.Entry
	Machine string
	Status  string
	Intents []notifications.Intent
}

// Effects runs the best-effort work that follows a commit. None of it can
// fail the request; each field may be nil.
type Effects struct {
	Notifier notifications.Dispatcher
	Audit    *audit.Service
	Metrics  *metrics.Collector
}

func (e Effects) Committed(r *http.Request, out Outcome) {
	ctx := r.Context()
	if e.Audit != nil && out.Entry.Action != "" {
		out.Entry.RequestID = middleware.GetRequestID(ctx)
		out.Entry.IP = middleware.ClientIP(r)
		if err := e.Audit.Record(ctx, out.Entry); err != nil {
			slog.Warn("audit record failed", "err", err, "action", out.Entry.Action)
		}
	}
	if out.Machine != "" {
		e.Metrics.Transition(out.Machine, out.Status)
	}
	if len(out.Intents) > 0 && e.Notifier != nil {
		notifications.DispatchAll(ctx, e.Notifier, out.Intents)
	}
}
