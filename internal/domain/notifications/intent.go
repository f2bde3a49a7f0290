package notifications

import (
	"context"
	"log/slog"
)

// Intent is a notification a transition wants sent once its transaction has
// committed.
type Intent struct {
	Recipient string         `json:"recipient"`
	Template  string         `json:"template"`
	Data      map[string]any `json:"data,omitempty"`
}

// Dispatcher is the outbound notification sink. Notify reports whether the
// notification was accepted; callers never act on a false.
type Dispatcher interface {
	Notify(ctx context.Context, recipient, template string, data map[string]any) bool
}

// Fanout builds one intent per recipient, skipping blanks and duplicates.
func Fanout(template string, data map[string]any, recipients ...string) []Intent {
	seen := make(map[string]struct{}, len(recipients))
	out := make([]Intent, 0, len(recipients))
	for _, r := range recipients {
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, Intent{Recipient: r, Template: template, Data: data})
	}
	return out
}

// DispatchAll hands every intent to d and returns how many were rejected.
func DispatchAll(ctx context.Context, d Dispatcher, intents []Intent) int {
	if d == nil {
		return len(intents)
	}
	failed := 0
	for _, in := range intents {
		if !d.Notify(ctx, in.Recipient, in.Template, in.Data) {
			failed++
			slog.Warn("notification dispatch failed", "template", in.Template, "recipient", in.Recipient)
		}
	}
	return failed
}
