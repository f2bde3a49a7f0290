package notifications

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Enqueuer runs work off the request path. It reports false when the work
// was dropped.
type Enqueuer interface {
	Enqueue(jobType string, run func(context.Context) (any, error)) bool
}

// Service is the production Dispatcher: mail plus an event per notification,
// each attempt recorded in notification_deliveries.
type Service struct {
	store       StoreAPI
	Mailer      Mailer
	Publisher   Publisher
	Jobs        Enqueuer
	DefaultFrom string
}

func New(store StoreAPI, mailer Mailer) *Service {
	return &Service{store: store, Mailer: mailer, DefaultFrom: "no-reply@example.com"}
}

// Notify schedules delivery and returns immediately. Without a job queue it
// delivers inline.
func (s *Service) Notify(ctx context.Context, recipient, template string, data map[string]any) bool {
	recipient = strings.TrimSpace(recipient)
	if recipient == "" || !Known(template) {
		slog.Warn("notification rejected", "template", template, "recipient", recipient)
		return false
	}
	if s.Jobs == nil {
		if err := s.Deliver(ctx, recipient, template, data); err != nil {
			slog.Warn("notification delivery failed", "template", template, "err", err)
			return false
		}
		return true
	}
	return s.Jobs.Enqueue(JobDeliver, func(ctx context.Context) (any, error) {
		err := s.Deliver(ctx, recipient, template, data)
		return map[string]any{"template": template, "recipient": recipient}, err
	})
}

// Deliver renders the template and pushes it to every configured channel.
// Channel failures are joined, never short-circuited.
func (s *Service) Deliver(ctx context.Context, recipient, template string, data map[string]any) error {
	subject, body, err := Render(template, data)
	if err != nil {
		return err
	}

	var errs []error
	if s.Mailer != nil {
		sendErr := s.Mailer.Send(ctx, s.DefaultFrom, recipient, subject, body)
		s.record(ctx, recipient, template, subject, ChannelEmail, sendErr)
		errs = append(errs, sendErr)
	}
	if s.Publisher != nil {
		pubErr := s.Publisher.Publish(ctx, Event{
			Template:   template,
			Recipient:  recipient,
			Subject:    subject,
			Data:       eventData(data),
			OccurredAt: time.Now().UTC(),
		})
		s.record(ctx, recipient, template, subject, ChannelEvent, pubErr)
		errs = append(errs, pubErr)
	}
	return errors.Join(errs...)
}

func (s *Service) List(ctx context.Context, recipient string, limit, offset int) ([]Delivery, error) {
	return s.store.ListDeliveries(ctx, recipient, limit, offset)
}

func (s *Service) record(ctx context.Context, recipient, template, subject, channel string, sendErr error) {
	if s.store == nil {
		return
	}
	d := Delivery{Recipient: recipient, Template: template, Subject: subject, Channel: channel, Status: DeliverySent}
	if sendErr != nil {
		d.Status = DeliveryFailed
		d.Error = sendErr.Error()
	}
	if err := s.store.RecordDelivery(ctx, d); err != nil {
		slog.Warn("notification delivery record failed", "err", err)
	}
}

// eventData copies data without the keys that must stay out of the event log.
func eventData(data map[string]any) map[string]any {
	if len(data) == 0 {
		return nil
	}
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, k := range secretKeys {
		delete(out, k)
	}
	return out
}
