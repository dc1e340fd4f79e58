package notify

import (
	"context"
	"log/slog"
)

// LogSender writes notifications to the log. It stands in for a mailer in
// local setups.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, n Notification) error {
	attrs := []any{
		slog.String("kind", string(n.Kind)),
		slog.String("ticket_id", n.TicketID),
		slog.String("event_title", n.EventTitle),
		slog.String("holder_email", n.HolderEmail),
	}
	if n.CheckedInAt != nil {
		attrs = append(attrs, slog.Time("checked_in_at", *n.CheckedInAt))
	}

	s.log.Info("ticket notification", attrs...)

	return nil
}
