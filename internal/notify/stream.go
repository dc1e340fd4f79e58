package notify

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

// StreamSender appends notifications to a Redis stream read by the mailer.
type StreamSender struct {
	client redis.UniversalClient
	stream string
}

func NewStreamSender(client redis.UniversalClient, stream string) *StreamSender {
	return &StreamSender{
		client: client,
		stream: stream,
	}
}

func (s *StreamSender) Send(ctx context.Context, n Notification) error {
	const op = "notify.StreamSender.Send"

	err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: streamValues(n),
	}).Err()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// streamValues flattens n into ordered field/value pairs.
func streamValues(n Notification) []any {
	values := []any{
		"kind", string(n.Kind),
		"ticket_id", n.TicketID,
		"user_id", n.UserID,
		"event_id", n.EventID,
		"event_title", n.EventTitle,
		"event_date", n.EventDate.UTC().Format(time.RFC3339),
		"holder_name", n.HolderName,
		"holder_email", n.HolderEmail,
	}
	if n.Credential != "" {
		values = append(values, "code", n.Credential)
	}
	if n.CheckedInAt != nil {
		values = append(values, "checked_in_at", n.CheckedInAt.UTC().Format(time.RFC3339))
	}

	return values
}
