// Package notify delivers ticket notifications off the request path. Delivery
// is best effort: failures are logged and never reach the caller.
package notify

import (
	"context"
	"eventPass/internal/lib/logger/sl"
	"log/slog"
	"sync"
	"time"
)

type Kind string

const (
	KindTicketIssued    Kind = "ticket_issued"
	KindTicketCheckedIn Kind = "ticket_checked_in"
)

type Notification struct {
	Kind        Kind
	TicketID    string
	UserID      string
	EventID     string
	EventTitle  string
	EventDate   time.Time
	HolderName  string
	HolderEmail string
	// Credential is set for issued tickets only.
	Credential  string
	CheckedInAt *time.Time
}

type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Dispatcher runs every notification on its own goroutine with a timeout.
type Dispatcher struct {
	log     *slog.Logger
	sender  Sender
	timeout time.Duration

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(log *slog.Logger, sender Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		log:     log,
		sender:  sender,
		timeout: timeout,
	}
}

// Notify schedules n for delivery and returns immediately.
func (d *Dispatcher) Notify(n Notification) {
	const op = "notify.Dispatcher.Notify"

	log := d.log.With(
		slog.String("op", op),
		slog.String("kind", string(n.Kind)),
		slog.String("ticket_id", n.TicketID),
	)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		log.Warn("dispatcher closed, notification dropped")
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		if err := d.sender.Send(ctx, n); err != nil {
			log.Error("failed to send notification", sl.Err(err))
			return
		}

		log.Debug("notification sent")
	}()
}

// Close stops accepting notifications and waits for in-flight ones.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}
