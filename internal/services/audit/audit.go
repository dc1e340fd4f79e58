// Package audit compares each event's sold count with the tickets on record.
// It only reports; it never repairs.
package audit

import (
	"context"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"fmt"
	"log/slog"
	"time"
)

type Events interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
}

type Ledger interface {
	CountTicketsByEvent(ctx context.Context, eventID string) (int, error)
}

// Drift is an event whose inventory disagrees with its issued tickets.
// Sold above Issued means reservations were never released.
type Drift struct {
	EventID string
	Title   string
	Sold    int
	Issued  int
}

type Auditor struct {
	log    *slog.Logger
	events Events
	ledger Ledger
}

func New(log *slog.Logger, events Events, ledger Ledger) *Auditor {
	return &Auditor{
		log:    log,
		events: events,
		ledger: ledger,
	}
}

func (a *Auditor) Check(ctx context.Context) ([]Drift, error) {
	const op = "services.audit.Check"

	events, err := a.events.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var drifts []Drift
	for _, event := range events {
		issued, err := a.ledger.CountTicketsByEvent(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("%s: count tickets for %s: %w", op, event.ID, err)
		}

		if sold := event.SoldTickets(); sold != issued {
			drifts = append(drifts, Drift{
				EventID: event.ID,
				Title:   event.Title,
				Sold:    sold,
				Issued:  issued,
			})
		}
	}

	return drifts, nil
}

// Run checks every interval until ctx is done.
func (a *Auditor) Run(ctx context.Context, interval time.Duration) {
	const op = "services.audit.Run"

	log := a.log.With(slog.String("op", op))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			drifts, err := a.Check(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("failed to audit inventory", sl.Err(err))
				continue
			}

			for _, d := range drifts {
				log.Warn("inventory drift",
					slog.String("event_id", d.EventID),
					slog.String("title", d.Title),
					slog.Int("sold", d.Sold),
					slog.Int("issued", d.Issued),
				)
			}
			log.Debug("inventory audited", slog.Int("drifts", len(drifts)))
		case <-ctx.Done():
			return
		}
	}
}
