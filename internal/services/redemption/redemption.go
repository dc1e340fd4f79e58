// Package redemption checks tickets in at the door. A credential only
// identifies which ticket to load; the stored ticket is the source of truth.
package redemption

import (
	"context"
	"errors"
	"eventPass/internal/lib/clock"
	"eventPass/internal/lib/credential"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"eventPass/internal/notify"
	"eventPass/internal/storage"
	"fmt"
	"log/slog"
	"time"
)

var (
	ErrInvalidCredential = errors.New("invalid credential")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrAlreadyCheckedIn  = errors.New("ticket already checked in")
)

type Verifier interface {
	Decode(code string) (credential.Claims, error)
}

type Tickets interface {
	FindTicket(ctx context.Context, ticketID string) (models.Ticket, error)
	MarkCheckedIn(ctx context.Context, ticketID string, at time.Time) (models.Ticket, error)
}

type Events interface {
	GetEvent(ctx context.Context, eventID string) (models.Event, error)
}

type Notifier interface {
	Notify(n notify.Notification)
}

type Service struct {
	log      *slog.Logger
	verifier Verifier
	tickets  Tickets
	events   Events
	notifier Notifier
	clock    clock.Clock
}

func New(
	log *slog.Logger,
	verifier Verifier,
	tickets Tickets,
	events Events,
	notifier Notifier,
	clk clock.Clock,
) *Service {
	return &Service{
		log:      log,
		verifier: verifier,
		tickets:  tickets,
		events:   events,
		notifier: notifier,
		clock:    clk,
	}
}

// Redeem verifies code and checks its ticket in. Each ticket is checked in
// at most once; later scans fail with ErrAlreadyCheckedIn.
func (s *Service) Redeem(ctx context.Context, code string) (models.TicketDetails, error) {
	const op = "services.redemption.Redeem"

	log := s.log.With(slog.String("op", op))

	claims, err := s.verifier.Decode(code)
	if err != nil {
		log.Info("credential rejected", sl.Err(err))
		return models.TicketDetails{}, ErrInvalidCredential
	}

	log = log.With(
		slog.String("ticket_id", claims.TicketID),
		slog.String("event_id", claims.EventID),
	)

	ticket, err := s.tickets.FindTicket(ctx, claims.TicketID)
	if err != nil {
		if errors.Is(err, storage.ErrTicketNotFound) {
			log.Warn("signed credential for unknown ticket")
			return models.TicketDetails{}, ErrTicketNotFound
		}
		log.Error("failed to find ticket", sl.Err(err))
		return models.TicketDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	if ticket.UserID != claims.UserID || ticket.EventID != claims.EventID {
		log.Warn("credential claims do not match the ticket")
		return models.TicketDetails{}, ErrInvalidCredential
	}

	ticket, err = s.tickets.MarkCheckedIn(ctx, ticket.ID, s.clock.Now())
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrAlreadyCheckedIn):
			log.Info("ticket already checked in")
			return models.TicketDetails{}, ErrAlreadyCheckedIn
		case errors.Is(err, storage.ErrTicketNotFound):
			return models.TicketDetails{}, ErrTicketNotFound
		}
		log.Error("failed to check ticket in", sl.Err(err))
		return models.TicketDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	event, err := s.events.GetEvent(ctx, ticket.EventID)
	if err != nil {
		log.Warn("failed to get event for checked in ticket", sl.Err(err))
		event = models.Event{ID: ticket.EventID, Title: claims.EventTitle}
	}

	log.Info("ticket checked in")

	s.notifier.Notify(notify.Notification{
		Kind:        notify.KindTicketCheckedIn,
		TicketID:    ticket.ID,
		UserID:      ticket.UserID,
		EventID:     ticket.EventID,
		EventTitle:  event.Title,
		EventDate:   event.Date,
		HolderName:  ticket.HolderName,
		HolderEmail: ticket.HolderEmail,
		CheckedInAt: ticket.CheckedInAt,
	})

	return models.NewTicketDetails(ticket, event), nil
}

// Preview returns the claims embedded in code without verifying its
// signature. The result is for display only.
func (s *Service) Preview(_ context.Context, code string) (credential.Claims, error) {
	claims, err := credential.Peek(code)
	if err != nil {
		return credential.Claims{}, ErrInvalidCredential
	}

	return claims, nil
}
