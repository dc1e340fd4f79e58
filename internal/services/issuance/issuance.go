// Package issuance sells tickets: it reserves one unit of an event's
// inventory, records the ticket and signs its credential.
package issuance

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
	"github.com/google/uuid"
	"log/slog"
	"time"
)

const defaultCompensationTimeout = 5 * time.Second

var (
	ErrEventNotFound     = errors.New("event not found")
	ErrSoldOut           = errors.New("event sold out")
	ErrAlreadyOwnsTicket = errors.New("user already owns a ticket for this event")
)

type Inventory interface {
	GetEvent(ctx context.Context, eventID string) (models.Event, error)
	TryReserve(ctx context.Context, eventID string) (models.Event, error)
	Release(ctx context.Context, eventID string) error
}

type Ledger interface {
	Issue(ctx context.Context, ticket models.Ticket) (models.Ticket, error)
	FindTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error)
}

// Transactor groups the reservation and the ticket insert. When Atomic
// reports false a failed unit leaves its reservation behind and the service
// releases it.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	Atomic() bool
}

type Signer interface {
	Encode(claims credential.Claims) (string, error)
}

type Notifier interface {
	Notify(n notify.Notification)
}

type Service struct {
	log       *slog.Logger
	inventory Inventory
	ledger    Ledger
	tx        Transactor
	signer    Signer
	notifier  Notifier
	clock     clock.Clock

	compensationTimeout time.Duration
}

func New(
	log *slog.Logger,
	inventory Inventory,
	ledger Ledger,
	tx Transactor,
	signer Signer,
	notifier Notifier,
	clk clock.Clock,
) *Service {
	return &Service{
		log:                 log,
		inventory:           inventory,
		ledger:              ledger,
		tx:                  tx,
		signer:              signer,
		notifier:            notifier,
		clock:               clk,
		compensationTimeout: defaultCompensationTimeout,
	}
}

type PurchaseInput struct {
	UserID      string
	EventID     string
	HolderName  string
	HolderEmail string
}

// Purchase issues one ticket for the user. A user holds at most one ticket
// per event and an event never sells more tickets than it has.
func (s *Service) Purchase(ctx context.Context, in PurchaseInput) (models.TicketDetails, error) {
	const op = "services.issuance.Purchase"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", in.UserID),
		slog.String("event_id", in.EventID),
	)

	var (
		event    models.Event
		ticket   models.Ticket
		reserved bool
	)

	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error

		event, err = s.inventory.TryReserve(ctx, in.EventID)
		if err != nil {
			return err
		}
		reserved = true

		ticket, err = s.newTicket(in, event)
		if err != nil {
			return err
		}

		ticket, err = s.ledger.Issue(ctx, ticket)
		return err
	})
	if err != nil {
		if reserved && !s.tx.Atomic() {
			s.release(ctx, log, in.EventID)
		}

		switch {
		case errors.Is(err, storage.ErrEventNotFound):
			return models.TicketDetails{}, ErrEventNotFound
		case errors.Is(err, storage.ErrSoldOut):
			log.Info("event sold out")
			return models.TicketDetails{}, ErrSoldOut
		case errors.Is(err, storage.ErrDuplicateTicket):
			log.Info("user already owns a ticket")
			return models.TicketDetails{}, ErrAlreadyOwnsTicket
		}

		log.Error("failed to issue ticket", sl.Err(err))
		return models.TicketDetails{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("ticket issued",
		slog.String("ticket_id", ticket.ID),
		slog.Int("available_tickets", event.AvailableTickets),
	)

	s.notifier.Notify(notify.Notification{
		Kind:        notify.KindTicketIssued,
		TicketID:    ticket.ID,
		UserID:      ticket.UserID,
		EventID:     ticket.EventID,
		EventTitle:  event.Title,
		EventDate:   event.Date,
		HolderName:  ticket.HolderName,
		HolderEmail: ticket.HolderEmail,
		Credential:  ticket.Credential,
	})

	return models.NewTicketDetails(ticket, event), nil
}

func (s *Service) newTicket(in PurchaseInput, event models.Event) (models.Ticket, error) {
	ticket := models.Ticket{
		ID:          uuid.NewString(),
		UserID:      in.UserID,
		EventID:     event.ID,
		HolderName:  in.HolderName,
		HolderEmail: in.HolderEmail,
		CreatedAt:   s.clock.Now(),
	}

	code, err := s.signer.Encode(credential.Claims{
		TicketID:   ticket.ID,
		UserID:     ticket.UserID,
		EventID:    ticket.EventID,
		EventTitle: event.Title,
	})
	if err != nil {
		return models.Ticket{}, fmt.Errorf("sign credential: %w", err)
	}
	ticket.Credential = code

	return ticket, nil
}

// release returns a reserved unit to the event. It runs even when the
// caller's context is already cancelled.
func (s *Service) release(ctx context.Context, log *slog.Logger, eventID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.compensationTimeout)
	defer cancel()

	if err := s.inventory.Release(ctx, eventID); err != nil {
		log.Error("failed to release reservation", sl.Err(err))
		return
	}

	log.Warn("reservation released")
}

// ListTickets returns the user's tickets, newest first, each with its event.
func (s *Service) ListTickets(ctx context.Context, userID string) ([]models.TicketDetails, error) {
	const op = "services.issuance.ListTickets"

	log := s.log.With(
		slog.String("op", op),
		slog.String("user_id", userID),
	)

	tickets, err := s.ledger.FindTicketsByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list tickets", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make(map[string]models.Event)
	details := make([]models.TicketDetails, 0, len(tickets))

	for _, ticket := range tickets {
		event, ok := events[ticket.EventID]
		if !ok {
			event, err = s.inventory.GetEvent(ctx, ticket.EventID)
			switch {
			case errors.Is(err, storage.ErrEventNotFound):
				log.Warn("ticket references a missing event", slog.String("ticket_id", ticket.ID))
				event = models.Event{ID: ticket.EventID}
			case err != nil:
				log.Error("failed to get event", sl.Err(err))
				return nil, fmt.Errorf("%s: %w", op, err)
			}
			events[ticket.EventID] = event
		}

		details = append(details, models.NewTicketDetails(ticket, event))
	}

	return details, nil
}
