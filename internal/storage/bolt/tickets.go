package bolt

import (
	"bytes"
	"context"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"fmt"
	bolt "github.com/boltdb/bolt"
	"sort"
	"time"
)

// Issue stores a ticket unless the user already owns one for the event. The
// owner index is checked and written in the same transaction as the ticket.
func (s *Storage) Issue(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	const op = "storage.bolt.Issue"

	ownerKey := []byte(compositeKey(ticket.UserID, ticket.EventID))

	err := s.update(ctx, func(tx *bolt.Tx) error {
		owners := tx.Bucket(ticketOwnersBucket)
		if owners.Get(ownerKey) != nil {
			return storage.ErrDuplicateTicket
		}

		tickets := tx.Bucket(ticketsBucket)
		if tickets.Get([]byte(ticket.ID)) != nil {
			return fmt.Errorf("%s: ticket %s already exists", op, ticket.ID)
		}

		if err := put(tickets, ticket.ID, ticket); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if err := owners.Put(ownerKey, []byte(ticket.ID)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		eventKey := []byte(compositeKey(ticket.EventID, ticket.ID))
		if err := tx.Bucket(eventTicketsBucket).Put(eventKey, []byte(ticket.ID)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	return ticket, nil
}

func (s *Storage) FindTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	const op = "storage.bolt.FindTicket"

	var ticket models.Ticket

	err := s.view(ctx, func(tx *bolt.Tx) error {
		found, err := get(tx.Bucket(ticketsBucket), ticketID, &ticket)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return storage.ErrTicketNotFound
		}
		return nil
	})
	if err != nil {
		return models.Ticket{}, err
	}

	return ticket, nil
}

func (s *Storage) FindTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	const op = "storage.bolt.FindTicketsByUser"

	var tickets []models.Ticket
	prefix := []byte(userID + "/")

	err := s.view(ctx, func(tx *bolt.Tx) error {
		ticketsBkt := tx.Bucket(ticketsBucket)

		c := tx.Bucket(ticketOwnersBucket).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var ticket models.Ticket
			found, err := get(ticketsBkt, string(v), &ticket)
			if err != nil {
				return err
			}
			if found {
				tickets = append(tickets, ticket)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.Slice(tickets, func(i, j int) bool {
		return tickets[i].CreatedAt.After(tickets[j].CreatedAt)
	})

	return tickets, nil
}

// MarkCheckedIn sets the check-in time only if it is not set yet.
func (s *Storage) MarkCheckedIn(ctx context.Context, ticketID string, at time.Time) (models.Ticket, error) {
	const op = "storage.bolt.MarkCheckedIn"

	var ticket models.Ticket

	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(ticketsBucket)

		found, err := get(b, ticketID, &ticket)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return storage.ErrTicketNotFound
		}
		if ticket.CheckedIn() {
			return storage.ErrAlreadyCheckedIn
		}

		ticket.CheckedInAt = &at
		return put(b, ticketID, ticket)
	})
	if err != nil {
		return models.Ticket{}, err
	}

	return ticket, nil
}

func (s *Storage) CountTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	const op = "storage.bolt.CountTicketsByEvent"

	count := 0
	prefix := []byte(eventID + "/")

	err := s.view(ctx, func(tx *bolt.Tx) error {
		c := tx.Bucket(eventTicketsBucket).Cursor()
		for k, _ := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, _ = c.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}
