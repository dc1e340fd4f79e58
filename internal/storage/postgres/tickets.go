package postgres

import (
	"context"
	"database/sql"
	"errors"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"fmt"
	"time"
)

const ticketColumns = `id, user_id, event_id, holder_name, holder_email, credential, created_at, checked_in_at`

func scanTicket(row rowScanner) (models.Ticket, error) {
	var ticket models.Ticket
	var checkedInAt sql.NullTime

	err := row.Scan(
		&ticket.ID,
		&ticket.UserID,
		&ticket.EventID,
		&ticket.HolderName,
		&ticket.HolderEmail,
		&ticket.Credential,
		&ticket.CreatedAt,
		&checkedInAt,
	)
	if err != nil {
		return models.Ticket{}, err
	}

	if checkedInAt.Valid {
		at := checkedInAt.Time
		ticket.CheckedInAt = &at
	}

	return ticket, nil
}

// Issue inserts a ticket. The (user_id, event_id) unique constraint rejects
// a second ticket for the same user and event with storage.ErrDuplicateTicket.
func (s *Storage) Issue(ctx context.Context, ticket models.Ticket) (models.Ticket, error) {
	const op = "storage.postgres.Issue"

	query := `
		INSERT INTO tickets (id, user_id, event_id, holder_name, holder_email, credential, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + ticketColumns

	issued, err := scanTicket(s.conn(ctx).QueryRowContext(ctx, query,
		ticket.ID,
		ticket.UserID,
		ticket.EventID,
		ticket.HolderName,
		ticket.HolderEmail,
		ticket.Credential,
		ticket.CreatedAt,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return models.Ticket{}, storage.ErrDuplicateTicket
		}
		return models.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	return issued, nil
}

func (s *Storage) FindTicket(ctx context.Context, ticketID string) (models.Ticket, error) {
	const op = "storage.postgres.FindTicket"

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(s.conn(ctx).QueryRowContext(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return models.Ticket{}, storage.ErrTicketNotFound
		}
		return models.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	return ticket, nil
}

func (s *Storage) FindTicketsByUser(ctx context.Context, userID string) ([]models.Ticket, error) {
	const op = "storage.postgres.FindTicketsByUser"

	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := s.conn(ctx).QueryContext(ctx, query, userID)
	if err != nil {
		if isInvalidID(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var tickets []models.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan ticket: %w", op, err)
		}
		tickets = append(tickets, ticket)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate tickets: %w", op, err)
	}

	return tickets, nil
}

// MarkCheckedIn sets checked_in_at only while it is still NULL, so of two
// concurrent scans exactly one succeeds.
func (s *Storage) MarkCheckedIn(ctx context.Context, ticketID string, at time.Time) (models.Ticket, error) {
	const op = "storage.postgres.MarkCheckedIn"

	query := `
		UPDATE tickets
		SET checked_in_at = $2
		WHERE id = $1 AND checked_in_at IS NULL
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(s.conn(ctx).QueryRowContext(ctx, query, ticketID, at))
	if err == nil {
		return ticket, nil
	}

	if isInvalidID(err) {
		return models.Ticket{}, storage.ErrTicketNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.FindTicket(ctx, ticketID); err != nil {
		return models.Ticket{}, err
	}

	return models.Ticket{}, storage.ErrAlreadyCheckedIn
}

func (s *Storage) CountTicketsByEvent(ctx context.Context, eventID string) (int, error) {
	const op = "storage.postgres.CountTicketsByEvent"

	var count int
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		if isInvalidID(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return count, nil
}
