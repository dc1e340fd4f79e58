package postgres

import (
	"context"
	"database/sql"
	"errors"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"fmt"
)

const eventColumns = `id, title, description, location, date, total_tickets, available_tickets, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (models.Event, error) {
	var event models.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Location,
		&event.Date,
		&event.TotalTickets,
		&event.AvailableTickets,
		&event.CreatedAt,
	)

	return event, err
}

// CreateEvent inserts an event with its whole inventory available.
func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	const op = "storage.postgres.CreateEvent"

	query := `
		INSERT INTO events (id, title, description, location, date, total_tickets, available_tickets, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		RETURNING ` + eventColumns

	created, err := scanEvent(s.conn(ctx).QueryRowContext(ctx, query,
		event.ID,
		event.Title,
		event.Description,
		event.Location,
		event.Date,
		event.TotalTickets,
		event.CreatedAt,
	))
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return created, nil
}

func (s *Storage) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.postgres.GetEvent"

	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(s.conn(ctx).QueryRowContext(ctx, query, eventID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isInvalidID(err) {
			return models.Event{}, storage.ErrEventNotFound
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.ListEvents"

	query := `SELECT ` + eventColumns + ` FROM events ORDER BY date ASC`

	rows, err := s.conn(ctx).QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan event: %w", op, err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: iterate events: %w", op, err)
	}

	return events, nil
}

// TryReserve claims one ticket of the event with a single conditional
// decrement and returns the event as it is after the decrement.
func (s *Storage) TryReserve(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.postgres.TryReserve"

	query := `
		UPDATE events
		SET available_tickets = available_tickets - 1
		WHERE id = $1 AND available_tickets > 0
		RETURNING ` + eventColumns

	event, err := scanEvent(s.conn(ctx).QueryRowContext(ctx, query, eventID))
	if err == nil {
		return event, nil
	}

	if isInvalidID(err) {
		return models.Event{}, storage.ErrEventNotFound
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := s.eventExists(ctx, eventID)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return models.Event{}, storage.ErrEventNotFound
	}

	return models.Event{}, storage.ErrSoldOut
}

// Release returns one reserved ticket to the event. It never raises the
// counter above the event's total.
func (s *Storage) Release(ctx context.Context, eventID string) error {
	const op = "storage.postgres.Release"

	query := `
		UPDATE events
		SET available_tickets = available_tickets + 1
		WHERE id = $1 AND available_tickets < total_tickets`

	result, err := s.conn(ctx).ExecContext(ctx, query, eventID)
	if err != nil {
		if isInvalidID(err) {
			return storage.ErrEventNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected > 0 {
		return nil
	}

	exists, err := s.eventExists(ctx, eventID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return storage.ErrEventNotFound
	}

	return nil
}

func (s *Storage) eventExists(ctx context.Context, eventID string) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check event exists: %w", err)
	}

	return exists, nil
}
