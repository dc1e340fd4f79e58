package bolt

import (
	"context"
	"encoding/json"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"fmt"
	bolt "github.com/boltdb/bolt"
	"sort"
)

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	const op = "storage.bolt.CreateEvent"

	event.AvailableTickets = event.TotalTickets

	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)
		if b.Get([]byte(event.ID)) != nil {
			return fmt.Errorf("event %s already exists", event.ID)
		}
		return put(b, event.ID, event)
	})
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.bolt.GetEvent"

	var event models.Event

	err := s.view(ctx, func(tx *bolt.Tx) error {
		found, err := get(tx.Bucket(eventsBucket), eventID, &event)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return storage.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	return event, nil
}

func (s *Storage) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.bolt.ListEvents"

	var events []models.Event

	err := s.view(ctx, func(tx *bolt.Tx) error {
		return tx.Bucket(eventsBucket).ForEach(func(_, v []byte) error {
			var event models.Event
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, event)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})

	return events, nil
}

// TryReserve decrements the event's available tickets if any are left. The
// check and the decrement happen in one write transaction.
func (s *Storage) TryReserve(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.bolt.TryReserve"

	var event models.Event

	err := s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)

		found, err := get(b, eventID, &event)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return storage.ErrEventNotFound
		}
		if event.AvailableTickets <= 0 {
			return storage.ErrSoldOut
		}

		event.AvailableTickets--
		return put(b, eventID, event)
	})
	if err != nil {
		return models.Event{}, err
	}

	return event, nil
}

// Release increments the event's available tickets, capped at its total.
func (s *Storage) Release(ctx context.Context, eventID string) error {
	const op = "storage.bolt.Release"

	return s.update(ctx, func(tx *bolt.Tx) error {
		b := tx.Bucket(eventsBucket)

		var event models.Event
		found, err := get(b, eventID, &event)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		if !found {
			return storage.ErrEventNotFound
		}
		if event.AvailableTickets >= event.TotalTickets {
			return nil
		}

		event.AvailableTickets++
		return put(b, eventID, event)
	})
}
