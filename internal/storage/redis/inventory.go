// Package redis keeps event inventory in Redis. Every event is a hash and
// reservation runs as a Lua script, so the availability check and the
// decrement cannot interleave across instances.
package redis

import (
	"context"
	"errors"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"fmt"
	"github.com/redis/go-redis/v9"
	"sort"
	"strconv"
	"time"
)

const (
	eventKeyPrefix = "event-pass:event:"
	eventsIndexKey = "event-pass:events"
)

const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldLocation    = "location"
	fieldDate        = "date"
	fieldTotal       = "total"
	fieldAvailable   = "available"
	fieldCreatedAt   = "created_at"
)

// KEYS[1] event hash, KEYS[2] index set. ARGV is a flat field/value list.
var createScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
	return 0
end
redis.call("HSET", KEYS[1], unpack(ARGV))
redis.call("SADD", KEYS[2], KEYS[1])
return 1
`)

// Returns -1 when the event is missing, 0 when sold out, otherwise the
// event hash as it is right after the decrement.
var reserveScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local available = tonumber(redis.call("HGET", KEYS[1], "available"))
if available <= 0 then
	return 0
end
redis.call("HINCRBY", KEYS[1], "available", -1)
return redis.call("HGETALL", KEYS[1])
`)

// Returns -1 when the event is missing, 0 when already at total, 1 otherwise.
var releaseScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return -1
end
local available = tonumber(redis.call("HGET", KEYS[1], "available"))
local total = tonumber(redis.call("HGET", KEYS[1], "total"))
if available >= total then
	return 0
end
redis.call("HINCRBY", KEYS[1], "available", 1)
return 1
`)

var ErrEventExists = errors.New("event already exists")

type Inventory struct {
	client redis.UniversalClient
}

func NewInventory(client redis.UniversalClient) *Inventory {
	return &Inventory{client: client}
}

func eventKey(eventID string) string {
	return eventKeyPrefix + eventID
}

func (i *Inventory) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	const op = "storage.redis.CreateEvent"

	event.AvailableTickets = event.TotalTickets

	created, err := createScript.Run(ctx, i.client,
		[]string{eventKey(event.ID), eventsIndexKey},
		eventFields(event)...,
	).Int()
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if created == 0 {
		return models.Event{}, fmt.Errorf("%s: %w", op, ErrEventExists)
	}

	return event, nil
}

func (i *Inventory) GetEvent(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.redis.GetEvent"

	fields, err := i.client.HGetAll(ctx, eventKey(eventID)).Result()
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}
	if len(fields) == 0 {
		return models.Event{}, storage.ErrEventNotFound
	}

	event, err := parseEvent(eventID, fields)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (i *Inventory) ListEvents(ctx context.Context) ([]models.Event, error) {
	const op = "storage.redis.ListEvents"

	keys, err := i.client.SMembers(ctx, eventsIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err = i.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for n, key := range keys {
			cmds[n] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	events := make([]models.Event, 0, len(keys))
	for n, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		event, err := parseEvent(keys[n][len(eventKeyPrefix):], fields)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, event)
	}

	sort.SliceStable(events, func(a, b int) bool {
		return events[a].Date.Before(events[b].Date)
	})

	return events, nil
}

// TryReserve decrements the event's available tickets if any are left. The
// event is read by the same script that decrements it.
func (i *Inventory) TryReserve(ctx context.Context, eventID string) (models.Event, error) {
	const op = "storage.redis.TryReserve"

	res, err := reserveScript.Run(ctx, i.client, []string{eventKey(eventID)}).Result()
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	switch res := res.(type) {
	case int64:
		if res < 0 {
			return models.Event{}, storage.ErrEventNotFound
		}
		return models.Event{}, storage.ErrSoldOut
	case []any:
		event, err := parseReply(eventID, res)
		if err == nil {
			return event, nil
		}

		// The decrement is already committed, hand the unit back.
		if relErr := i.Release(context.WithoutCancel(ctx), eventID); relErr != nil {
			return models.Event{}, fmt.Errorf("%s: %w (release: %v)", op, err, relErr)
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	default:
		return models.Event{}, fmt.Errorf("%s: unexpected reply %T", op, res)
	}
}

// Release increments the event's available tickets, capped at its total.
func (i *Inventory) Release(ctx context.Context, eventID string) error {
	const op = "storage.redis.Release"

	res, err := releaseScript.Run(ctx, i.client, []string{eventKey(eventID)}).Int()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if res < 0 {
		return storage.ErrEventNotFound
	}

	return nil
}

func eventFields(event models.Event) []any {
	return []any{
		fieldTitle, event.Title,
		fieldDescription, event.Description,
		fieldLocation, event.Location,
		fieldDate, event.Date.UTC().Format(time.RFC3339Nano),
		fieldTotal, strconv.Itoa(event.TotalTickets),
		fieldAvailable, strconv.Itoa(event.AvailableTickets),
		fieldCreatedAt, event.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// parseReply reads a flat HGETALL reply into an event.
func parseReply(eventID string, reply []any) (models.Event, error) {
	if len(reply)%2 != 0 {
		return models.Event{}, fmt.Errorf("odd hash reply of %d items", len(reply))
	}

	fields := make(map[string]string, len(reply)/2)
	for n := 0; n < len(reply); n += 2 {
		key, ok := reply[n].(string)
		if !ok {
			return models.Event{}, fmt.Errorf("hash field %d is %T", n, reply[n])
		}
		value, ok := reply[n+1].(string)
		if !ok {
			return models.Event{}, fmt.Errorf("hash value of %s is %T", key, reply[n+1])
		}
		fields[key] = value
	}

	return parseEvent(eventID, fields)
}

func parseEvent(eventID string, fields map[string]string) (models.Event, error) {
	event := models.Event{
		ID:          eventID,
		Title:       fields[fieldTitle],
		Description: fields[fieldDescription],
		Location:    fields[fieldLocation],
	}

	var err error
	if event.Date, err = time.Parse(time.RFC3339Nano, fields[fieldDate]); err != nil {
		return models.Event{}, fmt.Errorf("parse %s: %w", fieldDate, err)
	}
	if event.CreatedAt, err = time.Parse(time.RFC3339Nano, fields[fieldCreatedAt]); err != nil {
		return models.Event{}, fmt.Errorf("parse %s: %w", fieldCreatedAt, err)
	}
	if event.TotalTickets, err = strconv.Atoi(fields[fieldTotal]); err != nil {
		return models.Event{}, fmt.Errorf("parse %s: %w", fieldTotal, err)
	}
	if event.AvailableTickets, err = strconv.Atoi(fields[fieldAvailable]); err != nil {
		return models.Event{}, fmt.Errorf("parse %s: %w", fieldAvailable, err)
	}

	return event, nil
}
