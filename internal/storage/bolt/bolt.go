// Package bolt provides an embedded BoltDB-backed inventory store and ticket
// ledger.
//
// Every mutation runs inside a single bolt write transaction. Bolt allows one
// writer at a time, so each conditional update (decrement-if-positive,
// insert-if-absent, set-if-null) is atomic with respect to every other
// writer. WithTx groups several calls into one write transaction, so the
// inventory and the ledger commit or roll back together.
package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	bolt "github.com/boltdb/bolt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	eventsBucket       = []byte("events")
	ticketsBucket      = []byte("tickets")
	ticketOwnersBucket = []byte("ticket_owners")
	eventTicketsBucket = []byte("event_tickets")
)

type Storage struct {
	db *bolt.DB
}

// New opens (or creates) the database file at path and ensures every bucket
// exists.
func New(path string) (*Storage, error) {
	const op = "storage.bolt.New"

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{eventsBucket, ticketsBucket, ticketOwnersBucket, eventTicketsBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Storage{db: db}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

type txKey struct{}

// WithTx runs fn inside one write transaction carried by the context.
// Nested calls join the outer transaction.
func (s *Storage) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Atomic reports that WithTx rolls back every write of a failed unit.
func (s *Storage) Atomic() bool {
	return true
}

func txFromContext(ctx context.Context) *bolt.Tx {
	tx, _ := ctx.Value(txKey{}).(*bolt.Tx)
	return tx
}

func (s *Storage) update(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tx := txFromContext(ctx); tx != nil {
		return fn(tx)
	}

	return s.db.Update(fn)
}

func (s *Storage) view(ctx context.Context, fn func(tx *bolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tx := txFromContext(ctx); tx != nil {
		return fn(tx)
	}

	return s.db.View(fn)
}

func get(b *bolt.Bucket, key string, v any) (bool, error) {
	data := b.Get([]byte(key))
	if data == nil {
		return false, nil
	}

	return true, json.Unmarshal(data, v)
}

func put(b *bolt.Bucket, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.Put([]byte(key), data)
}

func compositeKey(parts ...string) string {
	return strings.Join(parts, "/")
}
