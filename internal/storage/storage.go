package storage

import (
	"context"
	"errors"
)

var (
	ErrEventNotFound    = errors.New("event not found")
	ErrSoldOut          = errors.New("event sold out")
	ErrDuplicateTicket  = errors.New("ticket already exists for user and event")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlreadyCheckedIn = errors.New("ticket already checked in")
)

// Independent is the transactor for inventory and ledger stores that cannot
// share a transaction. Work runs as-is and callers compensate on failure.
type Independent struct{}

func (Independent) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (Independent) Atomic() bool {
	return false
}
