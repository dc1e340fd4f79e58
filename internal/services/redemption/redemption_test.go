package redemption_test

import (
	"context"
	"errors"
	"eventPass/internal/lib/clock"
	"eventPass/internal/lib/credential"
	"eventPass/internal/lib/logger/handlers/slogdiscard"
	"eventPass/internal/models"
	"eventPass/internal/notify"
	"eventPass/internal/services/issuance"
	"eventPass/internal/services/redemption"
	"eventPass/internal/storage"
	"eventPass/internal/storage/bolt"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

var (
	issuedAt  = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	checkInAt = time.Date(2027, 3, 15, 8, 45, 0, 0, time.UTC)
)

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (n *recordingNotifier) Notify(notification notify.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}

type missingEvents struct{}

func (missingEvents) GetEvent(context.Context, string) (models.Event, error) {
	return models.Event{}, storage.ErrEventNotFound
}

type fixture struct {
	store    *bolt.Storage
	codec    *credential.Codec
	notifier *recordingNotifier
	service  *redemption.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := bolt.New(filepath.Join(t.TempDir(), "redemption.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	key, err := credential.GenerateKey()
	require.NoError(t, err)

	f := &fixture{
		store:    store,
		codec:    credential.NewCodec(key, credential.WithClock(clock.NewFixed(issuedAt))),
		notifier: &recordingNotifier{},
	}
	f.service = f.newService(store)

	return f
}

func (f *fixture) newService(events redemption.Events) *redemption.Service {
	return redemption.New(
		slogdiscard.NewDiscardLogger(),
		f.codec,
		f.store,
		events,
		f.notifier,
		clock.NewFixed(checkInAt),
	)
}

func (f *fixture) createEvent(t *testing.T, total int) models.Event {
	t.Helper()

	event, err := f.store.CreateEvent(context.Background(), models.Event{
		ID:           uuid.NewString(),
		Title:        "Festival de Parintins Digital",
		Location:     "Parintins - AM",
		Date:         time.Date(2027, 3, 15, 9, 0, 0, 0, time.UTC),
		TotalTickets: total,
		CreatedAt:    issuedAt,
	})
	require.NoError(t, err)

	return event
}

// issue stores a ticket for event and returns it with a credential signed
// over claims derived from it.
func (f *fixture) issue(t *testing.T, event models.Event) models.Ticket {
	t.Helper()

	ticket := models.Ticket{
		ID:          uuid.NewString(),
		UserID:      uuid.NewString(),
		EventID:     event.ID,
		HolderName:  "Ana Souza",
		HolderEmail: "ana@example.com",
		CreatedAt:   issuedAt,
	}

	code, err := f.codec.Encode(credential.Claims{
		TicketID:   ticket.ID,
		UserID:     ticket.UserID,
		EventID:    ticket.EventID,
		EventTitle: event.Title,
	})
	require.NoError(t, err)
	ticket.Credential = code

	ticket, err = f.store.Issue(context.Background(), ticket)
	require.NoError(t, err)

	return ticket
}

func TestRedeem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 10)
	ticket := f.issue(t, event)

	details, err := f.service.Redeem(ctx, ticket.Credential)
	require.NoError(t, err)

	assert.Equal(t, ticket.ID, details.ID)
	assert.Equal(t, "Ana Souza", details.HolderName)
	assert.Equal(t, "ana@example.com", details.HolderEmail)
	assert.Equal(t, event.Title, details.Event.Title)
	assert.True(t, event.Date.Equal(details.Event.Date))
	require.NotNil(t, details.CheckedInAt)
	assert.True(t, checkInAt.Equal(*details.CheckedInAt))

	require.Equal(t, 1, f.notifier.count())
	assert.Equal(t, notify.KindTicketCheckedIn, f.notifier.sent[0].Kind)
	assert.Empty(t, f.notifier.sent[0].Credential)

	_, err = f.service.Redeem(ctx, ticket.Credential)
	assert.ErrorIs(t, err, redemption.ErrAlreadyCheckedIn)

	stored, err := f.store.FindTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, checkInAt.Equal(*stored.CheckedInAt))
}

func TestRedeemRejectsTamperedCredential(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.issue(t, f.createEvent(t, 1))

	code := []byte(ticket.Credential)
	for i := range code {
		tampered := append([]byte(nil), code...)
		if tampered[i] == 'A' {
			tampered[i] = 'B'
		} else {
			tampered[i] = 'A'
		}

		_, err := f.service.Redeem(ctx, string(tampered))
		require.ErrorIs(t, err, redemption.ErrInvalidCredential, "position %d", i)
	}

	stored, err := f.store.FindTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.CheckedIn(), "storage must stay untouched")
}

func TestRedeemErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1)

	t.Run("garbage", func(t *testing.T) {
		_, err := f.service.Redeem(ctx, "not a credential")
		assert.ErrorIs(t, err, redemption.ErrInvalidCredential)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := f.service.Redeem(ctx, "")
		assert.ErrorIs(t, err, redemption.ErrInvalidCredential)
	})

	t.Run("signed by another key", func(t *testing.T) {
		key, err := credential.GenerateKey()
		require.NoError(t, err)

		code, err := credential.NewCodec(key).Encode(credential.Claims{
			TicketID: uuid.NewString(),
			UserID:   uuid.NewString(),
			EventID:  event.ID,
		})
		require.NoError(t, err)

		_, err = f.service.Redeem(ctx, code)
		assert.ErrorIs(t, err, redemption.ErrInvalidCredential)
	})

	t.Run("unknown ticket", func(t *testing.T) {
		code, err := f.codec.Encode(credential.Claims{
			TicketID: uuid.NewString(),
			UserID:   uuid.NewString(),
			EventID:  event.ID,
		})
		require.NoError(t, err)

		_, err = f.service.Redeem(ctx, code)
		assert.ErrorIs(t, err, redemption.ErrTicketNotFound)
	})

	t.Run("claims do not match ticket", func(t *testing.T) {
		ticket := f.issue(t, event)

		code, err := f.codec.Encode(credential.Claims{
			TicketID: ticket.ID,
			UserID:   uuid.NewString(),
			EventID:  ticket.EventID,
		})
		require.NoError(t, err)

		_, err = f.service.Redeem(ctx, code)
		assert.ErrorIs(t, err, redemption.ErrInvalidCredential)

		stored, err := f.store.FindTicket(ctx, ticket.ID)
		require.NoError(t, err)
		assert.False(t, stored.CheckedIn())
	})
}

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestRedeemExpiredCredential(t *testing.T) {
	f := newFixture(t)

	key, err := credential.GenerateKey()
	require.NoError(t, err)

	clk := &manualClock{now: issuedAt}
	f.codec = credential.NewCodec(key, credential.WithTTL(time.Hour), credential.WithClock(clk))
	service := f.newService(f.store)

	ticket := f.issue(t, f.createEvent(t, 1))
	clk.Advance(2 * time.Hour)

	_, err = service.Redeem(context.Background(), ticket.Credential)
	assert.ErrorIs(t, err, redemption.ErrInvalidCredential)

	stored, err := f.store.FindTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.CheckedIn())
}

func TestRedeemFallsBackToClaimsTitle(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1)
	ticket := f.issue(t, event)

	details, err := f.newService(missingEvents{}).Redeem(context.Background(), ticket.Credential)
	require.NoError(t, err)
	assert.Equal(t, event.Title, details.Event.Title)
	assert.True(t, details.CheckedIn())
}

func TestRedeemConcurrentScans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ticket := f.issue(t, f.createEvent(t, 1))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Redeem(ctx, ticket.Credential)
		}(i)
	}
	wg.Wait()

	var ok, already int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, redemption.ErrAlreadyCheckedIn):
			already++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, already)
	assert.Equal(t, 1, f.notifier.count())
}

func TestPreview(t *testing.T) {
	f := newFixture(t)
	event := f.createEvent(t, 1)
	ticket := f.issue(t, event)

	claims, err := f.service.Preview(context.Background(), ticket.Credential)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, claims.TicketID)
	assert.Equal(t, event.Title, claims.EventTitle)

	_, err = f.service.Preview(context.Background(), "%%%")
	assert.ErrorIs(t, err, redemption.ErrInvalidCredential)

	stored, err := f.store.FindTicket(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.False(t, stored.CheckedIn(), "preview must not check in")
}

// Event E has one ticket. A buys it, B finds it sold out, A checks in once.
func TestSingleTicketScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	event := f.createEvent(t, 1)

	issuer := issuance.New(
		slogdiscard.NewDiscardLogger(),
		f.store,
		f.store,
		storage.Independent{},
		f.codec,
		f.notifier,
		clock.NewFixed(issuedAt),
	)

	alice := issuance.PurchaseInput{UserID: uuid.NewString(), EventID: event.ID, HolderName: "A"}
	bob := issuance.PurchaseInput{UserID: uuid.NewString(), EventID: event.ID, HolderName: "B"}

	ticket, err := issuer.Purchase(ctx, alice)
	require.NoError(t, err)

	stored, err := f.store.GetEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.AvailableTickets)

	_, err = issuer.Purchase(ctx, bob)
	assert.ErrorIs(t, err, issuance.ErrSoldOut)

	checked, err := f.service.Redeem(ctx, ticket.Credential)
	require.NoError(t, err)
	require.NotNil(t, checked.CheckedInAt)

	_, err = f.service.Redeem(ctx, ticket.Credential)
	assert.ErrorIs(t, err, redemption.ErrAlreadyCheckedIn)
}
