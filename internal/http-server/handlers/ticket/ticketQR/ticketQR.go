package ticketQR

import (
	"context"
	"errors"
	"eventPass/internal/http-server/middleware/identity"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"eventPass/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
	"log/slog"
	"net/http"
	"strconv"
)

const (
	defaultSize = 256
	minSize     = 128
	maxSize     = 1024
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketGetter
type TicketGetter interface {
	FindTicket(ctx context.Context, ticketID string) (models.Ticket, error)
}

// New renders the credential of the caller's ticket as a PNG QR code.
// Tickets of other users are reported as not found.
func New(log *slog.Logger, tickets TicketGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ticket.ticketQR.New"

		log := log.With(slog.String("op", op))

		user, ok := identity.FromContext(r.Context())
		if !ok {
			log.Error("no identity in request context")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		ticketID := chi.URLParam(r, "id")
		if err := uuid.Validate(ticketID); err != nil {
			log.Error("invalid ticket id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid ticket id format"))
			return
		}

		size := defaultSize
		if raw := r.URL.Query().Get("size"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < minSize || n > maxSize {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("size must be between 128 and 1024"))
				return
			}
			size = n
		}

		log = log.With(
			slog.String("ticket_id", ticketID),
			slog.String("user_id", user.ID),
		)

		ticket, err := tickets.FindTicket(r.Context(), ticketID)
		if err == nil && ticket.UserID != user.ID {
			log.Warn("ticket belongs to another user")
			err = storage.ErrTicketNotFound
		}
		if err != nil {
			if errors.Is(err, storage.ErrTicketNotFound) {
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("ticket not found"))
				return
			}

			log.Error("failed to get ticket", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get ticket"))
			return
		}

		png, err := qrcode.Encode(ticket.Credential, qrcode.Medium, size)
		if err != nil {
			log.Error("failed to render qr code", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to render qr code"))
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "private, no-store")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(png)
	}
}
