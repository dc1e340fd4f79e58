package purchaseTicket

import (
	"context"
	"errors"
	"eventPass/internal/http-server/middleware/identity"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"eventPass/internal/services/issuance"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
)

type TicketResponse struct {
	response.Response
	Ticket models.TicketDetails `json:"ticket"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketPurchaser
type TicketPurchaser interface {
	Purchase(ctx context.Context, in issuance.PurchaseInput) (models.TicketDetails, error)
}

func New(log *slog.Logger, purchaser TicketPurchaser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ticket.purchaseTicket.New"

		log := log.With(slog.String("op", op))

		user, ok := identity.FromContext(r.Context())
		if !ok {
			log.Error("no identity in request context")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		if err := uuid.Validate(eventID); err != nil {
			log.Error("invalid event id format", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid event id format"))
			return
		}

		log = log.With(
			slog.String("event_id", eventID),
			slog.String("user_id", user.ID),
		)

		ticket, err := purchaser.Purchase(r.Context(), issuance.PurchaseInput{
			UserID:      user.ID,
			EventID:     eventID,
			HolderName:  user.Name,
			HolderEmail: user.Email,
		})
		if err != nil {
			switch {
			case errors.Is(err, issuance.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, issuance.ErrSoldOut):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("event sold out"))
			case errors.Is(err, issuance.ErrAlreadyOwnsTicket):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("ticket already purchased for this event"))
			default:
				log.Error("failed to purchase ticket", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to purchase ticket"))
			}
			return
		}

		log.Info("ticket purchased", slog.String("ticket_id", ticket.ID))

		responseOK(w, r, ticket)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, ticket models.TicketDetails) {
	render.JSON(w, r, TicketResponse{
		Response: response.OK(),
		Ticket:   ticket,
	})
}
