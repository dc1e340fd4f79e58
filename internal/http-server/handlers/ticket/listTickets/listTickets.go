package listTickets

import (
	"context"
	"eventPass/internal/http-server/middleware/identity"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
)

type TicketsResponse struct {
	response.Response
	Tickets []models.TicketDetails `json:"tickets"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketsLister
type TicketsLister interface {
	ListTickets(ctx context.Context, userID string) ([]models.TicketDetails, error)
}

func New(log *slog.Logger, lister TicketsLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ticket.listTickets.New"

		log := log.With(slog.String("op", op))

		user, ok := identity.FromContext(r.Context())
		if !ok {
			log.Error("no identity in request context")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		tickets, err := lister.ListTickets(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to list tickets", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to list tickets"))
			return
		}

		log.Info("tickets listed", slog.String("user_id", user.ID), slog.Int("count", len(tickets)))

		responseOK(w, r, tickets)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, tickets []models.TicketDetails) {
	if tickets == nil {
		tickets = []models.TicketDetails{}
	}

	render.JSON(w, r, TicketsResponse{
		Response: response.OK(),
		Tickets:  tickets,
	})
}
