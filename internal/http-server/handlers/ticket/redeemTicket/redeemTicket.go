package redeemTicket

import (
	"context"
	"errors"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"eventPass/internal/services/redemption"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
)

type CheckInRequest struct {
	Code string `json:"code" validate:"required"`
}

type CheckInResponse struct {
	response.Response
	Ticket models.TicketDetails `json:"ticket"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketRedeemer
type TicketRedeemer interface {
	Redeem(ctx context.Context, code string) (models.TicketDetails, error)
}

func New(log *slog.Logger, redeemer TicketRedeemer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ticket.redeemTicket.New"

		log := log.With(slog.String("op", op))

		var req CheckInRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		ticket, err := redeemer.Redeem(r.Context(), req.Code)
		if err != nil {
			switch {
			case errors.Is(err, redemption.ErrInvalidCredential):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid ticket code"))
			case errors.Is(err, redemption.ErrTicketNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("ticket not found"))
			case errors.Is(err, redemption.ErrAlreadyCheckedIn):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error("ticket already checked in"))
			default:
				log.Error("failed to check in ticket", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to check in ticket"))
			}
			return
		}

		log.Info("ticket checked in", slog.String("ticket_id", ticket.ID))

		responseOK(w, r, ticket)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, ticket models.TicketDetails) {
	render.JSON(w, r, CheckInResponse{
		Response: response.OK(),
		Ticket:   ticket,
	})
}
