package createEvent

import (
	"context"
	"errors"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/clock"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/models"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
	"time"
)

type EventRequest struct {
	Title        string    `json:"title" validate:"required"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Date         time.Time `json:"date" validate:"required"`
	TotalTickets int       `json:"total_tickets" validate:"required,gt=0"`
}

type EventResponse struct {
	response.Response
	Event models.Event `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, event models.Event) (models.Event, error)
}

func New(log *slog.Logger, creator EventCreator, clk clock.Clock) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
		)

		var req EventRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))

			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		event, err := creator.CreateEvent(r.Context(), models.Event{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Description:  req.Description,
			Location:     req.Location,
			Date:         req.Date.UTC(),
			TotalTickets: req.TotalTickets,
			CreatedAt:    clk.Now().UTC(),
		})
		if err != nil {
			log.Error("failed to add event", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add event"))

			return
		}

		log.Info("event added", slog.String("id", event.ID))

		responseOK(w, r, event)
	}
}

func responseOK(w http.ResponseWriter, r *http.Request, event models.Event) {
	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		Event:    event,
	})
}
