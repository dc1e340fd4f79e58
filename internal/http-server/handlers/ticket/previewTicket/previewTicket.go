package previewTicket

import (
	"context"
	"errors"
	"eventPass/internal/lib/api/response"
	"eventPass/internal/lib/credential"
	"eventPass/internal/lib/logger/sl"
	"eventPass/internal/services/redemption"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"time"
)

type PreviewRequest struct {
	Code string `json:"code" validate:"required"`
}

// Preview is what a scanner shows before the code is checked in. None of
// it is verified.
type Preview struct {
	TicketID   string     `json:"ticket_id"`
	UserID     string     `json:"user_id"`
	EventID    string     `json:"event_id"`
	EventTitle string     `json:"event_title"`
	IssuedAt   time.Time  `json:"issued_at"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

type PreviewResponse struct {
	response.Response
	Preview Preview `json:"preview"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=TicketPreviewer
type TicketPreviewer interface {
	Preview(ctx context.Context, code string) (credential.Claims, error)
}

func New(log *slog.Logger, previewer TicketPreviewer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ticket.previewTicket.New"

		log := log.With(slog.String("op", op))

		var req PreviewRequest

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

		claims, err := previewer.Preview(r.Context(), req.Code)
		if err != nil {
			if errors.Is(err, redemption.ErrInvalidCredential) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid ticket code"))
				return
			}

			log.Error("failed to preview ticket", sl.Err(err))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to preview ticket"))
			return
		}

		responseOK(w, r, newPreview(claims))
	}
}

func newPreview(claims credential.Claims) Preview {
	p := Preview{
		TicketID:   claims.TicketID,
		UserID:     claims.UserID,
		EventID:    claims.EventID,
		EventTitle: claims.EventTitle,
		IssuedAt:   time.Unix(claims.IssuedAt, 0).UTC(),
	}
	if claims.ExpiresAt != 0 {
		expiresAt := time.Unix(claims.ExpiresAt, 0).UTC()
		p.ExpiresAt = &expiresAt
	}

	return p
}

func responseOK(w http.ResponseWriter, r *http.Request, preview Preview) {
	render.JSON(w, r, PreviewResponse{
		Response: response.OK(),
		Preview:  preview,
	})
}
