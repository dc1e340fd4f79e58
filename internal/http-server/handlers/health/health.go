package health

import (
	"eventPass/internal/lib/api/response"
	"github.com/go-chi/render"
	"net/http"
)

func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	}
}
