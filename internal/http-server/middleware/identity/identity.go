// Package identity reads the caller's identity from headers set by the
// upstream gateway. The gateway has already authenticated the user.
package identity

import (
	"context"
	"eventPass/internal/lib/api/response"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"log/slog"
	"net/http"
	"strings"
)

const (
	HeaderUserID    = "X-User-ID"
	HeaderUserRole  = "X-User-Role"
	HeaderUserName  = "X-User-Name"
	HeaderUserEmail = "X-User-Email"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID    string
	Role  Role
	Name  string
	Email string
}

type ctxKey struct{}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(ctxKey{}).(User)
	return user, ok
}

// New rejects requests without a valid user id with 401 and stores the
// user in the request context. A missing role means USER.
func New(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(
			slog.String("component", "middleware/identity"),
		)

		fn := func(w http.ResponseWriter, r *http.Request) {
			user, ok := parse(r.Header)
			if !ok {
				log.Warn("request without valid identity",
					slog.String("path", r.URL.Path),
					slog.String("user_id", r.Header.Get(HeaderUserID)),
				)
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		}

		return http.HandlerFunc(fn)
	}
}

// RequireRole answers 403 unless the user in the context has role. It must
// run after New.
func RequireRole(role Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			user, ok := FromContext(r.Context())
			if !ok {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("unauthorized"))

				return
			}

			if user.Role != role {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, response.Error("forbidden"))

				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}

func parse(h http.Header) (User, bool) {
	id, err := uuid.Parse(strings.TrimSpace(h.Get(HeaderUserID)))
	if err != nil {
		return User{}, false
	}

	role := Role(strings.ToUpper(strings.TrimSpace(h.Get(HeaderUserRole))))
	switch role {
	case "":
		role = RoleUser
	case RoleUser, RoleAdmin:
	default:
		return User{}, false
	}

	return User{
		ID:    id.String(),
		Role:  role,
		Name:  strings.TrimSpace(h.Get(HeaderUserName)),
		Email: strings.TrimSpace(h.Get(HeaderUserEmail)),
	}, true
}
