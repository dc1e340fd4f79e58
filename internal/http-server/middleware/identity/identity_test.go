package identity

import (
	"eventPass/internal/lib/logger/handlers/slogdiscard"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testUserID = "5a1e4c2b-9d3f-4e8a-b7c6-2d1e0f9a8b7c"

func newRouter(t *testing.T, seen *User) http.Handler {
	t.Helper()

	capture := func(w http.ResponseWriter, r *http.Request) {
		user, ok := FromContext(r.Context())
		require.True(t, ok)
		*seen = user
		w.WriteHeader(http.StatusNoContent)
	}

	router := chi.NewRouter()
	router.Use(New(slogdiscard.NewDiscardLogger()))
	router.Get("/me", capture)
	router.With(RequireRole(RoleAdmin)).Get("/admin", capture)

	return router
}

func TestIdentity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		path           string
		headers        map[string]string
		expectedStatus int
		expectedBody   string
		expectedUser   User
	}{
		{
			name: "User",
			path: "/me",
			headers: map[string]string{
				HeaderUserID:    testUserID,
				HeaderUserRole:  "USER",
				HeaderUserName:  "Ana Souza",
				HeaderUserEmail: "ana@example.com",
			},
			expectedStatus: http.StatusNoContent,
			expectedUser:   User{ID: testUserID, Role: RoleUser, Name: "Ana Souza", Email: "ana@example.com"},
		},
		{
			name:           "Missing role defaults to user",
			path:           "/me",
			headers:        map[string]string{HeaderUserID: testUserID},
			expectedStatus: http.StatusNoContent,
			expectedUser:   User{ID: testUserID, Role: RoleUser},
		},
		{
			name:           "Lower case role",
			path:           "/admin",
			headers:        map[string]string{HeaderUserID: testUserID, HeaderUserRole: "admin"},
			expectedStatus: http.StatusNoContent,
			expectedUser:   User{ID: testUserID, Role: RoleAdmin},
		},
		{
			name:           "Missing user id",
			path:           "/me",
			headers:        map[string]string{HeaderUserRole: "USER"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "Invalid user id",
			path:           "/me",
			headers:        map[string]string{HeaderUserID: "42"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "Unknown role",
			path:           "/me",
			headers:        map[string]string{HeaderUserID: testUserID, HeaderUserRole: "ROOT"},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `{"status":"Error","error":"unauthorized"}`,
		},
		{
			name:           "User on admin route",
			path:           "/admin",
			headers:        map[string]string{HeaderUserID: testUserID, HeaderUserRole: "USER"},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `{"status":"Error","error":"forbidden"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var seen User
			router := newRouter(t, &seen)

			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			} else {
				assert.Equal(t, tc.expectedUser, seen)
			}
		})
	}
}

func TestRequireRoleWithoutIdentity(t *testing.T) {
	t.Parallel()

	handler := RequireRole(RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next must not be called")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
