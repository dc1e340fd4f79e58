package previewTicket

import (
	"bytes"
	"errors"
	"eventPass/internal/http-server/handlers/ticket/previewTicket/mocks"
	"eventPass/internal/lib/credential"
	"eventPass/internal/lib/logger/handlers/slogdiscard"
	"eventPass/internal/services/redemption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestPreviewTicketHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	issuedAt := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	claims := credential.Claims{
		TicketID:   "0b6c1d5e-6f9a-4b39-8d7e-1f2a3b4c5d6e",
		UserID:     "5a1e4c2b-9d3f-4e8a-b7c6-2d1e0f9a8b7c",
		EventID:    "6f1c2f4e-3c1b-4d5e-9a77-0c2d7f3b9a10",
		EventTitle: "Amazônia Dev Summit",
		IssuedAt:   issuedAt.Unix(),
	}
	expiring := claims
	expiring.ExpiresAt = issuedAt.Add(48 * time.Hour).Unix()

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.TicketPreviewer)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "Success",
			requestBody: `{"code": "opaque-code"}`,
			mockSetup: func(m *mocks.TicketPreviewer) {
				m.On("Preview", mock.Anything, "opaque-code").Return(claims, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","preview":{
				"ticket_id":"0b6c1d5e-6f9a-4b39-8d7e-1f2a3b4c5d6e",
				"user_id":"5a1e4c2b-9d3f-4e8a-b7c6-2d1e0f9a8b7c",
				"event_id":"6f1c2f4e-3c1b-4d5e-9a77-0c2d7f3b9a10",
				"event_title":"Amazônia Dev Summit",
				"issued_at":"2026-10-15T12:00:00Z"
			}}`,
		},
		{
			name:        "Success with expiry",
			requestBody: `{"code": "expiring-code"}`,
			mockSetup: func(m *mocks.TicketPreviewer) {
				m.On("Preview", mock.Anything, "expiring-code").Return(expiring, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody: `{"status":"OK","preview":{
				"ticket_id":"0b6c1d5e-6f9a-4b39-8d7e-1f2a3b4c5d6e",
				"user_id":"5a1e4c2b-9d3f-4e8a-b7c6-2d1e0f9a8b7c",
				"event_id":"6f1c2f4e-3c1b-4d5e-9a77-0c2d7f3b9a10",
				"event_title":"Amazônia Dev Summit",
				"issued_at":"2026-10-15T12:00:00Z",
				"expires_at":"2026-10-17T12:00:00Z"
			}}`,
		},
		{
			name:           "Missing code",
			requestBody:    `{"code": ""}`,
			mockSetup:      func(m *mocks.TicketPreviewer) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Code is a required field"}`,
		},
		{
			name:        "Malformed code",
			requestBody: `{"code": "%%%"}`,
			mockSetup: func(m *mocks.TicketPreviewer) {
				m.On("Preview", mock.Anything, "%%%").Return(credential.Claims{}, redemption.ErrInvalidCredential)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid ticket code"}`,
		},
		{
			name:        "Unexpected error",
			requestBody: `{"code": "opaque-code"}`,
			mockSetup: func(m *mocks.TicketPreviewer) {
				m.On("Preview", mock.Anything, "opaque-code").Return(credential.Claims{}, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to preview ticket"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockPreviewer := mocks.NewTicketPreviewer(t)
			tc.mockSetup(mockPreviewer)

			req, err := http.NewRequest(http.MethodPost, "/tickets/preview", bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			New(logger, mockPreviewer).ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
		})
	}
}
