package progression_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/2beens/expfit/internal/auth"
	"github.com/2beens/expfit/internal/progression"
	"github.com/2beens/expfit/internal/store"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestHandler_HandleProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	expReaderMock := NewMockexpReader(ctrl)
	h := progression.NewHandler(expReaderMock)

	testCases := []struct {
		name           string
		username       string
		mockExp        int
		mockErr        error
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Progress",
			username:       "serj",
			mockExp:        250,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"exp":250,"level":2,"nextLevelExp":300,"expRemaining":50}`,
		},
		{
			name:           "UnknownUser",
			username:       "ghost",
			mockErr:        store.ErrUnknownUser,
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "ReadError",
			username:       "serj",
			mockErr:        errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "NotLogged",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/progress", nil)
			if tc.username != "" {
				req = req.WithContext(auth.ContextWithUsername(req.Context(), tc.username))
				expReaderMock.EXPECT().
					Exp(gomock.Any(), tc.username).
					Return(tc.mockExp, tc.mockErr)
			}

			rr := httptest.NewRecorder()
			h.HandleProgress(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String())
			}
		})
	}
}
