package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"taskManager/internal/handlers"
	"taskManager/internal/models/user"
	"taskManager/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Login(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name: "success",
			body: `{"username":"demo","password":"demo123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "demo", "demo123").Return(&service.AuthResult{
					Token: "signed.jwt.token",
					User:  &user.User{ID: 1, Username: "demo", Email: "demo@example.com", PasswordHash: "hash"},
				}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "wrong password",
			body: `{"username":"demo","password":"nope"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "demo", "nope").
					Return(nil, service.NewUnauthenticated("invalid username or password"))
			},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name: "store failure",
			body: `{"username":"demo","password":"demo123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Login", mock.Anything, "demo", "demo123").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "bad body",
			body:           `not json`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockAuthService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(tt.body))
			handlers.NewAuthHandler(mockService).Login(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_Register_HidesPassword(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Register", mock.Anything, service.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	}).Return(&service.AuthResult{
		Token: "signed.jwt.token",
		User:  &user.User{ID: 2, Username: "alice", Email: "alice@example.com", PasswordHash: "$2a$hash"},
	}, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret1"}`))
	handlers.NewAuthHandler(mockService).Register(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "$2a$hash")

	body := decodeBody(t, w)
	assert.Equal(t, "signed.jwt.token", body["token"])
	assert.NotEmpty(t, body["message"])
	u := body["user"].(map[string]any)
	assert.Equal(t, "alice", u["username"])
	assert.Equal(t, "alice", u["name"])
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	mockService := new(MockAuthService)
	mockService.On("Register", mock.Anything, mock.Anything).
		Return(nil, service.NewBusinessError(service.CodeConflict, "username or email is already taken"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"username":"alice","email":"alice@example.com","password":"secret1"}`))
	handlers.NewAuthHandler(mockService).Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}
