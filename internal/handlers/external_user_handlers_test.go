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

func TestExternalUserHandler_List(t *testing.T) {
	mockService := new(MockExternalUserService)
	mockService.On("Search", mock.Anything, "ali").Return([]*user.ExternalUser{
		{ID: "user_1", Name: "Alice", Active: true},
	}, nil)

	w := httptest.NewRecorder()
	handlers.NewExternalUserHandler(mockService).List(w, httptest.NewRequest(http.MethodGet, "/api/external-users?search=ali", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isActive":true`)
	assert.Contains(t, w.Body.String(), `"id":"user_1"`)
	mockService.AssertExpectations(t)
}

func TestExternalUserHandler_Get(t *testing.T) {
	mockService := new(MockExternalUserService)
	mockService.On("Get", mock.Anything, "missing").Return(nil, service.NewNotFound("external user", "missing"))

	w := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/external-users/missing", nil), map[string]string{"id": "missing"})
	handlers.NewExternalUserHandler(mockService).Get(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestExternalUserHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockExternalUserService)
		expectedStatus int
		success        bool
	}{
		{
			name: "success",
			setupMock: func(m *MockExternalUserService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in service.CreateExternalUserInput) bool {
					return in.ID == "user_1" && in.Name == "Alice" && in.Active == nil
				})).Return(&user.ExternalUser{ID: "user_1", Name: "Alice", Active: true}, nil)
			},
			expectedStatus: http.StatusOK,
			success:        true,
		},
		{
			name: "conflict",
			setupMock: func(m *MockExternalUserService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, service.NewConflict("external user", "user_1"))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "unexpected",
			setupMock: func(m *MockExternalUserService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockExternalUserService)
			tt.setupMock(mockService)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/external-users", strings.NewReader(`{"id":"user_1","name":"Alice"}`))
			handlers.NewExternalUserHandler(mockService).Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.success, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestExternalUserHandler_UpdateAndDelete(t *testing.T) {
	mockService := new(MockExternalUserService)
	mockService.On("Update", mock.Anything, "user_1", mock.MatchedBy(func(in service.UpdateExternalUserInput) bool {
		return in.Name == nil && in.Active != nil && !*in.Active
	})).Return(&user.ExternalUser{ID: "user_1", Name: "Alice"}, nil)
	mockService.On("Delete", mock.Anything, "user_1").Return(nil)
	mockService.On("Delete", mock.Anything, "user_2").Return(service.NewNotFound("external user", "user_2"))
	handler := handlers.NewExternalUserHandler(mockService)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/external-users/user_1", strings.NewReader(`{"isActive":false}`))
	handler.Update(w, withURLParams(req, map[string]string{"id": "user_1"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decodeBody(t, w)["success"])

	w = httptest.NewRecorder()
	handler.Delete(w, withURLParams(httptest.NewRequest(http.MethodDelete, "/api/external-users/user_1", nil), map[string]string{"id": "user_1"}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	handler.Delete(w, withURLParams(httptest.NewRequest(http.MethodDelete, "/api/external-users/user_2", nil), map[string]string{"id": "user_2"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, false, decodeBody(t, w)["success"])

	mockService.AssertExpectations(t)
}
