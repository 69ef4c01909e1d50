package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	AuthService AuthService
}

func NewAuthHandler(authService AuthService) *AuthHandler {
	return &AuthHandler{AuthService: authService}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if err := decodeJSON(w, r, &request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.AuthService.Login(r.Context(), request.Username, request.Password)
	if err != nil {
		h.fail(w, r, "login", err)
		return
	}

	logger.Info("HTTP_OUT: user logged in",
		zap.Int64("user_id", result.User.ID),
		zap.Duration("ms", time.Since(start)))

	respondWithAuth(w, result, "login successful")
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if err := decodeJSON(w, r, &request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	result, err := h.AuthService.Register(r.Context(), service.RegisterInput{
		Username: request.Username,
		Email:    request.Email,
		Password: request.Password,
	})
	if err != nil {
		h.fail(w, r, "register", err)
		return
	}

	logger.Info("HTTP_OUT: user registered",
		zap.Int64("user_id", result.User.ID),
		zap.Duration("ms", time.Since(start)))

	respondWithAuth(w, result, "registration successful")
}

func (h *AuthHandler) fail(w http.ResponseWriter, r *http.Request, operation string, err error) {
	if handleBusinessError(w, err) {
		return
	}
	logger.Error("HTTP: service error", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, "internal error")
}

func respondWithAuth(w http.ResponseWriter, result *service.AuthResult, message string) {
	responseWithPayload(w, http.StatusOK,
		toPayload("token", result.Token),
		toPayload("user", dto.FromUser(result.User)),
		toPayload("message", message),
	)
}
