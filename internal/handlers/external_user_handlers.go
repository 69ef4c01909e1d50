package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ExternalUserHandler struct {
	Service ExternalUserService
}

func NewExternalUserHandler(svc ExternalUserService) *ExternalUserHandler {
	return &ExternalUserHandler{Service: svc}
}

// List answers both the plain listing and ?search=.
func (h *ExternalUserHandler) List(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.Service.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "list_external_users"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: external users listed",
		zap.Int("count", len(users)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromExternalUserList(users))
}

func (h *ExternalUserHandler) Active(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.Service.Active(r.Context())
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "active_external_users"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromExternalUserList(users))
}

func (h *ExternalUserHandler) Get(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	u, err := h.Service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err, zap.String("operation", "get_external_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromExternalUser(u))
}

func (h *ExternalUserHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateExternalUserRequest
	if err := decodeJSON(w, r, &request); err != nil {
		responseWithFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.Service.Create(r.Context(), service.CreateExternalUserInput{
		ID:     request.ID,
		Name:   request.Name,
		Active: request.IsActive,
	})
	if err != nil {
		handleFailure(w, err)
		return
	}

	logger.Info("HTTP_OUT: external user created",
		zap.String("external_user_id", created.ID),
		zap.Duration("ms", time.Since(start)))

	responseWithPayload(w, http.StatusOK,
		toPayload("success", true),
		toPayload("message", "user added"),
		toPayload("user", dto.FromExternalUser(created)),
	)
}

func (h *ExternalUserHandler) Update(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.UpdateExternalUserRequest
	if err := decodeJSON(w, r, &request); err != nil {
		responseWithFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	updated, err := h.Service.Update(r.Context(), id, service.UpdateExternalUserInput{
		Name:   request.Name,
		Active: request.IsActive,
	})
	if err != nil {
		handleFailure(w, err)
		return
	}

	logger.Info("HTTP_OUT: external user updated",
		zap.String("external_user_id", id),
		zap.Duration("ms", time.Since(start)))

	responseWithPayload(w, http.StatusOK,
		toPayload("success", true),
		toPayload("message", "user updated"),
		toPayload("user", dto.FromExternalUser(updated)),
	)
}

func (h *ExternalUserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id := chi.URLParam(r, "id")
	if err := h.Service.Delete(r.Context(), id); err != nil {
		handleFailure(w, err)
		return
	}

	responseWithPayload(w, http.StatusOK,
		toPayload("success", true),
		toPayload("message", "user deleted"),
	)
}
