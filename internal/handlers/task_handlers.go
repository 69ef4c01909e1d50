package handlers

import (
	"net/http"
	"time"

	"taskManager/internal/handlers/dto"
	"taskManager/internal/logger"
	"taskManager/internal/models/task"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: health check failed", err)
		responseWithPayload(w, http.StatusServiceUnavailable, toPayload("status", "unavailable"))
		return
	}
	responseWithPayload(w, http.StatusOK, toPayload("status", "ok"))
}

func (s *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerID(r)
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: wrong content type",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := s.TaskService.CreateTask(r.Context(), request.Input(), caller)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "create_task"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTask(created))
}

// ListTasks returns everything the caller created, is assigned to or has
// been shared, in that order.
func (s *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerID(r)
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	tasks, err := s.TaskService.TasksForCaller(r.Context(), caller, r.URL.Query().Get("userEmail"))
	if err != nil {
		logger.Error("HTTP: service error", err,
			zap.String("operation", "list_tasks"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: tasks listed",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (s *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := taskIDParam(r)
	if err != nil {
		logger.Warn("HTTP: invalid task id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid task id: "+err.Error())
		return
	}

	found, err := s.TaskService.GetTask(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "get_task"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task found",
		zap.Int64("task_id", found.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTask(found))
}

func (s *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if _, ok := callerID(r); !ok {
		responseWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := taskIDParam(r)
	if err != nil {
		logger.Warn("HTTP: invalid task id",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid task id: "+err.Error())
		return
	}

	if !checkContentType(r, "application/json") {
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var request dto.UpdateTaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "invalid update parameters: "+err.Error())
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), id, request.Input())
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "update_task"),
			zap.Int64("task_id", id))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task updated",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK, dto.FromTask(updated))
}

func (s *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, err := taskIDParam(r)
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid task id: "+err.Error())
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), id); err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: service error", err,
			zap.String("operation", "delete_task"),
			zap.Int64("task_id", id))

		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	logger.Info("HTTP_OUT: task deleted",
		zap.Int64("task_id", id),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	w.WriteHeader(http.StatusOK)
}

func (s *TaskHandler) TasksByStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	raw := chi.URLParam(r, "status")
	status, ok := task.ParseStatus(raw)
	if !ok {
		logger.Warn("HTTP: unknown status",
			zap.String("status", raw),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "unknown status: "+raw)
		return
	}

	tasks, err := s.TaskService.TasksByStatus(r.Context(), status)
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "tasks_by_status"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: tasks by status",
		zap.String("status", string(status)),
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)))

	responseWithJSON(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (s *TaskHandler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	stats, err := s.TaskService.Stats(r.Context())
	if err != nil {
		logger.Error("HTTP: service error", err, zap.String("operation", "stats"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: stats computed", zap.Duration("ms", time.Since(start)))
	responseWithJSON(w, http.StatusOK, dto.FromStats(stats))
}

func (s *TaskHandler) ShareTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	caller, ok := callerID(r)
	if !ok {
		responseWithError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := taskIDParam(r)
	if err != nil {
		responseWithFailure(w, http.StatusBadRequest, "invalid task id: "+err.Error())
		return
	}

	var request dto.ShareTaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		logger.Warn("HTTP: failed to read JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithFailure(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	shared, err := s.TaskService.ShareTask(r.Context(), id, request.UserIDs, caller)
	if err != nil {
		handleFailure(w, err)
		return
	}

	logger.Info("HTTP_OUT: task shared",
		zap.Int64("task_id", id),
		zap.Int("grantees", len(request.UserIDs)),
		zap.Duration("ms", time.Since(start)))

	responseWithPayload(w, http.StatusOK,
		toPayload("success", true),
		toPayload("message", "task shared"),
		toPayload("task", dto.FromTask(shared)),
	)
}
