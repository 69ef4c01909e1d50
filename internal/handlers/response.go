package handlers

import (
	"encoding/json"
	"net/http"

	"taskManager/internal/logger"
)

type Payload struct {
	Key     string
	Payload any
}

func toPayload(key string, pl any) Payload {
	return Payload{Key: key, Payload: pl}
}

func toJSON(storage map[string]any, payload Payload) {
	storage[payload.Key] = payload.Payload
}

// responseWithPayload writes a JSON object assembled from the payloads.
func responseWithPayload(w http.ResponseWriter, code int, payload ...Payload) {
	storage := make(map[string]any, len(payload))
	for _, pl := range payload {
		toJSON(storage, pl)
	}
	responseWithJSON(w, code, storage)
}

func responseWithJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("HTTP: failed to encode response", err)
	}
}

func responseWithError(w http.ResponseWriter, code int, message string) {
	responseWithPayload(w, code, toPayload("error", message))
}

// responseWithFailure is the {success, message} shape used by the share and
// external user endpoints.
func responseWithFailure(w http.ResponseWriter, code int, message string) {
	responseWithPayload(w, code,
		toPayload("success", false),
		toPayload("message", message),
	)
}
