package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// RespondJSON writes payload as JSON. A nil payload writes only the status.
func RespondJSON(w http.ResponseWriter, logger *zap.Logger, status int, payload any) {
	if payload == nil {
		w.WriteHeader(status)
		return
	}

	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Error encoding response to JSON", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondNull writes a JSON null, the representation of an absent optional value.
func RespondNull(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte("null"))
}

func RespondError(w http.ResponseWriter, logger *zap.Logger, status int, message string) {
	RespondJSON(w, logger, status, map[string]string{"error": message})
}
