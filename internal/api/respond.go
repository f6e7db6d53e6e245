package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/sells-group/ev-stations-api/internal/store"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("encode response", zap.Error(err))
	}
}

// writeError renders {"detail": ...}, the error shape the catalog's clients
// already consume.
func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeStoreError maps domain errors to statuses; anything unexpected is a
// logged 500.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Station not found")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "Station id already exists")
	default:
		zap.L().Error("store operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}
