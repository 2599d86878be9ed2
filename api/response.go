package api

import (
	"encoding/json"
	"net/http"

	"github.com/evtimahovich/talentflow/internal/pipeline"
)

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", "err", err)
	}
}

// writeEngineError maps engine failures onto HTTP statuses: unknown ids are
// 404, everything else is a 500.
func writeEngineError(w http.ResponseWriter, err error) {
	if pipeline.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "internal error", http.StatusInternalServerError)
}
