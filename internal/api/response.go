package api

import (
	"encoding/json"
	"net/http"
)

// writeJSON renders v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// errorResponse is the envelope every failed request is reported in.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError renders msg inside the error envelope.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
