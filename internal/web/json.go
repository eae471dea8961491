package web

import (
	"encoding/json"
	"net/http"
)

// healthResponse is the liveness probe body.
type healthResponse struct {
	OK bool `json:"ok"`
}

// flashResponse reports a completed flash pattern.
type flashResponse struct {
	Status   string  `json:"status"`
	Duration float64 `json:"duration"` // seconds
	Flashes  int     `json:"flashes"`
}

// statusResponse reports a simple lamp operation outcome.
type statusResponse struct {
	Status string `json:"status"`
}

// errorResponse reports a failed request.
type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
