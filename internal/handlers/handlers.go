package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"summacast/internal/pipeline"
	"summacast/internal/store"
	"summacast/pkg/tasks"
)

// Handlers carries the dependencies of the dashboard API.
type Handlers struct {
	store       *store.Store
	driver      *pipeline.Driver
	asynqClient tasks.TaskEnqueuer
	baseURL     string
}

func New(s *store.Store, d *pipeline.Driver, asynqClient tasks.TaskEnqueuer, baseURL string) *Handlers {
	return &Handlers{
		store:       s,
		driver:      d,
		asynqClient: asynqClient,
		baseURL:     baseURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
