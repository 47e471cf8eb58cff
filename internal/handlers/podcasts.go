package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"summacast/internal/models"
	"summacast/internal/store"
	"summacast/pkg/tasks"
)

type createPodcastRequest struct {
	Name           string  `json:"name"`
	RSSFeedURL     string  `json:"rss_feed_url"`
	RecipientEmail *string `json:"recipient_email"`
}

func (h *Handlers) ListPodcasts(w http.ResponseWriter, r *http.Request) {
	configs, err := h.store.ListPodcastConfigs()
	if err != nil {
		log.Printf("Error listing podcast configs: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if configs == nil {
		configs = []models.PodcastConfig{}
	}
	writeJSON(w, http.StatusOK, configs)
}

func (h *Handlers) GetPodcast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}

	config, err := h.store.GetPodcastConfig(id)
	if err != nil {
		log.Printf("Error getting podcast config %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if config == nil {
		writeError(w, http.StatusNotFound, "Podcast not found")
		return
	}
	writeJSON(w, http.StatusOK, config)
}

func (h *Handlers) CreatePodcast(w http.ResponseWriter, r *http.Request) {
	var req createPodcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" || req.RSSFeedURL == "" {
		writeError(w, http.StatusBadRequest, "name and rss_feed_url are required")
		return
	}

	config := &models.PodcastConfig{
		Name:           req.Name,
		RSSFeedURL:     req.RSSFeedURL,
		RecipientEmail: req.RecipientEmail,
	}
	if err := h.store.InsertPodcastConfig(config); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			writeError(w, http.StatusConflict, "This feed is already configured")
			return
		}
		log.Printf("Error creating podcast config: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	// Kick off an immediate check so the first summary doesn't wait for the
	// next scheduled sweep.
	task, err := tasks.NewProcessPodcastTask(config.ID)
	if err != nil {
		log.Printf("Error creating task: %v", err)
	} else {
		if _, err := h.asynqClient.Enqueue(task); err != nil {
			log.Printf("Error enqueuing task: %v", err)
		}
	}

	writeJSON(w, http.StatusCreated, config)
}

func (h *Handlers) DeletePodcast(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid podcast ID")
		return
	}

	if err := h.store.DeletePodcastConfig(id); err != nil {
		log.Printf("Error deleting podcast config %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusOK)
}
