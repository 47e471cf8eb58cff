package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"summacast/internal/feed"
	"summacast/internal/models"
	"summacast/internal/pipeline"
)

func episodeID(r *http.Request) (int64, error) {
	vars := mux.Vars(r)
	return strconv.ParseInt(vars["id"], 10, 64)
}

func (h *Handlers) ListEpisodes(w http.ResponseWriter, r *http.Request) {
	episodes, err := h.store.ListEpisodes()
	if err != nil {
		log.Printf("Error listing episodes: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if episodes == nil {
		episodes = []models.Episode{}
	}
	writeJSON(w, http.StatusOK, episodes)
}

func (h *Handlers) GetEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid episode ID")
		return
	}

	episode, err := h.store.GetEpisode(id)
	if err != nil {
		log.Printf("Error getting episode %d: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if episode == nil {
		writeError(w, http.StatusNotFound, "Episode not found")
		return
	}
	writeJSON(w, http.StatusOK, episode)
}

// ReprocessEpisode re-summarizes a stored episode synchronously. A human is
// waiting on this call, so each failure mode maps to a distinct status
// instead of being absorbed into the pipeline's logs.
func (h *Handlers) ReprocessEpisode(w http.ResponseWriter, r *http.Request) {
	id, err := episodeID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid episode ID")
		return
	}

	episode, err := h.driver.Reprocess(r.Context(), id)
	if err != nil {
		log.Printf("Error reprocessing episode %d: %v", id, err)
		switch {
		case errors.Is(err, pipeline.ErrNotFound):
			writeError(w, http.StatusNotFound, "Episode not found")
		case errors.Is(err, pipeline.ErrTranscribeFailed):
			writeError(w, http.StatusBadGateway, "Failed to re-transcribe audio")
		case errors.Is(err, pipeline.ErrSummarizeFailed):
			writeError(w, http.StatusBadGateway, "Failed to generate summary")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to update summary")
		}
		return
	}
	writeJSON(w, http.StatusOK, episode)
}

// GetSummaryFeed serves the processed episodes as RSS.
func (h *Handlers) GetSummaryFeed(w http.ResponseWriter, r *http.Request) {
	episodes, err := h.store.ListEpisodes()
	if err != nil {
		log.Printf("Error listing episodes: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	rss, err := feed.GenerateRSS(h.baseURL, episodes)
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
