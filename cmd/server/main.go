package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"summacast/internal/config"
	"summacast/internal/handlers"
	"summacast/internal/middleware"
	"summacast/internal/notify"
	"summacast/internal/pipeline"
	"summacast/internal/resolver"
	"summacast/internal/store"
	"summacast/internal/summarize"
	"summacast/internal/transcribe"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg := config.Load()
	if cfg.APIToken == "" {
		log.Fatal("API_TOKEN must be set")
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("could not open store: %v", err)
	}
	defer s.Close()

	// The reprocess endpoint runs transcription and summarization inline, so
	// the server needs the same pipeline collaborators as the worker.
	driver := pipeline.NewDriver(
		s,
		resolver.New(cfg.FetchTimeout),
		transcribe.New(cfg.WhisperModel, cfg.TranscribeTimeout),
		summarize.New(cfg.GeminiModel, cfg.SummarizeTimeout),
		notify.New(cfg.AhaSendURL, cfg.AhaSendAPIKey, cfg.SenderName, cfg.SenderEmail, cfg.NotifyTimeout),
		cfg,
	)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	h := handlers.New(s, driver, client, cfg.BaseURL)

	r := mux.NewRouter()
	r.HandleFunc("/feed.rss", h.GetSummaryFeed).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.APIToken))
	rl := middleware.NewRateLimiterMiddleware(rate.Limit(5), 10)
	api.Use(rl.Middleware)

	api.HandleFunc("/podcasts", h.ListPodcasts).Methods("GET")
	api.HandleFunc("/podcasts", h.CreatePodcast).Methods("POST")
	api.HandleFunc("/podcasts/{id}", h.GetPodcast).Methods("GET")
	api.HandleFunc("/podcasts/{id}", h.DeletePodcast).Methods("DELETE")
	api.HandleFunc("/episodes", h.ListEpisodes).Methods("GET")
	api.HandleFunc("/episodes/{id}", h.GetEpisode).Methods("GET")
	api.HandleFunc("/episodes/{id}/reprocess", h.ReprocessEpisode).Methods("POST")

	log.Printf("Server starting on %s (commit: %s)", cfg.ListenAddr, CommitSHA)
	if err := http.ListenAndServe(cfg.ListenAddr, r); err != nil {
		log.Fatal(err)
	}
}
