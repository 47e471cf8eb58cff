package main

import (
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"summacast/internal/config"
	"summacast/internal/notify"
	"summacast/internal/pipeline"
	"summacast/internal/resolver"
	"summacast/internal/store"
	"summacast/internal/summarize"
	"summacast/internal/transcribe"
	"summacast/internal/worker"
	"summacast/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file")
	}

	cfg := config.Load()
	if err := cfg.ValidateMail(); err != nil {
		// A worker that cannot send mail can never record an episode, so
		// refuse to start rather than spin uselessly.
		log.Fatalf("invalid mail configuration: %v", err)
	}

	s, err := store.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("could not open store: %v", err)
	}
	defer s.Close()

	driver := pipeline.NewDriver(
		s,
		resolver.New(cfg.FetchTimeout),
		transcribe.New(cfg.WhisperModel, cfg.TranscribeTimeout),
		summarize.New(cfg.GeminiModel, cfg.SummarizeTimeout),
		notify.New(cfg.AhaSendURL, cfg.AhaSendAPIKey, cfg.SenderName, cfg.SenderEmail, cfg.NotifyTimeout),
		cfg,
	)

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 1, // Process one episode at a time; whisper saturates the machine
			Queues: map[string]int{
				"high":    2,
				"default": 1,
			},
			// Custom retry delay function for exponential backoff
			RetryDelayFunc: func(n int, err error, task *asynq.Task) time.Duration {
				// Calculate exponential backoff delay
				delay := time.Duration(5*60*1000) * time.Millisecond        // 5 minutes base
				maxDelay := time.Duration(24*60*60*1000) * time.Millisecond // 24 hours max

				// Exponential backoff: 5min, 10min, 20min, 40min, 80min, etc.
				for i := 0; i < n; i++ {
					delay *= 2
					if delay > maxDelay {
						delay = maxDelay
						break
					}
				}

				log.Printf("Task %s failed %d times, retrying in %v", task.Type(), n+1, delay)
				return delay
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(s, driver)

	mux.HandleFunc(tasks.TypeCheckAllPodcasts, taskHandler.HandleCheckAllPodcastsTask)
	mux.HandleFunc(tasks.TypeProcessPodcast, taskHandler.HandleProcessPodcastTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
