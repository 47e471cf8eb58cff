package tasks

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	TypeCheckAllPodcasts = "podcasts:check_all"
	TypeProcessPodcast   = "podcast:process"
)

// NewCheckAllPodcastsTask creates the periodic sweep task. The worker loads
// the podcast configs fresh when it runs, so the payload is empty.
func NewCheckAllPodcastsTask() (*asynq.Task, error) {
	return asynq.NewTask(TypeCheckAllPodcasts, nil), nil
}

type ProcessPodcastTaskPayload struct {
	PodcastConfigID int64
}

// NewProcessPodcastTask creates a task that processes a single podcast
// outside the regular sweep.
func NewProcessPodcastTask(podcastConfigID int64) (*asynq.Task, error) {
	payload, err := json.Marshal(ProcessPodcastTaskPayload{PodcastConfigID: podcastConfigID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeProcessPodcast, payload), nil
}
