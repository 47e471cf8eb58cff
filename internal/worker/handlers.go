package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"summacast/internal/pipeline"
	"summacast/internal/store"
	"summacast/pkg/tasks"
)

// TaskHandler executes pipeline tasks delivered by asynq.
type TaskHandler struct {
	store  *store.Store
	driver *pipeline.Driver
}

func NewTaskHandler(s *store.Store, d *pipeline.Driver) *TaskHandler {
	return &TaskHandler{store: s, driver: d}
}

// HandleCheckAllPodcastsTask runs one full sweep. Podcast configs are
// re-read on every cycle so dashboard edits take effect without a restart.
func (h *TaskHandler) HandleCheckAllPodcastsTask(ctx context.Context, t *asynq.Task) error {
	configs, err := h.store.ListPodcastConfigs()
	if err != nil {
		// Skip this cycle; the scheduler fires again next interval.
		log.Printf("Skipping cycle, failed to load podcast configs: %v", err)
		return fmt.Errorf("failed to load podcast configs: %v: %w", err, asynq.SkipRetry)
	}
	if len(configs) == 0 {
		log.Println("No podcasts configured, skipping cycle")
		return nil
	}

	log.Printf("Starting sweep over %d podcasts", len(configs))
	h.driver.ProcessAll(ctx, configs)
	log.Println("Sweep finished")
	return nil
}

// HandleProcessPodcastTask processes a single podcast immediately, outside
// the regular sweep. Used right after a podcast is added.
func (h *TaskHandler) HandleProcessPodcastTask(ctx context.Context, t *asynq.Task) error {
	var p tasks.ProcessPodcastTaskPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal task payload: %w", err)
	}

	cfg, err := h.store.GetPodcastConfig(p.PodcastConfigID)
	if err != nil {
		return fmt.Errorf("failed to get podcast config %d: %w", p.PodcastConfigID, err)
	}
	if cfg == nil {
		// Deleted since the task was enqueued. Nothing to do.
		log.Printf("Podcast config %d no longer exists, skipping", p.PodcastConfigID)
		return nil
	}

	return h.driver.ProcessPodcast(ctx, cfg)
}
