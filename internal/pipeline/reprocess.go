package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"summacast/internal/models"
	"summacast/internal/summarize"
)

// Reprocess failure modes. These surface to the dashboard caller, who is
// waiting synchronously on the result.
var (
	ErrNotFound          = errors.New("episode not found")
	ErrTranscribeFailed  = errors.New("transcription failed")
	ErrSummarizeFailed   = errors.New("summarization failed")
	ErrStoreUpdateFailed = errors.New("could not update episode record")
)

// Reprocess forces a fresh summary for a stored episode. The transcript is
// regenerated only when its file is gone; the summary is always regenerated.
// Only summary_text and processed_at change on the record. No notification
// is sent: this path refreshes stored state, it does not re-announce the
// episode.
func (d *Driver) Reprocess(ctx context.Context, episodeID int64) (*models.Episode, error) {
	episode, err := d.store.GetEpisode(episodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up episode %d: %w", episodeID, err)
	}
	if episode == nil {
		return nil, ErrNotFound
	}

	transcriptPath := episode.TranscriptPath
	if _, statErr := os.Stat(transcriptPath); statErr != nil {
		log.Printf("Transcript missing for episode %d, re-transcribing %s", episodeID, episode.AudioPath)
		transcriptPath, err = d.transcriber.Transcribe(ctx, episode.AudioPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTranscribeFailed, err)
		}
	}

	summary, err := d.summarizer.Summarize(ctx, transcriptPath, summarize.Options{Length: d.summaryLength})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummarizeFailed, err)
	}

	processedAt := time.Now().UTC()
	if err := d.store.UpdateEpisodeSummary(episodeID, summary, processedAt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUpdateFailed, err)
	}

	episode.SummaryText = summary
	episode.ProcessedAt = processedAt
	log.Printf("Episode %d re-summarized", episodeID)
	return episode, nil
}
