package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"summacast/internal/config"
	"summacast/internal/models"
	"summacast/internal/store"
	"summacast/internal/summarize"
)

// FeedResolver locates the newest episode of a feed and ensures its audio is
// on disk.
type FeedResolver interface {
	Resolve(ctx context.Context, feedURL, downloadDir string) (*models.EpisodeCandidate, error)
}

// Transcriber turns an audio file into a transcript file.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Summarizer turns a transcript file into summary text.
type Summarizer interface {
	Summarize(ctx context.Context, transcriptPath string, opts summarize.Options) (string, error)
}

// Notifier delivers the summary email.
type Notifier interface {
	Deliver(ctx context.Context, subject, textBody, htmlBody, recipient string) error
}

// Driver walks each configured podcast through resolve -> transcribe ->
// summarize -> notify and records completed episodes. An episode row is
// written only after the notification went out, so a row existing means the
// subscriber was actually told about it.
type Driver struct {
	store            *store.Store
	resolver         FeedResolver
	transcriber      Transcriber
	summarizer       Summarizer
	notifier         Notifier
	downloadDir      string
	defaultRecipient string
	summaryLength    string
}

func NewDriver(s *store.Store, r FeedResolver, t Transcriber, sum Summarizer, n Notifier, cfg *config.Config) *Driver {
	return &Driver{
		store:            s,
		resolver:         r,
		transcriber:      t,
		summarizer:       sum,
		notifier:         n,
		downloadDir:      cfg.DownloadDir,
		defaultRecipient: cfg.DefaultRecipient,
		summaryLength:    cfg.SummaryLength,
	}
}

// ProcessAll runs one sweep over the given podcast configs, in order.
// Failures are contained per podcast: one broken feed never stops the rest
// of the sweep.
func (d *Driver) ProcessAll(ctx context.Context, configs []models.PodcastConfig) {
	for i := range configs {
		cfg := &configs[i]
		if err := d.ProcessPodcast(ctx, cfg); err != nil {
			log.Printf("Podcast %q (%s): %v", cfg.Name, cfg.RSSFeedURL, err)
		}
	}
}

// ProcessPodcast handles a single podcast for this cycle. It is idempotent:
// an episode whose URL is already recorded is skipped before any collaborator
// is invoked, and the uniqueness constraint on the store catches anything
// that races past that check.
func (d *Driver) ProcessPodcast(ctx context.Context, cfg *models.PodcastConfig) error {
	candidate, err := d.resolver.Resolve(ctx, cfg.RSSFeedURL, d.downloadDir)
	if err != nil {
		return fmt.Errorf("failed to resolve feed: %w", err)
	}
	if candidate == nil {
		log.Printf("No usable episode in feed %s", cfg.RSSFeedURL)
		return nil
	}

	exists, err := d.store.EpisodeExists(candidate.EpisodeURL)
	if err != nil {
		return fmt.Errorf("failed to check episode ledger: %w", err)
	}
	if exists {
		log.Printf("Episode %q already processed", candidate.Title)
		return nil
	}
	if !candidate.IsNewDownload {
		// Orphan download: audio on disk but never recorded, e.g. fetched
		// before the ledger existed or left behind by a failed run.
		log.Printf("Episode %q found on disk without a record, processing", candidate.Title)
	}

	transcriptPath, err := d.transcriber.Transcribe(ctx, candidate.FilePath)
	if err != nil {
		return fmt.Errorf("failed to transcribe %q: %w", candidate.Title, err)
	}

	summary, err := d.summarizer.Summarize(ctx, transcriptPath, summarize.Options{Length: d.summaryLength})
	if err != nil {
		return fmt.Errorf("failed to summarize %q: %w", candidate.Title, err)
	}

	recipient := d.defaultRecipient
	if cfg.RecipientEmail != nil && *cfg.RecipientEmail != "" {
		recipient = *cfg.RecipientEmail
	}
	subject := fmt.Sprintf("Podcast Summary: %s", candidate.Title)
	htmlBody := fmt.Sprintf("<p>Here is the summary for <b>%s</b>:</p><p>%s</p>", candidate.Title, summary)
	if err := d.notifier.Deliver(ctx, subject, summary, htmlBody, recipient); err != nil {
		// No record without a delivered notification. The transcript and
		// summary stay on disk for the retry.
		return fmt.Errorf("failed to notify for %q: %w", candidate.Title, err)
	}

	episode := &models.Episode{
		PodcastURL:     cfg.RSSFeedURL,
		EpisodeURL:     candidate.EpisodeURL,
		Title:          candidate.Title,
		PublishedAt:    candidate.PublishedAt,
		AudioPath:      candidate.FilePath,
		TranscriptPath: transcriptPath,
		SummaryPath:    summarize.SummaryPath(transcriptPath),
		SummaryText:    summary,
		ProcessedAt:    time.Now().UTC(),
	}
	if err := d.store.InsertEpisode(episode); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			// A concurrent run got there first; the constraint is the ledger.
			log.Printf("Episode %q was recorded by another run", candidate.Title)
			return nil
		}
		return fmt.Errorf("failed to record episode %q: %w", candidate.Title, err)
	}

	log.Printf("Episode %q processed and recorded", candidate.Title)
	return nil
}
