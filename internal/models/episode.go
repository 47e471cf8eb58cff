package models

import "time"

// Episode is a fully processed podcast episode. A row exists only after the
// whole transcribe -> summarize -> notify chain succeeded for its EpisodeURL,
// which is the sole deduplication key.
type Episode struct {
	ID             int64      `db:"id" json:"id"`
	PodcastURL     string     `db:"podcast_url" json:"podcast_url"`
	EpisodeURL     string     `db:"episode_url" json:"episode_url"`
	Title          string     `db:"title" json:"title"`
	PublishedAt    *time.Time `db:"published_at" json:"published_at"`
	AudioPath      string     `db:"audio_path" json:"audio_path"`
	TranscriptPath string     `db:"transcript_path" json:"transcript_path"`
	SummaryPath    string     `db:"summary_path" json:"summary_path"`
	SummaryText    string     `db:"summary_text" json:"summary_text"`
	ProcessedAt    time.Time  `db:"processed_at" json:"processed_at"`
}
