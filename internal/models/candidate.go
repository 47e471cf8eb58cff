package models

import "time"

// EpisodeCandidate is the most recent episode of a feed as seen by the
// resolver, with its audio already on disk. It is transient: consumed by the
// pipeline within the same cycle and never persisted.
type EpisodeCandidate struct {
	Title       string
	EpisodeURL  string
	FilePath    string
	PublishedAt *time.Time
	// IsNewDownload is false when the audio file was already present. Such a
	// candidate still describes the latest episode and may be an orphan
	// download that was never recorded.
	IsNewDownload bool
}
