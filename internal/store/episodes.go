package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"summacast/internal/models"
)

// episodeRow is the raw table shape. Timestamps are stored as RFC3339 text
// so lexicographic ordering matches chronological ordering.
type episodeRow struct {
	ID             int64          `db:"id"`
	PodcastURL     string         `db:"podcast_url"`
	EpisodeURL     string         `db:"episode_url"`
	Title          string         `db:"title"`
	PublishedAt    sql.NullString `db:"published_at"`
	AudioPath      string         `db:"audio_path"`
	TranscriptPath string         `db:"transcript_path"`
	SummaryPath    string         `db:"summary_path"`
	SummaryText    string         `db:"summary_text"`
	ProcessedAt    string         `db:"processed_at"`
}

func (r *episodeRow) toModel() *models.Episode {
	episode := &models.Episode{
		ID:             r.ID,
		PodcastURL:     r.PodcastURL,
		EpisodeURL:     r.EpisodeURL,
		Title:          r.Title,
		AudioPath:      r.AudioPath,
		TranscriptPath: r.TranscriptPath,
		SummaryPath:    r.SummaryPath,
		SummaryText:    r.SummaryText,
		ProcessedAt:    parseTime(r.ProcessedAt),
	}
	if r.PublishedAt.Valid {
		published := parseTime(r.PublishedAt.String)
		episode.PublishedAt = &published
	}
	return episode
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

// InsertEpisode records a completed episode. Returns ErrDuplicate when an
// episode with the same URL is already recorded; the existing row is never
// overwritten.
func (s *Store) InsertEpisode(episode *models.Episode) error {
	var published any
	if episode.PublishedAt != nil {
		published = formatTime(*episode.PublishedAt)
	}
	query := `
		INSERT INTO episodes (
			podcast_url, episode_url, title, published_at,
			audio_path, transcript_path, summary_path, summary_text, processed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query,
		episode.PodcastURL,
		episode.EpisodeURL,
		episode.Title,
		published,
		episode.AudioPath,
		episode.TranscriptPath,
		episode.SummaryPath,
		episode.SummaryText,
		formatTime(episode.ProcessedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert episode: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		episode.ID = id
	}
	return nil
}

// EpisodeExists is the ledger's existence check, keyed solely on the
// episode's canonical audio URL.
func (s *Store) EpisodeExists(episodeURL string) (bool, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(1) FROM episodes WHERE episode_url = ?", episodeURL)
	if err != nil {
		return false, fmt.Errorf("failed to check episode existence: %w", err)
	}
	return count > 0, nil
}

// GetEpisode returns the episode with the given id, or nil if there is none.
func (s *Store) GetEpisode(id int64) (*models.Episode, error) {
	row := episodeRow{}
	err := s.db.Get(&row, "SELECT * FROM episodes WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get episode %d: %w", id, err)
	}
	return row.toModel(), nil
}

// GetEpisodeByURL returns the episode with the given URL, or nil if there is
// none.
func (s *Store) GetEpisodeByURL(episodeURL string) (*models.Episode, error) {
	row := episodeRow{}
	err := s.db.Get(&row, "SELECT * FROM episodes WHERE episode_url = ?", episodeURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get episode by url %s: %w", episodeURL, err)
	}
	return row.toModel(), nil
}

// ListEpisodes returns all episodes, newest first.
func (s *Store) ListEpisodes() ([]models.Episode, error) {
	var rows []episodeRow
	err := s.db.Select(&rows, "SELECT * FROM episodes ORDER BY published_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	episodes := make([]models.Episode, 0, len(rows))
	for i := range rows {
		episodes = append(episodes, *rows[i].toModel())
	}
	return episodes, nil
}

// UpdateEpisodeSummary rewrites summary_text and processed_at in place. All
// other fields are immutable after creation.
func (s *Store) UpdateEpisodeSummary(id int64, summary string, processedAt time.Time) error {
	res, err := s.db.Exec(
		"UPDATE episodes SET summary_text = ?, processed_at = ? WHERE id = ?",
		summary, formatTime(processedAt), id,
	)
	if err != nil {
		return fmt.Errorf("failed to update episode %d summary: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update episode %d summary: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("no episode with id %d", id)
	}
	return nil
}
