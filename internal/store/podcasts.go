package store

import (
	"database/sql"
	"errors"
	"fmt"

	"summacast/internal/models"
)

// ListPodcastConfigs returns every configured podcast. The scheduler sweep
// calls this fresh on each cycle so dashboard edits take effect without a
// restart.
func (s *Store) ListPodcastConfigs() ([]models.PodcastConfig, error) {
	var configs []models.PodcastConfig
	err := s.db.Select(&configs, "SELECT * FROM podcast_configs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list podcast configs: %w", err)
	}
	return configs, nil
}

// InsertPodcastConfig adds a subscription. Returns ErrDuplicate when the
// feed URL is already configured.
func (s *Store) InsertPodcastConfig(config *models.PodcastConfig) error {
	res, err := s.db.Exec(
		"INSERT INTO podcast_configs (name, rss_feed_url, recipient_email) VALUES (?, ?, ?)",
		config.Name, config.RSSFeedURL, config.RecipientEmail,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to insert podcast config: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		config.ID = id
	}
	return nil
}

// GetPodcastConfig returns the config with the given id, or nil if there is
// none.
func (s *Store) GetPodcastConfig(id int64) (*models.PodcastConfig, error) {
	config := &models.PodcastConfig{}
	err := s.db.Get(config, "SELECT * FROM podcast_configs WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get podcast config %d: %w", id, err)
	}
	return config, nil
}

// DeletePodcastConfig removes a subscription. Deleting an unknown id is not
// an error.
func (s *Store) DeletePodcastConfig(id int64) error {
	_, err := s.db.Exec("DELETE FROM podcast_configs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete podcast config %d: %w", id, err)
	}
	return nil
}
