package feed

import (
	"time"

	"github.com/eduncan911/podcast"

	"summacast/internal/models"
)

// GenerateRSS renders the processed episodes as an RSS feed of summaries so
// feed readers can follow them alongside the email notifications.
func GenerateRSS(baseURL string, episodes []models.Episode) (string, error) {
	now := time.Now()
	p := podcast.New(
		"Summacast",
		baseURL+"/feed.rss",
		"Summaries of your podcast subscriptions.",
		&now, &now,
	)

	for i := range episodes {
		episode := &episodes[i]
		item := podcast.Item{
			Title:       episode.Title,
			Description: episode.SummaryText,
			Link:        episode.EpisodeURL,
		}
		if episode.PublishedAt != nil {
			item.PubDate = episode.PublishedAt
		} else {
			processed := episode.ProcessedAt
			item.PubDate = &processed
		}
		if _, err := p.AddItem(item); err != nil {
			return "", err
		}
	}

	return p.String(), nil
}
