package models

// PodcastConfig is a subscription to a podcast RSS feed. RecipientEmail
// overrides the process-wide default recipient when set.
type PodcastConfig struct {
	ID             int64   `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	RSSFeedURL     string  `db:"rss_feed_url" json:"rss_feed_url"`
	RecipientEmail *string `db:"recipient_email" json:"recipient_email"`
}
