package resolver

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"summacast/internal/models"
)

// Resolver finds the most recent episode of a podcast feed and makes sure
// its audio file is present locally.
type Resolver struct {
	client *http.Client
	parser *gofeed.Parser
}

// New creates a Resolver whose feed fetches and downloads are bounded by
// timeout.
func New(timeout time.Duration) *Resolver {
	client := &http.Client{Timeout: timeout}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Resolver{client: client, parser: parser}
}

var illegalFilenameChars = regexp.MustCompile(`[<>:"/\\|?*!]`)

// SanitizeTitle strips characters that are not safe in file names.
func SanitizeTitle(title string) string {
	return strings.TrimSpace(illegalFilenameChars.ReplaceAllString(title, ""))
}

// Resolve fetches feedURL and returns its latest episode with the audio on
// disk, downloading it if necessary. A (nil, nil) return means the feed has
// nothing usable right now: no entries, or no audio enclosure on the newest
// one. That is not an error.
func (r *Resolver) Resolve(ctx context.Context, feedURL, downloadDir string) (*models.EpisodeCandidate, error) {
	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	if len(feed.Items) == 0 {
		log.Printf("No episodes found in feed %s", feedURL)
		return nil, nil
	}

	latest := feed.Items[0]
	var audioURL string
	for _, enclosure := range latest.Enclosures {
		if strings.HasPrefix(enclosure.Type, "audio/") {
			audioURL = enclosure.URL
			break
		}
	}
	if audioURL == "" {
		log.Printf("No audio enclosure found for episode %q in feed %s", latest.Title, feedURL)
		return nil, nil
	}

	filePath, err := audioFilePath(downloadDir, latest.Title, audioURL)
	if err != nil {
		return nil, err
	}

	candidate := &models.EpisodeCandidate{
		Title:       latest.Title,
		EpisodeURL:  audioURL,
		FilePath:    filePath,
		PublishedAt: latest.PublishedParsed,
	}

	if _, err := os.Stat(filePath); err == nil {
		log.Printf("File already exists: %s, skipping download", filePath)
		return candidate, nil
	}

	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create download directory %s: %w", downloadDir, err)
	}
	if err := r.download(ctx, audioURL, filePath); err != nil {
		return nil, err
	}
	candidate.IsNewDownload = true
	return candidate, nil
}

// audioFilePath derives the local file name from the sanitized episode title
// plus the extension of the enclosure URL's path, query string excluded.
func audioFilePath(downloadDir, title, audioURL string) (string, error) {
	parsed, err := url.Parse(audioURL)
	if err != nil {
		return "", fmt.Errorf("invalid enclosure URL %s: %w", audioURL, err)
	}
	ext := path.Ext(parsed.Path)
	if ext == "" {
		ext = ".mp3"
	}
	return filepath.Join(downloadDir, SanitizeTitle(title)+ext), nil
}

func (r *Resolver) download(ctx context.Context, audioURL, filePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build download request for %s: %w", audioURL, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download %s: %w", audioURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d downloading %s", resp.StatusCode, audioURL)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(filePath)
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filePath)
		return fmt.Errorf("failed to write %s: %w", filePath, err)
	}
	log.Printf("Downloaded %s to %s", audioURL, filePath)
	return nil
}
