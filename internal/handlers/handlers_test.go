package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"summacast/internal/config"
	"summacast/internal/models"
	"summacast/internal/pipeline"
	"summacast/internal/store"
	"summacast/internal/summarize"
	"summacast/internal/test"
	"summacast/pkg/tasks"
)

type stubResolver struct{}

func (s *stubResolver) Resolve(ctx context.Context, feedURL, downloadDir string) (*models.EpisodeCandidate, error) {
	return nil, nil
}

type stubTranscriber struct {
	err   error
	calls int
}

func (s *stubTranscriber) Transcribe(ctx context.Context, audioPath string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + ".txt", nil
}

type stubSummarizer struct {
	text string
	err  error
}

func (s *stubSummarizer) Summarize(ctx context.Context, transcriptPath string, opts summarize.Options) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

type stubNotifier struct{}

func (s *stubNotifier) Deliver(ctx context.Context, subject, textBody, htmlBody, recipient string) error {
	return nil
}

type testEnv struct {
	store       *store.Store
	summarizer  *stubSummarizer
	transcriber *stubTranscriber
	enqueuer    *test.MockTaskEnqueuer
	router      *mux.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg := &config.Config{
		DownloadDir:      t.TempDir(),
		DefaultRecipient: "listener@example.com",
		SummaryLength:    "medium",
	}
	summarizer := &stubSummarizer{text: "fresh summary"}
	transcriber := &stubTranscriber{}
	driver := pipeline.NewDriver(s, &stubResolver{}, transcriber, summarizer, &stubNotifier{}, cfg)

	enqueuer := &test.MockTaskEnqueuer{}
	h := New(s, driver, enqueuer, "http://localhost:8080")

	r := mux.NewRouter()
	r.HandleFunc("/api/podcasts", h.ListPodcasts).Methods("GET")
	r.HandleFunc("/api/podcasts", h.CreatePodcast).Methods("POST")
	r.HandleFunc("/api/podcasts/{id}", h.GetPodcast).Methods("GET")
	r.HandleFunc("/api/podcasts/{id}", h.DeletePodcast).Methods("DELETE")
	r.HandleFunc("/api/episodes", h.ListEpisodes).Methods("GET")
	r.HandleFunc("/api/episodes/{id}", h.GetEpisode).Methods("GET")
	r.HandleFunc("/api/episodes/{id}/reprocess", h.ReprocessEpisode).Methods("POST")
	r.HandleFunc("/feed.rss", h.GetSummaryFeed).Methods("GET")

	return &testEnv{store: s, summarizer: summarizer, transcriber: transcriber, enqueuer: enqueuer, router: r}
}

func (e *testEnv) do(method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// storedEpisode inserts an episode whose audio and transcript files exist on
// disk, mirroring the state left behind by a completed pipeline run.
func storedEpisode(t *testing.T, e *testEnv, withTranscript bool) *models.Episode {
	t.Helper()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "Morning Show.mp3")
	require.NoError(t, os.WriteFile(audioPath, []byte("audio"), 0o644))
	transcriptPath := filepath.Join(dir, "Morning Show.txt")
	if withTranscript {
		require.NoError(t, os.WriteFile(transcriptPath, []byte("transcript"), 0o644))
	}

	published := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	ep := &models.Episode{
		PodcastURL:     "http://feeds.example.com/morning.xml",
		EpisodeURL:     "http://cdn.example.com/morning-42.mp3",
		Title:          "Morning Show",
		PublishedAt:    &published,
		AudioPath:      audioPath,
		TranscriptPath: transcriptPath,
		SummaryPath:    filepath.Join(dir, "Morning Show.summary.txt"),
		SummaryText:    "old summary",
		ProcessedAt:    time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, e.store.InsertEpisode(ep))
	return ep
}

func TestCreatePodcast(t *testing.T) {
	e := newTestEnv(t)

	body := []byte(`{"name":"Morning Show","rss_feed_url":"http://feeds.example.com/morning.xml"}`)
	rr := e.do("POST", "/api/podcasts", body)

	assert.Equal(t, http.StatusCreated, rr.Code)

	var created models.PodcastConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Morning Show", created.Name)

	// Adding a podcast triggers an immediate check.
	require.Len(t, e.enqueuer.EnqueuedTasks, 1)
	assert.Equal(t, tasks.TypeProcessPodcast, e.enqueuer.EnqueuedTasks[0].Type())
}

func TestCreatePodcastValidation(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do("POST", "/api/podcasts", []byte(`{"name":"No Feed"}`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = e.do("POST", "/api/podcasts", []byte(`not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Empty(t, e.enqueuer.EnqueuedTasks)
}

func TestCreatePodcastDuplicateFeed(t *testing.T) {
	e := newTestEnv(t)

	body := []byte(`{"name":"Morning Show","rss_feed_url":"http://feeds.example.com/morning.xml"}`)
	rr := e.do("POST", "/api/podcasts", body)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = e.do("POST", "/api/podcasts", body)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestCreatePodcastEnqueueFailureStillCreated(t *testing.T) {
	e := newTestEnv(t)
	e.enqueuer.EnqueueErr = errors.New("redis down")

	body := []byte(`{"name":"Morning Show","rss_feed_url":"http://feeds.example.com/morning.xml"}`)
	rr := e.do("POST", "/api/podcasts", body)

	// Enqueue failure is logged, not surfaced: the config is saved and the
	// next scheduled sweep will pick it up.
	assert.Equal(t, http.StatusCreated, rr.Code)

	configs, err := e.store.ListPodcastConfigs()
	require.NoError(t, err)
	assert.Len(t, configs, 1)
}

func TestListAndGetPodcasts(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do("GET", "/api/podcasts", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "[]\n", rr.Body.String())

	body := []byte(`{"name":"Morning Show","rss_feed_url":"http://feeds.example.com/morning.xml","recipient_email":"alice@example.com"}`)
	rr = e.do("POST", "/api/podcasts", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.PodcastConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = e.do("GET", fmt.Sprintf("/api/podcasts/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var got models.PodcastConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.NotNil(t, got.RecipientEmail)
	assert.Equal(t, "alice@example.com", *got.RecipientEmail)

	rr = e.do("GET", "/api/podcasts/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = e.do("GET", "/api/podcasts/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestDeletePodcast(t *testing.T) {
	e := newTestEnv(t)

	body := []byte(`{"name":"Morning Show","rss_feed_url":"http://feeds.example.com/morning.xml"}`)
	rr := e.do("POST", "/api/podcasts", body)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created models.PodcastConfig
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = e.do("DELETE", fmt.Sprintf("/api/podcasts/%d", created.ID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	configs, err := e.store.ListPodcastConfigs()
	require.NoError(t, err)
	assert.Empty(t, configs)
}

func TestListAndGetEpisodes(t *testing.T) {
	e := newTestEnv(t)
	ep := storedEpisode(t, e, true)

	rr := e.do("GET", "/api/episodes", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	var episodes []models.Episode
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &episodes))
	require.Len(t, episodes, 1)
	assert.Equal(t, ep.Title, episodes[0].Title)

	rr = e.do("GET", fmt.Sprintf("/api/episodes/%d", ep.ID), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = e.do("GET", "/api/episodes/999", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReprocessEpisode(t *testing.T) {
	e := newTestEnv(t)
	ep := storedEpisode(t, e, true)

	rr := e.do("POST", fmt.Sprintf("/api/episodes/%d/reprocess", ep.ID), nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	var got models.Episode
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "fresh summary", got.SummaryText)
	assert.Equal(t, 0, e.transcriber.calls)

	stored, err := e.store.GetEpisode(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, "fresh summary", stored.SummaryText)
}

func TestReprocessEpisodeNotFound(t *testing.T) {
	e := newTestEnv(t)

	rr := e.do("POST", "/api/episodes/999/reprocess", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestReprocessEpisodeSummarizeFailure(t *testing.T) {
	e := newTestEnv(t)
	ep := storedEpisode(t, e, true)
	e.summarizer.err = errors.New("model unavailable")

	rr := e.do("POST", fmt.Sprintf("/api/episodes/%d/reprocess", ep.ID), nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)

	stored, err := e.store.GetEpisode(ep.ID)
	require.NoError(t, err)
	assert.Equal(t, "old summary", stored.SummaryText)
}

func TestReprocessEpisodeTranscribeFailure(t *testing.T) {
	e := newTestEnv(t)
	ep := storedEpisode(t, e, false)
	e.transcriber.err = errors.New("whisper crashed")

	rr := e.do("POST", fmt.Sprintf("/api/episodes/%d/reprocess", ep.ID), nil)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGetSummaryFeed(t *testing.T) {
	e := newTestEnv(t)
	storedEpisode(t, e, true)

	rr := e.do("GET", "/feed.rss", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/rss+xml", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), "<title>Morning Show</title>")
	assert.Contains(t, rr.Body.String(), "old summary")
}
