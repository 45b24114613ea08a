package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/timmy/tubescope/internal/api/middleware"
	"github.com/timmy/tubescope/internal/config"
	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/notify"
	"github.com/timmy/tubescope/internal/ratelimit"
	"github.com/timmy/tubescope/internal/repository"
	"github.com/timmy/tubescope/internal/service"
)

type stubResolver struct{ id string }

func (s stubResolver) ResolveChannelID(context.Context, string) string { return s.id }

type stubFetcher struct {
	snapshot *domain.VideoSnapshot
}

func (s stubFetcher) FetchVideoData(context.Context, string) *domain.VideoSnapshot {
	return s.snapshot
}

func newTestRouter(t *testing.T, resolver service.ChannelResolver, fetcher service.VideoFetcher, limiter ratelimit.Limiter) (*gin.Engine, *repository.JobRepository, *repository.VideoRepository) {
	t.Helper()
	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "test.db"),
		MaxIdleConns: 1,
		MaxOpenConns: 1,
		AutoMigrate:  true,
	})
	if err != nil {
		t.Fatalf("InitDB: %v", err)
	}

	jobRepo := repository.NewJobRepository(db)
	videoRepo := repository.NewVideoRepository(db)

	router := SetupRouter(&RouterConfig{
		Mode:      "test",
		CORS:      middleware.CORSConfig{AllowAllOrigins: true},
		Limiter:   limiter,
		Channels:  service.NewChannelService(jobRepo, resolver, nil),
		Videos:    service.NewVideoService(fetcher, videoRepo, nil),
		Export:    service.NewExportService(videoRepo, nil, nil),
		VideoRepo: videoRepo,
		Notifier:  notify.NewBroker(),
	})
	return router, jobRepo, videoRepo
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(t, stubResolver{}, stubFetcher{}, nil)
	w := doJSON(router, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestStartIngestLifecycle(t *testing.T) {
	router, jobRepo, _ := newTestRouter(t, stubResolver{id: "UCabc123"}, stubFetcher{}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/channels/ingest", gin.H{
		"channel_url": "https://www.youtube.com/@creator",
		"max_videos":  5000,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		JobID  string `json:"job_id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Status != "queued" {
		t.Errorf("status = %q, want queued", resp.Status)
	}

	job, err := jobRepo.Fetch(context.Background(), resp.JobID)
	if err != nil || job == nil {
		t.Fatalf("job not stored: %v", err)
	}
	if job.MaxVideos != 1000 {
		t.Errorf("max videos not clamped: %d", job.MaxVideos)
	}

	// Status endpoint and its alias agree.
	for _, path := range []string{"/api/v1/channel-jobs/" + resp.JobID, "/status/" + resp.JobID} {
		w = doJSON(router, http.MethodGet, path, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
		if !strings.Contains(w.Body.String(), resp.JobID) {
			t.Errorf("%s response missing job id", path)
		}
	}

	w = doJSON(router, http.MethodGet, "/api/v1/channel-jobs/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown job status = %d, want 404", w.Code)
	}
}

func TestStartIngestByChannelID(t *testing.T) {
	// No resolution needed when the caller already knows the channel ID.
	router, jobRepo, _ := newTestRouter(t, stubResolver{id: ""}, stubFetcher{}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/channels/ingest", gin.H{
		"channel_id": "UCdirect456",
		"max_videos": 10,
	})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		JobID string `json:"job_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	job, err := jobRepo.Fetch(context.Background(), resp.JobID)
	if err != nil || job == nil {
		t.Fatalf("job not stored: %v", err)
	}
	if job.ChannelID != "UCdirect456" {
		t.Errorf("channel id = %q, want UCdirect456", job.ChannelID)
	}
	if job.MaxVideos != 10 {
		t.Errorf("max videos = %d, want 10", job.MaxVideos)
	}
}

func TestStartIngestRejectsBadInput(t *testing.T) {
	router, _, _ := newTestRouter(t, stubResolver{id: ""}, stubFetcher{}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/channels/ingest", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing channel_url: status = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/channels/ingest", gin.H{
		"channel_url": "https://vimeo.com/whoever",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("non-YouTube URL: status = %d, want 400", w.Code)
	}

	// Resolver finds nothing for this one.
	w = doJSON(router, http.MethodPost, "/api/v1/channels/ingest", gin.H{
		"channel_url": "https://www.youtube.com/@nobody",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unresolvable channel: status = %d, want 404", w.Code)
	}
}

func TestVideoFetchAndSave(t *testing.T) {
	snapshot := &domain.VideoSnapshot{
		YoutubeVideoID:  "dQw4w9WgXcQ",
		Title:           "A Video",
		Views:           100,
		ChannelUsername: "@creator",
		Subscribers:     5000,
	}
	router, _, videoRepo := newTestRouter(t, stubResolver{}, stubFetcher{snapshot: snapshot}, nil)

	w := doJSON(router, http.MethodPost, "/api/v1/videos/fetch", gin.H{
		"video_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("fetch status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := videoRepo.GetByYoutubeID(context.Background(), "dQw4w9WgXcQ"); err == nil {
		t.Error("fetch must not persist the video")
	}

	w = doJSON(router, http.MethodPost, "/api/v1/videos", gin.H{
		"video_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("save status = %d, body %s", w.Code, w.Body.String())
	}
	if _, err := videoRepo.GetByYoutubeID(context.Background(), "dQw4w9WgXcQ"); err != nil {
		t.Errorf("saved video not found: %v", err)
	}

	// Saving again updates in place.
	w = doJSON(router, http.MethodPost, "/api/v1/videos", gin.H{
		"video_url": "https://youtu.be/dQw4w9WgXcQ",
	})
	if w.Code != http.StatusOK {
		t.Errorf("re-save status = %d, want 200", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/api/v1/videos/fetch", gin.H{
		"video_url": "https://example.com/nope",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid video URL: status = %d, want 400", w.Code)
	}
}

func TestDataEndpoint(t *testing.T) {
	snapshot := &domain.VideoSnapshot{
		YoutubeVideoID:  "dQw4w9WgXcQ",
		Title:           "A Video",
		Views:           1000,
		Likes:           100,
		ChannelUsername: "@creator",
	}
	router, _, videoRepo := newTestRouter(t, stubResolver{}, stubFetcher{snapshot: snapshot}, nil)

	if _, err := videoRepo.SaveVideo(context.Background(), snapshot); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/data?page=1&per_page=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Videos []map[string]interface{} `json:"videos"`
		Total  int                      `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Total != 1 || len(resp.Videos) != 1 {
		t.Fatalf("total = %d, rows = %d", resp.Total, len(resp.Videos))
	}
	if resp.Videos[0]["channel_username"] != "@creator" {
		t.Errorf("channel join missing: %v", resp.Videos[0])
	}
	if resp.Videos[0]["like_rate"].(float64) != 10.0 {
		t.Errorf("like_rate = %v, want 10", resp.Videos[0]["like_rate"])
	}
}

func TestExportEndpointCSV(t *testing.T) {
	router, _, videoRepo := newTestRouter(t, stubResolver{}, stubFetcher{}, nil)
	if _, err := videoRepo.SaveVideo(context.Background(), &domain.VideoSnapshot{
		YoutubeVideoID: "dQw4w9WgXcQ", ChannelUsername: "@creator",
	}); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/api/v1/export?format=csv", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "=== videos ===") {
		t.Error("CSV export missing videos table")
	}

	w = doJSON(router, http.MethodGet, "/api/v1/export?format=pdf", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad format status = %d, want 400", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	router, _, _ := newTestRouter(t, stubResolver{}, stubFetcher{}, ratelimit.NewPerClient(60, 1))

	if w := doJSON(router, http.MethodGet, "/health", nil); w.Code != http.StatusOK {
		t.Fatalf("first request status = %d", w.Code)
	}
	if w := doJSON(router, http.MethodGet, "/health", nil); w.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", w.Code)
	}
}
