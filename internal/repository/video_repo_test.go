package repository

import (
	"context"
	"testing"

	"github.com/timmy/tubescope/internal/domain"
)

func testSnapshot() *domain.VideoSnapshot {
	return &domain.VideoSnapshot{
		YoutubeVideoID:  "dQw4w9WgXcQ",
		Title:           "First upload",
		Description:     "hello",
		Views:           100,
		Likes:           10,
		Comments:        2,
		Posted:          "2024-03-01",
		VideoLength:     "0:03:32",
		Transcript:      "never gonna",
		ChannelUsername: "@creator",
		Subscribers:     5000,
	}
}

func TestSaveVideoCreatesThenRefreshes(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	first, err := repo.SaveVideo(ctx, testSnapshot())
	if err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}
	if !first.Created {
		t.Error("first save should create the video")
	}

	snapshot := testSnapshot()
	snapshot.Views = 250
	snapshot.Title = "First upload (updated)"
	second, err := repo.SaveVideo(ctx, snapshot)
	if err != nil {
		t.Fatalf("SaveVideo again: %v", err)
	}
	if second.Created {
		t.Error("second save of the same video must update, not create")
	}
	if second.VideoID != first.VideoID {
		t.Errorf("video ID changed across saves: %d vs %d", first.VideoID, second.VideoID)
	}

	var videoCount int64
	db.Model(&domain.Video{}).Count(&videoCount)
	if videoCount != 1 {
		t.Errorf("expected 1 video row, got %d", videoCount)
	}

	video, err := repo.GetByYoutubeID(ctx, "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("GetByYoutubeID: %v", err)
	}
	if video.Views != 250 || video.Title != "First upload (updated)" {
		t.Errorf("stored video not refreshed: views=%d title=%q", video.Views, video.Title)
	}

	var linkCount int64
	db.Model(&domain.ChannelVideo{}).Count(&linkCount)
	if linkCount != 1 {
		t.Errorf("expected 1 link row, got %d", linkCount)
	}
}

func TestSaveVideoChannelHistoryAppendOnly(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	// First save creates the channel without any history.
	if _, err := repo.SaveVideo(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}
	var historyCount int64
	db.Model(&domain.ChannelHistory{}).Count(&historyCount)
	if historyCount != 0 {
		t.Fatalf("channel creation must not write history, got %d rows", historyCount)
	}

	// Unchanged subscriber count: still no history.
	if _, err := repo.SaveVideo(ctx, testSnapshot()); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}
	db.Model(&domain.ChannelHistory{}).Count(&historyCount)
	if historyCount != 0 {
		t.Fatalf("unchanged subscribers must not write history, got %d rows", historyCount)
	}

	// Changed count: one history row carrying the superseded value.
	snapshot := testSnapshot()
	snapshot.Subscribers = 6200
	if _, err := repo.SaveVideo(ctx, snapshot); err != nil {
		t.Fatalf("SaveVideo: %v", err)
	}

	var history []domain.ChannelHistory
	db.Find(&history)
	if len(history) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(history))
	}
	if history[0].PreviousSubscribers != 5000 {
		t.Errorf("history must carry the old value: got %d, want 5000", history[0].PreviousSubscribers)
	}

	var channel domain.Channel
	if err := db.First(&channel, "channel_username = ?", "@creator").Error; err != nil {
		t.Fatalf("channel lookup: %v", err)
	}
	if channel.Subscribers != 6200 {
		t.Errorf("channel subscribers = %d, want 6200", channel.Subscribers)
	}

	var channelCount int64
	db.Model(&domain.Channel{}).Count(&channelCount)
	if channelCount != 1 {
		t.Errorf("expected 1 channel row, got %d", channelCount)
	}
}

func TestSaveVideoValidation(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	if _, err := repo.SaveVideo(ctx, nil); err == nil {
		t.Error("nil snapshot must be rejected")
	}

	snapshot := testSnapshot()
	snapshot.YoutubeVideoID = ""
	if _, err := repo.SaveVideo(ctx, snapshot); err == nil {
		t.Error("missing video id must be rejected")
	}

	snapshot = testSnapshot()
	snapshot.ChannelUsername = ""
	if _, err := repo.SaveVideo(ctx, snapshot); err == nil {
		t.Error("missing channel username must be rejected")
	}

	var count int64
	db.Model(&domain.Video{}).Count(&count)
	if count != 0 {
		t.Errorf("rejected snapshots must not persist anything, got %d rows", count)
	}
}

func TestListVideosSortingAndPagination(t *testing.T) {
	db := newTestDB(t)
	repo := NewVideoRepository(db)
	ctx := context.Background()

	ids := []string{"aaaaaaaaaa1", "aaaaaaaaaa2", "aaaaaaaaaa3"}
	for i, id := range ids {
		snapshot := testSnapshot()
		snapshot.YoutubeVideoID = id
		snapshot.Views = int64((i + 1) * 100)
		if _, err := repo.SaveVideo(ctx, snapshot); err != nil {
			t.Fatalf("SaveVideo %s: %v", id, err)
		}
	}

	rows, total, err := repo.ListVideos(ctx, 2, 0, "views", true)
	if err != nil {
		t.Fatalf("ListVideos: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Views != 300 || rows[1].Views != 200 {
		t.Errorf("descending views order broken: %d, %d", rows[0].Views, rows[1].Views)
	}
	if rows[0].ChannelUsername != "@creator" {
		t.Errorf("channel join missing, username = %q", rows[0].ChannelUsername)
	}

	// Unknown sort column falls back instead of erroring.
	if _, _, err := repo.ListVideos(ctx, 10, 0, "views; DROP TABLE videos", false); err != nil {
		t.Errorf("unknown sort column must fall back, got error: %v", err)
	}
}
