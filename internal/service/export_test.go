package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/timmy/tubescope/internal/domain"
	"github.com/xuri/excelize/v2"
)

type fakeExportRepo struct{}

func (fakeExportRepo) AllChannels(context.Context) ([]domain.Channel, error) {
	return []domain.Channel{{ID: 1, ChannelUsername: "@creator", Subscribers: 9000}}, nil
}

func (fakeExportRepo) AllChannelHistory(context.Context) ([]domain.ChannelHistory, error) {
	return []domain.ChannelHistory{
		{ID: 1, ChannelID: 1, PreviousSubscribers: 5000, RecordedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}, nil
}

func (fakeExportRepo) AllVideos(context.Context) ([]domain.Video, error) {
	return []domain.Video{{
		ID:             1,
		YoutubeVideoID: "dQw4w9WgXcQ",
		Title:          "A video, with commas",
		Views:          1000,
		Likes:          100,
		Comments:       50,
		ChannelID:      1,
	}}, nil
}

func (fakeExportRepo) AllChannelVideos(context.Context) ([]domain.ChannelVideo, error) {
	return []domain.ChannelVideo{{VideoID: 1, ChannelID: 1}}, nil
}

func TestWriteCSVSectionsAndRates(t *testing.T) {
	svc := NewExportService(fakeExportRepo{}, nil, nil)

	var buf bytes.Buffer
	if err := svc.WriteCSV(context.Background(), &buf); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()

	for _, marker := range []string{
		"=== channels ===",
		"=== channel_history ===",
		"=== videos ===",
		"=== channel_videos ===",
	} {
		if !strings.Contains(out, marker) {
			t.Errorf("missing table marker %q", marker)
		}
	}

	if !strings.Contains(out, `"A video, with commas"`) {
		t.Error("comma-bearing title must be quoted")
	}
	// likes 100 / views 1000 = 10.00%, engagement (100+50)/1000 = 15.00%
	if !strings.Contains(out, "10.00") || !strings.Contains(out, "15.00") {
		t.Errorf("engagement rates missing from output:\n%s", out)
	}
	if !strings.Contains(out, "@creator") {
		t.Error("channel row missing")
	}
}

func TestWriteXLSXSheets(t *testing.T) {
	svc := NewExportService(fakeExportRepo{}, nil, nil)

	var buf bytes.Buffer
	if err := svc.WriteXLSX(context.Background(), &buf); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	book, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	want := []string{"channels", "channel_history", "videos", "channel_videos"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v, want %v", sheets, want)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], name)
		}
	}

	cell, err := book.GetCellValue("videos", "B2")
	if err != nil {
		t.Fatalf("GetCellValue: %v", err)
	}
	if cell != "dQw4w9WgXcQ" {
		t.Errorf("videos!B2 = %q, want video id", cell)
	}
}

func TestArchiveWithoutStorage(t *testing.T) {
	svc := NewExportService(fakeExportRepo{}, nil, nil)
	if _, err := svc.Archive(context.Background(), "csv"); err == nil {
		t.Error("Archive without storage must fail")
	}
}
