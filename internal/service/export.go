package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/timmy/tubescope/internal/domain"
	"github.com/timmy/tubescope/internal/logger"
	"github.com/timmy/tubescope/internal/storage"
	"github.com/xuri/excelize/v2"
)

// ExportRepository reads whole tables for export.
type ExportRepository interface {
	AllChannels(ctx context.Context) ([]domain.Channel, error)
	AllChannelHistory(ctx context.Context) ([]domain.ChannelHistory, error)
	AllVideos(ctx context.Context) ([]domain.Video, error)
	AllChannelVideos(ctx context.Context) ([]domain.ChannelVideo, error)
}

// ExportService renders the full dataset as CSV or XLSX and optionally
// archives the result in object storage.
type ExportService struct {
	repo    ExportRepository
	storage storage.ObjectStorage
	logger  *logger.Logger
}

// NewExportService creates a new export service. objectStorage may be nil, in
// which case archive upload is unavailable.
func NewExportService(repo ExportRepository, objectStorage storage.ObjectStorage, log *logger.Logger) *ExportService {
	if log == nil {
		log = logger.GetDefault()
	}
	return &ExportService{repo: repo, storage: objectStorage, logger: log}
}

type exportTable struct {
	name   string
	header []string
	rows   [][]string
}

var channelHeader = []string{"id", "channel_username", "subscribers"}
var historyHeader = []string{"id", "channel_id", "previous_subscribers", "recorded_at"}
var videoHeader = []string{
	"id", "youtube_video_id", "title", "description", "views", "likes", "comments",
	"posted", "video_length", "like_rate", "comment_rate", "engagement_rate",
	"channel_id", "saved_at", "transcript",
}
var linkHeader = []string{"video_id", "channel_id"}

func (s *ExportService) tables(ctx context.Context) ([]exportTable, error) {
	channels, err := s.repo.AllChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read channels: %w", err)
	}
	history, err := s.repo.AllChannelHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel history: %w", err)
	}
	videos, err := s.repo.AllVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read videos: %w", err)
	}
	links, err := s.repo.AllChannelVideos(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read channel videos: %w", err)
	}

	channelRows := make([][]string, 0, len(channels))
	for _, c := range channels {
		channelRows = append(channelRows, []string{
			strconv.FormatUint(uint64(c.ID), 10),
			c.ChannelUsername,
			strconv.FormatInt(c.Subscribers, 10),
		})
	}

	historyRows := make([][]string, 0, len(history))
	for _, h := range history {
		historyRows = append(historyRows, []string{
			strconv.FormatUint(uint64(h.ID), 10),
			strconv.FormatUint(uint64(h.ChannelID), 10),
			strconv.FormatInt(h.PreviousSubscribers, 10),
			h.RecordedAt.UTC().Format(time.RFC3339),
		})
	}

	videoRows := make([][]string, 0, len(videos))
	for i := range videos {
		v := &videos[i]
		videoRows = append(videoRows, []string{
			strconv.FormatUint(uint64(v.ID), 10),
			v.YoutubeVideoID,
			v.Title,
			v.Description,
			strconv.FormatInt(v.Views, 10),
			strconv.FormatInt(v.Likes, 10),
			strconv.FormatInt(v.Comments, 10),
			v.Posted,
			v.VideoLength,
			strconv.FormatFloat(v.LikeRate(), 'f', 2, 64),
			strconv.FormatFloat(v.CommentRate(), 'f', 2, 64),
			strconv.FormatFloat(v.EngagementRate(), 'f', 2, 64),
			strconv.FormatUint(uint64(v.ChannelID), 10),
			v.SavedAt.UTC().Format(time.RFC3339),
			v.Transcript,
		})
	}

	linkRows := make([][]string, 0, len(links))
	for _, l := range links {
		linkRows = append(linkRows, []string{
			strconv.FormatUint(uint64(l.VideoID), 10),
			strconv.FormatUint(uint64(l.ChannelID), 10),
		})
	}

	return []exportTable{
		{"channels", channelHeader, channelRows},
		{"channel_history", historyHeader, historyRows},
		{"videos", videoHeader, videoRows},
		{"channel_videos", linkHeader, linkRows},
	}, nil
}

// WriteCSV streams every table to w as one CSV document, tables separated by
// "=== name ===" marker lines.
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer) error {
	tables, err := s.tables(ctx)
	if err != nil {
		return err
	}

	writer := csv.NewWriter(w)
	for i, table := range tables {
		if i > 0 {
			writer.Flush()
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "=== %s ===\n", table.name); err != nil {
			return err
		}
		if err := writer.Write(table.header); err != nil {
			return err
		}
		if err := writer.WriteAll(table.rows); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteXLSX writes every table to w as one workbook, one sheet per table.
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer) error {
	tables, err := s.tables(ctx)
	if err != nil {
		return err
	}

	book := excelize.NewFile()
	defer book.Close()

	for i, table := range tables {
		if i == 0 {
			if err := book.SetSheetName("Sheet1", table.name); err != nil {
				return err
			}
		} else {
			if _, err := book.NewSheet(table.name); err != nil {
				return err
			}
		}

		header := make([]interface{}, len(table.header))
		for col, name := range table.header {
			header[col] = name
		}
		if err := book.SetSheetRow(table.name, "A1", &header); err != nil {
			return err
		}

		for rowIdx, row := range table.rows {
			cells := make([]interface{}, len(row))
			for col, value := range row {
				cells[col] = value
			}
			cell, err := excelize.CoordinatesToCellName(1, rowIdx+2)
			if err != nil {
				return err
			}
			if err := book.SetSheetRow(table.name, cell, &cells); err != nil {
				return err
			}
		}
	}

	return book.Write(w)
}

// Archive renders the export in the given format ("csv" or "xlsx"), uploads it
// to object storage, and returns the archive URL.
func (s *ExportService) Archive(ctx context.Context, format string) (string, error) {
	if s.storage == nil {
		return "", fmt.Errorf("export archive storage not configured")
	}

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		if err := s.WriteXLSX(ctx, &buf); err != nil {
			return "", err
		}
	default:
		format = "csv"
		contentType = "text/csv"
		if err := s.WriteCSV(ctx, &buf); err != nil {
			return "", err
		}
	}

	key := fmt.Sprintf("exports/tubescope-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	if err := s.storage.Upload(ctx, key, &buf, int64(buf.Len()), contentType); err != nil {
		return "", fmt.Errorf("failed to upload export archive: %w", err)
	}

	logger.FromContext(ctx).WithField("key", key).Info("Export archived")
	return s.storage.GetURL(key), nil
}
