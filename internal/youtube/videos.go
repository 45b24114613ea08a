package youtube

import (
	"context"
	"strconv"
	"strings"

	"github.com/timmy/tubescope/internal/domain"
)

type channelContentResponse struct {
	Items []struct {
		ContentDetails struct {
			RelatedPlaylists struct {
				Uploads string `json:"uploads"`
			} `json:"relatedPlaylists"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type playlistItemsResponse struct {
	Items []struct {
		ContentDetails struct {
			VideoID string `json:"videoId"`
		} `json:"contentDetails"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type videoListResponse struct {
	Items []struct {
		Snippet struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			PublishedAt string `json:"publishedAt"`
			ChannelID   string `json:"channelId"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount    string `json:"viewCount"`
			LikeCount    string `json:"likeCount"`
			CommentCount string `json:"commentCount"`
		} `json:"statistics"`
		ContentDetails struct {
			Duration string `json:"duration"`
		} `json:"contentDetails"`
	} `json:"items"`
}

type channelDetailResponse struct {
	Items []struct {
		Snippet struct {
			CustomURL string `json:"customUrl"`
		} `json:"snippet"`
		Statistics struct {
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

const pageSize = 50

// ListRecentVideoIDs returns up to maxCount video IDs from the channel's
// uploads playlist, newest first, paginating until the cap or the end of the
// playlist. When the uploads playlist is unavailable or empty it falls back to
// a date-ordered search enumeration. The list is materialized so the caller
// knows the total before iterating.
func (c *Client) ListRecentVideoIDs(ctx context.Context, channelID string, maxCount int) []string {
	var videos []string

	var channelResp channelContentResponse
	if !c.apiGet(ctx, "channels", map[string]string{"part": "contentDetails", "id": channelID}, &channelResp) ||
		len(channelResp.Items) == 0 {
		return videos
	}

	uploadsPlaylistID := channelResp.Items[0].ContentDetails.RelatedPlaylists.Uploads
	if uploadsPlaylistID == "" {
		return c.listVideoIDsFromSearch(ctx, channelID, maxCount)
	}

	nextPageToken := ""
	for len(videos) < maxCount {
		params := map[string]string{
			"part":       "contentDetails",
			"playlistId": uploadsPlaylistID,
			"maxResults": strconv.Itoa(minInt(pageSize, maxCount-len(videos))),
		}
		if nextPageToken != "" {
			params["pageToken"] = nextPageToken
		}

		var playlistResp playlistItemsResponse
		if !c.apiGet(ctx, "playlistItems", params, &playlistResp) || len(playlistResp.Items) == 0 {
			break
		}

		for _, item := range playlistResp.Items {
			if len(videos) >= maxCount {
				break
			}
			if item.ContentDetails.VideoID != "" {
				videos = append(videos, item.ContentDetails.VideoID)
			}
		}

		nextPageToken = playlistResp.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	if len(videos) == 0 {
		return c.listVideoIDsFromSearch(ctx, channelID, maxCount)
	}
	return videos
}

// listVideoIDsFromSearch enumerates channel videos via the search endpoint
// ordered by date, used when the uploads playlist yields nothing.
func (c *Client) listVideoIDsFromSearch(ctx context.Context, channelID string, maxCount int) []string {
	var videos []string
	nextPageToken := ""

	for len(videos) < maxCount {
		params := map[string]string{
			"part":       "id",
			"channelId":  channelID,
			"type":       "video",
			"order":      "date",
			"maxResults": strconv.Itoa(minInt(pageSize, maxCount-len(videos))),
		}
		if nextPageToken != "" {
			params["pageToken"] = nextPageToken
		}

		var resp searchResponse
		if !c.apiGet(ctx, "search", params, &resp) || len(resp.Items) == 0 {
			break
		}

		for _, item := range resp.Items {
			if item.ID.VideoID != "" {
				videos = append(videos, item.ID.VideoID)
				if len(videos) >= maxCount {
					break
				}
			}
		}

		nextPageToken = resp.NextPageToken
		if nextPageToken == "" {
			break
		}
	}

	return videos
}

// FetchVideoData fetches one video's snippet, statistics, and duration, plus
// the owning channel's username and subscriber count, and attaches transcript
// text. Returns nil only when the video itself cannot be found.
func (c *Client) FetchVideoData(ctx context.Context, videoID string) *domain.VideoSnapshot {
	var resp videoListResponse
	if !c.apiGet(ctx, "videos", map[string]string{
		"part": "snippet,statistics,contentDetails", "id": videoID,
	}, &resp) || len(resp.Items) == 0 {
		return nil
	}

	data := resp.Items[0]
	channelID := data.Snippet.ChannelID

	channelUsername := "@unknown"
	if channelID != "" {
		channelUsername = "@" + channelID
	}
	var subscribers int64

	if channelID != "" {
		var channelResp channelDetailResponse
		if c.apiGet(ctx, "channels", map[string]string{
			"part": "snippet,statistics", "id": channelID,
		}, &channelResp) && len(channelResp.Items) > 0 {
			if customURL := channelResp.Items[0].Snippet.CustomURL; customURL != "" {
				channelUsername = customURL
			}
			subscribers = parseCount(channelResp.Items[0].Statistics.SubscriberCount)
		}
	}

	posted := ""
	if published := data.Snippet.PublishedAt; published != "" {
		posted = strings.SplitN(published, "T", 2)[0]
	}

	return &domain.VideoSnapshot{
		YoutubeVideoID:  videoID,
		Title:           data.Snippet.Title,
		Description:     data.Snippet.Description,
		Views:           parseCount(data.Statistics.ViewCount),
		Likes:           parseCount(data.Statistics.LikeCount),
		Comments:        parseCount(data.Statistics.CommentCount),
		Posted:          posted,
		ChannelUsername: channelUsername,
		Subscribers:     subscribers,
		VideoLength:     FormatDuration(data.ContentDetails.Duration),
		Transcript:      c.FetchTranscript(ctx, videoID),
	}
}

// parseCount converts the API's string-typed counters, defaulting to 0.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
