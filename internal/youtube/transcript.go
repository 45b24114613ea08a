package youtube

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// TranscriptUnavailableMessage is the fixed fallback text stored whenever a
// transcript cannot be retrieved. Absence of a transcript is never an error
// above this layer.
const TranscriptUnavailableMessage = "Transcript unavailable or disabled by the uploader."

// Permanent transcript failure kinds. These are definitional states retry
// cannot change and short-circuit to the fallback text without consuming
// retries.
var (
	ErrTranscriptsDisabled = errors.New("transcripts disabled by the uploader")
	ErrNoTranscriptFound   = errors.New("no transcript found")
	ErrVideoUnavailable    = errors.New("video unavailable")
	ErrInvalidVideoID      = errors.New("invalid video id")
	ErrNotTranslatable     = errors.New("transcript not translatable")
)

// Transient transcript failure kinds, retried up to the configured cap.
var (
	ErrTooManyRequests        = errors.New("too many transcript requests")
	ErrTranscriptFetchBlocked = errors.New("transcript request blocked")
)

func isPermanentTranscriptErr(err error) bool {
	return errors.Is(err, ErrTranscriptsDisabled) ||
		errors.Is(err, ErrNoTranscriptFound) ||
		errors.Is(err, ErrVideoUnavailable) ||
		errors.Is(err, ErrInvalidVideoID) ||
		errors.Is(err, ErrNotTranslatable)
}

var retryableMarkers = []string{"429", "rate limit", "timed out", "temporar", "try again"}

// shouldRetryTranscript classifies a transcript failure. Known transient kinds
// are retried; everything else falls back to a message heuristic.
func shouldRetryTranscript(err error) bool {
	if isPermanentTranscriptErr(err) {
		return false
	}
	if errors.Is(err, ErrTooManyRequests) || errors.Is(err, ErrTranscriptFetchBlocked) {
		return true
	}
	message := strings.ToLower(err.Error())
	for _, marker := range retryableMarkers {
		if strings.Contains(message, marker) {
			return true
		}
	}
	return false
}

type transcriptTrackList struct {
	XMLName xml.Name `xml:"transcript_list"`
	Tracks  []struct {
		LangCode string `xml:"lang_code,attr"`
		Name     string `xml:"name,attr"`
	} `xml:"track"`
}

type transcriptDoc struct {
	XMLName xml.Name `xml:"transcript"`
	Lines   []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

// FetchTranscript retrieves transcript text for a video, retrying transient
// failures with exponential backoff. All failure paths converge on
// TranscriptUnavailableMessage; this method never returns an error.
func (c *Client) FetchTranscript(ctx context.Context, videoID string) string {
	var text string
	err := c.retryPolicy.Do(ctx, func() error {
		var fetchErr error
		text, fetchErr = c.fetchTranscriptOnce(ctx, videoID)
		return fetchErr
	})
	if err != nil {
		return TranscriptUnavailableMessage
	}
	return text
}

// fetchTranscriptOnce lists the video's caption tracks and downloads the first
// one via the timedtext endpoint.
func (c *Client) fetchTranscriptOnce(ctx context.Context, videoID string) (string, error) {
	if !videoIDPattern.MatchString(videoID) {
		return "", ErrInvalidVideoID
	}

	var trackList transcriptTrackList
	if err := c.timedTextGet(ctx, map[string]string{"type": "list", "v": videoID}, &trackList); err != nil {
		return "", err
	}
	if len(trackList.Tracks) == 0 {
		return "", ErrTranscriptsDisabled
	}

	track := trackList.Tracks[0]
	params := map[string]string{"v": videoID, "lang": track.LangCode}
	if track.Name != "" {
		params["name"] = track.Name
	}

	var doc transcriptDoc
	if err := c.timedTextGet(ctx, params, &doc); err != nil {
		return "", err
	}
	if len(doc.Lines) == 0 {
		return "", ErrNoTranscriptFound
	}

	lines := make([]string, 0, len(doc.Lines))
	for _, line := range doc.Lines {
		if trimmed := strings.TrimSpace(line.Text); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return "", ErrNoTranscriptFound
	}
	return strings.Join(lines, " "), nil
}

func (c *Client) timedTextGet(ctx context.Context, params map[string]string, out interface{}) error {
	resp, err := c.transcript.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(c.timedTextURL)
	if err != nil {
		return fmt.Errorf("transcript request failed: %w", err)
	}
	switch {
	case resp.StatusCode() == http.StatusTooManyRequests:
		return ErrTooManyRequests
	case resp.StatusCode() == http.StatusForbidden:
		return ErrTranscriptFetchBlocked
	case resp.StatusCode() == http.StatusNotFound:
		return ErrVideoUnavailable
	case resp.StatusCode() >= 400:
		return fmt.Errorf("transcript request failed: HTTP %d", resp.StatusCode())
	}
	if err := xml.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("transcript response malformed: %w", err)
	}
	return nil
}
