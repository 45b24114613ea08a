package youtube

import (
	"net/url"
	"regexp"
	"strings"
)

var videoHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
	"youtu.be":          true,
	"www.youtu.be":      true,
}

var channelHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ChannelIdentifierKind classifies the identifier extracted from a channel URL.
type ChannelIdentifierKind string

const (
	IdentifierChannelID ChannelIdentifierKind = "channel_id"
	IdentifierUsername  ChannelIdentifierKind = "username"
	IdentifierCustom    ChannelIdentifierKind = "custom"
	IdentifierHandle    ChannelIdentifierKind = "handle"
)

// parseInputURL normalizes and parses a raw URL, tolerating a missing scheme.
func parseInputURL(raw string) *url.URL {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return nil
	}
	if !strings.Contains(normalized, "://") {
		normalized = "https://" + normalized
	}
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		return nil
	}
	return parsed
}

func pathParts(u *url.URL) []string {
	var parts []string
	for _, part := range strings.Split(u.Path, "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// IsValidVideoURL reports whether the URL points at a known YouTube video host.
func IsValidVideoURL(videoURL string) bool {
	parsed := parseInputURL(videoURL)
	return parsed != nil && videoHosts[strings.ToLower(parsed.Host)]
}

// IsValidChannelURL reports whether the URL points at a known YouTube channel host.
func IsValidChannelURL(channelURL string) bool {
	parsed := parseInputURL(channelURL)
	return parsed != nil && channelHosts[strings.ToLower(parsed.Host)]
}

// ExtractVideoID extracts the 11-character video ID from supported YouTube URL
// formats (watch, youtu.be, embed, shorts, live). Returns "" when no valid ID
// is present.
func ExtractVideoID(videoURL string) string {
	parsed := parseInputURL(videoURL)
	if parsed == nil {
		return ""
	}

	host := strings.ToLower(parsed.Host)
	parts := pathParts(parsed)
	var videoID string

	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		if len(parts) > 0 {
			videoID = parts[0]
		}
	case channelHosts[host]:
		if parsed.Path == "/watch" {
			videoID = parsed.Query().Get("v")
		} else if len(parts) > 1 && (parts[0] == "embed" || parts[0] == "shorts" || parts[0] == "live") {
			videoID = parts[1]
		}
	}

	if !videoIDPattern.MatchString(videoID) {
		return ""
	}
	return videoID
}

// reserved path segments that never name a channel.
var reservedPaths = map[string]bool{
	"watch": true, "shorts": true, "embed": true, "playlist": true,
	"feed": true, "results": true, "live": true,
}

// ExtractChannelInfo extracts the identifier kind and value from common
// YouTube channel URL formats (/channel/UC…, /user/name, /c/name, /@handle,
// or a bare custom path). Returns ("", "") when the URL names no channel.
func ExtractChannelInfo(channelURL string) (ChannelIdentifierKind, string) {
	parsed := parseInputURL(channelURL)
	if parsed == nil || !channelHosts[strings.ToLower(parsed.Host)] {
		return "", ""
	}

	parts := pathParts(parsed)
	if len(parts) == 0 {
		return "", ""
	}

	first := parts[0]
	switch {
	case first == "channel" && len(parts) > 1:
		return IdentifierChannelID, parts[1]
	case first == "user" && len(parts) > 1:
		return IdentifierUsername, parts[1]
	case first == "c" && len(parts) > 1:
		return IdentifierCustom, parts[1]
	case strings.HasPrefix(first, "@"):
		return IdentifierHandle, first
	case !reservedPaths[first]:
		return IdentifierCustom, first
	}
	return "", ""
}
