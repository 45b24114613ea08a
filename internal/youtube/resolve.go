package youtube

import (
	"context"
	"strconv"
	"strings"
)

type channelIDResponse struct {
	Items []struct {
		ID string `json:"id"`
	} `json:"items"`
}

type searchResponse struct {
	Items []struct {
		ID struct {
			ChannelID string `json:"channelId"`
			VideoID   string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			ChannelID string `json:"channelId"`
		} `json:"snippet"`
	} `json:"items"`
	NextPageToken string `json:"nextPageToken"`
}

type resolveCall struct {
	endpoint string
	params   map[string]string
}

// ResolveChannelID resolves a canonical channel ID (UC…) from a channel URL.
// Every applicable resolution strategy is tried in order; the first non-empty
// result wins and exhausting the whole plan yields "".
func (c *Client) ResolveChannelID(ctx context.Context, channelURL string) string {
	kind, identifier := ExtractChannelInfo(channelURL)
	if identifier == "" {
		return ""
	}
	return c.resolveIdentifier(ctx, kind, identifier)
}

func (c *Client) resolveIdentifier(ctx context.Context, kind ChannelIdentifierKind, identifier string) string {
	handleNoAt := strings.TrimPrefix(identifier, "@")

	var plan []resolveCall
	switch kind {
	case IdentifierChannelID:
		plan = append(plan, resolveCall{"channels", map[string]string{"part": "id", "id": identifier}})
	case IdentifierUsername:
		plan = append(plan, resolveCall{"channels", map[string]string{"part": "id", "forUsername": identifier}})
	case IdentifierHandle:
		plan = append(plan,
			resolveCall{"channels", map[string]string{"part": "id", "forHandle": identifier}},
			resolveCall{"channels", map[string]string{"part": "id", "forHandle": handleNoAt}})
	default:
		plan = append(plan, resolveCall{"search", map[string]string{
			"part": "snippet", "type": "channel", "q": identifier, "maxResults": strconv.Itoa(1),
		}})
	}

	// Generic fallbacks cover identifiers whose URL shape lied about their kind.
	plan = append(plan,
		resolveCall{"channels", map[string]string{"part": "id", "id": identifier}},
		resolveCall{"channels", map[string]string{"part": "id", "forUsername": identifier}},
		resolveCall{"channels", map[string]string{"part": "id", "forHandle": identifier}},
		resolveCall{"channels", map[string]string{"part": "id", "forHandle": handleNoAt}},
		resolveCall{"search", map[string]string{
			"part": "snippet", "type": "channel", "q": identifier, "maxResults": strconv.Itoa(1),
		}})

	for _, call := range plan {
		if call.endpoint == "channels" {
			var resp channelIDResponse
			if !c.apiGet(ctx, "channels", call.params, &resp) || len(resp.Items) == 0 {
				continue
			}
			if resp.Items[0].ID != "" {
				return resp.Items[0].ID
			}
			continue
		}

		var resp searchResponse
		if !c.apiGet(ctx, "search", call.params, &resp) || len(resp.Items) == 0 {
			continue
		}
		item := resp.Items[0]
		if item.ID.ChannelID != "" {
			return item.ID.ChannelID
		}
		if item.Snippet.ChannelID != "" {
			return item.Snippet.ChannelID
		}
	}

	return ""
}
