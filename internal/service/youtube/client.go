// Package youtube wraps the YouTube Data API v3 client, trimmed to what
// the metadata stage of the enrichment pipeline needs (spec.md §4.5):
// title, channel, thumbnail, duration, and published_at.
package youtube

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// Metadata is the subset of a YouTube video's snippet/contentDetails the
// metadata stage persists onto Video.
type Metadata struct {
	Title           string
	Channel         string
	ThumbnailURL    string
	DurationSeconds int64
	PublishedAt     string // RFC3339, as returned by the API
}

// Client wraps the YouTube Data API v3 client.
type Client struct {
	service *youtube.Service
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("YouTube API key is required")
	}

	service, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	return &Client{service: service}, nil
}

// quotaCostVideosList is the videos.list call's official unit cost for the
// two parts this client requests (snippet + contentDetails).
const quotaCostVideosList = 3

// FetchMetadata retrieves metadata for up to 50 video ids in one batch.
// Returns a map keyed by video id (missing ids mean the video is
// unavailable — removed, private, or never existed) and the call's quota
// cost.
func (c *Client) FetchMetadata(ctx context.Context, videoIDs []string) (map[string]Metadata, int, error) {
	if len(videoIDs) == 0 {
		return nil, 0, fmt.Errorf("no video IDs provided")
	}
	if len(videoIDs) > 50 {
		return nil, 0, fmt.Errorf("too many video IDs (max 50, got %d)", len(videoIDs))
	}

	call := c.service.Videos.List([]string{"snippet", "contentDetails"}).Id(videoIDs...).Context(ctx)
	response, err := call.Do()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch videos from YouTube API: %w", err)
	}

	result := make(map[string]Metadata, len(response.Items))
	for _, item := range response.Items {
		result[item.Id] = mapVideoToMetadata(item)
	}

	return result, quotaCostVideosList, nil
}

// quotaCostVideosListSnippet is the videos.list call's unit cost for a
// snippet-only fetch, used by FetchDescription.
const quotaCostVideosListSnippet = 2

// FetchDescription retrieves a single video's description, used by the
// chapters stage to parse description-supplied chapter timestamps when no
// platform chapters are available (spec.md §4.5).
func (c *Client) FetchDescription(ctx context.Context, videoID string) (string, int, error) {
	call := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx)
	response, err := call.Do()
	if err != nil {
		return "", 0, fmt.Errorf("failed to fetch video description from YouTube API: %w", err)
	}
	if len(response.Items) == 0 || response.Items[0].Snippet == nil {
		return "", quotaCostVideosListSnippet, nil
	}
	return response.Items[0].Snippet.Description, quotaCostVideosListSnippet, nil
}

func mapVideoToMetadata(video *youtube.Video) Metadata {
	m := Metadata{}

	if video.Snippet != nil {
		m.Title = video.Snippet.Title
		m.Channel = video.Snippet.ChannelTitle
		m.PublishedAt = video.Snippet.PublishedAt
		m.ThumbnailURL = bestThumbnail(video.Snippet.Thumbnails)
	}

	if video.ContentDetails != nil {
		if seconds, err := ParseVideoDuration(video.ContentDetails.Duration); err == nil {
			m.DurationSeconds = int64(seconds)
		}
	}

	return m
}

func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	switch {
	case t.Maxres != nil:
		return t.Maxres.Url
	case t.High != nil:
		return t.High.Url
	case t.Medium != nil:
		return t.Medium.Url
	case t.Default != nil:
		return t.Default.Url
	default:
		return ""
	}
}

// ParseVideoDuration converts an ISO 8601 duration to seconds.
// Example: "PT4M13S" -> 253.
func ParseVideoDuration(duration string) (int, error) {
	if !strings.HasPrefix(duration, "PT") {
		return 0, fmt.Errorf("invalid duration format: %s", duration)
	}
	duration = strings.TrimPrefix(duration, "PT")

	var hours, minutes, seconds int

	if hIdx := strings.Index(duration, "H"); hIdx != -1 {
		h, err := strconv.Atoi(duration[:hIdx])
		if err != nil {
			return 0, err
		}
		hours = h
		duration = duration[hIdx+1:]
	}

	if mIdx := strings.Index(duration, "M"); mIdx != -1 {
		m, err := strconv.Atoi(duration[:mIdx])
		if err != nil {
			return 0, err
		}
		minutes = m
		duration = duration[mIdx+1:]
	}

	if sIdx := strings.Index(duration, "S"); sIdx != -1 {
		s, err := strconv.Atoi(duration[:sIdx])
		if err != nil {
			return 0, err
		}
		seconds = s
	}

	return hours*3600 + minutes*60 + seconds, nil
}
