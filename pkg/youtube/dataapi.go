package youtube

import (
	"context"
	"errors"

	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"
)

// ErrNotFound is returned when the Data API has no record of the id.
var ErrNotFound = errors.New("youtube resource not found")

// DataAPIClient fetches real metadata from the YouTube Data API. It is
// enabled by configuring an API key; deployments without one fall back to
// StubFetcher.
type DataAPIClient struct {
	apiKey string
}

// NewDataAPIClient creates a Data API backed fetcher.
func NewDataAPIClient(apiKey string) *DataAPIClient {
	return &DataAPIClient{apiKey: apiKey}
}

func (c *DataAPIClient) service(ctx context.Context) (*youtubeapi.Service, error) {
	return youtubeapi.NewService(ctx, option.WithAPIKey(c.apiKey))
}

// FetchVideo resolves a video's title, description, thumbnail, and duration.
func (c *DataAPIClient) FetchVideo(ctx context.Context, videoID string) (VideoMetadata, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return VideoMetadata{}, err
	}

	resp, err := svc.Videos.List([]string{"snippet", "contentDetails"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return VideoMetadata{}, err
	}
	if len(resp.Items) == 0 {
		return VideoMetadata{}, ErrNotFound
	}

	item := resp.Items[0]
	meta := VideoMetadata{
		Title:       item.Snippet.Title,
		Description: item.Snippet.Description,
		Duration:    parseISO8601Duration(item.ContentDetails.Duration),
	}
	if thumb := bestThumbnail(item.Snippet.Thumbnails); thumb != "" {
		meta.Thumbnail = thumb
	}

	return meta, nil
}

// FetchPlaylist resolves a playlist's metadata and the ordered ids of its
// videos.
func (c *DataAPIClient) FetchPlaylist(ctx context.Context, playlistID string) (PlaylistMetadata, error) {
	svc, err := c.service(ctx)
	if err != nil {
		return PlaylistMetadata{}, err
	}

	resp, err := svc.Playlists.List([]string{"snippet"}).Id(playlistID).Context(ctx).Do()
	if err != nil {
		return PlaylistMetadata{}, err
	}
	if len(resp.Items) == 0 {
		return PlaylistMetadata{}, ErrNotFound
	}

	meta := PlaylistMetadata{
		Title:       resp.Items[0].Snippet.Title,
		Description: resp.Items[0].Snippet.Description,
		Thumbnail:   bestThumbnail(resp.Items[0].Snippet.Thumbnails),
	}

	pageToken := ""
	for {
		items, err := svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(50).
			PageToken(pageToken).
			Context(ctx).
			Do()
		if err != nil {
			return PlaylistMetadata{}, err
		}

		for _, item := range items.Items {
			meta.VideoIDs = append(meta.VideoIDs, item.ContentDetails.VideoId)
		}

		if items.NextPageToken == "" {
			break
		}
		pageToken = items.NextPageToken
	}

	return meta, nil
}

func bestThumbnail(thumbs *youtubeapi.ThumbnailDetails) string {
	if thumbs == nil {
		return ""
	}
	for _, t := range []*youtubeapi.Thumbnail{thumbs.Maxres, thumbs.High, thumbs.Medium, thumbs.Default} {
		if t != nil && t.Url != "" {
			return t.Url
		}
	}
	return ""
}
