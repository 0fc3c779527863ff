package youtube

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"
)

var (
	videoRegex    = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([a-zA-Z0-9_-]{11})`)
	playlistRegex = regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`)
)

// ErrInvalidURL is returned when a URL contains neither a video nor a
// playlist id.
var ErrInvalidURL = errors.New("invalid YouTube URL format")

// ParsedURL holds the ids extracted from a YouTube URL. Either field may be
// empty, but never both.
type ParsedURL struct {
	VideoID    string
	PlaylistID string
}

// ParseURL extracts the 11-character video id and/or playlist id from a
// YouTube URL. watch, youtu.be, and embed forms are recognized.
func ParseURL(url string) (ParsedURL, error) {
	var parsed ParsedURL

	if match := videoRegex.FindStringSubmatch(url); match != nil {
		parsed.VideoID = match[1]
	}
	if match := playlistRegex.FindStringSubmatch(url); match != nil {
		parsed.PlaylistID = match[1]
	}

	if parsed.VideoID == "" && parsed.PlaylistID == "" {
		return parsed, ErrInvalidURL
	}

	return parsed, nil
}

// VideoMetadata describes a YouTube video as imported.
type VideoMetadata struct {
	Title       string
	Description string
	Thumbnail   string
	Duration    int
}

// PlaylistMetadata describes a YouTube playlist as imported.
type PlaylistMetadata struct {
	Title       string
	Description string
	Thumbnail   string
	VideoIDs    []string
}

// MetadataFetcher resolves video and playlist metadata. The stub
// implementation serves deployments without a Data API key.
type MetadataFetcher interface {
	FetchVideo(ctx context.Context, videoID string) (VideoMetadata, error)
	FetchPlaylist(ctx context.Context, playlistID string) (PlaylistMetadata, error)
}

// StubFetcher returns canned metadata without calling YouTube. The values
// match the import contract the frontend was built against.
type StubFetcher struct{}

func (StubFetcher) FetchVideo(_ context.Context, videoID string) (VideoMetadata, error) {
	return VideoMetadata{
		Title:       "Sample YouTube Video Title",
		Description: "This is a sample description of the YouTube video content that demonstrates the learning platform capabilities.",
		Thumbnail:   fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", videoID),
		Duration:    600,
	}, nil
}

func (StubFetcher) FetchPlaylist(_ context.Context, playlistID string) (PlaylistMetadata, error) {
	return PlaylistMetadata{
		Title:       "Sample YouTube Playlist",
		Description: "This is a sample description of the YouTube playlist content that demonstrates the learning platform capabilities.",
		Thumbnail:   "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		VideoIDs:    nil,
	}, nil
}

// parseISO8601Duration converts the PT#H#M#S form the Data API returns into
// seconds. Unparseable strings yield zero rather than an error.
func parseISO8601Duration(raw string) int {
	matches := durationRegex.FindStringSubmatch(raw)
	if matches == nil {
		return 0
	}

	total := 0
	units := []time.Duration{time.Hour, time.Minute, time.Second}
	for i, unit := range units {
		if matches[i+1] == "" {
			continue
		}
		var n int
		fmt.Sscanf(matches[i+1], "%d", &n)
		total += n * int(unit/time.Second)
	}
	return total
}

var durationRegex = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)
