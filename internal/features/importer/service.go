package importer

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/youtube"
)

// Result summarizes what an import created.
type Result struct {
	Playlist      playlist.Playlist `json:"playlist"`
	Videos        []video.Video     `json:"videos"`
	SkippedVideos int               `json:"skippedVideos"`
}

// ImportURL imports the video and/or playlist a YouTube URL points to.
// A playlist URL imports the playlist and its videos; a bare video URL
// synthesizes a single-video playlist so every video has a playlist home.
// Re-importing an already known playlist is an error; re-importing a video
// into an existing playlist skips the duplicate.
func ImportURL(ctx context.Context, db *gorm.DB, fetcher youtube.MetadataFetcher, rawURL string, createdBy uuid.UUID) (Result, error) {
	parsed, err := youtube.ParseURL(rawURL)
	if err != nil {
		return Result{}, err
	}

	if parsed.PlaylistID != "" {
		return importPlaylist(ctx, db, fetcher, parsed, createdBy)
	}
	return importSingleVideo(ctx, db, fetcher, parsed.VideoID, createdBy)
}

func importPlaylist(ctx context.Context, db *gorm.DB, fetcher youtube.MetadataFetcher, parsed youtube.ParsedURL, createdBy uuid.UUID) (Result, error) {
	meta, err := fetcher.FetchPlaylist(ctx, parsed.PlaylistID)
	if err != nil {
		return Result{}, err
	}

	pl, err := playlist.Create(db, playlist.CreateInput{
		Title:             meta.Title,
		Description:       optional(meta.Description),
		YouTubePlaylistID: parsed.PlaylistID,
		ThumbnailURL:      optional(meta.Thumbnail),
		CreatedBy:         &createdBy,
	})
	if err != nil {
		return Result{}, err
	}

	result := Result{Playlist: pl}

	// A watch?v=...&list=... URL names one video explicitly; fetchers that
	// cannot enumerate the playlist still import that one.
	videoIDs := meta.VideoIDs
	if len(videoIDs) == 0 && parsed.VideoID != "" {
		videoIDs = []string{parsed.VideoID}
	}

	for i, youtubeVideoID := range videoIDs {
		vid, err := importVideo(ctx, db, fetcher, pl.ID, youtubeVideoID, i)
		if err != nil {
			if errors.Is(err, video.ErrVideoExists) {
				result.SkippedVideos++
				continue
			}
			return result, err
		}
		result.Videos = append(result.Videos, vid)
	}

	return result, nil
}

func importSingleVideo(ctx context.Context, db *gorm.DB, fetcher youtube.MetadataFetcher, youtubeVideoID string, createdBy uuid.UUID) (Result, error) {
	meta, err := fetcher.FetchVideo(ctx, youtubeVideoID)
	if err != nil {
		return Result{}, err
	}

	// Single videos live in a synthetic one-video playlist
	syntheticID := "single_" + youtubeVideoID
	pl, err := playlist.GetByYouTubeID(db, syntheticID)
	if errors.Is(err, playlist.ErrPlaylistNotFound) {
		pl, err = playlist.Create(db, playlist.CreateInput{
			Title:             meta.Title,
			Description:       optional(meta.Description),
			YouTubePlaylistID: syntheticID,
			ThumbnailURL:      optional(meta.Thumbnail),
			EstimatedDuration: meta.Duration,
			CreatedBy:         &createdBy,
		})
	}
	if err != nil {
		return Result{}, err
	}

	result := Result{Playlist: pl}

	vid, err := video.Create(db, video.CreateInput{
		PlaylistID:     pl.ID,
		Title:          meta.Title,
		Description:    optional(meta.Description),
		YouTubeVideoID: youtubeVideoID,
		ThumbnailURL:   optional(meta.Thumbnail),
		Duration:       meta.Duration,
		OrderIndex:     0,
	})
	if err != nil {
		if errors.Is(err, video.ErrVideoExists) {
			result.SkippedVideos = 1
			return result, nil
		}
		return result, err
	}

	result.Videos = append(result.Videos, vid)
	return result, nil
}

func importVideo(ctx context.Context, db *gorm.DB, fetcher youtube.MetadataFetcher, playlistID uuid.UUID, youtubeVideoID string, orderIndex int) (video.Video, error) {
	meta, err := fetcher.FetchVideo(ctx, youtubeVideoID)
	if err != nil {
		return video.Video{}, err
	}

	return video.Create(db, video.CreateInput{
		PlaylistID:     playlistID,
		Title:          meta.Title,
		Description:    optional(meta.Description),
		YouTubeVideoID: youtubeVideoID,
		ThumbnailURL:   optional(meta.Thumbnail),
		Duration:       meta.Duration,
		OrderIndex:     orderIndex,
	})
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
