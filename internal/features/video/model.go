package video

import (
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// Video represents an imported YouTube video within a playlist.
type Video struct {
	types.BaseModel

	PlaylistID     uuid.UUID `gorm:"type:uuid;not null;column:playlist_id;index;uniqueIndex:idx_playlist_youtube_video" json:"playlistId"`
	Title          string    `gorm:"type:varchar(255);not null" json:"title"`
	Description    *string   `gorm:"type:text" json:"description,omitempty"`
	YouTubeVideoID string    `gorm:"type:varchar(20);not null;column:youtube_video_id;uniqueIndex:idx_playlist_youtube_video" json:"youtubeVideoId"`
	ThumbnailURL   *string   `gorm:"type:text;column:thumbnail_url" json:"thumbnailUrl,omitempty"`
	Duration       int       `gorm:"type:int;not null;default:0" json:"duration"`
	OrderIndex     int       `gorm:"type:int;not null;default:0;column:order_index" json:"orderIndex"`
	Active         bool      `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`

	Playlist *playlist.Playlist `gorm:"foreignKey:PlaylistID" json:"playlist,omitempty"`
}

// TableName overrides the default table name.
func (Video) TableName() string { return "videos" }

// ListFilters defines video query filters.
type ListFilters struct {
	PlaylistID *uuid.UUID
	Keyword    string
	ActiveOnly bool
}

// CreateInput carries data for creating a new video.
type CreateInput struct {
	PlaylistID     uuid.UUID
	Title          string
	Description    *string
	YouTubeVideoID string
	ThumbnailURL   *string
	Duration       int
	OrderIndex     int
}

// UpdateInput captures mutable video fields.
type UpdateInput struct {
	Title         *string
	DescProvided  bool
	Description   *string
	ThumbProvided bool
	ThumbnailURL  *string
	Duration      *int
	OrderIndex    *int
	Active        *bool
}

// List retrieves paginated videos with filters, ordered by playlist position.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Video, int64, error) {
	query := db.Model(&Video{})

	if filters.PlaylistID != nil {
		query = query.Where("playlist_id = ?", *filters.PlaylistID)
	}

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var videos []Video
	err := query.
		Order("order_index ASC, created_at ASC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&videos).Error

	return videos, total, err
}

// Get retrieves a video by ID.
func Get(db *gorm.DB, id uuid.UUID) (Video, error) {
	var video Video
	if err := db.First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return video, ErrVideoNotFound
		}
		return video, err
	}
	return video, nil
}

// GetWithPlaylist retrieves a video with its playlist preloaded.
func GetWithPlaylist(db *gorm.DB, id uuid.UUID) (Video, error) {
	var video Video
	if err := db.Preload("Playlist").First(&video, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return video, ErrVideoNotFound
		}
		return video, err
	}
	return video, nil
}

// CountActive returns the number of active videos in a playlist.
func CountActive(db *gorm.DB, playlistID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Video{}).
		Where("playlist_id = ? AND is_active = ?", playlistID, true).
		Count(&count).Error
	return count, err
}

// Create inserts a new video.
func Create(db *gorm.DB, input CreateInput) (Video, error) {
	video := Video{
		PlaylistID:     input.PlaylistID,
		Title:          strings.TrimSpace(input.Title),
		Description:    input.Description,
		YouTubeVideoID: strings.TrimSpace(input.YouTubeVideoID),
		ThumbnailURL:   input.ThumbnailURL,
		Duration:       input.Duration,
		OrderIndex:     input.OrderIndex,
		Active:         true,
	}

	if err := db.Create(&video).Error; err != nil {
		if strings.Contains(err.Error(), "idx_playlist_youtube_video") {
			return video, ErrVideoExists
		}
		return video, err
	}

	return video, nil
}

// Update modifies an existing video.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Video, error) {
	video, err := Get(db, id)
	if err != nil {
		return video, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return video, ErrEmptyTitle
		}
		updates["title"] = trimmed
	}

	if input.DescProvided {
		updates["description"] = input.Description
	}

	if input.ThumbProvided {
		updates["thumbnail_url"] = input.ThumbnailURL
	}

	if input.Duration != nil {
		updates["duration"] = *input.Duration
	}

	if input.OrderIndex != nil {
		updates["order_index"] = *input.OrderIndex
	}

	if input.Active != nil {
		updates["is_active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := db.Model(&Video{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return video, err
		}
	}

	return Get(db, id)
}

// Delete removes a video.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Video{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVideoNotFound
	}
	return nil
}
