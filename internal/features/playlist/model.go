package playlist

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// Playlist represents an imported YouTube playlist (or a synthetic wrapper
// around a single imported video).
type Playlist struct {
	types.BaseModel

	Title             string                `gorm:"type:varchar(255);not null" json:"title"`
	Description       *string               `gorm:"type:text" json:"description,omitempty"`
	YouTubePlaylistID string                `gorm:"type:varchar(255);not null;uniqueIndex;column:youtube_playlist_id" json:"youtubePlaylistId"`
	ThumbnailURL      *string               `gorm:"type:text;column:thumbnail_url" json:"thumbnailUrl,omitempty"`
	DifficultyLevel   types.DifficultyLevel `gorm:"type:varchar(20);not null;default:'beginner';column:difficulty_level" json:"difficultyLevel"`
	EstimatedDuration int                   `gorm:"type:int;not null;default:0;column:estimated_duration" json:"estimatedDuration"`
	Tags              pq.StringArray        `gorm:"type:text[]" json:"tags"`
	Active            bool                  `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
	CreatedBy         *uuid.UUID            `gorm:"type:uuid;column:created_by" json:"createdBy,omitempty"`
}

// TableName overrides the default table name.
func (Playlist) TableName() string { return "playlists" }

// Enrollment records a user's membership in a playlist.
type Enrollment struct {
	types.BaseModel

	UserID             uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_enrollment_user_playlist" json:"userId"`
	PlaylistID         uuid.UUID  `gorm:"type:uuid;not null;column:playlist_id;uniqueIndex:idx_enrollment_user_playlist" json:"playlistId"`
	EnrolledAt         time.Time  `gorm:"column:enrolled_at" json:"enrolledAt"`
	ProgressPercentage int        `gorm:"type:int;not null;default:0;column:progress_percentage" json:"progressPercentage"`
	CompletedAt        *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`

	Playlist *Playlist `gorm:"foreignKey:PlaylistID" json:"playlist,omitempty"`
}

// TableName overrides the default table name.
func (Enrollment) TableName() string { return "playlist_enrollments" }

// ListFilters defines playlist query filters.
type ListFilters struct {
	Keyword    string
	Difficulty types.DifficultyLevel
	Tag        string
	ActiveOnly bool
}

// CreateInput carries data for creating a new playlist.
type CreateInput struct {
	Title             string
	Description       *string
	YouTubePlaylistID string
	ThumbnailURL      *string
	DifficultyLevel   types.DifficultyLevel
	EstimatedDuration int
	Tags              []string
	CreatedBy         *uuid.UUID
}

// UpdateInput captures mutable playlist fields.
type UpdateInput struct {
	Title             *string
	DescProvided      bool
	Description       *string
	ThumbProvided     bool
	ThumbnailURL      *string
	DifficultyLevel   *types.DifficultyLevel
	EstimatedDuration *int
	TagsProvided      bool
	Tags              []string
	Active            *bool
}

// List retrieves paginated playlists with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Playlist, int64, error) {
	query := db.Model(&Playlist{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	if filters.Difficulty != "" {
		query = query.Where("difficulty_level = ?", filters.Difficulty)
	}

	if filters.Tag != "" {
		query = query.Where("? = ANY(tags)", filters.Tag)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var playlists []Playlist
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&playlists).Error

	return playlists, total, err
}

// Get retrieves a playlist by ID.
func Get(db *gorm.DB, id uuid.UUID) (Playlist, error) {
	var playlist Playlist
	if err := db.First(&playlist, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return playlist, ErrPlaylistNotFound
		}
		return playlist, err
	}
	return playlist, nil
}

// GetByYouTubeID retrieves a playlist by its YouTube playlist ID.
func GetByYouTubeID(db *gorm.DB, youtubeID string) (Playlist, error) {
	var playlist Playlist
	if err := db.First(&playlist, "youtube_playlist_id = ?", youtubeID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return playlist, ErrPlaylistNotFound
		}
		return playlist, err
	}
	return playlist, nil
}

// Create inserts a new playlist.
func Create(db *gorm.DB, input CreateInput) (Playlist, error) {
	difficulty := input.DifficultyLevel
	if difficulty == "" {
		difficulty = types.DifficultyBeginner
	}

	playlist := Playlist{
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		YouTubePlaylistID: strings.TrimSpace(input.YouTubePlaylistID),
		ThumbnailURL:      input.ThumbnailURL,
		DifficultyLevel:   difficulty,
		EstimatedDuration: input.EstimatedDuration,
		Tags:              pq.StringArray(input.Tags),
		Active:            true,
		CreatedBy:         input.CreatedBy,
	}

	if err := db.Create(&playlist).Error; err != nil {
		if strings.Contains(err.Error(), "youtube_playlist_id") {
			return playlist, ErrPlaylistExists
		}
		return playlist, err
	}

	return playlist, nil
}

// Update modifies an existing playlist.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Playlist, error) {
	playlist, err := Get(db, id)
	if err != nil {
		return playlist, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return playlist, ErrEmptyTitle
		}
		updates["title"] = trimmed
	}

	if input.DescProvided {
		updates["description"] = input.Description
	}

	if input.ThumbProvided {
		updates["thumbnail_url"] = input.ThumbnailURL
	}

	if input.DifficultyLevel != nil {
		updates["difficulty_level"] = *input.DifficultyLevel
	}

	if input.EstimatedDuration != nil {
		updates["estimated_duration"] = *input.EstimatedDuration
	}

	if input.TagsProvided {
		updates["tags"] = pq.StringArray(input.Tags)
	}

	if input.Active != nil {
		updates["is_active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := db.Model(&Playlist{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return playlist, err
		}
	}

	return Get(db, id)
}

// Delete removes a playlist.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Playlist{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPlaylistNotFound
	}
	return nil
}

// Enroll creates an enrollment for a user, idempotently.
func Enroll(db *gorm.DB, userID, playlistID uuid.UUID) (Enrollment, error) {
	if _, err := Get(db, playlistID); err != nil {
		return Enrollment{}, err
	}

	enrollment := Enrollment{
		UserID:     userID,
		PlaylistID: playlistID,
		EnrolledAt: time.Now().UTC(),
	}

	// Re-enrolling is a no-op
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "playlist_id"}},
		DoNothing: true,
	}).Create(&enrollment).Error
	if err != nil {
		return enrollment, err
	}

	return GetEnrollment(db, userID, playlistID)
}

// GetEnrollment retrieves a user's enrollment in a playlist.
func GetEnrollment(db *gorm.DB, userID, playlistID uuid.UUID) (Enrollment, error) {
	var enrollment Enrollment
	if err := db.First(&enrollment, "user_id = ? AND playlist_id = ?", userID, playlistID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return enrollment, ErrNotEnrolled
		}
		return enrollment, err
	}
	return enrollment, nil
}

// ListEnrollments returns a user's enrollments with playlists preloaded.
func ListEnrollments(db *gorm.DB, userID uuid.UUID) ([]Enrollment, error) {
	var enrollments []Enrollment
	err := db.Preload("Playlist").
		Where("user_id = ?", userID).
		Order("enrolled_at DESC").
		Find(&enrollments).Error
	return enrollments, err
}

// SetEnrollmentProgress writes the recomputed progress percentage, latching
// completed_at at 100%.
func SetEnrollmentProgress(db *gorm.DB, userID, playlistID uuid.UUID, percentage int) error {
	updates := map[string]interface{}{"progress_percentage": percentage}
	if percentage >= 100 {
		updates["completed_at"] = time.Now().UTC()
	}

	return db.Model(&Enrollment{}).
		Where("user_id = ? AND playlist_id = ?", userID, playlistID).
		Updates(updates).Error
}
