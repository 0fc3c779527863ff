package progress

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/credtube/credtube-server-go/pkg/types"
)

// Progress tracks a user's state for one video: watch time, quiz outcome,
// and whether a learning token was issued for it.
type Progress struct {
	types.BaseModel

	UserID           uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_progress_user_video" json:"userId"`
	VideoID          uuid.UUID  `gorm:"type:uuid;not null;column:video_id;uniqueIndex:idx_progress_user_video" json:"videoId"`
	PlaylistID       uuid.UUID  `gorm:"type:uuid;not null;column:playlist_id;index" json:"playlistId"`
	IsVideoCompleted bool       `gorm:"type:boolean;not null;default:false;column:is_video_completed" json:"isVideoCompleted"`
	VideoWatchTime   int        `gorm:"type:int;not null;default:0;column:video_watch_time" json:"videoWatchTime"`
	IsQuizCompleted  bool       `gorm:"type:boolean;not null;default:false;column:is_quiz_completed" json:"isQuizCompleted"`
	QuizScore        *int       `gorm:"type:int;column:quiz_score" json:"quizScore,omitempty"`
	QuizAttempts     int        `gorm:"type:int;not null;default:0;column:quiz_attempts" json:"quizAttempts"`
	TokenIssued      bool       `gorm:"type:boolean;not null;default:false;column:token_issued" json:"tokenIssued"`
	CompletedAt      *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

// TableName overrides the default table name.
func (Progress) TableName() string { return "user_progress" }

var ErrProgressNotFound = errors.New("progress record not found")

// Get retrieves the progress record for a user/video pair.
func Get(db *gorm.DB, userID, videoID uuid.UUID) (Progress, error) {
	var record Progress
	if err := db.First(&record, "user_id = ? AND video_id = ?", userID, videoID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return record, ErrProgressNotFound
		}
		return record, err
	}
	return record, nil
}

// ListForUser returns a user's progress records, optionally scoped to a playlist.
func ListForUser(db *gorm.DB, userID uuid.UUID, playlistID *uuid.UUID) ([]Progress, error) {
	query := db.Where("user_id = ?", userID)
	if playlistID != nil {
		query = query.Where("playlist_id = ?", *playlistID)
	}

	var records []Progress
	err := query.Order("updated_at DESC").Find(&records).Error
	return records, err
}

// Upsert writes a merged progress record under the (user_id, video_id)
// uniqueness constraint. Quiz fields and watch fields are written together so
// the caller must merge against the current row first.
func Upsert(db *gorm.DB, record *Progress) error {
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"playlist_id":        record.PlaylistID,
			"is_video_completed": record.IsVideoCompleted,
			"video_watch_time":   record.VideoWatchTime,
			"is_quiz_completed":  record.IsQuizCompleted,
			"quiz_score":         record.QuizScore,
			"quiz_attempts":      record.QuizAttempts,
			"completed_at":       record.CompletedAt,
			"updated_at":         time.Now().UTC(),
		}),
	}).Create(record).Error
}

// MarkTokenIssued flips the token_issued flag for a user/video pair. This is
// a separate write from token insertion, so the two can diverge when the
// process dies between them; CountTokenDivergence surfaces that.
func MarkTokenIssued(db *gorm.DB, userID, videoID uuid.UUID) error {
	return db.Model(&Progress{}).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		Update("token_issued", true).Error
}

// CountCompletedVideos returns how many videos in a playlist the user has
// completed watching.
func CountCompletedVideos(db *gorm.DB, userID, playlistID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Progress{}).
		Where("user_id = ? AND playlist_id = ? AND is_video_completed = ?", userID, playlistID, true).
		Count(&count).Error
	return count, err
}

// CountTokenDivergence counts progress rows whose token_issued flag disagrees
// with the learning_tokens table. Logged at startup for visibility; rows are
// not repaired automatically.
func CountTokenDivergence(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Progress{}).
		Where(`token_issued = ? AND NOT EXISTS (
			SELECT 1 FROM learning_tokens lt
			WHERE lt.user_id = user_progress.user_id AND lt.video_id = user_progress.video_id
		)`, true).
		Or(`token_issued = ? AND EXISTS (
			SELECT 1 FROM learning_tokens lt
			WHERE lt.user_id = user_progress.user_id AND lt.video_id = user_progress.video_id
		)`, false).
		Count(&count).Error
	return count, err
}
