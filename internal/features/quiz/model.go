package quiz

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// DefaultPassingScore applies when a quiz has no explicit threshold.
const DefaultPassingScore = 70

// Quiz represents an assessment attached to a video.
type Quiz struct {
	types.BaseModel

	VideoID      uuid.UUID      `gorm:"type:uuid;not null;column:video_id;index" json:"videoId"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  *string        `gorm:"type:text" json:"description,omitempty"`
	QuizType     types.QuizType `gorm:"type:varchar(20);not null;default:'multiple_choice';column:quiz_type" json:"quizType"`
	Questions    types.JSON     `gorm:"type:jsonb;not null" json:"questions"`
	PassingScore int            `gorm:"type:int;not null;default:70;column:passing_score" json:"passingScore"`
	TimeLimit    int            `gorm:"type:int;not null;default:0;column:time_limit" json:"timeLimit"`
	Active       bool           `gorm:"type:boolean;not null;default:true;column:is_active" json:"isActive"`
}

// TableName overrides the default table name.
func (Quiz) TableName() string { return "quizzes" }

// Question is a single quiz question. The Correct index and Explanation are
// stripped before learner-facing responses.
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// ParseQuestions decodes the stored question set.
func ParseQuestions(raw types.JSON) ([]Question, error) {
	if len(raw) == 0 {
		return nil, ErrNoQuestions
	}

	var questions []Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, err
	}

	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	return questions, nil
}

// EncodeQuestions serializes a question set for storage.
func EncodeQuestions(questions []Question) (types.JSON, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	return json.Marshal(questions)
}

// LearnerView is a quiz with answer keys stripped.
type LearnerView struct {
	Quiz
	Questions []LearnerQuestion `json:"questions"`
}

// LearnerQuestion omits the correct index and explanation.
type LearnerQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Type     string   `json:"type,omitempty"`
}

// ForLearner strips answer keys from a quiz for learner-facing responses.
func ForLearner(q Quiz) (LearnerView, error) {
	questions, err := ParseQuestions(q.Questions)
	if err != nil {
		return LearnerView{}, err
	}

	stripped := make([]LearnerQuestion, len(questions))
	for i, question := range questions {
		stripped[i] = LearnerQuestion{
			Question: question.Question,
			Options:  question.Options,
			Type:     question.Type,
		}
	}

	view := LearnerView{Quiz: q, Questions: stripped}
	view.Quiz.Questions = nil
	return view, nil
}

// ListFilters defines quiz query filters.
type ListFilters struct {
	VideoID    *uuid.UUID
	Keyword    string
	ActiveOnly bool
}

// CreateInput carries data for creating a new quiz.
type CreateInput struct {
	VideoID      uuid.UUID
	Title        string
	Description  *string
	QuizType     types.QuizType
	Questions    []Question
	PassingScore int
	TimeLimit    int
}

// UpdateInput captures mutable quiz fields.
type UpdateInput struct {
	Title        *string
	DescProvided bool
	Description  *string
	Questions    []Question
	PassingScore *int
	TimeLimit    *int
	Active       *bool
}

// List retrieves paginated quizzes with filters.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Quiz, int64, error) {
	query := db.Model(&Quiz{})

	if filters.VideoID != nil {
		query = query.Where("video_id = ?", *filters.VideoID)
	}

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ?", keyword)
	}

	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var quizzes []Quiz
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&quizzes).Error

	return quizzes, total, err
}

// Get retrieves a quiz by ID.
func Get(db *gorm.DB, id uuid.UUID) (Quiz, error) {
	var quiz Quiz
	if err := db.First(&quiz, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return quiz, ErrQuizNotFound
		}
		return quiz, err
	}
	return quiz, nil
}

// GetActiveByVideo retrieves the active quiz for a video.
func GetActiveByVideo(db *gorm.DB, videoID uuid.UUID) (Quiz, error) {
	var quiz Quiz
	if err := db.First(&quiz, "video_id = ? AND is_active = ?", videoID, true).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return quiz, ErrQuizNotFound
		}
		return quiz, err
	}
	return quiz, nil
}

// Create inserts a new quiz.
func Create(db *gorm.DB, input CreateInput) (Quiz, error) {
	raw, err := EncodeQuestions(input.Questions)
	if err != nil {
		return Quiz{}, err
	}

	passingScore := input.PassingScore
	if passingScore <= 0 {
		passingScore = DefaultPassingScore
	}

	quizType := input.QuizType
	if quizType == "" {
		quizType = types.QuizTypeMultipleChoice
	}

	quiz := Quiz{
		VideoID:      input.VideoID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		QuizType:     quizType,
		Questions:    raw,
		PassingScore: passingScore,
		TimeLimit:    input.TimeLimit,
		Active:       true,
	}

	if err := db.Create(&quiz).Error; err != nil {
		return quiz, err
	}

	return quiz, nil
}

// Update modifies an existing quiz.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (Quiz, error) {
	quiz, err := Get(db, id)
	if err != nil {
		return quiz, err
	}

	updates := map[string]interface{}{}

	if input.Title != nil {
		trimmed := strings.TrimSpace(*input.Title)
		if trimmed == "" {
			return quiz, ErrEmptyTitle
		}
		updates["title"] = trimmed
	}

	if input.DescProvided {
		updates["description"] = input.Description
	}

	if input.Questions != nil {
		raw, err := EncodeQuestions(input.Questions)
		if err != nil {
			return quiz, err
		}
		updates["questions"] = raw
	}

	if input.PassingScore != nil {
		updates["passing_score"] = *input.PassingScore
	}

	if input.TimeLimit != nil {
		updates["time_limit"] = *input.TimeLimit
	}

	if input.Active != nil {
		updates["is_active"] = *input.Active
	}

	if len(updates) > 0 {
		if err := db.Model(&Quiz{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return quiz, err
		}
	}

	return Get(db, id)
}

// Delete removes a quiz.
func Delete(db *gorm.DB, id uuid.UUID) error {
	result := db.Delete(&Quiz{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrQuizNotFound
	}
	return nil
}
