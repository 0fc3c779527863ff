package types

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role represents application role levels.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// CredentialStatus represents the lifecycle state of a learning token.
type CredentialStatus string

const (
	CredentialStatusPending  CredentialStatus = "pending"
	CredentialStatusIssued   CredentialStatus = "issued"
	CredentialStatusVerified CredentialStatus = "verified"
	CredentialStatusRevoked  CredentialStatus = "revoked"
)

// QuizType represents supported quiz formats.
type QuizType string

const (
	QuizTypeMultipleChoice QuizType = "multiple_choice"
	QuizTypeCoding         QuizType = "coding"
	QuizTypeTrueFalse      QuizType = "true_false"
)

// AuthProvider identifies how an account was created.
type AuthProvider string

const (
	AuthProviderLocal  AuthProvider = "local"
	AuthProviderGoogle AuthProvider = "google"
)

// DifficultyLevel labels playlist difficulty.
type DifficultyLevel string

const (
	DifficultyBeginner     DifficultyLevel = "beginner"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyAdvanced     DifficultyLevel = "advanced"
)

// BaseModel contains common fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// TimestampModel contains only timestamp fields (for models with custom IDs)
type TimestampModel struct {
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

// JSON represents a generic JSON blob stored in the database.
type JSON []byte

// Value implements driver.Valuer for JSON serialization.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return []byte(j), nil
}

// Scan implements sql.Scanner for JSON deserialization.
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = nil
	case []byte:
		*j = append((*j)[:0], v...)
	case string:
		*j = append((*j)[:0], v...)
	default:
		return fmt.Errorf("types.JSON: unsupported scan type %T", value)
	}
	return nil
}

// MarshalJSON passes through the stored JSON.
func (j JSON) MarshalJSON() ([]byte, error) {
	if j == nil {
		return []byte("null"), nil
	}
	return []byte(j), nil
}

// UnmarshalJSON stores the raw JSON bytes.
func (j *JSON) UnmarshalJSON(data []byte) error {
	if data == nil {
		*j = nil
		return nil
	}
	*j = append((*j)[:0], data...)
	return nil
}
