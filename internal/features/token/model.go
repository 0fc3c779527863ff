package token

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// Token is an issued learning credential. The full credential document lives
// in CredentialJSON; the row columns are the queryable projection of it.
type Token struct {
	types.BaseModel

	UserID          uuid.UUID              `gorm:"type:uuid;not null;column:user_id;index" json:"userId"`
	VideoID         uuid.UUID              `gorm:"type:uuid;not null;column:video_id;index" json:"videoId"`
	PlaylistID      uuid.UUID              `gorm:"type:uuid;not null;column:playlist_id" json:"playlistId"`
	CredentialJSON  types.JSON             `gorm:"type:jsonb;not null;column:credential_json" json:"credentialJson"`
	CredentialHash  string                 `gorm:"type:varchar(255);not null;uniqueIndex;column:credential_hash" json:"credentialHash"`
	IssuerDID       string                 `gorm:"type:varchar(255);not null;column:issuer_did" json:"issuerDid"`
	SubjectDID      string                 `gorm:"type:varchar(255);not null;column:subject_did" json:"subjectDid"`
	Status          types.CredentialStatus `gorm:"type:varchar(20);not null;default:'issued'" json:"status"`
	VerificationURL string                 `gorm:"type:text;column:verification_url" json:"verificationUrl"`
	IssuedAt        time.Time              `gorm:"not null;column:issued_at" json:"issuedAt"`
	ExpiresAt       *time.Time             `gorm:"column:expires_at" json:"expiresAt,omitempty"`
	VerifiedAt      *time.Time             `gorm:"column:verified_at" json:"verifiedAt,omitempty"`
	RevokedAt       *time.Time             `gorm:"column:revoked_at" json:"revokedAt,omitempty"`

	Video    *video.Video       `gorm:"foreignKey:VideoID" json:"video,omitempty"`
	Playlist *playlist.Playlist `gorm:"foreignKey:PlaylistID" json:"playlist,omitempty"`
}

// TableName overrides the default table name.
func (Token) TableName() string { return "learning_tokens" }

// Issue builds the credential document for a passed quiz and inserts the
// token row. The caller flips user_progress.token_issued afterwards as a
// separate write; there is deliberately no transaction spanning the two
// tables (see CountTokenDivergence in the progress package).
func Issue(db *gorm.DB, issuer config.IssuerConfig, in CredentialInput) (*Token, error) {
	issuedAt := time.Now().UTC()
	in.IssuedAt = issuedAt

	credential := BuildCredential(issuer, in)
	hash := NewCredentialHash(in.UserID, in.Score)

	payload, err := json.Marshal(credential)
	if err != nil {
		return nil, err
	}

	expires := issuedAt.Add(CredentialTTL)
	record := Token{
		UserID:          in.UserID,
		VideoID:         in.VideoID,
		PlaylistID:      in.PlaylistID,
		CredentialJSON:  types.JSON(payload),
		CredentialHash:  hash,
		IssuerDID:       issuer.DID,
		SubjectDID:      SubjectDID(in.UserID),
		Status:          types.CredentialStatusIssued,
		VerificationURL: issuer.VerificationURL + "/" + hash,
		IssuedAt:        issuedAt,
		ExpiresAt:       &expires,
	}

	if err := db.Create(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

// GetByID retrieves a token with its video and playlist.
func GetByID(db *gorm.DB, id uuid.UUID) (Token, error) {
	var record Token
	err := db.Preload("Video").Preload("Playlist").First(&record, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return record, ErrTokenNotFound
		}
		return record, err
	}
	return record, nil
}

// GetByHash retrieves a token by its credential hash.
func GetByHash(db *gorm.DB, hash string) (Token, error) {
	var record Token
	err := db.Preload("Video").Preload("Playlist").First(&record, "credential_hash = ?", hash).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return record, ErrTokenNotFound
		}
		return record, err
	}
	return record, nil
}

// ListForUser returns all of a user's tokens, newest first, each enriched
// with its video and playlist. The gallery shows the full set, so there is
// no pagination here.
func ListForUser(db *gorm.DB, userID uuid.UUID) ([]Token, error) {
	var records []Token
	err := db.Preload("Video").Preload("Playlist").
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&records).Error
	return records, err
}

// MarkVerified stamps verified_at and promotes the status. Repeat
// verifications keep the original timestamp.
func MarkVerified(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&Token{}).
		Where("id = ? AND verified_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":      types.CredentialStatusVerified,
			"verified_at": time.Now().UTC(),
		}).Error
}

// Revoke marks a token revoked.
func Revoke(db *gorm.DB, id uuid.UUID) error {
	result := db.Model(&Token{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Updates(map[string]interface{}{
			"status":     types.CredentialStatusRevoked,
			"revoked_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTokenNotFound
	}
	return nil
}

// CountAll returns the total number of issued tokens.
func CountAll(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Token{}).Count(&count).Error
	return count, err
}
