package user

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// User represents a system user.
type User struct {
	types.BaseModel

	Name         string             `gorm:"type:varchar(255);not null" json:"name"`
	Email        string             `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	Password     string             `gorm:"type:varchar(255);not null;default:''" json:"-"`
	AuthProvider types.AuthProvider `gorm:"type:varchar(20);not null;default:'local';column:auth_provider" json:"authProvider"`
	AvatarURL    *string            `gorm:"type:text;column:avatar_url" json:"avatarUrl,omitempty"`
	DID          string             `gorm:"type:varchar(255);column:did" json:"did"`
	RefreshToken *string            `gorm:"type:text;column:refresh_token" json:"-"`

	// Relations
	Roles []UserRole `gorm:"foreignKey:UserID" json:"roles,omitempty"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// UserRole assigns an application role to a user.
type UserRole struct {
	types.BaseModel

	UserID uuid.UUID  `gorm:"type:uuid;not null;column:user_id;uniqueIndex:idx_user_role" json:"userId"`
	Role   types.Role `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_role" json:"role"`
}

// TableName overrides the default table name.
func (UserRole) TableName() string { return "user_roles" }

// HasRole reports whether the user holds the given role. Roles must be
// preloaded.
func (u *User) HasRole(role types.Role) bool {
	for _, r := range u.Roles {
		if r.Role == role {
			return true
		}
	}
	return false
}

// ListFilters defines user query filters.
type ListFilters struct {
	Keyword   string
	Role      types.Role
	ExcludeID *uuid.UUID
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	Name         string
	Email        string
	Password     string
	AuthProvider types.AuthProvider
	AvatarURL    *string
	Roles        []types.Role
}

// UpdateInput captures mutable user fields.
type UpdateInput struct {
	Name              *string
	Email             *string
	Password          *string
	AvatarURL         *string
	AvatarURLProvided bool
}

// List queries users with filters and pagination.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]User, int64, error) {
	query := db.Model(&User{})

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", keyword, keyword)
	}

	if filters.Role != "" {
		query = query.Where("id IN (SELECT user_id FROM user_roles WHERE role = ?)", filters.Role)
	}

	if filters.ExcludeID != nil {
		query = query.Where("id != ?", *filters.ExcludeID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []User
	if err := query.Preload("Roles").Order("created_at DESC").Offset(params.Skip).Limit(params.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Get retrieves a user by ID with roles preloaded.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var user User
	if err := db.Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// GetByEmail retrieves a user by email with roles preloaded.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var user User
	if err := db.Preload("Roles").First(&user, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return user, ErrUserNotFound
		}
		return user, err
	}
	return user, nil
}

// Create inserts a new user. Local accounts require a password of at least 8
// characters; OAuth accounts are stored without one.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	provider := input.AuthProvider
	if provider == "" {
		provider = types.AuthProviderLocal
	}

	user := User{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		AuthProvider: provider,
		AvatarURL:    trimStringPtr(input.AvatarURL),
	}

	if provider == types.AuthProviderLocal {
		if len(input.Password) < 8 {
			return User{}, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
		if err != nil {
			return User{}, err
		}
		user.Password = string(hashedPassword)
	}

	roles := input.Roles
	if len(roles) == 0 {
		roles = []types.Role{types.RoleUser}
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		// Subject DID is derived from the assigned ID
		user.DID = "did:credtube:user:" + user.ID.String()
		if err := tx.Model(&User{}).Where("id = ?", user.ID).Update("did", user.DID).Error; err != nil {
			return err
		}

		for _, role := range roles {
			if err := tx.Create(&UserRole{UserID: user.ID, Role: role}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if strings.Contains(err.Error(), "users_email_key") || strings.Contains(err.Error(), "idx_users_email") {
			return user, ErrEmailTaken
		}
		return user, err
	}

	return Get(db, user.ID)
}

// Update modifies an existing user.
func Update(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	user, err := Get(db, id)
	if err != nil {
		return user, err
	}

	updates := map[string]interface{}{}

	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return user, errors.New("name cannot be empty")
		}
		updates["name"] = trimmed
	}

	if input.Email != nil {
		trimmed := strings.ToLower(strings.TrimSpace(*input.Email))
		if trimmed == "" {
			return user, errors.New("email cannot be empty")
		}
		updates["email"] = trimmed
	}

	if input.AvatarURLProvided {
		if input.AvatarURL == nil {
			updates["avatar_url"] = nil
		} else {
			updates["avatar_url"] = strings.TrimSpace(*input.AvatarURL)
		}
	}

	if input.Password != nil {
		if user.AuthProvider != types.AuthProviderLocal {
			return user, ErrPasswordNotSupported
		}
		if len(*input.Password) < 8 {
			return user, ErrInvalidPassword
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*input.Password), 10)
		if err != nil {
			return user, err
		}
		updates["password"] = string(hashedPassword)
	}

	if len(updates) > 0 {
		if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			if strings.Contains(err.Error(), "users_email_key") || strings.Contains(err.Error(), "idx_users_email") {
				return user, ErrEmailTaken
			}
			return user, err
		}
	}

	return Get(db, id)
}

// Delete removes a user and their role assignments.
func Delete(db *gorm.DB, id uuid.UUID) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&UserRole{}, "user_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&User{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

// AssignRole grants a role to a user, ignoring duplicates.
func AssignRole(db *gorm.DB, userID uuid.UUID, role types.Role) error {
	err := db.Create(&UserRole{UserID: userID, Role: role}).Error
	if err != nil && strings.Contains(err.Error(), "idx_user_role") {
		return nil
	}
	return err
}

// ComparePassword checks if the provided password matches the user's hashed password.
func (u *User) ComparePassword(password string) bool {
	if u.Password == "" {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

func trimStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
