package auth

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/internal/utils/jwt"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/types"
)

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

type AuthResponse struct {
	User         *user.User `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Register creates a new local account with the default user role.
func Register(db *gorm.DB, input RegisterInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Name == "" || input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	if !emailRegex.MatchString(input.Email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < 8 {
		return nil, ErrWeakPassword
	}

	newUser, err := user.Create(db, user.CreateInput{
		Name:         input.Name,
		Email:        input.Email,
		Password:     input.Password,
		AuthProvider: types.AuthProviderLocal,
	})
	if err != nil {
		return nil, err
	}

	return issueTokens(db, &newUser, cfg)
}

// Login authenticates a local user and returns tokens.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*AuthResponse, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if usr.AuthProvider != types.AuthProviderLocal {
		return nil, ErrWrongProvider
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	return issueTokens(db, &usr, cfg)
}

// GoogleProfile is the subset of the Google userinfo response the server uses.
type GoogleProfile struct {
	Email   string
	Name    string
	Picture string
}

// ExchangeGoogleCode swaps an OAuth authorization code for the user's Google
// profile via the userinfo API.
func ExchangeGoogleCode(ctx context.Context, cfg config.GoogleConfig, code string) (*GoogleProfile, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		return nil, ErrGoogleExchangeFailed
	}

	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(oauthCfg.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	if info.Email == "" {
		return nil, ErrGoogleExchangeFailed
	}

	return &GoogleProfile{
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	}, nil
}

// GoogleSignIn signs a user in with a Google profile, creating the account on
// first sign-in.
func GoogleSignIn(db *gorm.DB, profile *GoogleProfile, cfg TokenConfig) (*AuthResponse, error) {
	usr, err := user.GetByEmail(db, profile.Email)
	if err != nil {
		name := profile.Name
		if name == "" {
			name = profile.Email
		}

		input := user.CreateInput{
			Name:         name,
			Email:        profile.Email,
			AuthProvider: types.AuthProviderGoogle,
		}
		if profile.Picture != "" {
			input.AvatarURL = &profile.Picture
		}

		usr, err = user.Create(db, input)
		if err != nil {
			return nil, err
		}
	}

	return issueTokens(db, &usr, cfg)
}

// Logout clears the refresh token for a user.
func Logout(db *gorm.DB, accessToken string, cfg TokenConfig) error {
	// Expired tokens can still log out
	claims, err := jwt.VerifyToken(accessToken, cfg.JWTSecret)
	if err != nil {
		claims, err = jwt.DecodeWithoutVerify(accessToken)
		if err != nil {
			return ErrInvalidToken
		}
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return err
	}

	return db.Model(&user.User{}).Where("id = ?", usr.ID).Update("refresh_token", nil).Error
}

// RefreshAccessToken generates a new token pair using a refresh token.
func RefreshAccessToken(db *gorm.DB, refreshToken string, cfg TokenConfig) (*jwt.TokenPair, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return nil, ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return nil, err
	}

	// Rotation: the presented token must be the stored one
	if usr.RefreshToken == nil || *usr.RefreshToken != refreshToken {
		return nil, ErrInvalidToken
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	newRefreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&user.User{}).Where("id = ?", usr.ID).Update("refresh_token", newRefreshToken).Error; err != nil {
		return nil, err
	}

	return &jwt.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
	}, nil
}

// ExtractToken extracts the bearer token from an Authorization header.
func ExtractToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
}

func issueTokens(db *gorm.DB, usr *user.User, cfg TokenConfig) (*AuthResponse, error) {
	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	if err := db.Model(&user.User{}).Where("id = ?", usr.ID).Update("refresh_token", refreshToken).Error; err != nil {
		return nil, err
	}
	usr.RefreshToken = &refreshToken

	return &AuthResponse{
		User:         usr,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
