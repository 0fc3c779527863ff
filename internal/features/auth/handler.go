package auth

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/response"
)

// Handler processes authentication HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cfg    *config.Config
}

// NewHandler constructs an auth handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cfg *config.Config) *Handler {
	return &Handler{
		db:     db,
		logger: logger,
		cfg:    cfg,
	}
}

// Register creates a new user account.
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid registration payload", err)
		return
	}

	authResp, err := Register(h.db, RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "registration failed")
		return
	}

	response.Created(c, authResp, "Registration successful")
}

// Login authenticates a user and returns JWT tokens.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid login payload", err)
		return
	}

	authResp, err := Login(h.db, LoginInput{
		Email:    req.Email,
		Password: req.Password,
	}, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "login failed")
		return
	}

	// Responses carrying JWTs must never be cached
	response.SuccessNoCache(c, http.StatusOK, authResp, "Login successful")
}

// Google exchanges an OAuth authorization code for a signed-in session,
// creating the account on first sign-in.
func (h *Handler) Google(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid google sign-in payload", err)
		return
	}

	profile, err := ExchangeGoogleCode(c.Request.Context(), h.cfg.Google, req.Code)
	if err != nil {
		h.respondError(c, err, "google sign-in failed")
		return
	}

	authResp, err := GoogleSignIn(h.db, profile, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "google sign-in failed")
		return
	}

	response.SuccessNoCache(c, http.StatusOK, authResp, "Login successful")
}

// Logout clears the user's refresh token.
func (h *Handler) Logout(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "no access token provided", nil)
		return
	}

	if err := Logout(h.db, ExtractToken(authHeader), h.getTokenConfig()); err != nil {
		h.respondError(c, err, "logout failed")
		return
	}

	response.Success(c, http.StatusOK, true, "Logout successful", nil)
}

// RefreshToken generates new tokens using a refresh token.
func (h *Handler) RefreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid refresh token payload", err)
		return
	}

	tokenPair, err := RefreshAccessToken(h.db, req.RefreshToken, h.getTokenConfig())
	if err != nil {
		h.respondError(c, err, "token refresh failed")
		return
	}

	response.SuccessNoCache(c, http.StatusOK, tokenPair, "")
}

func (h *Handler) getTokenConfig() TokenConfig {
	return TokenConfig{
		JWTSecret:          h.cfg.JWTSecret,
		JWTRefreshSecret:   h.cfg.JWTRefreshSecret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = "Invalid email or password"
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Missing required fields"
	case errors.Is(err, ErrInvalidEmail):
		status = http.StatusBadRequest
		message = "Invalid email format"
	case errors.Is(err, ErrWeakPassword):
		status = http.StatusBadRequest
		message = "Password must be at least 8 characters long"
	case errors.Is(err, ErrWrongProvider):
		status = http.StatusBadRequest
		message = "This account uses a different sign-in method"
	case errors.Is(err, ErrInvalidToken):
		status = http.StatusUnauthorized
		message = "Invalid or expired token"
	case errors.Is(err, ErrGoogleExchangeFailed):
		status = http.StatusUnauthorized
		message = "Google sign-in failed"
	case errors.Is(err, user.ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already exists"
	case errors.Is(err, user.ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found"
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
