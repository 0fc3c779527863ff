package user

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/request"
	"github.com/credtube/credtube-server-go/pkg/response"
	"github.com/credtube/credtube-server-go/pkg/types"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+$`)

// Handler processes user HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c *gin.Context) {
	usr, ok := getUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// List returns paginated users with filters. Admin only.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword: c.Query("filterKeyword"),
	}
	if role := c.Query("role"); role != "" {
		filters.Role = types.Role(role)
	}

	users, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, users, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single user.
func (h *Handler) GetByID(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	// Users can read their own profile; everything else needs admin
	if requester.ID != id && !requester.HasRole(types.RoleAdmin) && !requester.HasRole(types.RoleModerator) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not authorized to get this user", nil)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Update modifies an existing user.
func (h *Handler) Update(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if requester.ID != id && !requester.HasRole(types.RoleAdmin) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not authorized to update this user", nil)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["name"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "name must be a string", err)
			return
		}
		input.Name = &str
	}

	if value, ok := body["email"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "email must be a string", err)
			return
		}
		if !emailRegex.MatchString(str) {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid email format", fmt.Errorf("email must be in valid format"))
			return
		}
		input.Email = &str
	}

	if value, ok := body["avatarUrl"]; ok {
		input.AvatarURLProvided = true
		if value == nil {
			input.AvatarURL = nil
		} else {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "avatarUrl must be a string", err)
				return
			}
			input.AvatarURL = &str
		}
	}

	if value, ok := body["password"]; ok {
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "password must be a string", err)
				return
			}
			input.Password = &str
		}
	}

	usr, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// AssignRole grants a role to a user. Admin only.
func (h *Handler) AssignRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid role payload", err)
		return
	}

	role := types.Role(req.Role)
	switch role {
	case types.RoleAdmin, types.RoleModerator, types.RoleUser:
	default:
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid role", fmt.Errorf("unknown role %q", req.Role))
		return
	}

	if _, err := Get(h.db, id); err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	if err := AssignRole(h.db, id, role); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to assign role", err)
		return
	}

	usr, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// Delete removes a user. Admins can delete anyone; users can delete themselves.
func (h *Handler) Delete(c *gin.Context) {
	requester, ok := getUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
		return
	}

	if requester.ID != id && !requester.HasRole(types.RoleAdmin) {
		response.ErrorWithLog(h.logger, c, http.StatusForbidden, "You are not authorized to delete this user", nil)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete user")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

// getUserFromContext retrieves the authenticated user placed in the Gin
// context by the auth middleware. It mirrors middleware.GetUserFromContext;
// the user package cannot import pkg/middleware without creating an import
// cycle.
func getUserFromContext(c *gin.Context) (*User, bool) {
	userVal, exists := c.Get("user")
	if !exists {
		return nil, false
	}

	if usr, ok := userVal.(*User); ok && usr != nil {
		return usr, true
	}

	if usr, ok := userVal.(User); ok {
		return &usr, true
	}

	return nil, false
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email already exists."
	case errors.Is(err, ErrInvalidPassword), errors.Is(err, ErrPasswordNotSupported):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		if err.Error() == "name cannot be empty" || err.Error() == "email cannot be empty" {
			status = http.StatusBadRequest
			message = err.Error()
		}
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
