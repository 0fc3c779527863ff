package playlist

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/pkg/cache"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/request"
	"github.com/credtube/credtube-server-go/pkg/response"
	"github.com/credtube/credtube-server-go/pkg/types"
)

const playlistCacheTTL = 5 * time.Minute

// Handler processes playlist HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cache  cache.Client
}

// NewHandler constructs a playlist handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient}
}

// List returns paginated playlists with filters.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword:    c.Query("filterKeyword"),
		Tag:        c.Query("tag"),
		ActiveOnly: c.Query("includeInactive") != "true",
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		filters.Difficulty = types.DifficultyLevel(difficulty)
	}

	playlists, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list playlists", err)
		return
	}

	response.Success(c, http.StatusOK, playlists, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single playlist, serving from cache when possible.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("playlistId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	cacheKey := "playlist:" + id.String()
	var cached Playlist
	if err := cache.GetJSONValue(c.Request.Context(), h.cache, cacheKey, &cached); err == nil {
		response.Success(c, http.StatusOK, cached, "", nil)
		return
	}

	playlist, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load playlist")
		return
	}

	if err := cache.SetJSONValue(c.Request.Context(), h.cache, cacheKey, playlist, playlistCacheTTL); err != nil {
		h.logger.Warn("failed to cache playlist", slog.String("id", id.String()), slog.String("error", err.Error()))
	}

	response.Success(c, http.StatusOK, playlist, "", nil)
}

type createRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       *string  `json:"description"`
	YouTubePlaylistID string   `json:"youtubePlaylistId" binding:"required"`
	ThumbnailURL      *string  `json:"thumbnailUrl"`
	DifficultyLevel   string   `json:"difficultyLevel"`
	EstimatedDuration int      `json:"estimatedDuration"`
	Tags              []string `json:"tags"`
}

// Create inserts a new playlist. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist payload", err)
		return
	}

	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	playlist, err := Create(h.db, CreateInput{
		Title:             req.Title,
		Description:       req.Description,
		YouTubePlaylistID: req.YouTubePlaylistID,
		ThumbnailURL:      req.ThumbnailURL,
		DifficultyLevel:   types.DifficultyLevel(req.DifficultyLevel),
		EstimatedDuration: req.EstimatedDuration,
		Tags:              req.Tags,
		CreatedBy:         &requester.ID,
	})
	if err != nil {
		h.respondError(c, err, "failed to create playlist")
		return
	}

	response.Created(c, playlist, "")
}

// Update modifies an existing playlist. Admin only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("playlistId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist payload", err)
		return
	}

	input := UpdateInput{}

	if value, ok := body["title"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "title must be a string", err)
			return
		}
		input.Title = &str
	}

	if value, ok := body["description"]; ok {
		input.DescProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "description must be a string", err)
				return
			}
			input.Description = &str
		}
	}

	if value, ok := body["thumbnailUrl"]; ok {
		input.ThumbProvided = true
		if value != nil {
			str, err := request.ReadString(value)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "thumbnailUrl must be a string", err)
				return
			}
			input.ThumbnailURL = &str
		}
	}

	if value, ok := body["difficultyLevel"]; ok {
		str, err := request.ReadString(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "difficultyLevel must be a string", err)
			return
		}
		difficulty := types.DifficultyLevel(str)
		switch difficulty {
		case types.DifficultyBeginner, types.DifficultyIntermediate, types.DifficultyAdvanced:
		default:
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid difficulty level", fmt.Errorf("unknown difficulty %q", str))
			return
		}
		input.DifficultyLevel = &difficulty
	}

	if value, ok := body["estimatedDuration"]; ok {
		num, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "estimatedDuration must be a number", err)
			return
		}
		input.EstimatedDuration = &num
	}

	if value, ok := body["tags"]; ok {
		input.TagsProvided = true
		tags, err := request.ReadStringSlice(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "tags must be an array of strings", err)
			return
		}
		input.Tags = tags
	}

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	playlist, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update playlist")
		return
	}

	h.invalidateCache(c, id)
	response.Success(c, http.StatusOK, playlist, "", nil)
}

// Delete removes a playlist. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("playlistId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete playlist")
		return
	}

	h.invalidateCache(c, id)
	response.Success(c, http.StatusOK, true, "", nil)
}

// Enroll enrolls the authenticated user in a playlist.
func (h *Handler) Enroll(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	id, err := uuid.Parse(c.Param("playlistId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	enrollment, err := Enroll(h.db, requester.ID, id)
	if err != nil {
		h.respondError(c, err, "failed to enroll in playlist")
		return
	}

	response.Created(c, enrollment, "Enrolled successfully")
}

// MyEnrollments lists the authenticated user's enrollments.
func (h *Handler) MyEnrollments(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	enrollments, err := ListEnrollments(h.db, requester.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list enrollments", err)
		return
	}

	response.Success(c, http.StatusOK, enrollments, "", nil)
}

func (h *Handler) invalidateCache(c *gin.Context, id uuid.UUID) {
	if err := h.cache.Delete(c.Request.Context(), "playlist:"+id.String()); err != nil {
		h.logger.Warn("failed to invalidate playlist cache", slog.String("id", id.String()), slog.String("error", err.Error()))
	}
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrPlaylistNotFound):
		status = http.StatusNotFound
		message = "Playlist not found."
	case errors.Is(err, ErrPlaylistExists):
		status = http.StatusConflict
		message = "Playlist already imported."
	case errors.Is(err, ErrEmptyTitle):
		status = http.StatusBadRequest
		message = err.Error()
	case errors.Is(err, ErrNotEnrolled):
		status = http.StatusNotFound
		message = "Not enrolled in this playlist."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
