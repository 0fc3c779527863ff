package video

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/request"
	"github.com/credtube/credtube-server-go/pkg/response"
)

// Handler processes video HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a video handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns paginated videos, optionally scoped to a playlist.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword:    c.Query("filterKeyword"),
		ActiveOnly: c.Query("includeInactive") != "true",
	}

	if playlistParam := c.Query("playlistId"); playlistParam != "" {
		playlistID, err := uuid.Parse(playlistParam)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
			return
		}
		filters.PlaylistID = &playlistID
	}

	videos, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list videos", err)
		return
	}

	response.Success(c, http.StatusOK, videos, "", pagination.MetadataFrom(total, params))
}

// GetByID fetches a single video with its playlist.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	video, err := GetWithPlaylist(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load video")
		return
	}

	response.Success(c, http.StatusOK, video, "", nil)
}

type createRequest struct {
	PlaylistID     string  `json:"playlistId" binding:"required"`
	Title          string  `json:"title" binding:"required"`
	Description    *string `json:"description"`
	YouTubeVideoID string  `json:"youtubeVideoId" binding:"required"`
	ThumbnailURL   *string `json:"thumbnailUrl"`
	Duration       int     `json:"duration"`
	OrderIndex     int     `json:"orderIndex"`
}

// Create inserts a new video. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video payload", err)
		return
	}

	playlistID, err := uuid.Parse(req.PlaylistID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
		return
	}

	if _, err := playlist.Get(h.db, playlistID); err != nil {
		if errors.Is(err, playlist.ErrPlaylistNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Playlist not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load playlist", err)
		return
	}

	video, err := Create(h.db, CreateInput{
		PlaylistID:     playlistID,
		Title:          req.Title,
		Description:    req.Description,
		YouTubeVideoID: req.YouTubeVideoID,
		ThumbnailURL:   req.ThumbnailURL,
		Duration:       req.Duration,
		OrderIndex:     req.OrderIndex,
	})
	if err != nil {
		h.respondError(c, err, "failed to create video")
		return
	}

	response.Created(c, video, "")
}

// Update modifies an existing video. Admin only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video payload", err)
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

	if value, ok := body["duration"]; ok {
		num, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "duration must be a number", err)
			return
		}
		input.Duration = &num
	}

	if value, ok := body["orderIndex"]; ok {
		num, err := request.ReadInt(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "orderIndex must be a number", err)
			return
		}
		input.OrderIndex = &num
	}

	if value, ok := body["isActive"]; ok {
		val, err := request.ReadBool(value)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be boolean", err)
			return
		}
		input.Active = &val
	}

	video, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update video")
		return
	}

	response.Success(c, http.StatusOK, video, "", nil)
}

// Delete removes a video. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete video")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrVideoNotFound):
		status = http.StatusNotFound
		message = "Video not found."
	case errors.Is(err, ErrVideoExists):
		status = http.StatusConflict
		message = "Video already exists in this playlist."
	case errors.Is(err, ErrEmptyTitle):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
