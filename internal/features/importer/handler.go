package importer

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/response"
	"github.com/credtube/credtube-server-go/pkg/youtube"
)

// Handler processes YouTube import requests.
type Handler struct {
	db      *gorm.DB
	logger  *slog.Logger
	fetcher youtube.MetadataFetcher
}

// NewHandler constructs an importer handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, fetcher youtube.MetadataFetcher) *Handler {
	return &Handler{db: db, logger: logger, fetcher: fetcher}
}

type importRequest struct {
	URL string `json:"url" binding:"required"`
}

// ImportYouTube imports the playlist or video a URL points to. Admin only.
func (h *Handler) ImportYouTube(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "YouTube URL is required", err)
		return
	}

	result, err := ImportURL(c.Request.Context(), h.db, h.fetcher, req.URL, requester.ID)
	if err != nil {
		switch {
		case errors.Is(err, youtube.ErrInvalidURL):
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Invalid YouTube URL format", err)
		case errors.Is(err, youtube.ErrNotFound):
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "YouTube resource not found.", err)
		case errors.Is(err, playlist.ErrPlaylistExists):
			response.ErrorWithLog(h.logger, c, http.StatusConflict, "Playlist already imported.", err)
		default:
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to fetch YouTube data", err)
		}
		return
	}

	response.Created(c, result, "Import completed.")
}
