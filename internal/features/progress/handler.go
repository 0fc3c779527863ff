package progress

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/realtime"
	"github.com/credtube/credtube-server-go/pkg/response"
)

// Handler processes progress HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	hub    *realtime.Hub
}

// NewHandler constructs a progress handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, hub *realtime.Hub) *Handler {
	return &Handler{db: db, logger: logger, hub: hub}
}

type recordRequest struct {
	VideoID   string `json:"videoId" binding:"required"`
	WatchTime int    `json:"watchTime"`
	Completed bool   `json:"completed"`
}

// Record merges a watch event into the user's progress for a video. Stale
// reports never move watch time backwards, and completion latches.
func (h *Handler) Record(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid progress payload", err)
		return
	}

	if req.WatchTime < 0 {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "watchTime cannot be negative", nil)
		return
	}

	videoID, err := uuid.Parse(req.VideoID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	vid, err := video.Get(h.db, videoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	record, err := Get(h.db, requester.ID, videoID)
	if err != nil && !errors.Is(err, ErrProgressNotFound) {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load progress", err)
		return
	}

	wasCompleted := record.IsVideoCompleted

	record.UserID = requester.ID
	record.VideoID = videoID
	record.PlaylistID = vid.PlaylistID

	record = ApplyWatchEvent(record, WatchEvent{
		WatchTime:     req.WatchTime,
		Completed:     req.Completed,
		VideoDuration: vid.Duration,
	})

	if err := Upsert(h.db, &record); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to save progress", err)
		return
	}

	// Enrollment percentage only moves when a video completes
	if record.IsVideoCompleted && !wasCompleted {
		h.recomputeEnrollment(requester.ID, vid.PlaylistID)
	}

	h.hub.EmitToUser(requester.ID.String(), "progress:updated", map[string]any{
		"videoId":          videoID.String(),
		"playlistId":       vid.PlaylistID.String(),
		"videoWatchTime":   record.VideoWatchTime,
		"isVideoCompleted": record.IsVideoCompleted,
	})

	response.Success(c, http.StatusOK, record, "", nil)
}

// List returns the authenticated user's progress records.
func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	var playlistID *uuid.UUID
	if playlistParam := c.Query("playlistId"); playlistParam != "" {
		parsed, err := uuid.Parse(playlistParam)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid playlist id", err)
			return
		}
		playlistID = &parsed
	}

	records, err := ListForUser(h.db, requester.ID, playlistID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list progress", err)
		return
	}

	response.Success(c, http.StatusOK, records, "", nil)
}

func (h *Handler) recomputeEnrollment(userID, playlistID uuid.UUID) {
	completed, err := CountCompletedVideos(h.db, userID, playlistID)
	if err != nil {
		h.logger.Error("failed to count completed videos", slog.String("error", err.Error()))
		return
	}

	total, err := video.CountActive(h.db, playlistID)
	if err != nil {
		h.logger.Error("failed to count playlist videos", slog.String("error", err.Error()))
		return
	}

	pct := EnrollmentPercentage(completed, total)
	if err := playlist.SetEnrollmentProgress(h.db, userID, playlistID, pct); err != nil {
		h.logger.Error("failed to update enrollment progress",
			slog.String("playlistId", playlistID.String()),
			slog.String("error", err.Error()),
		)
	}
}
