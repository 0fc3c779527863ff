package assignment

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/quiz"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/response"
)

// Handler processes assignment generation requests.
type Handler struct {
	db        *gorm.DB
	logger    *slog.Logger
	generator Generator
}

// NewHandler constructs an assignment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, generator Generator) *Handler {
	return &Handler{db: db, logger: logger, generator: generator}
}

// Generate builds an assignment for arbitrary content without persisting
// anything.
func (h *Handler) Generate(c *gin.Context) {
	var in Input
	if err := c.ShouldBindJSON(&in); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid assignment payload", err)
		return
	}

	generated, err := h.generator.Generate(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, ErrTitleRequired) {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "Video title is required", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to generate assignment", err)
		return
	}

	response.Success(c, http.StatusOK, generated, "", nil)
}

type fromAssignmentRequest struct {
	Subject string `json:"subject"`
	Topic   string `json:"topic"`
}

// QuizFromAssignment generates an assignment for a video and persists its
// quiz section as the video's quiz. Admin only.
func (h *Handler) QuizFromAssignment(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	// Body is optional; subject/topic refine the templates when present
	var req fromAssignmentRequest
	_ = c.ShouldBindJSON(&req)

	vid, err := video.Get(h.db, videoID)
	if err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	description := ""
	if vid.Description != nil {
		description = *vid.Description
	}

	generated, err := h.generator.Generate(c.Request.Context(), Input{
		VideoTitle:       vid.Title,
		VideoDescription: description,
		Subject:          req.Subject,
		Topic:            req.Topic,
	})
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "Failed to generate assignment", err)
		return
	}

	created, err := quiz.Create(h.db, quiz.CreateInput{
		VideoID:      videoID,
		Title:        generated.Quiz.Title,
		Questions:    generated.Quiz.Questions,
		PassingScore: generated.Quiz.PassingScore,
	})
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to save generated quiz", err)
		return
	}

	response.Created(c, gin.H{
		"quiz":       created,
		"practical":  generated.Practical,
		"reflection": generated.Reflection,
	}, "Quiz generated from assignment.")
}
