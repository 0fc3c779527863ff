package quiz

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/internal/features/playlist"
	"github.com/credtube/credtube-server-go/internal/features/progress"
	"github.com/credtube/credtube-server-go/internal/features/token"
	"github.com/credtube/credtube-server-go/internal/features/user"
	"github.com/credtube/credtube-server-go/internal/features/video"
	"github.com/credtube/credtube-server-go/pkg/config"
	"github.com/credtube/credtube-server-go/pkg/email"
	"github.com/credtube/credtube-server-go/pkg/metrics"
	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/pagination"
	"github.com/credtube/credtube-server-go/pkg/realtime"
	"github.com/credtube/credtube-server-go/pkg/request"
	"github.com/credtube/credtube-server-go/pkg/response"
	"github.com/credtube/credtube-server-go/pkg/types"
)

// Handler processes quiz HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	issuer config.IssuerConfig
	hub    *realtime.Hub
	mailer *email.Client
}

// NewHandler constructs a quiz handler. mailer may be nil when SMTP is not
// configured; issuance then skips the notification email.
func NewHandler(db *gorm.DB, logger *slog.Logger, issuer config.IssuerConfig, hub *realtime.Hub, mailer *email.Client) *Handler {
	return &Handler{db: db, logger: logger, issuer: issuer, hub: hub, mailer: mailer}
}

// GetForVideo returns the active quiz for a video with answer keys stripped.
func (h *Handler) GetForVideo(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	quiz, err := GetActiveByVideo(h.db, videoID)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	view, err := ForLearner(quiz)
	if err != nil {
		h.respondError(c, err, "failed to prepare quiz")
		return
	}

	response.Success(c, http.StatusOK, view, "", nil)
}

type submitRequest struct {
	Answers map[string]int `json:"answers" binding:"required"`
}

// Submit scores a quiz attempt, records progress, and issues a learning
// token on every pass. The computed score is always returned: persistence
// failures after scoring are reported inside the response data instead of
// failing the request.
func (h *Handler) Submit(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	quizID, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid submission payload", err)
		return
	}

	answers, err := parseAnswers(req.Answers)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "answer keys must be question indexes", err)
		return
	}

	quiz, err := Get(h.db, quizID)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	questions, err := ParseQuestions(quiz.Questions)
	if err != nil {
		h.respondError(c, err, "failed to parse quiz questions")
		return
	}

	score, err := Score(questions, answers)
	if err != nil {
		h.respondError(c, err, "failed to score submission")
		return
	}
	passed := Passed(score, quiz.PassingScore)
	metrics.RecordQuizSubmission(passed)

	data := gin.H{
		"score":        score,
		"passed":       passed,
		"passingScore": quiz.PassingScore,
		"review":       BuildReview(questions, answers),
	}

	vid, err := video.Get(h.db, quiz.VideoID)
	if err != nil {
		h.logger.Error("failed to load video for submission", slog.String("quizId", quizID.String()), slog.String("error", err.Error()))
		data["progressError"] = "quiz result could not be saved"
		response.Success(c, http.StatusOK, data, "", nil)
		return
	}

	record, err := progress.Get(h.db, requester.ID, quiz.VideoID)
	if err != nil && !errors.Is(err, progress.ErrProgressNotFound) {
		data["progressError"] = "quiz result could not be saved"
		response.Success(c, http.StatusOK, data, "", nil)
		return
	}

	record.UserID = requester.ID
	record.VideoID = quiz.VideoID
	record.PlaylistID = vid.PlaylistID
	record = progress.ApplyQuizResult(record, progress.QuizResult{
		Score:  score,
		Passed: passed,
		At:     time.Now().UTC(),
	})

	if err := progress.Upsert(h.db, &record); err != nil {
		h.logger.Error("failed to save quiz progress", slog.String("quizId", quizID.String()), slog.String("error", err.Error()))
		data["progressError"] = "quiz result could not be saved"
		response.Success(c, http.StatusOK, data, "", nil)
		return
	}

	if MintsToken(passed) {
		h.issueToken(requester, quiz, questions, vid, score, data)
	}

	response.Success(c, http.StatusOK, data, "", nil)
}

func (h *Handler) issueToken(requester *user.User, quiz Quiz, questions []Question, vid video.Video, score int, data gin.H) {
	playlistTitle := ""
	if pl, err := playlist.Get(h.db, vid.PlaylistID); err == nil {
		playlistTitle = pl.Title
	}

	issued, err := token.Issue(h.db, h.issuer, token.CredentialInput{
		UserID:         requester.ID,
		UserName:       requester.Name,
		UserEmail:      requester.Email,
		VideoID:        vid.ID,
		VideoTitle:     vid.Title,
		YouTubeVideoID: vid.YouTubeVideoID,
		VideoDuration:  vid.Duration,
		PlaylistID:     vid.PlaylistID,
		PlaylistTitle:  playlistTitle,
		QuizTitle:      quiz.Title,
		QuestionCount:  len(questions),
		Score:          score,
		PassingScore:   quiz.PassingScore,
	})
	if err != nil {
		h.logger.Error("failed to issue learning token",
			slog.String("userId", requester.ID.String()),
			slog.String("videoId", vid.ID.String()),
			slog.String("error", err.Error()),
		)
		data["tokenError"] = "your quiz was completed but the token could not be issued"
		return
	}

	// Second write, deliberately outside any transaction with the insert
	if err := progress.MarkTokenIssued(h.db, requester.ID, vid.ID); err != nil {
		h.logger.Error("failed to flag token_issued",
			slog.String("userId", requester.ID.String()),
			slog.String("videoId", vid.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	metrics.RecordTokenIssued()

	data["tokenId"] = issued.ID.String()
	data["credentialHash"] = issued.CredentialHash
	data["verificationUrl"] = issued.VerificationURL

	h.hub.EmitToUser(requester.ID.String(), "token:issued", map[string]any{
		"tokenId":    issued.ID.String(),
		"videoId":    vid.ID.String(),
		"videoTitle": vid.Title,
		"score":      score,
	})

	if h.mailer != nil {
		go func(to, name, title string, score int, url string) {
			if err := h.mailer.SendCredentialIssued(to, name, title, score, url); err != nil {
				h.logger.Warn("failed to send credential email", slog.String("error", err.Error()))
			}
		}(requester.Email, requester.Name, vid.Title, score, issued.VerificationURL)
	}
}

// List returns paginated quizzes with answer keys included. Admin only.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Keyword:    c.Query("filterKeyword"),
		ActiveOnly: c.Query("includeInactive") != "true",
	}
	if videoParam := c.Query("videoId"); videoParam != "" {
		videoID, err := uuid.Parse(videoParam)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
			return
		}
		filters.VideoID = &videoID
	}

	quizzes, total, err := List(h.db, filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to list quizzes", err)
		return
	}

	response.Success(c, http.StatusOK, quizzes, "", pagination.MetadataFrom(total, params))
}

// GetByID returns a quiz including answer keys. Admin only.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	quiz, err := Get(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load quiz")
		return
	}

	response.Success(c, http.StatusOK, quiz, "", nil)
}

type createQuizRequest struct {
	VideoID      string     `json:"videoId" binding:"required"`
	Title        string     `json:"title" binding:"required"`
	Description  *string    `json:"description"`
	QuizType     string     `json:"quizType"`
	Questions    []Question `json:"questions" binding:"required"`
	PassingScore int        `json:"passingScore"`
	TimeLimit    int        `json:"timeLimit"`
}

// Create inserts a new quiz. Admin only.
func (h *Handler) Create(c *gin.Context) {
	var req createQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz payload", err)
		return
	}

	videoID, err := uuid.Parse(req.VideoID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	if _, err := video.Get(h.db, videoID); err != nil {
		if errors.Is(err, video.ErrVideoNotFound) {
			response.ErrorWithLog(h.logger, c, http.StatusNotFound, "Video not found.", err)
			return
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load video", err)
		return
	}

	quiz, err := Create(h.db, CreateInput{
		VideoID:      videoID,
		Title:        req.Title,
		Description:  req.Description,
		QuizType:     types.QuizType(req.QuizType),
		Questions:    req.Questions,
		PassingScore: req.PassingScore,
		TimeLimit:    req.TimeLimit,
	})
	if err != nil {
		h.respondError(c, err, "failed to create quiz")
		return
	}

	response.Created(c, quiz, "")
}

// Update modifies an existing quiz. Admin only.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	body := map[string]interface{}{}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz payload", err)
		return
	}

	input := UpdateInput{}

	if raw, exists := body["title"]; exists {
		title, err := request.ReadString(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "title must be a string", err)
			return
		}
		input.Title = &title
	}

	if raw, exists := body["description"]; exists {
		input.DescProvided = true
		if raw != nil {
			desc, err := request.ReadString(raw)
			if err != nil {
				response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "description must be a string", err)
				return
			}
			input.Description = &desc
		}
	}

	if raw, exists := body["questions"]; exists && raw != nil {
		questions, err := decodeQuestions(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid questions payload", err)
			return
		}
		input.Questions = questions
	}

	if raw, exists := body["passingScore"]; exists {
		score, err := request.ReadInt(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "passingScore must be a number", err)
			return
		}
		input.PassingScore = &score
	}

	if raw, exists := body["timeLimit"]; exists {
		limit, err := request.ReadInt(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "timeLimit must be a number", err)
			return
		}
		input.TimeLimit = &limit
	}

	if raw, exists := body["isActive"]; exists {
		active, err := request.ReadBool(raw)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "isActive must be a boolean", err)
			return
		}
		input.Active = &active
	}

	quiz, err := Update(h.db, id, input)
	if err != nil {
		h.respondError(c, err, "failed to update quiz")
		return
	}

	response.Success(c, http.StatusOK, quiz, "Quiz updated successfully.", nil)
}

// Delete removes a quiz. Admin only.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("quizId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid quiz id", err)
		return
	}

	if err := Delete(h.db, id); err != nil {
		h.respondError(c, err, "failed to delete quiz")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func decodeQuestions(raw interface{}) ([]Question, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var questions []Question
	if err := json.Unmarshal(encoded, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func parseAnswers(raw map[string]int) (map[int]int, error) {
	answers := make(map[int]int, len(raw))
	for key, value := range raw {
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 {
			return nil, ErrInvalidAnswers
		}
		answers[index] = value
	}
	return answers, nil
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrQuizNotFound):
		status = http.StatusNotFound
		message = "Quiz not found."
	case errors.Is(err, ErrNoQuestions):
		status = http.StatusBadRequest
		message = "Quiz has no questions."
	case errors.Is(err, ErrEmptyTitle), errors.Is(err, ErrInvalidAnswers):
		status = http.StatusBadRequest
		message = err.Error()
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
