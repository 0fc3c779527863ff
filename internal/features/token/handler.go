package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/credtube/credtube-server-go/pkg/middleware"
	"github.com/credtube/credtube-server-go/pkg/response"
)

// Handler processes learning token HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a token handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns every token the authenticated user has earned, enriched with
// video and playlist details.
func (h *Handler) List(c *gin.Context) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	records, err := ListForUser(h.db, requester.ID)
	if err != nil {
		h.respondError(c, err, "failed to list tokens")
		return
	}

	response.Success(c, http.StatusOK, records, "", nil)
}

// GetByID returns a single token owned by the authenticated user.
func (h *Handler) GetByID(c *gin.Context) {
	record, ok := h.loadOwnedToken(c)
	if !ok {
		return
	}

	response.Success(c, http.StatusOK, record, "", nil)
}

// Export returns the credential as a downloadable JSON artifact: the embedded
// credential document plus the row metadata, matching what the gallery
// displays so the export round-trips.
func (h *Handler) Export(c *gin.Context) {
	record, ok := h.loadOwnedToken(c)
	if !ok {
		return
	}

	artifact := map[string]interface{}{}
	if len(record.CredentialJSON) > 0 {
		if err := json.Unmarshal(record.CredentialJSON, &artifact); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "stored credential is not valid JSON", err)
			return
		}
	}

	artifact["tokenId"] = record.ID.String()
	artifact["credentialHash"] = record.CredentialHash
	artifact["issuerDID"] = record.IssuerDID
	artifact["subjectDID"] = record.SubjectDID
	artifact["status"] = record.Status
	artifact["issuedAt"] = record.IssuedAt.UTC().Format(time.RFC3339)
	artifact["verificationUrl"] = record.VerificationURL
	artifact["downloadedAt"] = time.Now().UTC().Format(time.RFC3339)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=credential-%s.json", record.ID))
	c.JSON(http.StatusOK, artifact)
}

// VerifyByID runs the hash check for a token and stamps verified_at on
// success.
func (h *Handler) VerifyByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid token id", err)
		return
	}

	record, err := GetByID(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load token")
		return
	}

	verified := Verify(record.CredentialHash, record.UserID)
	if verified {
		if err := MarkVerified(h.db, record.ID); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to record verification", err)
			return
		}
	}

	response.Success(c, http.StatusOK, gin.H{
		"verified":       verified,
		"credentialHash": record.CredentialHash,
		"subjectDid":     record.SubjectDID,
	}, "", nil)
}

// VerifyByHash is the public verification endpoint: anyone holding a
// credential hash can check it without authenticating.
func (h *Handler) VerifyByHash(c *gin.Context) {
	hash := c.Param("hash")
	if hash == "" {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "credential hash is required", nil)
		return
	}

	record, err := GetByHash(h.db, hash)
	if err != nil {
		h.respondError(c, err, "failed to load token")
		return
	}

	verified := Verify(record.CredentialHash, record.UserID)

	data := gin.H{
		"verified":   verified,
		"status":     record.Status,
		"issuerDid":  record.IssuerDID,
		"subjectDid": record.SubjectDID,
		"issuedAt":   record.IssuedAt.UTC().Format(time.RFC3339),
	}
	if record.Video != nil {
		data["videoTitle"] = record.Video.Title
	}
	if record.Playlist != nil {
		data["playlistTitle"] = record.Playlist.Title
	}

	response.Success(c, http.StatusOK, data, "", nil)
}

// RevokeByID marks a token revoked. Admin only.
func (h *Handler) RevokeByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid token id", err)
		return
	}

	if err := Revoke(h.db, id); err != nil {
		h.respondError(c, err, "failed to revoke token")
		return
	}

	response.Success(c, http.StatusOK, true, "Token revoked.", nil)
}

func (h *Handler) loadOwnedToken(c *gin.Context) (Token, bool) {
	requester, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required", nil)
		return Token{}, false
	}

	id, err := uuid.Parse(c.Param("tokenId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid token id", err)
		return Token{}, false
	}

	record, err := GetByID(h.db, id)
	if err != nil {
		h.respondError(c, err, "failed to load token")
		return Token{}, false
	}

	if record.UserID != requester.ID {
		h.respondError(c, ErrNotTokenOwner, "token belongs to another user")
		return Token{}, false
	}

	return record, true
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrTokenNotFound):
		status = http.StatusNotFound
		message = "Learning token not found."
	case errors.Is(err, ErrNotTokenOwner):
		status = http.StatusForbidden
		message = "You do not own this token."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
