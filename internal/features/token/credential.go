package token

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/credtube/credtube-server-go/pkg/config"
)

// CredentialTTL is how long an issued credential stays valid.
const CredentialTTL = 365 * 24 * time.Hour

// SchemaVersion identifies the credential document layout.
const SchemaVersion = "1.0"

// CredentialInput carries everything the credential document interpolates.
type CredentialInput struct {
	UserID         uuid.UUID
	UserName       string
	UserEmail      string
	VideoID        uuid.UUID
	VideoTitle     string
	YouTubeVideoID string
	VideoDuration  int
	PlaylistID     uuid.UUID
	PlaylistTitle  string
	QuizTitle      string
	QuestionCount  int
	Score          int
	PassingScore   int
	IssuedAt       time.Time
}

// Credential is the LFDT-style verifiable credential document stored in
// learning_tokens.credential_json and handed out on export.
type Credential struct {
	Context        []string         `json:"@context"`
	Type           []string         `json:"type"`
	ID             string           `json:"id"`
	SchemaVersion  string           `json:"schemaVersion"`
	Issuer         Issuer           `json:"issuer"`
	IssuanceDate   string           `json:"issuanceDate"`
	ExpirationDate string           `json:"expirationDate"`
	Subject        Subject          `json:"credentialSubject"`
	Evidence       []Evidence       `json:"evidence"`
	Status         RevocationStatus `json:"credentialStatus"`
	Proof          Proof            `json:"proof"`
}

type Issuer struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

type Subject struct {
	ID            string      `json:"id"`
	Type          []string    `json:"type"`
	Name          string      `json:"name"`
	Email         string      `json:"email"`
	HasCredential Achievement `json:"hasCredential"`
}

type Achievement struct {
	Type             string     `json:"type"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Course           string     `json:"course"`
	Video            VideoRef   `json:"video"`
	Assessment       Assessment `json:"assessment"`
	LearningOutcomes []string   `json:"learningOutcomes"`
	SkillsAcquired   []string   `json:"skillsAcquired"`
}

type VideoRef struct {
	Title    string `json:"title"`
	ID       string `json:"id"`
	URL      string `json:"url"`
	Duration int    `json:"duration"`
}

type Assessment struct {
	Type         string `json:"type"`
	Title        string `json:"title"`
	Score        int    `json:"score"`
	PassingScore int    `json:"passingScore"`
	Questions    int    `json:"questions"`
	CompletedAt  string `json:"completedAt"`
}

type Evidence struct {
	Type        string `json:"type"`
	Narrative   string `json:"narrative"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Genre       string `json:"genre"`
	Audience    string `json:"audience"`
}

type RevocationStatus struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type Proof struct {
	Type               string `json:"type"`
	Created            string `json:"created"`
	VerificationMethod string `json:"verificationMethod"`
	ProofPurpose       string `json:"proofPurpose"`
}

// SubjectDID derives the subject DID for a user.
func SubjectDID(userID uuid.UUID) string {
	return "did:credtube:user:" + userID.String()
}

// BuildCredential constructs the credential document. The proof block is a
// placeholder without signature bytes; nothing here is cryptographically
// signed.
func BuildCredential(issuer config.IssuerConfig, in CredentialInput) Credential {
	issuedAt := in.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = time.Now().UTC()
	}
	now := issuedAt.Format(time.RFC3339)
	expires := issuedAt.Add(CredentialTTL).Format(time.RFC3339)

	name := in.UserName
	if name == "" {
		if at := strings.Index(in.UserEmail, "@"); at > 0 {
			name = in.UserEmail[:at]
		} else {
			name = "Anonymous Learner"
		}
	}

	course := in.PlaylistTitle
	if course == "" {
		course = "Individual Video Learning"
	}

	primarySkill := "Video Content Mastery"
	if in.PlaylistTitle != "" {
		primarySkill = in.PlaylistTitle + " Knowledge"
	}

	passingScore := in.PassingScore
	if passingScore <= 0 {
		passingScore = 70
	}

	return Credential{
		Context: []string{
			"https://www.w3.org/2018/credentials/v1",
			"https://purl.imsglobal.org/spec/ob/v3p0/context.json",
			"https://lfdt.org/v1/context.json",
		},
		Type:          []string{"VerifiableCredential", "OpenBadgeCredential", "LearningCredential"},
		ID:            "urn:uuid:" + uuid.NewString(),
		SchemaVersion: SchemaVersion,
		Issuer: Issuer{
			ID:          issuer.DID,
			Type:        "Issuer",
			Name:        issuer.Name,
			URL:         issuer.URL,
			Description: "AI-powered learning platform that transforms YouTube content into verifiable credentials",
		},
		IssuanceDate:   now,
		ExpirationDate: expires,
		Subject: Subject{
			ID:    SubjectDID(in.UserID),
			Type:  []string{"Learner", "Person"},
			Name:  name,
			Email: in.UserEmail,
			HasCredential: Achievement{
				Type:        "VideoLearningCredential",
				Name:        fmt.Sprintf("Completion of %s", in.VideoTitle),
				Description: fmt.Sprintf("Successfully completed learning assessment for %q with %d%% score", in.VideoTitle, in.Score),
				Course:      course,
				Video: VideoRef{
					Title:    in.VideoTitle,
					ID:       in.YouTubeVideoID,
					URL:      "https://youtube.com/watch?v=" + in.YouTubeVideoID,
					Duration: in.VideoDuration,
				},
				Assessment: Assessment{
					Type:         "Quiz",
					Title:        in.QuizTitle,
					Score:        in.Score,
					PassingScore: passingScore,
					Questions:    in.QuestionCount,
					CompletedAt:  now,
				},
				LearningOutcomes: []string{
					fmt.Sprintf("Demonstrated understanding of %s content", in.VideoTitle),
					fmt.Sprintf("Achieved %d%% on comprehensive assessment", in.Score),
					fmt.Sprintf("Completed %d evaluation questions", in.QuestionCount),
					"Earned verified learning credential",
				},
				SkillsAcquired: []string{
					primarySkill,
					"Self-directed Learning",
					"Knowledge Assessment Completion",
					"Digital Learning Engagement",
				},
			},
		},
		Evidence: []Evidence{{
			Type:        "LearningEvidence",
			Narrative:   fmt.Sprintf("Learner completed video %q and successfully passed the assessment with a score of %d%%.", in.VideoTitle, in.Score),
			Name:        "Video Learning and Assessment Completion",
			Description: "Evidence of successful video learning and knowledge assessment",
			Genre:       "Performance",
			Audience:    "Professional",
		}},
		Status: RevocationStatus{
			ID:   issuer.URL + "/credentials/status/" + uuid.NewString(),
			Type: "RevocationList2020Status",
		},
		Proof: Proof{
			Type:               "Ed25519Signature2020",
			Created:            now,
			VerificationMethod: issuer.DID + "#key-1",
			ProofPurpose:       "assertionMethod",
		},
	}
}

// NewCredentialHash produces the legacy-compatible integrity string
// hash_<unixms>_<userID>_<score>_<9 random base36 chars>. It is NOT a content
// hash of the credential; Verify only does a substring check against it.
func NewCredentialHash(userID uuid.UUID, score int) string {
	return fmt.Sprintf("hash_%d_%s_%d_%s", time.Now().UnixMilli(), userID, score, randomBase36(9))
}

// Verify checks whether a credential hash belongs to a user. This mirrors the
// original cosmetic scheme: the user id is embedded in the hash, so the check
// is a substring match rather than any cryptographic validation.
func Verify(hash string, userID uuid.UUID) bool {
	return strings.Contains(hash, userID.String())
}

func randomBase36(n int) string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand failing is effectively unreachable; fall back to time
		binary.BigEndian.PutUint64(buf[:], uint64(time.Now().UnixNano()))
	}
	s := strconv.FormatUint(binary.BigEndian.Uint64(buf[:]), 36)
	for len(s) < n {
		s = "0" + s
	}
	return s[len(s)-n:]
}
