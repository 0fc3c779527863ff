package token

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/credtube/credtube-server-go/pkg/config"
)

func testIssuer() config.IssuerConfig {
	return config.IssuerConfig{
		DID:             "did:web:credtube.app",
		Name:            "CredTube",
		URL:             "https://credtube.app",
		VerificationURL: "https://credtube.app/verify",
	}
}

func testInput() CredentialInput {
	return CredentialInput{
		UserID:         uuid.New(),
		UserName:       "Ada Lovelace",
		UserEmail:      "ada@example.com",
		VideoID:        uuid.New(),
		VideoTitle:     "Intro to Graph Theory",
		YouTubeVideoID: "dQw4w9WgXcQ",
		VideoDuration:  600,
		PlaylistID:     uuid.New(),
		PlaylistTitle:  "Discrete Mathematics",
		QuizTitle:      "Graph Theory Quiz",
		QuestionCount:  4,
		Score:          85,
		PassingScore:   70,
		IssuedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestBuildCredential_Envelope(t *testing.T) {
	in := testInput()
	cred := BuildCredential(testIssuer(), in)

	wantContexts := []string{
		"https://www.w3.org/2018/credentials/v1",
		"https://purl.imsglobal.org/spec/ob/v3p0/context.json",
		"https://lfdt.org/v1/context.json",
	}
	if len(cred.Context) != len(wantContexts) {
		t.Fatalf("expected %d contexts, got %d", len(wantContexts), len(cred.Context))
	}
	for i, want := range wantContexts {
		if cred.Context[i] != want {
			t.Fatalf("context %d: expected %q, got %q", i, want, cred.Context[i])
		}
	}

	wantTypes := []string{"VerifiableCredential", "OpenBadgeCredential", "LearningCredential"}
	for i, want := range wantTypes {
		if cred.Type[i] != want {
			t.Fatalf("type %d: expected %q, got %q", i, want, cred.Type[i])
		}
	}

	if !strings.HasPrefix(cred.ID, "urn:uuid:") {
		t.Fatalf("credential id should be a urn:uuid, got %q", cred.ID)
	}
	if cred.SchemaVersion != "1.0" {
		t.Fatalf("expected schema version 1.0, got %q", cred.SchemaVersion)
	}

	if cred.Issuer.ID != "did:web:credtube.app" || cred.Issuer.Type != "Issuer" {
		t.Fatalf("unexpected issuer block: %+v", cred.Issuer)
	}

	if cred.IssuanceDate != "2026-03-01T09:00:00Z" {
		t.Fatalf("unexpected issuance date %q", cred.IssuanceDate)
	}
	if cred.ExpirationDate != "2027-03-01T09:00:00Z" {
		t.Fatalf("expected expiry one year out, got %q", cred.ExpirationDate)
	}
}

func TestBuildCredential_Subject(t *testing.T) {
	in := testInput()
	cred := BuildCredential(testIssuer(), in)

	if cred.Subject.ID != "did:credtube:user:"+in.UserID.String() {
		t.Fatalf("unexpected subject DID %q", cred.Subject.ID)
	}
	if cred.Subject.Name != "Ada Lovelace" || cred.Subject.Email != "ada@example.com" {
		t.Fatalf("unexpected subject identity: %+v", cred.Subject)
	}

	ach := cred.Subject.HasCredential
	if ach.Type != "VideoLearningCredential" {
		t.Fatalf("unexpected achievement type %q", ach.Type)
	}
	if ach.Name != "Completion of Intro to Graph Theory" {
		t.Fatalf("unexpected achievement name %q", ach.Name)
	}
	if ach.Course != "Discrete Mathematics" {
		t.Fatalf("unexpected course %q", ach.Course)
	}
	if ach.Video.URL != "https://youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected video url %q", ach.Video.URL)
	}
	if ach.Assessment.Score != 85 || ach.Assessment.PassingScore != 70 || ach.Assessment.Questions != 4 {
		t.Fatalf("unexpected assessment block: %+v", ach.Assessment)
	}
	if len(ach.LearningOutcomes) != 4 {
		t.Fatalf("expected 4 learning outcomes, got %d", len(ach.LearningOutcomes))
	}
	if len(ach.SkillsAcquired) != 4 {
		t.Fatalf("expected 4 skills, got %d", len(ach.SkillsAcquired))
	}
	if ach.SkillsAcquired[0] != "Discrete Mathematics Knowledge" {
		t.Fatalf("unexpected primary skill %q", ach.SkillsAcquired[0])
	}
}

func TestBuildCredential_EvidenceAndProof(t *testing.T) {
	cred := BuildCredential(testIssuer(), testInput())

	if len(cred.Evidence) != 1 {
		t.Fatalf("expected one evidence block, got %d", len(cred.Evidence))
	}
	ev := cred.Evidence[0]
	if ev.Genre != "Performance" || ev.Audience != "Professional" {
		t.Fatalf("unexpected evidence block: %+v", ev)
	}

	if cred.Status.Type != "RevocationList2020Status" {
		t.Fatalf("unexpected status type %q", cred.Status.Type)
	}
	if !strings.HasPrefix(cred.Status.ID, "https://credtube.app/credentials/status/") {
		t.Fatalf("unexpected status id %q", cred.Status.ID)
	}

	if cred.Proof.Type != "Ed25519Signature2020" || cred.Proof.ProofPurpose != "assertionMethod" {
		t.Fatalf("unexpected proof block: %+v", cred.Proof)
	}
	if cred.Proof.VerificationMethod != "did:web:credtube.app#key-1" {
		t.Fatalf("unexpected verification method %q", cred.Proof.VerificationMethod)
	}
}

func TestBuildCredential_Fallbacks(t *testing.T) {
	in := testInput()
	in.UserName = ""
	in.PlaylistTitle = ""
	in.PassingScore = 0
	cred := BuildCredential(testIssuer(), in)

	if cred.Subject.Name != "ada" {
		t.Fatalf("expected name from email prefix, got %q", cred.Subject.Name)
	}
	if cred.Subject.HasCredential.Course != "Individual Video Learning" {
		t.Fatalf("unexpected course fallback %q", cred.Subject.HasCredential.Course)
	}
	if cred.Subject.HasCredential.SkillsAcquired[0] != "Video Content Mastery" {
		t.Fatalf("unexpected skill fallback %q", cred.Subject.HasCredential.SkillsAcquired[0])
	}
	if cred.Subject.HasCredential.Assessment.PassingScore != 70 {
		t.Fatalf("expected passing score fallback 70, got %d", cred.Subject.HasCredential.Assessment.PassingScore)
	}

	in.UserEmail = "not-an-email"
	cred = BuildCredential(testIssuer(), in)
	if cred.Subject.Name != "Anonymous Learner" {
		t.Fatalf("expected anonymous fallback, got %q", cred.Subject.Name)
	}
}

func TestNewCredentialHash_Format(t *testing.T) {
	userID := uuid.New()
	hash := NewCredentialHash(userID, 85)

	parts := strings.Split(hash, "_")
	if len(parts) != 5 {
		t.Fatalf("expected 5 underscore-separated parts, got %d in %q", len(parts), hash)
	}
	if parts[0] != "hash" {
		t.Fatalf("expected hash prefix, got %q", parts[0])
	}
	if parts[2] != userID.String() {
		t.Fatalf("expected user id %q embedded, got %q", userID, parts[2])
	}
	if parts[3] != "85" {
		t.Fatalf("expected score 85 embedded, got %q", parts[3])
	}
	if len(parts[4]) != 9 {
		t.Fatalf("expected 9-char suffix, got %q", parts[4])
	}

	if other := NewCredentialHash(userID, 85); other == hash {
		t.Fatalf("two hashes for the same input should differ")
	}
}

func TestVerify(t *testing.T) {
	userID := uuid.New()
	hash := NewCredentialHash(userID, 92)

	if !Verify(hash, userID) {
		t.Fatalf("owner should verify their own hash")
	}
	if Verify(hash, uuid.New()) {
		t.Fatalf("another user should not verify this hash")
	}
}

func TestVerify_ForgedHash(t *testing.T) {
	// the check is a substring match on the user id, so any string embedding
	// it passes; this pins the documented weakness of the legacy scheme
	userID := uuid.New()
	forged := "forged_" + userID.String() + "_x"

	if !Verify(forged, userID) {
		t.Fatalf("a forged string embedding the user id should verify")
	}
}

func TestCredential_JSONRoundTrip(t *testing.T) {
	cred := BuildCredential(testIssuer(), testInput())

	raw, err := json.Marshal(cred)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Credential
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !reflect.DeepEqual(cred, decoded) {
		t.Fatalf("credential did not survive the round trip:\nbuilt:   %+v\ndecoded: %+v", cred, decoded)
	}
}
