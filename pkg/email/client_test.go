package email

import "testing"

func TestNewClient_UnconfiguredHost(t *testing.T) {
	if c := NewClient("", "587", "user", "pass", "noreply@credtube.app", true); c != nil {
		t.Fatalf("empty host should yield a nil (disabled) client")
	}
}

func TestNewClient_Configured(t *testing.T) {
	if c := NewClient("smtp.example.com", "587", "user", "pass", "noreply@credtube.app", true); c == nil {
		t.Fatalf("configured client should not be nil")
	}
}
