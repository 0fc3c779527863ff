package request

import (
	"testing"
	"time"
)

func TestReadString(t *testing.T) {
	got, err := ReadString("  hello  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello" {
		t.Fatalf("expected trimmed string, got %q", got)
	}

	if _, err := ReadString("   "); err == nil {
		t.Fatalf("expected error for blank string")
	}
	if _, err := ReadString(42); err == nil {
		t.Fatalf("expected error for non-string value")
	}
}

func TestReadInt(t *testing.T) {
	// JSON numbers decode as float64
	got, err := ReadInt(float64(85))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 85 {
		t.Fatalf("expected 85, got %d", got)
	}

	if _, err := ReadInt("85"); err == nil {
		t.Fatalf("expected error for string value")
	}
}

func TestReadBool(t *testing.T) {
	got, err := ReadBool(true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Fatalf("expected true")
	}

	if _, err := ReadBool("true"); err == nil {
		t.Fatalf("expected error for string value")
	}
}

func TestReadStringSlice(t *testing.T) {
	got, err := ReadStringSlice([]interface{}{" a ", "b", "  "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("expected trimmed non-empty strings, got %v", got)
	}

	if _, err := ReadStringSlice([]interface{}{"a", 1}); err == nil {
		t.Fatalf("expected error for mixed array")
	}
	if _, err := ReadStringSlice("a,b"); err == nil {
		t.Fatalf("expected error for non-array value")
	}
}

func TestParseRFC3339Ptr(t *testing.T) {
	got, err := ParseRFC3339Ptr(nil)
	if err != nil || got != nil {
		t.Fatalf("nil input should yield nil, got %v, %v", got, err)
	}

	blank := "  "
	got, err = ParseRFC3339Ptr(&blank)
	if err != nil || got != nil {
		t.Fatalf("blank input should yield nil, got %v, %v", got, err)
	}

	stamp := "2026-03-01T09:00:00Z"
	got, err = ParseRFC3339Ptr(&stamp)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if got == nil || !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	bad := "yesterday"
	if _, err := ParseRFC3339Ptr(&bad); err == nil {
		t.Fatalf("expected error for malformed timestamp")
	}
}
