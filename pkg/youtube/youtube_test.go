package youtube

import (
	"context"
	"errors"
	"testing"
)

func TestParseURL_WatchForm(t *testing.T) {
	parsed, err := ParseURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id dQw4w9WgXcQ, got %q", parsed.VideoID)
	}
	if parsed.PlaylistID != "" {
		t.Fatalf("expected no playlist id, got %q", parsed.PlaylistID)
	}
}

func TestParseURL_ShortForm(t *testing.T) {
	parsed, err := ParseURL("https://youtu.be/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id dQw4w9WgXcQ, got %q", parsed.VideoID)
	}
}

func TestParseURL_EmbedForm(t *testing.T) {
	parsed, err := ParseURL("https://www.youtube.com/embed/dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id dQw4w9WgXcQ, got %q", parsed.VideoID)
	}
}

func TestParseURL_PlaylistOnly(t *testing.T) {
	parsed, err := ParseURL("https://www.youtube.com/playlist?list=PLabc123XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.VideoID != "" {
		t.Fatalf("expected no video id, got %q", parsed.VideoID)
	}
	if parsed.PlaylistID != "PLabc123XYZ" {
		t.Fatalf("expected playlist id PLabc123XYZ, got %q", parsed.PlaylistID)
	}
}

func TestParseURL_WatchWithPlaylist(t *testing.T) {
	parsed, err := ParseURL("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLabc123XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.VideoID != "dQw4w9WgXcQ" {
		t.Fatalf("expected video id dQw4w9WgXcQ, got %q", parsed.VideoID)
	}
	if parsed.PlaylistID != "PLabc123XYZ" {
		t.Fatalf("expected playlist id PLabc123XYZ, got %q", parsed.PlaylistID)
	}
}

func TestParseURL_Invalid(t *testing.T) {
	for _, url := range []string{
		"",
		"https://example.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=tooshort",
		"not a url at all",
	} {
		if _, err := ParseURL(url); !errors.Is(err, ErrInvalidURL) {
			t.Fatalf("expected ErrInvalidURL for %q, got %v", url, err)
		}
	}
}

func TestStubFetcher_Video(t *testing.T) {
	meta, err := StubFetcher{}.FetchVideo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "Sample YouTube Video Title" {
		t.Fatalf("unexpected title %q", meta.Title)
	}
	if meta.Thumbnail != "https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg" {
		t.Fatalf("unexpected thumbnail %q", meta.Thumbnail)
	}
	if meta.Duration != 600 {
		t.Fatalf("expected 600s duration, got %d", meta.Duration)
	}
}

func TestStubFetcher_Playlist(t *testing.T) {
	meta, err := StubFetcher{}.FetchPlaylist(context.Background(), "PLabc123XYZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.Title != "Sample YouTube Playlist" {
		t.Fatalf("unexpected title %q", meta.Title)
	}
	if len(meta.VideoIDs) != 0 {
		t.Fatalf("stub playlist should carry no video ids, got %d", len(meta.VideoIDs))
	}
}

func TestParseISO8601Duration(t *testing.T) {
	cases := map[string]int{
		"PT10M":    600,
		"PT1H2M3S": 3723,
		"PT45S":    45,
		"PT2H":     7200,
		"PT":       0,
		"":         0,
		"P1DT2H":   0, // day components are not produced for video durations
		"10 mins":  0,
		"PT1M30S":  90,
		"PT100M":   6000,
	}
	for raw, want := range cases {
		if got := parseISO8601Duration(raw); got != want {
			t.Fatalf("duration %q: expected %d, got %d", raw, want, got)
		}
	}
}
