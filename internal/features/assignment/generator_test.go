package assignment

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestGenerate_RequiresTitle(t *testing.T) {
	_, err := TemplateGenerator{}.Generate(context.Background(), Input{VideoTitle: "   "})
	if !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
}

func TestGenerate_Shape(t *testing.T) {
	a, err := TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle: "The History of Jazz",
		Subject:    "music",
		Topic:      "jazz improvisation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a.Quiz.Title != "Progressive Assessment: The History of Jazz" {
		t.Fatalf("unexpected quiz title %q", a.Quiz.Title)
	}
	if a.Quiz.PassingScore != 70 {
		t.Fatalf("expected passing score 70, got %d", a.Quiz.PassingScore)
	}
	if len(a.Quiz.Questions) != 4 {
		t.Fatalf("expected 4 questions, got %d", len(a.Quiz.Questions))
	}
	for i, q := range a.Quiz.Questions {
		if len(q.Options) != 4 {
			t.Fatalf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		if q.Correct != 0 {
			t.Fatalf("question %d: template answers always sit at index 0, got %d", i, q.Correct)
		}
	}

	if len(a.Practical.Tasks) != 2 {
		t.Fatalf("expected 2 practical tasks, got %d", len(a.Practical.Tasks))
	}
	if len(a.Reflection.Questions) != 5 {
		t.Fatalf("expected 5 reflection questions, got %d", len(a.Reflection.Questions))
	}
}

func TestGenerate_TechnicalContent(t *testing.T) {
	a, err := TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle: "Python Data Structures Deep Dive",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := a.Quiz.Questions[len(a.Quiz.Questions)-1]
	if !strings.HasPrefix(final.Question, "[CODING CHALLENGE]") {
		t.Fatalf("technical content should end in a coding challenge, got %q", final.Question)
	}
	if final.Type != "coding" {
		t.Fatalf("expected coding question type, got %q", final.Type)
	}

	if a.Practical.Tasks[0].Task != "Code Implementation Challenge" {
		t.Fatalf("unexpected first task %q", a.Practical.Tasks[0].Task)
	}
	if a.Practical.Tasks[1].Task != "Critical Analysis Report" {
		t.Fatalf("unexpected second task %q", a.Practical.Tasks[1].Task)
	}
}

func TestGenerate_NonTechnicalContent(t *testing.T) {
	a, err := TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle: "Watercolor Painting Basics",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	final := a.Quiz.Questions[len(a.Quiz.Questions)-1]
	if !strings.HasPrefix(final.Question, "[WRITTEN ASSESSMENT]") {
		t.Fatalf("non-technical content should end in a written assessment, got %q", final.Question)
	}
	if final.Type != "written" {
		t.Fatalf("expected written question type, got %q", final.Type)
	}

	if a.Practical.Tasks[0].Task != "Practical Application Project" {
		t.Fatalf("unexpected first task %q", a.Practical.Tasks[0].Task)
	}
}

func TestGenerate_TechnicalDetectionSpansFields(t *testing.T) {
	// keyword appears in the description, not the title
	a, err := TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle:       "Build Your First App",
		VideoDescription: "We write JavaScript to wire up the UI.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Quiz.Questions[3].Type != "coding" {
		t.Fatalf("keyword in description should mark content technical")
	}

	a, err = TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle: "Build Your First App",
		Subject:    "Computer Science",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Quiz.Questions[3].Type != "coding" {
		t.Fatalf("keyword in subject should mark content technical")
	}
}

func TestGenerate_TopicInterpolation(t *testing.T) {
	a, err := TemplateGenerator{}.Generate(context.Background(), Input{
		VideoTitle: "Kitchen Chemistry",
		Topic:      "fermentation",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(a.Quiz.Questions[0].Options[0], "fermentation") {
		t.Fatalf("topic should interpolate into the basic question, got %q", a.Quiz.Questions[0].Options[0])
	}
	if !strings.Contains(a.Reflection.Questions[0], "fermentation") {
		t.Fatalf("topic should interpolate into reflection prompts, got %q", a.Reflection.Questions[0])
	}
}
