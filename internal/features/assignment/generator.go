package assignment

import (
	"context"
	"fmt"
	"strings"

	"github.com/credtube/credtube-server-go/internal/features/quiz"
)

// csKeywords classify content as technical; technical assignments end in a
// coding challenge instead of a written assessment.
var csKeywords = []string{
	"programming", "coding", "software", "javascript", "python", "react",
	"algorithm", "data structure", "computer science", "development", "code",
	"function", "variable", "loop", "array", "object",
}

// Input describes the content an assignment is generated for.
type Input struct {
	VideoTitle       string `json:"videoTitle"`
	VideoDescription string `json:"videoDescription"`
	Difficulty       string `json:"difficulty"`
	Subject          string `json:"subject"`
	Topic            string `json:"topic"`
}

// Assignment bundles a quiz, practical tasks, and reflection prompts.
type Assignment struct {
	Quiz       AssignmentQuiz `json:"quiz"`
	Practical  Practical      `json:"practical"`
	Reflection Reflection     `json:"reflection"`
}

// AssignmentQuiz is the quiz section of a generated assignment.
type AssignmentQuiz struct {
	Title        string          `json:"title"`
	Questions    []quiz.Question `json:"questions"`
	PassingScore int             `json:"passingScore"`
}

// Practical holds hands-on tasks.
type Practical struct {
	Tasks []Task `json:"tasks"`
}

// Task is one practical exercise.
type Task struct {
	Task            string `json:"task"`
	Instructions    string `json:"instructions"`
	ExpectedOutcome string `json:"expectedOutcome"`
}

// Reflection holds open-ended prompts.
type Reflection struct {
	Questions []string `json:"questions"`
}

// Generator produces assignments for video content. TemplateGenerator is the
// default; an LLM-backed implementation can satisfy the same interface.
type Generator interface {
	Generate(ctx context.Context, in Input) (*Assignment, error)
}

// TemplateGenerator builds assignments from fixed progressive templates
// interpolated with the video's title, subject, and topic.
type TemplateGenerator struct{}

// Generate builds a four-question progressive quiz, two practical tasks, and
// five reflection prompts.
func (TemplateGenerator) Generate(_ context.Context, in Input) (*Assignment, error) {
	if strings.TrimSpace(in.VideoTitle) == "" {
		return nil, ErrTitleRequired
	}

	technical := isTechnical(in)

	return &Assignment{
		Quiz: AssignmentQuiz{
			Title:        fmt.Sprintf("Progressive Assessment: %s", in.VideoTitle),
			Questions:    progressiveQuestions(in, technical),
			PassingScore: 70,
		},
		Practical:  Practical{Tasks: practicalTasks(in, technical)},
		Reflection: Reflection{Questions: reflectionQuestions(in)},
	}, nil
}

func isTechnical(in Input) bool {
	haystacks := []string{
		strings.ToLower(in.VideoTitle),
		strings.ToLower(in.VideoDescription),
		strings.ToLower(in.Subject),
		strings.ToLower(in.Topic),
	}
	for _, keyword := range csKeywords {
		for _, haystack := range haystacks {
			if strings.Contains(haystack, keyword) {
				return true
			}
		}
	}
	return false
}

func progressiveQuestions(in Input, technical bool) []quiz.Question {
	topicOr := func(fallback string) string {
		if in.Topic != "" {
			return in.Topic
		}
		return fallback
	}

	subjectSuffix := ""
	if in.Subject != "" {
		subjectSuffix = fmt.Sprintf(" related to %s", in.Subject)
	}

	basic := quiz.Question{
		Question: fmt.Sprintf("What is the main concept covered in %q%s?", in.VideoTitle, subjectSuffix),
		Options: []string{
			fmt.Sprintf("The core %s explained in the video", topicOr("concept")),
			"General background information only",
			"Introductory examples without depth",
			"Unrelated supplementary material",
		},
		Correct:     0,
		Explanation: fmt.Sprintf("This question tests basic comprehension of the main %s presented in the video content.", topicOr("concept")),
	}

	intermediate := quiz.Question{
		Question: fmt.Sprintf("How would you apply the %s from %q in a practical scenario?", topicOr("concepts"), in.VideoTitle),
		Options: []string{
			fmt.Sprintf("Implement the %s in real-world applications with proper methodology", topicOr("concepts")),
			"Memorize the theoretical aspects without practical application",
			"Use only the basic examples shown in the video",
			"Apply concepts without understanding the underlying principles",
		},
		Correct:     0,
		Explanation: fmt.Sprintf("This question evaluates your ability to apply %s practically, moving beyond basic understanding.", topicOr("the concepts")),
	}

	advanced := quiz.Question{
		Question: fmt.Sprintf("What are the key challenges and considerations when implementing %s in complex scenarios?", topicOr("these concepts")),
		Options: []string{
			"Understanding edge cases, scalability, and integration challenges",
			"Only following the exact steps shown in the video",
			"Ignoring potential complications and edge cases",
			"Applying concepts without considering context or constraints",
		},
		Correct:     0,
		Explanation: "This question tests advanced understanding and critical thinking about real-world implementation challenges.",
	}

	var final quiz.Question
	if technical {
		final = quiz.Question{
			Question: fmt.Sprintf("[CODING CHALLENGE] Based on the concepts in %q, write a solution that demonstrates your understanding:", in.VideoTitle),
			Options: []string{
				"Implement a well-structured solution with proper logic and best practices",
				"Copy code examples directly without understanding",
				"Write pseudo-code without actual implementation",
				"Provide only theoretical explanation without code",
			},
			Correct:     0,
			Explanation: "This coding challenge tests your ability to implement the concepts practically and demonstrates mastery of the technical content.",
			Type:        "coding",
		}
	} else {
		final = quiz.Question{
			Question: fmt.Sprintf("[WRITTEN ASSESSMENT] Provide a comprehensive analysis of how the concepts from %q can be applied in your field or area of interest:", in.VideoTitle),
			Options: []string{
				"Detailed analysis with specific examples, benefits, and implementation strategies",
				"Basic summary of video content without analysis",
				"General statements without specific application",
				"Theoretical discussion without practical relevance",
			},
			Correct:     0,
			Explanation: "This written assessment evaluates your ability to synthesize and apply the concepts in meaningful ways.",
			Type:        "written",
		}
	}

	return []quiz.Question{basic, intermediate, advanced, final}
}

func practicalTasks(in Input, technical bool) []Task {
	topicOr := func(fallback string) string {
		if in.Topic != "" {
			return in.Topic
		}
		return fallback
	}

	var tasks []Task
	if technical {
		tasks = append(tasks, Task{
			Task:            "Code Implementation Challenge",
			Instructions:    fmt.Sprintf("Create a working implementation that demonstrates the %s from %q. Include proper error handling, comments, and follow best practices.", topicOr("programming concepts"), in.VideoTitle),
			ExpectedOutcome: "A complete, functional code solution with clear documentation and proper implementation of the concepts",
		})
	} else {
		tasks = append(tasks, Task{
			Task:            "Practical Application Project",
			Instructions:    fmt.Sprintf("Design a project or scenario where you would apply the %s from %q in your professional or academic context.", topicOr("concepts"), in.VideoTitle),
			ExpectedOutcome: "A detailed project plan with specific steps, expected outcomes, and success metrics",
		})
	}

	tasks = append(tasks, Task{
		Task:            "Critical Analysis Report",
		Instructions:    fmt.Sprintf("Write a 300-500 word analysis discussing the strengths, limitations, and potential improvements of the approach presented in %q.", in.VideoTitle),
		ExpectedOutcome: "A well-structured analytical report demonstrating critical thinking and deep understanding",
	})

	return tasks
}

func reflectionQuestions(in Input) []string {
	topic := in.Topic
	if topic == "" {
		topic = "the subject matter"
	}
	subject := in.Subject
	if subject == "" {
		subject = "this field"
	}

	return []string{
		fmt.Sprintf("What specific insights about %s did you gain from %q that you didn't know before?", topic, in.VideoTitle),
		fmt.Sprintf("How do the concepts from this video connect to or challenge your existing knowledge in %s?", subject),
		"What questions or areas for further exploration emerged while watching this content?",
		"How will you integrate these new concepts into your current projects, studies, or professional work?",
		"What would you teach someone else as the most important takeaway from this learning experience?",
	}
}
