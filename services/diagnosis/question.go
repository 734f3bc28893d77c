package diagnosis

import (
	"context"

	"autoserve/models"
)

// QuestionGenerator produces one discriminating clarification question for
// the current candidate set. Question generation is an external capability:
// the state machine consumes its output and assumes nothing about the
// mechanism behind it.
type QuestionGenerator interface {
	GenerateClarifyingQuestion(ctx context.Context, candidates []models.RankedProblem, transcript []models.SessionMessage) (string, error)
}

// fallbackQuestions are used when no generator is configured or generation
// fails mid-session.
var fallbackQuestions = []string{
	"When does the problem occur most frequently?",
	"Have you noticed any unusual sounds or smells?",
	"Does the issue affect vehicle performance or handling?",
}

// StaticQuestionGenerator cycles through a fixed question list, keyed by how
// many questions have already been asked in the transcript.
type StaticQuestionGenerator struct{}

func (StaticQuestionGenerator) GenerateClarifyingQuestion(_ context.Context, _ []models.RankedProblem, transcript []models.SessionMessage) (string, error) {
	return fallbackQuestion(countAssistantTurns(transcript)), nil
}

func fallbackQuestion(asked int) string {
	if asked >= len(fallbackQuestions) {
		asked = len(fallbackQuestions) - 1
	}
	return fallbackQuestions[asked]
}

func countAssistantTurns(transcript []models.SessionMessage) int {
	n := 0
	for _, m := range transcript {
		if m.Role == "assistant" {
			n++
		}
	}
	return n
}
