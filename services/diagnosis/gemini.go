package diagnosis

import (
	"context"
	"fmt"
	"strings"

	"autoserve/models"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiQuestionGenerator generates clarification questions with Gemini.
type GeminiQuestionGenerator struct {
	model *genai.GenerativeModel
}

func NewGeminiQuestionGenerator(apiKey string) (*GeminiQuestionGenerator, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiQuestionGenerator{model: model}, nil
}

func (g *GeminiQuestionGenerator) GenerateClarifyingQuestion(ctx context.Context, candidates []models.RankedProblem, transcript []models.SessionMessage) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(buildQuestionPrompt(candidates, transcript)))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}

	question := strings.TrimSpace(sb.String())
	question = strings.Trim(question, `"'`)
	if question == "" {
		return "", fmt.Errorf("gemini returned an empty question")
	}
	return question, nil
}

func buildQuestionPrompt(candidates []models.RankedProblem, transcript []models.SessionMessage) string {
	var sb strings.Builder
	sb.WriteString("You are an automotive diagnostic assistant. Based on these potential problems, generate exactly 1 discriminating question to narrow down the diagnosis.\n\nPotential problems:\n")
	for _, c := range candidates {
		fmt.Fprintf(&sb, "- %s: %s\n", c.Name, c.Description)
	}
	sb.WriteString("\nConversation so far:\n")
	for _, m := range transcript {
		fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Text)
	}
	sb.WriteString("\nGenerate 1 NEW question that helps distinguish between these specific problems, is not a yes/no question, asks about observable symptoms, sounds, behaviors or conditions, and has not been asked before. Return ONLY the question as a plain string, nothing else.")
	return sb.String()
}
