package agents

import (
	"context"
	"fmt"
	"strings"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/models"
)

var refinedSpecFields = []string{"goal", "audience", "features", "technical_requirements", "ui_requirements"}

// Refiner turns free-text user intent into a structured RefinedSpec.
type Refiner struct {
	extractor       *Extractor
	maxPromptLength int
}

func NewRefiner(extractor *Extractor, maxPromptLength int) *Refiner {
	return &Refiner{extractor: extractor, maxPromptLength: maxPromptLength}
}

// Refine validates the prompt before any external call is made, then asks
// the model for a structured specification. Nothing is persisted here; the
// caller decides whether to reuse or discard the result.
func (r *Refiner) Refine(ctx context.Context, promptText, priorContext string) (*models.RefinedSpec, error) {
	promptText = strings.TrimSpace(promptText)
	if promptText == "" {
		return nil, apperr.New(apperr.KindValidation, "prompt is required")
	}
	if len(promptText) > r.maxPromptLength {
		return nil, apperr.Newf(apperr.KindValidation, "prompt exceeds the maximum length of %d characters", r.maxPromptLength)
	}

	var b strings.Builder
	b.WriteString("You are an expert system architect and prompt engineer. ")
	b.WriteString("Refine the following user request into a comprehensive, detailed ")
	b.WriteString("specification for building a software system.\n\n")
	fmt.Fprintf(&b, "User Request:\n%s\n\n", promptText)
	if priorContext != "" {
		fmt.Fprintf(&b, "Additional Context: %s\n\n", priorContext)
	}
	b.WriteString("Provide a refined specification that includes:\n")
	b.WriteString("1. **Project Goal**: Clear, specific objective\n")
	b.WriteString("2. **Target Audience**: Who will use this system\n")
	b.WriteString("3. **Core Features**: Detailed list (minimum 5)\n")
	b.WriteString("4. **Technical Requirements**: Language, framework, database, auth\n")
	b.WriteString("5. **UI/UX Requirements**: Design style, responsiveness\n")
	b.WriteString("6. **Constraints**: Hosting, performance, scalability\n")
	b.WriteString("7. **Success Criteria**: Measurable outcomes\n\n")
	b.WriteString("Output as structured JSON with keys: goal, audience, features (array), ")
	b.WriteString("technical_requirements (object), ui_requirements (object), ")
	b.WriteString("constraints (array), success_criteria (array).")

	var spec models.RefinedSpec
	opts := llm.Options{Temperature: 0.3, MaxTokens: 4000}
	if err := r.extractor.Extract(ctx, b.String(), opts, &spec, refinedSpecFields); err != nil {
		return nil, err
	}
	return &spec, nil
}
