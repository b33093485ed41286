package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/models"
)

var planFields = []string{"architecture", "file_structure", "implementation_steps", "technology_stack"}

// Planner derives an implementation plan from a refined specification.
type Planner struct {
	extractor *Extractor
}

func NewPlanner(extractor *Extractor) *Planner {
	return &Planner{extractor: extractor}
}

func (p *Planner) GeneratePlan(ctx context.Context, spec *models.RefinedSpec) (*models.Plan, error) {
	if spec == nil || strings.TrimSpace(spec.Goal) == "" {
		return nil, apperr.New(apperr.KindValidation, "refined specification is required")
	}

	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "refined specification is not serializable", err)
	}

	var b strings.Builder
	b.WriteString("You are a senior software architect. Create a detailed implementation ")
	fmt.Fprintf(&b, "plan for this system:\n\n%s\n\n", specJSON)
	b.WriteString("Include:\n")
	b.WriteString("1. Architecture Overview\n")
	b.WriteString("2. File Structure\n")
	b.WriteString("3. Implementation Steps (minimum 8)\n")
	b.WriteString("4. Technology Stack\n")
	b.WriteString("5. Data Models\n")
	b.WriteString("6. API Endpoints\n")
	b.WriteString("7. Security Measures\n")
	b.WriteString("8. Deployment Strategy\n")
	b.WriteString("9. Testing Strategy\n")
	b.WriteString("10. Risk Assessment\n\n")
	b.WriteString("Output as JSON with keys: architecture, file_structure (array of paths), ")
	b.WriteString("implementation_steps (array), technology_stack (object), ")
	b.WriteString("data_models (object), api_endpoints (object).")

	var plan models.Plan
	opts := llm.Options{Temperature: 0.2, MaxTokens: 6000}
	if err := p.extractor.Extract(ctx, b.String(), opts, &plan, planFields); err != nil {
		return nil, err
	}
	return &plan, nil
}
