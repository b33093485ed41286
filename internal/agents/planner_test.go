package agents_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/models"
)

func newPlanner(gen *fakeGenerator) *agents.Planner {
	return agents.NewPlanner(agents.NewExtractor(gen, zap.NewNop()))
}

func TestGeneratePlanRequiresSpecWithGoal(t *testing.T) {
	gen := &fakeGenerator{}
	planner := newPlanner(gen)

	_, err := planner.GeneratePlan(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = planner.GeneratePlan(context.Background(), &models.RefinedSpec{Goal: "  "})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestGeneratePlanReturnsStructuredPlan(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{
		"architecture": {"style": "serverless"},
		"file_structure": ["app.py", "index.html"],
		"implementation_steps": ["set up flask", "add auth"],
		"technology_stack": {"backend": "flask"},
		"data_models": {"user": {}},
		"api_endpoints": {"/api/items": "GET"}
	}`}}
	planner := newPlanner(gen)

	plan, err := planner.GeneratePlan(context.Background(), testSpec())
	require.NoError(t, err)
	assert.Equal(t, []string{"app.py", "index.html"}, plan.FileStructure)
	assert.Equal(t, []string{"set up flask", "add auth"}, plan.ImplementationSteps)
	assert.Contains(t, gen.prompts[0], "a todo app")
}

func TestGeneratePlanMissingFieldFailsAfterRetry(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"architecture": {}, "file_structure": []}`,
		`{"architecture": {}, "file_structure": []}`,
	}}
	planner := newPlanner(gen)

	_, err := planner.GeneratePlan(context.Background(), testSpec())
	require.Error(t, err)
	assert.Equal(t, apperr.KindGenerationParse, apperr.KindOf(err))
	assert.Equal(t, 2, gen.calls)
}
