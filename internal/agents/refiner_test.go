package agents_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/apperr"
)

func newRefiner(gen *fakeGenerator, maxLen int) *agents.Refiner {
	return agents.NewRefiner(agents.NewExtractor(gen, zap.NewNop()), maxLen)
}

func TestRefineEmptyPromptFailsBeforePortCall(t *testing.T) {
	gen := &fakeGenerator{}
	refiner := newRefiner(gen, 10000)

	_, err := refiner.Refine(context.Background(), "   ", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestRefineOverlongPromptFailsBeforePortCall(t *testing.T) {
	gen := &fakeGenerator{}
	refiner := newRefiner(gen, 100)

	_, err := refiner.Refine(context.Background(), strings.Repeat("x", 101), "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestRefineReturnsStructuredSpec(t *testing.T) {
	gen := &fakeGenerator{responses: []string{`{
		"goal": "a todo app",
		"audience": "students",
		"features": ["lists", "reminders"],
		"technical_requirements": {"language": "python"},
		"ui_requirements": {"style": "dark"},
		"constraints": ["serverless"],
		"success_criteria": ["works"]
	}`}}
	refiner := newRefiner(gen, 10000)

	spec, err := refiner.Refine(context.Background(), "build me a todo app", "for a class project")
	require.NoError(t, err)
	assert.Equal(t, "a todo app", spec.Goal)
	assert.Equal(t, []string{"lists", "reminders"}, spec.Features)
	assert.Contains(t, gen.prompts[0], "build me a todo app")
	assert.Contains(t, gen.prompts[0], "for a class project")
}

func TestRefineMissingRequiredFieldFailsAfterRetry(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"goal": "a todo app"}`,
		`{"goal": "a todo app"}`,
	}}
	refiner := newRefiner(gen, 10000)

	_, err := refiner.Refine(context.Background(), "build me a todo app", "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindGenerationParse, apperr.KindOf(err))
	assert.Equal(t, 2, gen.calls)
}
