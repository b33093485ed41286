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
	"system-builder-backend/internal/models"
)

func testPlan() *models.Plan {
	return &models.Plan{
		Architecture:        []byte(`{"style": "monolith"}`),
		FileStructure:       []string{"app.py", "index.html"},
		ImplementationSteps: []string{"backend", "frontend"},
		TechnologyStack:     []byte(`{"backend": "flask"}`),
	}
}

func testSpec() *models.RefinedSpec {
	return &models.RefinedSpec{
		Goal:                  "a todo app",
		Audience:              "students",
		Features:              []string{"lists"},
		TechnicalRequirements: []byte(`{}`),
		UIRequirements:        []byte(`{}`),
	}
}

func TestGenerateProducesCodeAndSupportingFiles(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		"```python\nprint('backend')\n```",
		"```html\n<html></html>\n```",
	}}
	generator := agents.NewSystemGenerator(gen, 1048576, zap.NewNop())

	files, err := generator.Generate(context.Background(), testPlan(), testSpec())
	require.NoError(t, err)

	assert.Equal(t, "print('backend')", files["app.py"])
	assert.Equal(t, "<html></html>", files["index.html"])
	for _, name := range []string{"requirements.txt", "vercel.json", "README.md", ".env.example"} {
		assert.Contains(t, files, name)
	}
	assert.Contains(t, files["README.md"], "a todo app")
}

func TestGenerateOversizeFileAbortsWholeSet(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		strings.Repeat("x", 1048577),
		"<html></html>",
	}}
	generator := agents.NewSystemGenerator(gen, 1048576, zap.NewNop())

	files, err := generator.Generate(context.Background(), testPlan(), testSpec())
	require.Error(t, err)
	assert.Nil(t, files)

	var ftl *apperr.FileTooLarge
	require.ErrorAs(t, err, &ftl)
	assert.Equal(t, "app.py", ftl.Filename)
	assert.Equal(t, int64(1048577), ftl.Size)
	assert.Equal(t, int64(1048576), ftl.Limit)
	assert.Equal(t, apperr.KindFileTooLarge, apperr.KindOf(err))
}

func TestGenerateExactLimitIsAccepted(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		strings.Repeat("x", 1048576),
		"<html></html>",
	}}
	generator := agents.NewSystemGenerator(gen, 1048576, zap.NewNop())

	files, err := generator.Generate(context.Background(), testPlan(), testSpec())
	require.NoError(t, err)
	assert.Len(t, files["app.py"], 1048576)
}

func TestGenerateRequiresPlanAndSpec(t *testing.T) {
	generator := agents.NewSystemGenerator(&fakeGenerator{}, 1048576, zap.NewNop())

	_, err := generator.Generate(context.Background(), nil, testSpec())
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = generator.Generate(context.Background(), testPlan(), nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
