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

func newReviewer(gen *fakeGenerator) *agents.Reviewer {
	return agents.NewReviewer(agents.NewExtractor(gen, zap.NewNop()))
}

func TestReviewEmptyFileSetFailsBeforePortCall(t *testing.T) {
	gen := &fakeGenerator{}
	reviewer := newReviewer(gen)

	_, err := reviewer.Review(context.Background(), models.FileSet{})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 0, gen.calls)
}

func TestReviewParsesReportAndClampsScore(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"overall_score": 150, "security_issues": ["no rate limit"], "quality_issues": [], "deployment_ready": true, "summary": "fine"}`,
	}}
	reviewer := newReviewer(gen)

	report, err := reviewer.Review(context.Background(), models.FileSet{"app.py": "x"})
	require.NoError(t, err)
	assert.Equal(t, 100, report.OverallScore)
	assert.Equal(t, []string{"no rate limit"}, report.SecurityIssues)
	assert.True(t, report.DeploymentReady)
}

func TestReviewPromptListsFilesInOrder(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		`{"overall_score": 80, "security_issues": [], "quality_issues": [], "deployment_ready": true}`,
	}}
	reviewer := newReviewer(gen)

	_, err := reviewer.Review(context.Background(), models.FileSet{
		"index.html": "<html></html>",
		"app.py":     "print('x')",
	})
	require.NoError(t, err)

	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "app.py")
	assert.Contains(t, prompt, "index.html")
	assert.Less(t, strings.Index(prompt, "app.py"), strings.Index(prompt, "index.html"))
}
