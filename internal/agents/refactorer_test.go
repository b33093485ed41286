package agents_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"system-builder-backend/internal/agents"
	"system-builder-backend/internal/models"
)

func reviewedFiles() models.FileSet {
	return models.FileSet{
		"app.py":           "print('v1')",
		"index.html":       "<html>v1</html>",
		"requirements.txt": "Flask==3.0.3\n",
	}
}

func TestRefactorNoIssuesReturnsInputUnchanged(t *testing.T) {
	gen := &fakeGenerator{}
	refactorer := agents.NewRefactorer(gen, 1048576, zap.NewNop())

	files := reviewedFiles()
	report := &models.ReviewReport{OverallScore: 70}

	out, message, err := refactorer.Refactor(context.Background(), files, report)
	require.NoError(t, err)
	assert.Equal(t, files, out)
	assert.Equal(t, "No critical issues to refactor", message)
	assert.Equal(t, 0, gen.calls)
}

func TestRefactorHighScoreSkips(t *testing.T) {
	gen := &fakeGenerator{}
	refactorer := agents.NewRefactorer(gen, 1048576, zap.NewNop())

	report := &models.ReviewReport{
		OverallScore:   95,
		SecurityIssues: []string{"hardcoded secret"},
	}

	out, _, err := refactorer.Refactor(context.Background(), reviewedFiles(), report)
	require.NoError(t, err)
	assert.Equal(t, reviewedFiles(), out)
	assert.Equal(t, 0, gen.calls)
}

func TestRefactorRetainsEveryFilename(t *testing.T) {
	gen := &fakeGenerator{responses: []string{
		"print('v2')",
		"<html>v2</html>",
	}}
	refactorer := agents.NewRefactorer(gen, 1048576, zap.NewNop())

	report := &models.ReviewReport{
		OverallScore:  60,
		QualityIssues: []string{"no error handling"},
	}

	out, message, err := refactorer.Refactor(context.Background(), reviewedFiles(), report)
	require.NoError(t, err)
	assert.Len(t, out, 3)
	assert.Equal(t, "print('v2')", out["app.py"])
	assert.Equal(t, "<html>v2</html>", out["index.html"])
	assert.Equal(t, "Flask==3.0.3\n", out["requirements.txt"])
	assert.Equal(t, "Refactored 2 files", message)
}

func TestRefactorPerFileFallbackOnModelFailure(t *testing.T) {
	gen := &fakeGenerator{
		responses: []string{"", "<html>v2</html>"},
		errs:      []error{errors.New("model timeout"), nil},
	}
	refactorer := agents.NewRefactorer(gen, 1048576, zap.NewNop())

	report := &models.ReviewReport{
		OverallScore:  60,
		QualityIssues: []string{"no error handling"},
	}

	out, message, err := refactorer.Refactor(context.Background(), reviewedFiles(), report)
	require.NoError(t, err)
	assert.Equal(t, "print('v1')", out["app.py"])
	assert.Equal(t, "<html>v2</html>", out["index.html"])
	assert.Equal(t, "Refactored 1 files", message)
}

func TestRefactorDoesNotMutateInput(t *testing.T) {
	gen := &fakeGenerator{responses: []string{"print('v2')", "<html>v2</html>"}}
	refactorer := agents.NewRefactorer(gen, 1048576, zap.NewNop())

	files := reviewedFiles()
	report := &models.ReviewReport{OverallScore: 60, QualityIssues: []string{"x"}}

	_, _, err := refactorer.Refactor(context.Background(), files, report)
	require.NoError(t, err)
	assert.Equal(t, "print('v1')", files["app.py"])
}
