package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/models"
)

// Refactorer applies review-driven fixes to a file set. The strategy is
// AI-driven rewriting; the contract holds for any strategy: every input
// filename is retained, the size ceiling still applies, and a report with
// no issues leaves the set untouched.
type Refactorer struct {
	gen          llm.Generator
	maxFileBytes int64
	log          *zap.Logger
}

// Only model-authored code files are rewritten; supporting files are
// deterministic and carried over untouched.
var refactorTargets = []string{"app.py", "index.html"}

func NewRefactorer(gen llm.Generator, maxFileBytes int64, log *zap.Logger) *Refactorer {
	return &Refactorer{gen: gen, maxFileBytes: maxFileBytes, log: log}
}

func (r *Refactorer) Refactor(ctx context.Context, files models.FileSet, report *models.ReviewReport) (models.FileSet, string, error) {
	if report == nil {
		return nil, "", apperr.New(apperr.KindValidation, "review report is required")
	}

	if report.OverallScore >= 90 {
		return files, "Code quality excellent, no refactoring needed", nil
	}
	issues := report.Issues()
	if len(issues) == 0 {
		return files, "No critical issues to refactor", nil
	}
	if len(issues) > 5 {
		issues = issues[:5]
	}

	var issueList strings.Builder
	for _, issue := range issues {
		fmt.Fprintf(&issueList, "- %s\n", issue)
	}

	refactored := files.Clone()
	rewritten := 0
	for _, name := range refactorTargets {
		content, ok := files[name]
		if !ok {
			continue
		}

		prompt := fmt.Sprintf(
			"Refactor this code to fix:\n%s\nCode:\n```\n%s\n```\n"+
				"Output ONLY the complete refactored code.",
			issueList.String(), content)

		out, err := r.gen.Complete(ctx, prompt, llm.Options{Temperature: 0.7, MaxTokens: 8000})
		if err != nil {
			// Per-file fallback: keep the reviewed content rather than
			// failing the whole pass.
			r.log.Warn("refactoring failed, keeping original file",
				zap.String("filename", name), zap.Error(err))
			continue
		}
		refactored[name] = cleanCodeOutput(out)
		rewritten++
	}

	for name, content := range refactored {
		if size := int64(len(content)); size > r.maxFileBytes {
			return nil, "", &apperr.FileTooLarge{Filename: name, Size: size, Limit: r.maxFileBytes}
		}
	}

	return refactored, fmt.Sprintf("Refactored %d files", rewritten), nil
}
