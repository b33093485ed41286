package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/models"
)

var reviewFields = []string{"overall_score", "security_issues", "quality_issues", "deployment_ready"}

// Reviewer scores a generated file set. It never mutates the files; the
// score and issue lists are advisory input to the refactor stage.
type Reviewer struct {
	extractor *Extractor
}

func NewReviewer(extractor *Extractor) *Reviewer {
	return &Reviewer{extractor: extractor}
}

func (r *Reviewer) Review(ctx context.Context, files models.FileSet) (*models.ReviewReport, error) {
	if len(files) == 0 {
		return nil, apperr.New(apperr.KindValidation, "file set is empty")
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var summary strings.Builder
	for _, name := range names {
		fmt.Fprintf(&summary, "- %s (%d chars)\n", name, len(files[name]))
	}

	prompt := fmt.Sprintf(
		"You are a senior code reviewer. Review this system:\n\n"+
			"Files:\n%s\n"+
			"Review for: security, quality, completeness, best practices, deployment readiness.\n"+
			"Output JSON: overall_score (0-100), security_issues (array), quality_issues (array), "+
			"missing_features (array), recommendations (array), deployment_ready (bool), summary.",
		summary.String())

	var report models.ReviewReport
	opts := llm.Options{Temperature: 0.3, MaxTokens: 4000}
	if err := r.extractor.Extract(ctx, prompt, opts, &report, reviewFields); err != nil {
		return nil, err
	}

	if report.OverallScore < 0 {
		report.OverallScore = 0
	}
	if report.OverallScore > 100 {
		report.OverallScore = 100
	}
	return &report, nil
}
