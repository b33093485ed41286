package models

import (
	"encoding/json"
	"path"
	"strings"
)

// RefinedSpec is the structured elaboration of a free-text goal produced by
// the prompt refiner.
type RefinedSpec struct {
	Goal                  string          `json:"goal"`
	Audience              string          `json:"audience"`
	Features              []string        `json:"features"`
	TechnicalRequirements json.RawMessage `json:"technical_requirements"`
	UIRequirements        json.RawMessage `json:"ui_requirements"`
	Constraints           []string        `json:"constraints,omitempty"`
	SuccessCriteria       []string        `json:"success_criteria,omitempty"`
}

// Plan is the architecture/file-structure/implementation-steps artifact
// derived from a RefinedSpec.
type Plan struct {
	Architecture        json.RawMessage `json:"architecture"`
	FileStructure       []string        `json:"file_structure"`
	ImplementationSteps []string        `json:"implementation_steps"`
	TechnologyStack     json.RawMessage `json:"technology_stack"`
	DataModels          json.RawMessage `json:"data_models,omitempty"`
	APIEndpoints        json.RawMessage `json:"api_endpoints,omitempty"`
}

// ReviewReport scores a generated file set. The score and the issue lists
// drive whether refactoring is attempted.
type ReviewReport struct {
	OverallScore    int      `json:"overall_score"`
	SecurityIssues  []string `json:"security_issues"`
	QualityIssues   []string `json:"quality_issues"`
	MissingFeatures []string `json:"missing_features,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	DeploymentReady bool     `json:"deployment_ready"`
	Summary         string   `json:"summary,omitempty"`
}

// Issues returns the combined security and quality issue list.
func (r *ReviewReport) Issues() []string {
	issues := make([]string, 0, len(r.SecurityIssues)+len(r.QualityIssues))
	issues = append(issues, r.SecurityIssues...)
	issues = append(issues, r.QualityIssues...)
	return issues
}

// ReviewNotes is what gets persisted on an iteration: the review itself
// plus the outcome of the refactor stage.
type ReviewNotes struct {
	Review          ReviewReport `json:"review"`
	RefactorMessage string       `json:"refactor_message,omitempty"`
	RefactorSkipped bool         `json:"refactor_skipped,omitempty"`
}

// FileSet maps filename to file content. Generation results are handed
// around as a unit: either the whole set is valid or none of it is used.
type FileSet map[string]string

// Clone returns an independent copy of the file set.
func (fs FileSet) Clone() FileSet {
	out := make(FileSet, len(fs))
	for name, content := range fs {
		out[name] = content
	}
	return out
}

// FileTypeOf derives a file_type from a filename extension.
func FileTypeOf(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		return "txt"
	}
	return strings.ToLower(ext)
}

// ValidFilename reports whether a generated filename is a clean relative
// path that stays inside the project directory.
func ValidFilename(name string) bool {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return false
	}
	cleaned := path.Clean(name)
	if cleaned != name || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return false
	}
	return true
}
