package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
	"system-builder-backend/internal/models"
)

// SystemGenerator produces the full file set for a project. It calls the
// generation port once per model-authored file and assembles the
// deterministic supporting files itself, presenting a single atomic result:
// if any file fails validation, no files are returned.
type SystemGenerator struct {
	gen          llm.Generator
	maxFileBytes int64
	log          *zap.Logger
}

func NewSystemGenerator(gen llm.Generator, maxFileBytes int64, log *zap.Logger) *SystemGenerator {
	return &SystemGenerator{gen: gen, maxFileBytes: maxFileBytes, log: log}
}

func (g *SystemGenerator) Generate(ctx context.Context, plan *models.Plan, spec *models.RefinedSpec) (models.FileSet, error) {
	if plan == nil || spec == nil {
		return nil, apperr.New(apperr.KindValidation, "plan and refined specification are required")
	}

	planJSON, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "plan is not serializable", err)
	}
	specJSON, err := json.MarshalIndent(spec, "", "  ")
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "refined specification is not serializable", err)
	}

	files := models.FileSet{}
	opts := llm.Options{Temperature: 0.7, MaxTokens: 8000}

	backendPrompt := fmt.Sprintf(
		"Generate a complete, production-ready Flask backend (app.py):\n\n"+
			"Plan: %s\nSpec: %s\n\n"+
			"Requirements: Flask, JWT auth, Supabase, env vars, CORS, rate limiting.\n"+
			"Output ONLY the complete Python code.",
		planJSON, specJSON)
	backend, err := g.gen.Complete(ctx, backendPrompt, opts)
	if err != nil {
		return nil, err
	}
	files["app.py"] = cleanCodeOutput(backend)

	frontendPrompt := fmt.Sprintf(
		"Generate a complete, mobile-first web interface:\n\n"+
			"Plan: %s\nSpec: %s\n\n"+
			"Requirements: Single HTML, responsive, dark theme, API integration, JWT auth.\n"+
			"Output ONLY the complete HTML code.",
		planJSON, specJSON)
	frontend, err := g.gen.Complete(ctx, frontendPrompt, opts)
	if err != nil {
		return nil, err
	}
	files["index.html"] = cleanCodeOutput(frontend)

	for name, content := range supportingFiles(spec) {
		files[name] = content
	}

	if err := g.validate(files); err != nil {
		return nil, err
	}

	g.log.Info("generated project files", zap.Int("count", len(files)))
	return files, nil
}

// validate enforces the path and size invariants over the whole set. The
// all-or-nothing policy is deliberate: partial systems are unusable and
// silent truncation corrupts generated code.
func (g *SystemGenerator) validate(files models.FileSet) error {
	for name, content := range files {
		if !models.ValidFilename(name) {
			return apperr.Newf(apperr.KindValidation, "generated filename %q is not a safe relative path", name)
		}
		if size := int64(len(content)); size > g.maxFileBytes {
			return &apperr.FileTooLarge{Filename: name, Size: size, Limit: g.maxFileBytes}
		}
	}
	return nil
}

func supportingFiles(spec *models.RefinedSpec) models.FileSet {
	vercelJSON, _ := json.MarshalIndent(map[string]interface{}{
		"version": 2,
		"builds":  []map[string]string{{"src": "app.py", "use": "@vercel/python"}},
		"routes":  []map[string]string{{"src": "/(.*)", "dest": "app.py"}},
		"env": map[string]string{
			"GEMINI_KEY":   "@gemini_key",
			"SUPABASE_URL": "@supabase_url",
			"SUPABASE_KEY": "@supabase_key",
			"JWT_SECRET":   "@jwt_secret",
		},
	}, "", "  ")

	goal := spec.Goal
	if goal == "" {
		goal = "Generated System"
	}
	var readme strings.Builder
	fmt.Fprintf(&readme, "# %s\n\n## Features\n", goal)
	for _, feature := range spec.Features {
		fmt.Fprintf(&readme, "- %s\n", feature)
	}
	readme.WriteString("\n## Quick Start\n```bash\npip install -r requirements.txt\npython app.py\n```\n\n")
	readme.WriteString("## Deploy\n```bash\nvercel --prod\n```\n")

	return models.FileSet{
		"requirements.txt": "Flask==3.0.3\nFlask-CORS==5.0.0\nflask-limiter>=2.9,<3.0\n" +
			"PyJWT==2.8.0\ngoogle-generativeai==0.8.3\nsupabase>=2.11.0,<3.0.0\n" +
			"python-dotenv==1.0.0\n",
		"vercel.json": string(vercelJSON),
		"README.md":   readme.String(),
		".env.example": "GEMINI_KEY=your_gemini_api_key_here\n" +
			"SUPABASE_URL=your_supabase_project_url\n" +
			"SUPABASE_KEY=your_supabase_anon_key\n" +
			"JWT_SECRET=your_random_secret_key_min_32_chars\n",
	}
}
