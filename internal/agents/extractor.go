// Package agents implements the generation pipeline: prompt refinement,
// planning, file generation, review, refactoring and the orchestrator that
// runs a generate-review-refactor batch.
package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"system-builder-backend/internal/apperr"
	"system-builder-backend/internal/llm"
)

const strictRetryInstruction = "\n\nIMPORTANT: Your previous response could not be parsed. " +
	"Respond with ONLY a single valid JSON object. No markdown, no code fences, " +
	"no commentary before or after the JSON. Every listed key is required."

// Extractor coerces untrusted model output into validated structured
// records. Model text may include prose, markdown code fences, or partial
// JSON; the extractor tolerates surrounding noise but never substitutes
// defaults for missing required fields.
type Extractor struct {
	gen llm.Generator
	log *zap.Logger
}

func NewExtractor(gen llm.Generator, log *zap.Logger) *Extractor {
	return &Extractor{gen: gen, log: log}
}

// Extract runs the prompt through the generator and decodes the response
// into out, requiring every named top-level field to be present and
// non-null. On a parse failure it retries exactly once with a stricter,
// shape-reinforcing instruction appended; a second failure surfaces a
// generic parse error while the raw text is only logged internally.
func (e *Extractor) Extract(ctx context.Context, prompt string, opts llm.Options, out interface{}, required []string) error {
	raw, err := e.gen.Complete(ctx, prompt, opts)
	if err != nil {
		return err
	}

	firstErr := decodeStructured(raw, out, required)
	if firstErr == nil {
		return nil
	}

	e.log.Debug("model output failed structured parse, retrying once",
		zap.Error(firstErr),
		zap.String("raw_output", raw))

	raw, err = e.gen.Complete(ctx, prompt+strictRetryInstruction, opts)
	if err != nil {
		return err
	}

	if retryErr := decodeStructured(raw, out, required); retryErr != nil {
		e.log.Error("model output failed structured parse after retry",
			zap.Error(retryErr),
			zap.String("raw_output", raw))
		return apperr.New(apperr.KindGenerationParse, "generated output did not match the expected structure")
	}
	return nil
}

func decodeStructured(raw string, out interface{}, required []string) error {
	jsonText, err := extractJSONObject(cleanCodeOutput(raw))
	if err != nil {
		return err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonText), &fields); err != nil {
		return fmt.Errorf("invalid json object: %w", err)
	}

	for _, key := range required {
		value, ok := fields[key]
		if !ok || string(value) == "null" {
			return fmt.Errorf("required field %q is missing", key)
		}
	}

	if err := json.Unmarshal([]byte(jsonText), out); err != nil {
		return fmt.Errorf("json does not match expected shape: %w", err)
	}
	return nil
}

// extractJSONObject locates the first top-level JSON object in text by
// brace-depth scanning, tolerating leading and trailing commentary. A
// naive first-{/last-} slice breaks on trailing prose containing braces.
func extractJSONObject(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", fmt.Errorf("no json object found in output")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], nil
				}
			}
		}
	}
	return "", fmt.Errorf("unbalanced json object in output")
}

// cleanCodeOutput removes surrounding markdown code fences from model
// output, including an optional language tag on the opening fence.
func cleanCodeOutput(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
