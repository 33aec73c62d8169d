package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/connect-rnd/grant-matcher/internal/explain"
	"github.com/connect-rnd/grant-matcher/internal/grants"
	"github.com/connect-rnd/grant-matcher/internal/matching"
	"github.com/connect-rnd/grant-matcher/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const defaultMaxLogLength = 200

// Explainer generates match explanations through a Gemini content generator.
type Explainer struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewExplainer creates the Gemini-backed explainer.
func NewExplainer(generator contentGenerator, maxLogLength int, logger *zap.Logger) *Explainer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Explainer{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Explain builds the prompt from the organization profile and the score
// breakdown, sends it to the generator and parses the JSON response.
func (e *Explainer) Explain(ctx context.Context, org *grants.Organization, match *matching.Match) (*explain.Explanation, error) {
	if org == nil {
		return nil, fmt.Errorf("organization is required")
	}
	if match == nil {
		return nil, fmt.Errorf("match is required")
	}

	orgJSON, err := json.MarshalIndent(org, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal organization payload: %w", err)
	}

	matchJSON, err := json.MarshalIndent(match, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal match payload: %w", err)
	}

	prompt := buildPrompt(string(orgJSON), string(matchJSON))

	e.logger.Debug("gemini explanation request",
		zap.String("program_id", match.ProgramID),
		zap.String("organization_id", match.OrganizationID),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini explanation response",
		zap.String("program_id", match.ProgramID),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	explanation, err := parseResponse(raw)
	if err != nil {
		return nil, err
	}

	explanation.Raw = raw
	return explanation, nil
}

func buildPrompt(orgJSON, matchJSON string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Organization:\n{{ORGANIZATION_JSON}}\n\nMatch:\n{{MATCH_JSON}}\n\nJSON Response:"
	}
	prompt := strings.ReplaceAll(template, "{{ORGANIZATION_JSON}}", orgJSON)
	prompt = strings.ReplaceAll(prompt, "{{MATCH_JSON}}", matchJSON)
	return prompt
}

func parseResponse(raw string) (*explain.Explanation, error) {
	cleaned := extractJSON(raw)

	var data struct {
		Summary    string   `json:"summary"`
		Highlights []string `json:"highlights"`
		Caution    string   `json:"caution"`
	}
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	if strings.TrimSpace(data.Summary) == "" {
		return nil, fmt.Errorf("gemini response has no summary")
	}

	highlights := make([]string, 0, len(data.Highlights))
	for _, h := range data.Highlights {
		if h = strings.TrimSpace(h); h != "" {
			highlights = append(highlights, h)
		}
	}

	return &explain.Explanation{
		Summary:    strings.TrimSpace(data.Summary),
		Highlights: highlights,
		Caution:    strings.TrimSpace(data.Caution),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
