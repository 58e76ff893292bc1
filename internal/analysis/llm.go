package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raaihank/scandidate/internal/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"
)

// LLMProvider asks a language model for JSON answers and decodes them
// into typed results.
type LLMProvider struct {
	model   llms.Model
	timeout time.Duration
	logger  *zap.Logger
}

// NewLLMProvider creates an OpenAI-backed provider
func NewLLMProvider(cfg config.AnalysisConfig, logger *zap.Logger) (*LLMProvider, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return NewLLMProviderWithModel(client, cfg.Timeout, logger), nil
}

// NewLLMProviderWithModel creates a provider on top of any langchaingo model
func NewLLMProviderWithModel(model llms.Model, timeout time.Duration, logger *zap.Logger) *LLMProvider {
	return &LLMProvider{model: model, timeout: timeout, logger: logger}
}

// AnalyzeCV reviews a CV section by section
func (p *LLMProvider) AnalyzeCV(ctx context.Context, cvText string) (*CVAnalysis, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, errEmptyCV
	}
	var out CVAnalysis
	if err := p.generate(ctx, "analyze_cv", fmt.Sprintf(analyzeCVPrompt, cvText), &out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("invalid cv analysis: %w", err)
	}
	return &out, nil
}

// MatchJob scores a CV against a job description
func (p *LLMProvider) MatchJob(ctx context.Context, req JobMatchRequest) (*JobMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out JobMatch
	if err := p.generate(ctx, "job_match", fmt.Sprintf(jobMatchPrompt, req.CVContent, req.JobDescription), &out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("invalid job match: %w", err)
	}
	return &out, nil
}

// SimulateATS simulates applicant tracking system parsing
func (p *LLMProvider) SimulateATS(ctx context.Context, req ATSRequest) (*ATSSimulation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	job := ""
	if req.JobDescription != "" {
		job = "Job Description: " + req.JobDescription
	}
	var out ATSSimulation
	if err := p.generate(ctx, "ats_simulator", fmt.Sprintf(atsPrompt, req.CVContent, job), &out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("invalid ats simulation: %w", err)
	}
	return &out, nil
}

// SuggestCareer proposes career paths and skill gaps
func (p *LLMProvider) SuggestCareer(ctx context.Context, req CareerRequest) (*CareerSuggestion, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	prompt := fmt.Sprintf(careerPrompt,
		req.CVContent,
		orUnspecified(req.CurrentRole),
		orUnspecified(req.TargetIndustry),
		orUnspecified(req.ExperienceLevel),
	)
	var out CareerSuggestion
	if err := p.generate(ctx, "career_suggestion", prompt, &out); err != nil {
		return nil, err
	}
	if err := out.validate(); err != nil {
		return nil, fmt.Errorf("invalid career suggestion: %w", err)
	}
	return &out, nil
}

// RewriteSection rewrites one CV section as plain text
func (p *LLMProvider) RewriteSection(ctx context.Context, req RewriteRequest) (*Rewrite, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var extra []string
	if req.JobTitle != "" {
		extra = append(extra, "Posisi Target: "+req.JobTitle)
	}
	if req.Industry != "" {
		extra = append(extra, "Industri: "+req.Industry)
	}

	text, err := p.complete(ctx, "rewrite_section", fmt.Sprintf(rewritePrompt, req.Section, req.Content, strings.Join(extra, "\n")))
	if err != nil {
		return nil, err
	}
	return &Rewrite{RewrittenContent: strings.TrimSpace(text)}, nil
}

func (p *LLMProvider) generate(ctx context.Context, operation, prompt string, out any) error {
	resp, err := p.complete(ctx, operation, prompt+jsonInstruction)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(CleanJSON(resp)), out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func (p *LLMProvider) complete(ctx context.Context, operation, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := llms.GenerateFromSinglePrompt(ctx, p.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%s request failed: %w", operation, err)
	}

	p.logger.Debug("Model response received",
		zap.String("operation", operation),
		zap.Duration("duration", time.Since(start)),
		zap.Int("response_length", len(resp)),
	)
	return resp, nil
}

// CleanJSON strips the markdown code fence models often wrap JSON in
func CleanJSON(input string) string {
	clean := strings.TrimSpace(input)
	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")
	return strings.TrimSpace(clean)
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Tidak disebutkan"
	}
	return s
}
