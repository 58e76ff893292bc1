package analysis

import (
	"context"
	"fmt"

	"github.com/raaihank/scandidate/internal/privacy"
)

// Redactor masks sensitive data in a text
type Redactor interface {
	Redact(text string) (privacy.Result, error)
}

// redactingProvider masks CV text before it reaches the wrapped provider
type redactingProvider struct {
	next     Provider
	redactor Redactor
}

// WithRedaction wraps p so CV content and section text are redacted before
// they leave the process. A redaction failure aborts the request.
func WithRedaction(p Provider, r Redactor) Provider {
	return &redactingProvider{next: p, redactor: r}
}

func (r *redactingProvider) mask(text string) (string, error) {
	res, err := r.redactor.Redact(text)
	if err != nil {
		return "", fmt.Errorf("failed to redact analysis input: %w", err)
	}
	return res.MaskedText, nil
}

func (r *redactingProvider) AnalyzeCV(ctx context.Context, cvText string) (*CVAnalysis, error) {
	masked, err := r.mask(cvText)
	if err != nil {
		return nil, err
	}
	return r.next.AnalyzeCV(ctx, masked)
}

func (r *redactingProvider) MatchJob(ctx context.Context, req JobMatchRequest) (*JobMatch, error) {
	masked, err := r.mask(req.CVContent)
	if err != nil {
		return nil, err
	}
	req.CVContent = masked
	return r.next.MatchJob(ctx, req)
}

func (r *redactingProvider) SimulateATS(ctx context.Context, req ATSRequest) (*ATSSimulation, error) {
	masked, err := r.mask(req.CVContent)
	if err != nil {
		return nil, err
	}
	req.CVContent = masked
	return r.next.SimulateATS(ctx, req)
}

func (r *redactingProvider) SuggestCareer(ctx context.Context, req CareerRequest) (*CareerSuggestion, error) {
	masked, err := r.mask(req.CVContent)
	if err != nil {
		return nil, err
	}
	req.CVContent = masked
	return r.next.SuggestCareer(ctx, req)
}

func (r *redactingProvider) RewriteSection(ctx context.Context, req RewriteRequest) (*Rewrite, error) {
	masked, err := r.mask(req.Content)
	if err != nil {
		return nil, err
	}
	req.Content = masked
	return r.next.RewriteSection(ctx, req)
}
