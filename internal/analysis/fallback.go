package analysis

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Fallback reasons reported in Meta.FallbackReason
const (
	ReasonQuotaExceeded = "API quota exceeded"
	ReasonUnavailable   = "Service temporarily unavailable"
)

// fallbackProvider substitutes the canned result when the wrapped provider
// fails. Career suggestions and rewrites have no canned result and pass
// errors through.
type fallbackProvider struct {
	next   Provider
	logger *zap.Logger
}

// WithFallback wraps p so review, job match and ATS failures return the
// fixed fallback objects tagged as mock data.
func WithFallback(p Provider, logger *zap.Logger) Provider {
	return &fallbackProvider{next: p, logger: logger}
}

func (f *fallbackProvider) AnalyzeCV(ctx context.Context, cvText string) (*CVAnalysis, error) {
	if strings.TrimSpace(cvText) == "" {
		return nil, errEmptyCV
	}
	a, err := f.next.AnalyzeCV(ctx, cvText)
	if err == nil {
		return a, nil
	}
	a = mockCVAnalysis()
	a.Meta = f.fallback("analyze_cv", err)
	return a, nil
}

func (f *fallbackProvider) MatchJob(ctx context.Context, req JobMatchRequest) (*JobMatch, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	m, err := f.next.MatchJob(ctx, req)
	if err == nil {
		return m, nil
	}
	m = mockJobMatch()
	m.Meta = f.fallback("job_match", err)
	return m, nil
}

func (f *fallbackProvider) SimulateATS(ctx context.Context, req ATSRequest) (*ATSSimulation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s, err := f.next.SimulateATS(ctx, req)
	if err == nil {
		return s, nil
	}
	s = mockATSSimulation()
	s.Meta = f.fallback("ats_simulator", err)
	return s, nil
}

func (f *fallbackProvider) SuggestCareer(ctx context.Context, req CareerRequest) (*CareerSuggestion, error) {
	return f.next.SuggestCareer(ctx, req)
}

func (f *fallbackProvider) RewriteSection(ctx context.Context, req RewriteRequest) (*Rewrite, error) {
	return f.next.RewriteSection(ctx, req)
}

func (f *fallbackProvider) fallback(operation string, err error) Meta {
	reason := FallbackReason(err)
	f.logger.Warn("Analysis provider failed, serving fallback result",
		zap.String("operation", operation),
		zap.String("reason", reason),
		zap.Error(err),
	)
	return Meta{IsMockData: true, FallbackReason: reason}
}

// FallbackReason classifies a provider error for the client
func FallbackReason(err error) string {
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "quota") || strings.Contains(msg, "billing") {
		return ReasonQuotaExceeded
	}
	return ReasonUnavailable
}
