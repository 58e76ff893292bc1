// Package analysis produces AI feedback on CVs: overall review, job match,
// ATS simulation, career suggestions and section rewriting.
package analysis

import (
	"context"
	"fmt"

	"github.com/raaihank/scandidate/internal/config"
	"go.uber.org/zap"
)

// Provider turns CV text into structured feedback
type Provider interface {
	AnalyzeCV(ctx context.Context, cvText string) (*CVAnalysis, error)
	MatchJob(ctx context.Context, req JobMatchRequest) (*JobMatch, error)
	SimulateATS(ctx context.Context, req ATSRequest) (*ATSSimulation, error)
	SuggestCareer(ctx context.Context, req CareerRequest) (*CareerSuggestion, error)
	RewriteSection(ctx context.Context, req RewriteRequest) (*Rewrite, error)
}

// New builds the provider selected by the configuration. Without an API
// key, or with use_mock_data set, canned results are served.
func New(cfg config.AnalysisConfig, logger *zap.Logger) (Provider, error) {
	if cfg.UseMockData || cfg.APIKey == "" {
		logger.Info("Analysis provider running on mock data",
			zap.Bool("use_mock_data", cfg.UseMockData),
			zap.Bool("api_key_set", cfg.APIKey != ""),
		)
		return NewMockProvider(), nil
	}

	llm, err := NewLLMProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm provider: %w", err)
	}

	logger.Info("Analysis provider initialized",
		zap.String("model", cfg.Model),
		zap.Duration("timeout", cfg.Timeout),
	)
	return WithFallback(llm, logger), nil
}
