package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/zap"
)

type fakeModel struct {
	response string
	err      error
	prompts  []string
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompts = append(m.prompts, text.Text)
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.response}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

const cvAnalysisJSON = `{
  "overallScore": 88,
  "sections": [{"name": "Pendidikan", "score": 90, "feedback": "Baik", "suggestions": ["Tambahkan IPK"]}],
  "strengths": ["Rapi"],
  "weaknesses": ["Kurang metrik"],
  "recommendations": ["Tambahkan portfolio"],
  "atsCompatibility": 81
}`

func TestCleanJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":       `{"a":1}`,
		"  {\"a\":1}  ":           `{"a":1}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanJSON(in), "input %q", in)
	}
}

func TestLLMProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("AnalyzeCV", func(t *testing.T) {
		model := &fakeModel{response: "```json\n" + cvAnalysisJSON + "\n```"}
		p := NewLLMProviderWithModel(model, 0, zap.NewNop())

		got, err := p.AnalyzeCV(ctx, "Budi Santoso, Golang engineer")
		require.NoError(t, err)
		assert.Equal(t, 88, got.OverallScore)
		assert.Equal(t, 81, got.ATSCompatibility)
		assert.False(t, got.IsMockData)
		require.Len(t, model.prompts, 1)
		assert.Contains(t, model.prompts[0], "Budi Santoso, Golang engineer")
	})

	t.Run("ScoreOutOfRange", func(t *testing.T) {
		model := &fakeModel{response: strings.Replace(cvAnalysisJSON, "88", "140", 1)}
		p := NewLLMProviderWithModel(model, 0, zap.NewNop())

		_, err := p.AnalyzeCV(ctx, "cv")
		assert.Error(t, err)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		p := NewLLMProviderWithModel(&fakeModel{response: "not json"}, 0, zap.NewNop())
		_, err := p.MatchJob(ctx, JobMatchRequest{CVContent: "cv", JobDescription: "job"})
		assert.Error(t, err)
	})

	t.Run("InvalidRequest", func(t *testing.T) {
		model := &fakeModel{}
		p := NewLLMProviderWithModel(model, 0, zap.NewNop())

		_, err := p.MatchJob(ctx, JobMatchRequest{CVContent: "cv"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = p.RewriteSection(ctx, RewriteRequest{Content: "text"})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		assert.Empty(t, model.prompts, "invalid requests must not reach the model")
	})

	t.Run("Rewrite", func(t *testing.T) {
		model := &fakeModel{response: "  Engineer berpengalaman 5 tahun.\n"}
		p := NewLLMProviderWithModel(model, 0, zap.NewNop())

		got, err := p.RewriteSection(ctx, RewriteRequest{Section: "Ringkasan", Content: "engineer 5 thn", JobTitle: "Backend"})
		require.NoError(t, err)
		assert.Equal(t, "Engineer berpengalaman 5 tahun.", got.RewrittenContent)
		assert.Contains(t, model.prompts[0], "Posisi Target: Backend")
	})

	t.Run("CareerImportanceChecked", func(t *testing.T) {
		body := `{"currentLevel":"Junior","careerPaths":[],"skillGaps":[{"skill":"Go","importance":"Urgent","learningResources":[]}],"industryTrends":[],"nextSteps":[],"certifications":[]}`
		p := NewLLMProviderWithModel(&fakeModel{response: body}, 0, zap.NewNop())

		_, err := p.SuggestCareer(ctx, CareerRequest{CVContent: "cv"})
		assert.Error(t, err)
	})
}

func TestWithFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("QuotaExceeded", func(t *testing.T) {
		model := &fakeModel{err: errors.New("429: You exceeded your current quota")}
		p := WithFallback(NewLLMProviderWithModel(model, 0, zap.NewNop()), zap.NewNop())

		got, err := p.AnalyzeCV(ctx, "cv")
		require.NoError(t, err)
		assert.True(t, got.IsMockData)
		assert.Equal(t, ReasonQuotaExceeded, got.FallbackReason)
		assert.Equal(t, 75, got.OverallScore)
	})

	t.Run("Unavailable", func(t *testing.T) {
		model := &fakeModel{err: errors.New("connection refused")}
		p := WithFallback(NewLLMProviderWithModel(model, 0, zap.NewNop()), zap.NewNop())

		m, err := p.MatchJob(ctx, JobMatchRequest{CVContent: "cv", JobDescription: "job"})
		require.NoError(t, err)
		assert.Equal(t, ReasonUnavailable, m.FallbackReason)
		assert.Equal(t, 78, m.OverallMatch)

		s, err := p.SimulateATS(ctx, ATSRequest{CVContent: "cv"})
		require.NoError(t, err)
		assert.Equal(t, 82, s.OverallATSScore)
	})

	t.Run("InvalidRequestIsNotMasked", func(t *testing.T) {
		p := WithFallback(NewMockProvider(), zap.NewNop())
		_, err := p.MatchJob(ctx, JobMatchRequest{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
		_, err = p.AnalyzeCV(ctx, "  ")
		assert.ErrorIs(t, err, ErrInvalidRequest)
	})

	t.Run("CareerAndRewritePassThrough", func(t *testing.T) {
		model := &fakeModel{err: errors.New("billing hard limit reached")}
		p := WithFallback(NewLLMProviderWithModel(model, 0, zap.NewNop()), zap.NewNop())

		_, err := p.SuggestCareer(ctx, CareerRequest{CVContent: "cv"})
		assert.Error(t, err)
		_, err = p.RewriteSection(ctx, RewriteRequest{Section: "s", Content: "c"})
		assert.Error(t, err)
	})
}

func TestWithRedaction(t *testing.T) {
	det, err := privacy.New(config.PrivacyConfig{Detectors: []string{"all"}}, zap.NewNop())
	require.NoError(t, err)

	model := &fakeModel{response: cvAnalysisJSON}
	p := WithRedaction(NewLLMProviderWithModel(model, 0, zap.NewNop()), det)

	_, err = p.AnalyzeCV(context.Background(), "Contact me at jane@example.com or 081234567890")
	require.NoError(t, err)
	require.Len(t, model.prompts, 1)
	assert.NotContains(t, model.prompts[0], "jane@example.com")
	assert.NotContains(t, model.prompts[0], "081234567890")
	assert.Contains(t, model.prompts[0], "***@email.com")
}

func TestNew(t *testing.T) {
	p, err := New(config.AnalysisConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)

	p, err = New(config.AnalysisConfig{APIKey: "sk-test", UseMockData: true}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MockProvider{}, p)
}

func TestMockProvider(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider()

	a, err := p.AnalyzeCV(ctx, "cv")
	require.NoError(t, err)
	body, err := json.Marshal(a)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"_isMockData":true`)
	assert.NotContains(t, string(body), "_fallbackReason")

	c, err := p.SuggestCareer(ctx, CareerRequest{CVContent: "cv"})
	require.NoError(t, err)
	assert.NoError(t, c.validate())

	r, err := p.RewriteSection(ctx, RewriteRequest{Section: "Ringkasan", Content: " teks asli "})
	require.NoError(t, err)
	assert.Equal(t, "teks asli", r.RewrittenContent)
}
