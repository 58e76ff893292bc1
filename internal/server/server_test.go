package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/raaihank/scandidate/internal/analysis"
	"github.com/raaihank/scandidate/internal/clock"
	"github.com/raaihank/scandidate/internal/config"
	"github.com/raaihank/scandidate/internal/identity"
	"github.com/raaihank/scandidate/internal/logger"
	"github.com/raaihank/scandidate/internal/privacy"
	"github.com/raaihank/scandidate/internal/session"
	"github.com/raaihank/scandidate/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var start = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, mutate func(*config.Config)) http.Handler {
	t.Helper()
	return newTestServerWith(t, mutate, nil)
}

func newTestServerWith(t *testing.T, mutate func(*config.Config), wire func(*Options)) http.Handler {
	t.Helper()
	cfg := config.GetDefaults()
	cfg.Analysis.UseMockData = true
	cfg.Analysis.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	detector, err := privacy.New(cfg.Privacy, zap.NewNop())
	require.NoError(t, err)

	sessions := session.NewManager(session.ManagerOptions{
		Redactor:  detector,
		Store:     store.NewMemory(),
		KeyPrefix: cfg.Store.KeyPrefix,
		Clock:     clock.NewFake(start),
		Retention: cfg.Retention,
		Logger:    zap.NewNop(),
	})
	t.Cleanup(sessions.Close)

	ids, err := identity.NewService(identity.NewMemoryRepository(), config.IdentityConfig{
		BcryptCost:  4,
		TokenSecret: "test-secret",
	}, zap.NewNop())
	require.NoError(t, err)

	opts := Options{
		Config:   cfg,
		Logger:   logger.NewNop(),
		Detector: detector,
		Sessions: sessions,
		Analyzer: analysis.NewMockProvider(),
		Identity: ids,
	}
	if wire != nil {
		wire(&opts)
	}
	return New(opts).Handler()
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func upload(t *testing.T, h http.Handler, method, path, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealthAndInfo(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(t, h, http.MethodGet, "/info", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	info := decode(t, rec)
	assert.Equal(t, "scandidate", info["name"])
	assert.Len(t, info["detectors"], len(privacy.DefaultRules()))

	rec = do(t, h, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestRedactEndpoint(t *testing.T) {
	t.Run("Masks", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/redact", redactRequest{Text: "Contact me at jane@example.com"})

		require.Equal(t, http.StatusOK, rec.Code)
		out := decode(t, rec)
		assert.Equal(t, "Contact me at ***@email.com", out["maskedText"])
		assert.Equal(t, float64(1), out["total"])
	})

	t.Run("TooLarge", func(t *testing.T) {
		h := newTestServer(t, func(c *config.Config) { c.Privacy.MaxInputBytes = 16 })
		rec := do(t, h, http.MethodPost, "/api/redact", redactRequest{Text: strings.Repeat("a", 17)})
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})

	t.Run("MalformedJSON", func(t *testing.T) {
		h := newTestServer(t, nil)
		req := httptest.NewRequest(http.MethodPost, "/api/redact", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "invalid JSON")
	})
}

func TestSessionLifecycle(t *testing.T) {
	h := newTestServer(t, nil)

	rec := do(t, h, http.MethodPost, "/api/sessions", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode(t, rec)["id"].(string)
	base := "/api/sessions/" + id

	rec = do(t, h, http.MethodPut, base+"/content", contentRequest{Content: "Contact me at jane@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	view := decode(t, rec)
	assert.Equal(t, true, view["hasContent"])
	assert.Equal(t, "armed", view["retention"])
	assert.Equal(t, "Contact me at jane@example.com", view["displayedText"])

	rec = do(t, h, http.MethodPost, base+"/privacy", map[string]bool{"enabled": true})
	require.Equal(t, http.StatusOK, rec.Code)
	view = decode(t, rec)
	assert.Equal(t, "Contact me at ***@email.com", view["displayedText"])
	assert.Equal(t, true, view["protected"])

	rec = do(t, h, http.MethodGet, base+"/download", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="CV_Protected_2026-10-18.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Contact me at ***@email.com", rec.Body.String())

	rec = do(t, h, http.MethodPost, base+"/reveal", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Contact me at jane@example.com", decode(t, rec)["displayedText"])

	rec = do(t, h, http.MethodGet, base+"/download", nil)
	assert.Equal(t, `attachment; filename="CV_Original_2026-10-18.txt"`, rec.Header().Get("Content-Disposition"))

	rec = do(t, h, http.MethodPost, base+"/auto-delete", map[string]bool{"enabled": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "idle", decode(t, rec)["retention"])

	rec = do(t, h, http.MethodDelete, base+"/content", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decode(t, rec)["hasContent"])

	rec = do(t, h, http.MethodGet, base+"/download", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionErrors(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("UnknownSession", func(t *testing.T) {
		rec := do(t, h, http.MethodGet, "/api/sessions/missing", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, decode(t, rec)["error"], "session not found")
	})

	t.Run("ToggleRequiresEnabled", func(t *testing.T) {
		id := decode(t, do(t, h, http.MethodPost, "/api/sessions", nil))["id"].(string)
		rec := do(t, h, http.MethodPost, "/api/sessions/"+id+"/privacy", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSessionUpload(t *testing.T) {
	h := newTestServer(t, nil)
	id := decode(t, do(t, h, http.MethodPost, "/api/sessions", nil))["id"].(string)
	path := "/api/sessions/" + id + "/content"

	t.Run("PlainText", func(t *testing.T) {
		rec := upload(t, h, http.MethodPut, path, "cv.txt", []byte("Budi Santoso\nNPWP 09.254.294.3-407.000\n"))
		require.Equal(t, http.StatusOK, rec.Code)
		view := decode(t, rec)
		assert.Equal(t, true, view["hasContent"])
		assert.Equal(t, []interface{}{"NPWP: 1 item(s)"}, view["findings"])
	})

	t.Run("Unsupported", func(t *testing.T) {
		png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
		rec := upload(t, h, http.MethodPut, path, "cv.png", png)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("TooLarge", func(t *testing.T) {
		small := newTestServer(t, func(c *config.Config) { c.Server.MaxUploadSize = 64 })
		id := decode(t, do(t, small, http.MethodPost, "/api/sessions", nil))["id"].(string)
		rec := upload(t, small, http.MethodPut, "/api/sessions/"+id+"/content", "cv.txt", bytes.Repeat([]byte("a"), 1024))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestAnalysisEndpoints(t *testing.T) {
	t.Run("AnalyzeCVJSON", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/analyze-cv", analyzeCVRequest{CVText: "Budi Santoso, Go engineer"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decode(t, rec)["_isMockData"])
	})

	t.Run("AnalyzeCVUpload", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := upload(t, h, http.MethodPost, "/api/analyze-cv", "cv.txt", []byte("Budi Santoso, Go engineer"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("EmptyCV", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/analyze-cv", analyzeCVRequest{CVText: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("JobMatchRequiresDescription", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/job-match", analysis.JobMatchRequest{CVContent: "cv"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Rewrite", func(t *testing.T) {
		h := newTestServer(t, nil)
		rec := do(t, h, http.MethodPost, "/api/rewrite-section", analysis.RewriteRequest{Section: "summary", Content: " Go engineer "})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Go engineer", decode(t, rec)["rewrittenContent"])
	})

	t.Run("RateLimited", func(t *testing.T) {
		h := newTestServer(t, func(c *config.Config) {
			c.Analysis.RateLimit.Enabled = true
			c.Analysis.RateLimit.RequestsPerMin = 1
			c.Analysis.RateLimit.Burst = 2
		})
		body := analysis.ATSRequest{CVContent: "cv"}
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/ats-simulator", body).Code)
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/ats-simulator", body).Code)
		assert.Equal(t, http.StatusTooManyRequests, do(t, h, http.MethodPost, "/api/ats-simulator", body).Code)

		// session routes are not limited
		assert.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/api/sessions", nil).Code)
	})
}

func TestAuthEndpoints(t *testing.T) {
	h := newTestServer(t, nil)
	register := identity.RegisterRequest{Name: "Budi", Email: " Budi@Example.com ", Password: "secret1"}

	rec := do(t, h, http.MethodPost, "/api/auth/register", register)
	require.Equal(t, http.StatusCreated, rec.Code)
	user := decode(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "budi@example.com", user["email"])
	assert.NotContains(t, rec.Body.String(), "secret1")

	rec = do(t, h, http.MethodPost, "/api/auth/register", register)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/register", identity.RegisterRequest{Email: "bad", Password: "1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/auth/login", identity.LoginRequest{Email: "budi@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode(t, rec)["token"])

	rec = do(t, h, http.MethodPost, "/api/auth/login", identity.LoginRequest{Email: "budi@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(&identity.ValidationError{Messages: []string{"x"}}))
	assert.Equal(t, http.StatusNotFound, statusFor(session.ErrNoContent))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
