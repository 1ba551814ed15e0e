package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"resumelens/internal/ai"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReportGenerator struct {
	report *types.AnalysisReport
	err    error
	calls  int
}

func (f *fakeReportGenerator) Generate(ctx context.Context, resumeText, jobDescription string) (*types.AnalysisReport, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeExtractor struct {
	result       *types.ExtractionResult
	err          error
	cleanedPaths []string
}

func (f *fakeExtractor) ExtractText(path string) (*types.ExtractionResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeExtractor) Cleanup(path string) {
	f.cleanedPaths = append(f.cleanedPaths, path)
}

type fakeCompleter struct {
	response string
	err      error
	prompt   string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, *ai.TokenUsage, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", nil, f.err
	}
	return f.response, &ai.TokenUsage{TotalTokens: 10}, nil
}

func newTestServer(t *testing.T, deps Dependencies) (*Server, *observability.ObservabilityManager) {
	t.Helper()

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{Enabled: false}, nil)
	require.NoError(t, err)

	cfg := ServerConfig{
		Host:           "localhost",
		Port:           "5000",
		Version:        "test",
		UploadDir:      t.TempDir(),
		MaxRequestSize: 10 << 20,
	}

	srv := NewServer(&config.Config{}, cfg, deps, errors.NewLogger(slog.LevelError))
	return srv, om
}

func TestAnalyzeHandlerSuccess(t *testing.T) {
	reports := &fakeReportGenerator{
		report: &types.AnalysisReport{
			ATSScore:    types.ATSScore{Overall: 85, Keywords: []string{"go"}, MissingKeywords: []string{}},
			JobMatch:    types.JobMatch{Score: 75, MatchingSkills: []string{}, MissingSkills: []string{}, Recommendations: []string{}},
			Structure:   types.ResumeStructure{Completeness: 80, SectionsPresent: []string{}, SectionsMissing: []string{}, Suggestions: []string{}},
			Suggestions: []string{"Add keyword: docker"},
			DetailedFeedback: types.DetailedFeedback{
				OverallScore: 82,
				Summary:      "Solid resume.",
				Strengths:    []string{}, Weaknesses: []string{}, ActionItems: []string{},
			},
		},
	}
	srv, om := newTestServer(t, Dependencies{Reports: reports})

	body, _ := json.Marshal(AnalyzeRequest{ResumeText: "resume", JobDescription: "job"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.createAnalyzeHandler(om)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report types.AnalysisReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 85, report.ATSScore.Overall)
	assert.Equal(t, []string{"Add keyword: docker"}, report.Suggestions)
	assert.Equal(t, 1, reports.calls)
}

func TestAnalyzeHandlerMissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  AnalyzeRequest
	}{
		{"missing both", AnalyzeRequest{}},
		{"missing resume text", AnalyzeRequest{JobDescription: "job"}},
		{"missing job description", AnalyzeRequest{ResumeText: "resume"}},
		{"whitespace only", AnalyzeRequest{ResumeText: "  ", JobDescription: "\n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := &fakeReportGenerator{}
			srv, om := newTestServer(t, Dependencies{Reports: reports})

			body, _ := json.Marshal(tt.req)
			req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			srv.createAnalyzeHandler(om)(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, "Both resumeText and jobDescription are required", resp.Error)
			assert.Equal(t, 0, reports.calls, "no analysis should run on invalid input")
		})
	}
}

func TestAnalyzeHandlerPipelineFailure(t *testing.T) {
	reports := &fakeReportGenerator{err: fmt.Errorf("model unavailable")}
	srv, om := newTestServer(t, Dependencies{Reports: reports})

	body, _ := json.Marshal(AnalyzeRequest{ResumeText: "resume", JobDescription: "job"})
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.createAnalyzeHandler(om)(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to analyze resume", resp.Error)
	assert.Contains(t, resp.Details, "model unavailable")
}

func TestUploadHandlerSuccess(t *testing.T) {
	extractor := &fakeExtractor{
		result: &types.ExtractionResult{ID: "11111111-2222-3333-4444-555555555555", Text: "extracted resume text"},
	}
	srv, om := newTestServer(t, Dependencies{Extractor: extractor})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", "resume.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 fake content"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.createUploadHandler(om)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result types.ExtractionResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "11111111-2222-3333-4444-555555555555", result.ID)
	assert.Equal(t, "extracted resume text", result.Text)

	// The temp file is cleaned up after extraction
	require.Len(t, extractor.cleanedPaths, 1)
	assert.True(t, strings.HasPrefix(extractor.cleanedPaths[0], srv.UploadDir))
	assert.True(t, strings.HasSuffix(extractor.cleanedPaths[0], ".pdf"))
}

func TestUploadHandlerMissingFile(t *testing.T) {
	srv, om := newTestServer(t, Dependencies{Extractor: &fakeExtractor{}})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("unrelated", "value"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.createUploadHandler(om)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No file uploaded", resp.Error)
}

func TestUploadHandlerExtractionFailure(t *testing.T) {
	extractor := &fakeExtractor{
		err: errors.NewExtractionError(errors.ErrCodeExtractionFailed, "failed to open PDF", nil),
	}
	srv, om := newTestServer(t, Dependencies{Extractor: extractor})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("resume", "broken.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("garbage"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	srv.createUploadHandler(om)(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to process resume", resp.Error)

	// The temp file is still cleaned up on failure
	require.Len(t, extractor.cleanedPaths, 1)
	_, statErr := os.Stat(extractor.cleanedPaths[0])
	assert.NoError(t, statErr, "saved upload should exist until the fake cleanup runs")
}

func TestPromptHandlerSuccess(t *testing.T) {
	completer := &fakeCompleter{response: "Here is the answer."}
	srv, om := newTestServer(t, Dependencies{Prompter: completer})

	body, _ := json.Marshal(PromptRequest{Prompt: "Explain ATS systems"})
	req := httptest.NewRequest(http.MethodPost, "/api/prompt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.createPromptHandler(om)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PromptResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here is the answer.", resp.Response)
	assert.Equal(t, "Explain ATS systems", completer.prompt)
}

func TestPromptHandlerMissingPrompt(t *testing.T) {
	srv, om := newTestServer(t, Dependencies{Prompter: &fakeCompleter{}})

	body, _ := json.Marshal(PromptRequest{Prompt: "   "})
	req := httptest.NewRequest(http.MethodPost, "/api/prompt", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.createPromptHandler(om)(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Prompt is required", resp.Error)
}

func TestAuthMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, Dependencies{})
	srv.APIKeys = map[string]bool{"secret-key-12345": true}

	handler := srv.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid key rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		req.Header.Set("X-API-Key", "wrong-key")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid header key accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		req.Header.Set("X-API-Key", "secret-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("bearer token accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", nil)
		req.Header.Set("Authorization", "Bearer secret-key-12345")
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "12345678****", maskAPIKey("123456789abcdef"))
}

// healthTestConfig builds a config whose operations all resolve to a Groq
// provider pointed at the given base URL
func healthTestConfig(baseURL, apiKey string) *config.Config {
	cfg := &config.Config{}
	cfg.AI.Provider = "groq"
	cfg.AI.Model = "llama3-70b-8192"
	cfg.AI.BaseURL = baseURL
	cfg.AI.APIKey = apiKey
	cfg.AI.Timeout = 5 * time.Second
	cfg.AI.Temperature = 0.3
	cfg.Observability.HealthCheck.Timeout = 5 * time.Second
	return cfg
}

func TestHealthHandlerHealthy(t *testing.T) {
	models := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"llama3-70b-8192","object":"model","active":true}`)
	}))
	defer models.Close()

	srv, _ := newTestServer(t, Dependencies{})
	srv.AppConfig = healthTestConfig(models.URL, "gsk_test")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.healthHandler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "resumelens", resp["service"])

	aiModels, ok := resp["ai_models"].(map[string]any)
	require.True(t, ok)
	assert.Len(t, aiModels, 5)
}

func TestHealthHandlerDegraded(t *testing.T) {
	t.Run("model unavailable", func(t *testing.T) {
		models := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer models.Close()

		srv, _ := newTestServer(t, Dependencies{})
		srv.AppConfig = healthTestConfig(models.URL, "gsk_test")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		srv.healthHandler(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp["status"])
	})

	t.Run("service construction failure", func(t *testing.T) {
		srv, _ := newTestServer(t, Dependencies{})
		srv.AppConfig = healthTestConfig("http://localhost:1", "")

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()

		srv.healthHandler(rec, req)

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "degraded", resp["status"])
	})
}
