package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"resumelens/internal/observability"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// createUploadHandler wraps the upload handler with observability
func (s *Server) createUploadHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.upload")
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		metrics := om.GetMetrics()

		file, header, err := r.FormFile("resume")
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "No file uploaded", "", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Warn("Failed to close upload stream", "error", err.Error())
			}
		}()

		span.SetAttributes(
			attribute.String("upload.filename", header.Filename),
			attribute.Int64("upload.size", header.Size),
			attribute.String("operation", "upload"),
		)

		tempPath, err := s.saveUpload(file)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "upload_processed", false, om)
			writeErrorResponse(w, "Failed to process resume", err.Error(), http.StatusInternalServerError)
			return
		}
		// The upload exists only long enough to extract its text
		defer s.Extractor.Cleanup(tempPath)

		result, err := s.Extractor.ExtractText(tempPath)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "extraction"))
			metrics.RecordBusinessMetric(ctx, "upload_processed", false, om)
			writeErrorResponse(w, "Failed to process resume", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "upload_processed", true, om,
			attribute.Int("extraction.characters", len(result.Text)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("extraction.characters", len(result.Text)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// saveUpload writes the uploaded document to a temporary file in the upload
// directory and returns its path
func (s *Server) saveUpload(file io.Reader) (string, error) {
	if err := os.MkdirAll(s.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	path := filepath.Join(s.UploadDir, uuid.NewString()+".pdf")
	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	if _, err := io.Copy(out, file); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	return path, nil
}

// createAnalyzeHandler wraps the analyze handler with observability
func (s *Server) createAnalyzeHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.analyze")
		defer span.End()

		var req AnalyzeRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Both inputs are required before any model call happens
		if strings.TrimSpace(req.ResumeText) == "" || strings.TrimSpace(req.JobDescription) == "" {
			err := fmt.Errorf("missing resume text or job description")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Both resumeText and jobDescription are required", "", http.StatusBadRequest)
			return
		}

		// Size validation
		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}
		if len(req.JobDescription) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large", fmt.Sprintf("jobDescription exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("operation", "analyze"),
		)

		metrics := om.GetMetrics()

		report, err := s.Reports.Generate(ctx, req.ResumeText, req.JobDescription)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "report_generated", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to analyze resume", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "report_generated", true, om,
			attribute.Int("ats.score", report.ATSScore.Overall),
			attribute.Int("match.score", report.JobMatch.Score),
			attribute.Int("suggestions.count", len(report.Suggestions)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("ats.score", report.ATSScore.Overall),
			attribute.Int("match.score", report.JobMatch.Score),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createPromptHandler wraps the passthrough prompt handler with observability
func (s *Server) createPromptHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("resumelens.api")
		ctx, span := tracer.Start(ctx, "api.prompt")
		defer span.End()

		var req PromptRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Prompt) == "" {
			err := fmt.Errorf("missing prompt")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Prompt is required", "", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.prompt_length", len(req.Prompt)),
			attribute.String("operation", "prompt"),
		)

		metrics := om.GetMetrics()

		content, usage, err := s.Prompter.Complete(ctx, req.Prompt)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "prompt_executed", false, om)
			writeErrorResponse(w, "Failed to process prompt", err.Error(), http.StatusInternalServerError)
			return
		}

		metrics.RecordBusinessMetric(ctx, "prompt_executed", true, om,
			attribute.Int("response.length", len(content)))

		if usage != nil {
			span.SetAttributes(
				attribute.Int64("ai.tokens.input", usage.InputTokens),
				attribute.Int64("ai.tokens.output", usage.OutputTokens),
				attribute.Int64("ai.tokens.total", usage.TotalTokens),
			)
		}
		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(PromptResponse{Response: content}); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
