package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"resumelens/internal/config"
	rlerrors "resumelens/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Provider for Google Gemini.
// Available as an alternate backend behind the provider config switch.
type GeminiProvider struct {
	client         *genai.Client
	operation      string
	config         *config.OperationAIConfig
	circuitBreaker *CompletionCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *rlerrors.Logger
}

// Ensure GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *rlerrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, rlerrors.NewProviderError(rlerrors.ErrCodeProviderFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:         client,
		operation:      operationType,
		config:         cfg,
		circuitBreaker: NewCompletionCircuitBreaker(operationType, cfg, logger),
		modelBreaker:   NewModelCircuitBreaker(operationType, cfg, logger),
		logger:         logger,
	}, nil
}

// Complete sends the prompt to Gemini and returns the response text
func (g *GeminiProvider) Complete(ctx context.Context, prompt string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumelens.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+g.operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.prompt_length", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	genaiConfig := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	result, err := g.circuitBreaker.Execute(func() (*CompletionResult, error) {
		return executeWithRetry(ctx, g.operation, *g.config.MaxRetries, g.logger, isRetryableGeminiError, func() (*CompletionResult, error) {
			resp, err := g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(prompt), genaiConfig)
			if err != nil {
				return nil, err
			}
			return &CompletionResult{
				Text:  resp.Text(),
				Usage: extractTokenUsage(resp),
			}, nil
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, rlerrors.NewProviderError(rlerrors.ErrCodeProviderFailed,
			"Completion request failed for "+g.operation, err).
			WithContext("model", g.config.Model)
	}

	if result.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", result.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", result.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", result.Usage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result.Text, result.Usage, nil
}

// isRetryableGeminiError determines if an error should trigger a retry
func isRetryableGeminiError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	info, err := g.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		model, err := g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
		if err != nil {
			return nil, err
		}
		return &ModelInfo{
			Name:        g.config.Model,
			DisplayName: model.DisplayName,
			Version:     model.Version,
			Available:   true,
		}, nil
	})
	if err != nil {
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return &ModelInfo{
			Name:  g.config.Model,
			Error: fmt.Sprintf("Failed to get model info: %v", err),
		}
	}

	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", info.DisplayName,
		"version", info.Version)

	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()
	return stats
}

// Close implements Provider interface
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// extractTokenUsage extracts token usage information from a Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
