package ai

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/big"
	"net"
	"net/http"
	"time"

	"resumelens/internal/config"
	rlerrors "resumelens/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultGroqBaseURL is the OpenAI-compatible endpoint served by Groq
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqProvider implements Provider using Groq's OpenAI-compatible chat completions API
type GroqProvider struct {
	httpClient     *http.Client
	baseURL        string
	operation      string
	config         *config.OperationAIConfig
	circuitBreaker *CompletionCircuitBreaker
	modelBreaker   *ModelCircuitBreaker
	logger         *rlerrors.Logger
}

// Ensure GroqProvider implements Provider
var _ Provider = (*GroqProvider)(nil)

// chatCompletionRequest is the /chat/completions request format
type chatCompletionRequest struct {
	Model       string              `json:"model"`
	Messages    []chatCompletionMsg `json:"messages"`
	Temperature float64             `json:"temperature,omitempty"`
}

// chatCompletionMsg is the chat message format
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
		TotalTokens      int64 `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// modelResponse is the /models/{model} response format
type modelResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
	Active  bool   `json:"active"`
}

// httpStatusError carries a non-2xx provider response for retry classification
type httpStatusError struct {
	StatusCode int
	Body       string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// NewGroqProvider creates a new Groq provider instance for a specific operation
func NewGroqProvider(cfg *config.OperationAIConfig, operationType string, logger *rlerrors.Logger) (*GroqProvider, error) {
	if cfg.APIKey == "" {
		return nil, rlerrors.NewConfigError(rlerrors.ErrCodeMissingAPIKey,
			"Groq API key is required (set GROQ_API_KEY or RESUMELENS_AI_APIKEY)", nil)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultGroqBaseURL
	}

	// Initialize circuit breakers with operation-specific configuration
	circuitBreaker := NewCompletionCircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GroqProvider{
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		baseURL:        baseURL,
		operation:      operationType,
		config:         cfg,
		circuitBreaker: circuitBreaker,
		modelBreaker:   modelBreaker,
		logger:         logger,
	}, nil
}

// Complete sends a single-message chat completion request and returns the response text
func (g *GroqProvider) Complete(ctx context.Context, prompt string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("resumelens.ai.groq")
	ctx, span := tracer.Start(ctx, "groq."+g.operation)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "groq"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.prompt_length", len(prompt)),
	)

	ctx, cancel := context.WithTimeout(ctx, *g.config.Timeout)
	defer cancel()

	result, err := g.circuitBreaker.Execute(func() (*CompletionResult, error) {
		return executeWithRetry(ctx, g.operation, *g.config.MaxRetries, g.logger, isRetryableHTTPError, func() (*CompletionResult, error) {
			return g.chatCompletion(ctx, prompt)
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

// chatCompletion performs a single chat completion round trip
func (g *GroqProvider) chatCompletion(ctx context.Context, prompt string) (*CompletionResult, error) {
	reqBody := chatCompletionRequest{
		Model: g.config.Model,
		Messages: []chatCompletionMsg{
			{Role: "user", Content: prompt},
		},
	}
	if *g.config.Temperature > 0 {
		reqBody.Temperature = float64(*g.config.Temperature)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return nil, fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: chatResp.Error.Message}
		}
		return nil, fmt.Errorf("groq error: %s", chatResp.Error.Message)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if len(chatResp.Choices) == 0 {
		return nil, fmt.Errorf("groq: no response choices returned")
	}

	return &CompletionResult{
		Text: chatResp.Choices[0].Message.Content,
		Usage: &TokenUsage{
			InputTokens:  chatResp.Usage.PromptTokens,
			OutputTokens: chatResp.Usage.CompletionTokens,
			TotalTokens:  chatResp.Usage.TotalTokens,
		},
	}, nil
}

// executeWithRetry executes a completion call with retry logic and exponential backoff.
// With maxRetries of zero the call runs exactly once and the error passes through untouched.
func executeWithRetry(ctx context.Context, operation string, maxRetries int, logger *rlerrors.Logger, retryable func(error) bool, fn func() (*CompletionResult, error)) (*CompletionResult, error) {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			// Log retry attempt
			logger.Warn("Retrying completion call",
				"operation", operation,
				"attempt", attempt,
				"max_retries", maxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				logger.Info("Completion call succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !retryable(err) {
			logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	if maxRetries > 0 {
		logger.LogError(lastErr, "Completion call failed after all retry attempts",
			"operation", operation,
			"total_attempts", maxRetries+1)
		return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, maxRetries, lastErr)
	}

	return nil, lastErr
}

// isRetryableHTTPError determines if an error should trigger a retry
func isRetryableHTTPError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Check for HTTP status codes from the provider
	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
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
func (g *GroqProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	info, err := g.modelBreaker.ExecuteModel(func() (*ModelInfo, error) {
		return g.fetchModelInfo(checkCtx)
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
		"display_name", info.DisplayName)

	return info
}

// fetchModelInfo queries the provider's model endpoint
func (g *GroqProvider) fetchModelInfo(ctx context.Context) (*ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/models/"+g.config.Model, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.config.APIKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var model modelResponse
	if err := json.Unmarshal(body, &model); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &ModelInfo{
		Name:        g.config.Model,
		DisplayName: model.ID,
		Available:   true,
	}, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GroqProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":    g.circuitBreaker.GetStats(),
		"model_operations": g.modelBreaker.GetModelStats(),
	}

	// Overall health - both breakers must be healthy
	stats["overall_healthy"] = g.circuitBreaker.IsHealthy() && g.modelBreaker.IsModelHealthy()

	return stats
}

// Close implements Provider interface
func (g *GroqProvider) Close() error {
	g.httpClient.CloseIdleConnections()
	return nil
}

// modelCheckTimeout bounds the model availability probe used by health checks
const modelCheckTimeout = 10 * time.Second
