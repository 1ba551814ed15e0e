package ai

import (
	"context"
	"fmt"

	"resumelens/internal/config"
	"resumelens/internal/errors"
)

// Service handles completion calls for a single analysis operation
type Service struct {
	Provider Provider // Exported for access from server package
	config   *config.OperationAIConfig
	logger   *errors.Logger
}

// NewService creates a new completion service instance with configuration for a specific operation
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	var provider Provider
	var err error

	// Debug logging for service initialization
	logger.Debug("Initializing completion service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	switch cfg.Provider {
	case "groq":
		provider, err = NewGroqProvider(cfg, operationType, logger)
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported completion provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewProviderError(errors.ErrCodeProviderFailed,
			"Failed to create completion provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// Complete sends a prompt to the configured provider and returns the completion text
func (s *Service) Complete(ctx context.Context, prompt string) (string, *TokenUsage, error) {
	return s.Provider.Complete(ctx, prompt)
}

// GetModelInfo returns information about the configured model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	return s.Provider.Close()
}
