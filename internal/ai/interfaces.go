package ai

import (
	"context"
)

// Provider interface for different completion backends
// All methods return token usage information - callers can ignore it if not needed
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenUsage represents token usage information from provider responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// CompletionResult carries a completion text and its token accounting
type CompletionResult struct {
	Text  string
	Usage *TokenUsage
}

// ModelInfo represents information about the configured model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}
