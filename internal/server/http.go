package server

import (
	"context"
	"time"

	"resumelens/internal/ai"
	"resumelens/internal/config"
	resumelensErrors "resumelens/internal/errors"
	"resumelens/internal/observability"
	"resumelens/internal/types"
)

// AnalyzeRequest represents the request body for the analyze endpoint
type AnalyzeRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// PromptRequest represents the request body for the passthrough prompt endpoint
type PromptRequest struct {
	Prompt string `json:"prompt"`
}

// PromptResponse represents the passthrough prompt response
type PromptResponse struct {
	Response string `json:"response"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ReportGenerator produces a full analysis report from resume and job text
type ReportGenerator interface {
	Generate(ctx context.Context, resumeText, jobDescription string) (*types.AnalysisReport, error)
}

// TextExtractor pulls plain text out of an uploaded document
type TextExtractor interface {
	ExtractText(path string) (*types.ExtractionResult, error)
	Cleanup(path string)
}

// Completer runs a raw prompt through the configured model
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, *ai.TokenUsage, error)
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Analysis pipeline dependencies
	Reports   ReportGenerator
	Extractor TextExtractor
	Prompter  Completer

	// Optional pre-built observability manager. When nil the server
	// builds one from AppConfig at startup.
	Obs *observability.ObservabilityManager

	// Upload handling
	UploadDir string

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *resumelensErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	UploadDir      string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// Dependencies carries the analysis pipeline services wired into the server
type Dependencies struct {
	Reports   ReportGenerator
	Extractor TextExtractor
	Prompter  Completer
	Obs       *observability.ObservabilityManager
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, deps Dependencies, logger *resumelensErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Reports:        deps.Reports,
		Extractor:      deps.Extractor,
		Prompter:       deps.Prompter,
		Obs:            deps.Obs,
		UploadDir:      cfg.UploadDir,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
