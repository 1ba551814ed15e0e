package cli

import (
	"fmt"

	"resumelens/internal/ai"
	"resumelens/internal/analysis"
	"resumelens/internal/config"
	"resumelens/internal/errors"
	"resumelens/internal/extract"
	"resumelens/internal/observability"
	"resumelens/internal/server"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume analysis",
	Long: `Start an HTTP server that provides REST API endpoints for resume analysis.

Available endpoints:
- POST /api/upload: Upload a resume PDF and extract its text
- POST /api/analyze: Run the full analysis pipeline on resume and job text
- POST /api/prompt: Run a raw prompt through the configured model
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("upload-dir", "", "Directory for temporary resume uploads (default from config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("server.uploadDir", "upload-dir")
}

// buildSynthesizer wires the per-operation AI services into the analysis pipeline
func buildSynthesizer(cfg *config.Config, metrics analysis.MetricsRecorder, logger *errors.Logger) (*analysis.Synthesizer, error) {
	atsCfg := cfg.GetATSConfig()
	atsService, err := ai.NewService(&atsCfg, "ats", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ats service: %w", err)
	}

	matchCfg := cfg.GetMatchConfig()
	matchService, err := ai.NewService(&matchCfg, "match", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create match service: %w", err)
	}

	structureCfg := cfg.GetStructureConfig()
	structureService, err := ai.NewService(&structureCfg, "structure", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create structure service: %w", err)
	}

	feedbackCfg := cfg.GetFeedbackConfig()
	feedbackService, err := ai.NewService(&feedbackCfg, "feedback", logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback service: %w", err)
	}

	return analysis.NewSynthesizer(
		analysis.NewATSProbe(atsService, logger),
		analysis.NewJobMatchProbe(matchService, logger),
		analysis.NewStructureProbe(structureService, logger),
		feedbackService,
		metrics,
		logger,
	), nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Pull API keys and provider credentials from Vault when enabled
	if err := config.ApplyVaultSecrets(cfg, logger); err != nil {
		return fmt.Errorf("failed to apply Vault secrets: %w", err)
	}

	om, err := observability.NewObservabilityManager(observability.GetObservabilityConfig(cfg, Version), cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}

	synthesizer, err := buildSynthesizer(cfg, observability.NewRecorder(om), logger)
	if err != nil {
		return err
	}

	promptCfg := cfg.GetPromptConfig()
	promptService, err := ai.NewService(&promptCfg, "prompt", logger)
	if err != nil {
		return fmt.Errorf("failed to create prompt service: %w", err)
	}

	// Restarting applies config changes; watching just surfaces them
	cfg.Watch(func(event fsnotify.Event) {
		logger.Info("Configuration file changed, restart to apply", "file", event.Name)
	})

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		UploadDir:      cfg.Server.UploadDir,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: cfg.Server.MaxRequestSize,
		RateLimit:      &cfg.Server.RateLimit,
	}

	deps := server.Dependencies{
		Reports:   synthesizer,
		Extractor: extract.NewExtractor(logger),
		Prompter:  promptService,
		Obs:       om,
	}

	return server.NewServer(cfg, serverCfg, deps, logger).Start()
}
