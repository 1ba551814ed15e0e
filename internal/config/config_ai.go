package config

// applyOperationDefaults applies global defaults to operation-specific configuration
func (c *Config) applyOperationDefaults(opCfg *OperationAIConfig) {
	if opCfg.Provider == "" {
		opCfg.Provider = c.AI.Provider
	}
	if opCfg.Model == "" {
		opCfg.Model = c.AI.Model
	}
	if opCfg.BaseURL == "" {
		opCfg.BaseURL = c.AI.BaseURL
	}
	if opCfg.Timeout == nil {
		opCfg.Timeout = &c.AI.Timeout
	}
	if opCfg.APIKey == "" {
		opCfg.APIKey = c.AI.APIKey
	}
	if opCfg.MaxRetries == nil {
		opCfg.MaxRetries = &c.AI.MaxRetries
	}
	if opCfg.Temperature == nil {
		opCfg.Temperature = &c.AI.Temperature
	}
}

// GetATSConfig returns the provider configuration for ATS scoring with fallback to global config
func (c *Config) GetATSConfig() OperationAIConfig {
	config := c.AI.ATS
	c.applyOperationDefaults(&config)
	return config
}

// GetMatchConfig returns the provider configuration for job matching with fallback to global config
func (c *Config) GetMatchConfig() OperationAIConfig {
	config := c.AI.Match
	c.applyOperationDefaults(&config)
	return config
}

// GetStructureConfig returns the provider configuration for structure analysis with fallback to global config
func (c *Config) GetStructureConfig() OperationAIConfig {
	config := c.AI.Structure
	c.applyOperationDefaults(&config)
	return config
}

// GetFeedbackConfig returns the provider configuration for feedback synthesis with fallback to global config
func (c *Config) GetFeedbackConfig() OperationAIConfig {
	config := c.AI.Feedback
	c.applyOperationDefaults(&config)
	return config
}

// GetPromptConfig returns the provider configuration for the passthrough prompt endpoint
func (c *Config) GetPromptConfig() OperationAIConfig {
	config := c.AI.Prompt
	c.applyOperationDefaults(&config)
	return config
}
