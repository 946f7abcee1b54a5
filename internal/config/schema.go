package config

// Config holds bluebook configuration.
// Stored at: {home}/config.yaml
type Config struct {
	Parser   ParserCfg   `mapstructure:"parser" yaml:"parser"`
	LLM      LLMCfg      `mapstructure:"llm" yaml:"llm"`
	Pipeline PipelineCfg `mapstructure:"pipeline" yaml:"pipeline"`
}

// ParserCfg configures the document-to-text service.
type ParserCfg struct {
	Mode           string `mapstructure:"mode" yaml:"mode"`                       // "hosted", "local", "text"
	Endpoint       string `mapstructure:"endpoint" yaml:"endpoint"`               // Hosted parse endpoint
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`                 // API key (supports ${ENV_VAR} syntax)
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"` // Per-request HTTP timeout
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
	BatchPages     int    `mapstructure:"batch_pages" yaml:"batch_pages"` // Pages per upload batch

	// Local parser container settings.
	ContainerName string `mapstructure:"container_name" yaml:"container_name"`
	Image         string `mapstructure:"image" yaml:"image"`
	Port          string `mapstructure:"port" yaml:"port"`
}

// LLMCfg configures the extraction model client.
type LLMCfg struct {
	Type           string `mapstructure:"type" yaml:"type"`   // "openai", "mock"
	Model          string `mapstructure:"model" yaml:"model"` // Model name
	APIKey         string `mapstructure:"api_key" yaml:"api_key"`
	RateLimit      int    `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per minute
	MaxRetries     int    `mapstructure:"max_retries" yaml:"max_retries"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// PipelineCfg controls extraction runs.
type PipelineCfg struct {
	MaxWorkers int `mapstructure:"max_workers" yaml:"max_workers"` // Concurrent per-chunk extractions
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Parser: ParserCfg{
			Mode:           "hosted",
			Endpoint:       "https://api.va.landing.ai/v1/tools/agentic-document-analysis",
			APIKey:         "${VISION_AGENT_API_KEY}",
			TimeoutSeconds: 300,
			MaxRetries:     3,
			BatchPages:     10,
			ContainerName:  "bluebook-parser",
			Image:          "ghcr.io/docling-project/docling-serve:latest",
			Port:           "5001",
		},
		LLM: LLMCfg{
			Type:           "openai",
			Model:          "gpt-4o",
			APIKey:         "${OPENAI_API_KEY}",
			RateLimit:      60,
			MaxRetries:     3,
			TimeoutSeconds: 120,
		},
		Pipeline: PipelineCfg{
			MaxWorkers: 4,
		},
	}
}
