package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the quiz service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"organquiz"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"QUIZ_API_PORT" envDefault:"8180"`
	LogLevel        string        `env:"QUIZ_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Bedrock provider
	BedrockRegion  string        `env:"QUIZ_BEDROCK_REGION" envDefault:"us-east-1"`
	BedrockModelID string        `env:"QUIZ_BEDROCK_MODEL_ID" envDefault:"amazon.titan-image-generator-v1"`
	InvokeTimeout  time.Duration `env:"QUIZ_INVOKE_TIMEOUT" envDefault:"60s"`

	// Optional static credentials; the default AWS chain applies when unset.
	AWSAccessKeyID     string `env:"QUIZ_AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"QUIZ_AWS_SECRET_ACCESS_KEY"`

	// Image generation parameters
	ImageWidth    int     `env:"QUIZ_IMAGE_WIDTH" envDefault:"512"`
	ImageHeight   int     `env:"QUIZ_IMAGE_HEIGHT" envDefault:"512"`
	ImageQuality  string  `env:"QUIZ_IMAGE_QUALITY" envDefault:"standard"`
	GuidanceScale float64 `env:"QUIZ_GUIDANCE_SCALE" envDefault:"8.0"`

	// Quiz content
	SubjectFile    string `env:"QUIZ_SUBJECT_FILE" envDefault:"QuizData_1.txt"`
	PromptTemplate string `env:"QUIZ_PROMPT_TEMPLATE" envDefault:"A clear medical illustration of the human %s."`

	// Artifact storage
	ScratchDir    string `env:"QUIZ_SCRATCH_DIR" envDefault:"output"`
	PublishDir    string `env:"QUIZ_PUBLISH_DIR" envDefault:"static"`
	PublicBaseURL string `env:"QUIZ_PUBLIC_BASE_URL" envDefault:"/v1/files"`

	// Circuit breaker for the provider call
	BreakerEnabled      bool          `env:"QUIZ_BREAKER_ENABLED" envDefault:"true"`
	BreakerMaxFailures  uint32        `env:"QUIZ_BREAKER_MAX_FAILURES" envDefault:"5"`
	BreakerOpenInterval time.Duration `env:"QUIZ_BREAKER_OPEN_INTERVAL" envDefault:"45s"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.BedrockRegion = strings.TrimSpace(cfg.BedrockRegion)
	cfg.BedrockModelID = strings.TrimSpace(cfg.BedrockModelID)
	cfg.AWSAccessKeyID = strings.TrimSpace(cfg.AWSAccessKeyID)
	cfg.AWSSecretAccessKey = strings.TrimSpace(cfg.AWSSecretAccessKey)
	cfg.PublicBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/")

	if cfg.BedrockModelID == "" {
		return nil, fmt.Errorf("QUIZ_BEDROCK_MODEL_ID must not be empty")
	}
	if cfg.ImageWidth <= 0 || cfg.ImageHeight <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive, got %dx%d", cfg.ImageWidth, cfg.ImageHeight)
	}
	if !strings.Contains(cfg.PromptTemplate, "%s") {
		return nil, fmt.Errorf("QUIZ_PROMPT_TEMPLATE must contain a %%s placeholder for the subject")
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
